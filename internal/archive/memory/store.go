// Package memory implements an in-memory archive for tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"paycache/internal/archive/core"
)

var _ core.Archive = (*Store)(nil)

// Store keeps the snapshot bytes in process memory. Intended for tests.
type Store struct {
	mu      sync.RWMutex
	payload []byte
	exists  bool
}

// New returns an empty in-memory archive.
func New() *Store { return &Store{} }

// Seed installs an initial snapshot, as if a previous process had written it.
func (s *Store) Seed(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), payload...)
	s.exists = true
}

// Bytes returns a copy of the current snapshot payload.
func (s *Store) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.payload...)
}

func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Open returns the current snapshot, or ErrNotExist when never written.
func (s *Store) Open(_ context.Context) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists {
		return nil, core.ErrNotExist
	}
	cp := append([]byte(nil), s.payload...)
	return io.NopCloser(bytes.NewReader(cp)), nil
}

// Replace buffers the new snapshot and swaps it in whole; a write error
// leaves the previous snapshot untouched.
func (s *Store) Replace(_ context.Context, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = buf.Bytes()
	s.exists = true
	return nil
}
