// Package fs implements a durable archive as a single local file, gzip
// compressed when the path carries a .gz suffix.
package fs

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"paycache/internal/archive/core"
)

// Compile-time contract assertion ensuring the store satisfies the archive interface.
var _ core.Archive = (*Store)(nil)

// Store keeps the snapshot in one file. Replace streams through a temp file
// in the same directory and renames it into place, so readers only ever see
// a complete snapshot.
type Store struct {
	path string
}

// New returns a file-backed archive at path, creating parent directories as
// needed. An empty path defaults to ./payments.jsonl.gz.
func New(path string) (*Store, error) {
	if path == "" {
		path = "payments.jsonl.gz"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

func (s *Store) compressed() bool { return strings.HasSuffix(s.path, ".gz") }

// Open returns the snapshot contents, transparently decompressed.
func (s *Store) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, core.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	if !s.compressed() {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open gzip %s: %w", s.path, err)
	}
	return &gzipReadCloser{zr: zr, f: f}, nil
}

// Replace writes the new snapshot to a temp file, syncs it, and atomically
// renames it over the previous snapshot.
func (s *Store) Replace(_ context.Context, write func(io.Writer) error) (retErr error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".payments-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	var w io.Writer = tmp
	var zw *gzip.Writer
	if s.compressed() {
		zw = gzip.NewWriter(tmp)
		w = zw
	}
	if err := write(w); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("flush gzip: %w", err)
		}
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

type gzipReadCloser struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
