// Package sqlite implements a durable archive as a single-row payload table
// in an embedded sqlite database.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"paycache/internal/archive/core"
)

var _ core.Archive = (*Store)(nil)

// Store keeps the snapshot bytes in an `archive` table with one row. Each
// Replace upserts the row inside a transaction, which gives the same
// all-or-nothing property as the filesystem rename.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the sqlite archive at path.
func New(path string) (*Store, error) {
	if path == "" {
		path = "paycache.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS archive (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Open returns the stored snapshot payload, or ErrNotExist when the table
// has never been written.
func (s *Store) Open(ctx context.Context) (io.ReadCloser, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM archive WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite %s: %w", s.path, core.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

// Replace upserts the snapshot row transactionally.
func (s *Store) Replace(ctx context.Context, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive(id, payload) VALUES(1, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`, buf.Bytes())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
