// Package postgres implements a durable archive as a payload table in a
// PostgreSQL server, mirroring the sqlite driver's single-row scheme.
package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"paycache/internal/archive/core"
)

var _ core.Archive = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/paycache?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps the snapshot bytes in an `archive` table keyed by name.
type Store struct {
	db   *sql.DB
	name string
}

// New opens a postgres-backed archive using the provided DSN (falls back to
// defaultDSN) and ensures the archive table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS archive (
		name TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive table: %w", err)
	}
	return &Store{db: db, name: "payments"}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Open returns the stored snapshot payload, or ErrNotExist when the row is
// absent.
func (s *Store) Open(ctx context.Context) (io.ReadCloser, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM archive WHERE name = $1`, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("postgres archive %s: %w", s.name, core.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

// Replace upserts the snapshot row.
func (s *Store) Replace(ctx context.Context, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive(name, payload) VALUES($1, $2)
		 ON CONFLICT(name) DO UPDATE SET payload = EXCLUDED.payload`, s.name, buf.Bytes())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
