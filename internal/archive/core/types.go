// Package core defines the abstractions for durable snapshot archives used
// by the payment cache.
package core

import (
	"context"
	"errors"
	"io"
)

// Driver identifies a concrete archive backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local gzip/plain file implementation.
	DriverFilesystem Driver = "fs" // local file (default)
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3" // S3 / MinIO compatible
	// DriverSQLite represents an embedded sqlite payload table.
	DriverSQLite Driver = "sqlite" // embedded sqlite file
	// DriverPostgres represents a PostgreSQL payload table.
	DriverPostgres Driver = "postgres" // PostgreSQL server
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory" // in-memory (tests)
)

// Archive owns one durable, opaque byte snapshot: the full encoded record
// set. It is read once at startup and rewritten whole on every persist cycle.
// Replace must be atomic with respect to Open: a failed or interrupted
// Replace leaves the previous snapshot intact, never a torn one.
type Archive interface {
	// Open returns the current snapshot for reading, or ErrNotExist when no
	// snapshot has ever been written.
	Open(ctx context.Context) (io.ReadCloser, error)
	// Replace atomically swaps the snapshot with the bytes produced by write.
	Replace(ctx context.Context, write func(io.Writer) error) error
	Driver() Driver
}

// ErrNotExist is returned by Open when the archive holds no snapshot.
var ErrNotExist = errors.New("archive: snapshot does not exist")
