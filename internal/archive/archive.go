// Package archive selects and constructs the durable snapshot backend.
package archive

import (
	"context"
	"fmt"

	"paycache/internal/archive/core"
	"paycache/internal/archive/fs"
	"paycache/internal/archive/memory"
	"paycache/internal/archive/postgres"
	"paycache/internal/archive/s3"
	"paycache/internal/archive/sqlite"
)

type (
	Archive = core.Archive
	Driver  = core.Driver
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverSQLite     = core.DriverSQLite
	DriverPostgres   = core.DriverPostgres
	DriverMemory     = core.DriverMemory
)

// ErrNotExist is returned by Open when the archive holds no snapshot.
var ErrNotExist = core.ErrNotExist

// Config selects a driver and carries its backend-specific parameters.
type Config struct {
	Driver string

	Path string // fs: file path, .gz suffix enables gzip

	S3Bucket    string
	S3Region    string
	S3Key       string
	S3Endpoint  string // optional, e.g. MinIO
	S3PathStyle bool

	SQLitePath  string
	PostgresDSN string
}

// Open constructs the archive named by cfg.Driver. An empty driver defaults
// to the filesystem implementation.
func Open(ctx context.Context, cfg Config) (Archive, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return fs.New(cfg.Path)
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	case DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	case DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}
