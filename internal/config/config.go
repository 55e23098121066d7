// Package config loads process configuration from PAYCACHE_* environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"paycache/internal/archive"
)

// Config carries everything the serve and seed commands need.
type Config struct {
	Addr string `env:"PAYCACHE_ADDR" envDefault:":8080"`

	ArchiveDriver string `env:"PAYCACHE_ARCHIVE_DRIVER" envDefault:"fs"`
	ArchivePath   string `env:"PAYCACHE_ARCHIVE_PATH" envDefault:"payments.jsonl.gz"`

	S3Bucket    string `env:"PAYCACHE_S3_BUCKET"`
	S3Region    string `env:"PAYCACHE_S3_REGION"`
	S3Key       string `env:"PAYCACHE_S3_KEY" envDefault:"payments.jsonl.gz"`
	S3Endpoint  string `env:"PAYCACHE_S3_ENDPOINT"`
	S3PathStyle bool   `env:"PAYCACHE_S3_PATH_STYLE"`

	SQLitePath  string `env:"PAYCACHE_SQLITE_PATH" envDefault:"paycache.db"`
	PostgresDSN string `env:"PAYCACHE_POSTGRES_DSN"`

	AdvanceProbability float64 `env:"PAYCACHE_ADVANCE_PROBABILITY" envDefault:"0.3"`
}

// Parse loads configuration from the environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Archive maps the flat env fields onto the archive factory config.
func (c Config) Archive() archive.Config {
	return archive.Config{
		Driver:      c.ArchiveDriver,
		Path:        c.ArchivePath,
		S3Bucket:    c.S3Bucket,
		S3Region:    c.S3Region,
		S3Key:       c.S3Key,
		S3Endpoint:  c.S3Endpoint,
		S3PathStyle: c.S3PathStyle,
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
	}
}
