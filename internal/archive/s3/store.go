// Package s3 implements a durable archive as a single object in an
// S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"paycache/internal/archive/core"
)

var _ core.Archive = (*Store)(nil)

// Store keeps the snapshot as one object. S3 PUTs are already atomic at the
// object level, so Replace is a buffered single PutObject.
type Store struct {
	client *s3.Client
	bucket string
	key    string
}

// Config holds explicit construction parameters. Credentials fall back to
// the default AWS chain.
type Config struct {
	Region    string
	Bucket    string
	Key       string // object key; .gz suffix enables gzip (default payments.jsonl.gz)
	Endpoint  string // optional; custom endpoint (e.g. MinIO)
	PathStyle bool
}

// New creates an S3 archive from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if cfg.Key == "" {
		cfg.Key = "payments.jsonl.gz"
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, key: cfg.Key}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverS3 }

func (s *Store) compressed() bool { return strings.HasSuffix(s.key, ".gz") }

// Open fetches the snapshot object, transparently decompressed.
func (s *Store) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, core.ErrNotExist)
		}
		return nil, err
	}
	if !s.compressed() {
		return out.Body, nil
	}
	zr, err := gzip.NewReader(out.Body)
	if err != nil {
		_ = out.Body.Close()
		return nil, fmt.Errorf("open gzip object: %w", err)
	}
	return &gzipReadCloser{zr: zr, body: out.Body}, nil
}

// Replace buffers the snapshot locally and uploads it as one PutObject.
func (s *Store) Replace(ctx context.Context, write func(io.Writer) error) error {
	var buf bytes.Buffer
	var w io.Writer = &buf
	var zw *gzip.Writer
	if s.compressed() {
		zw = gzip.NewWriter(&buf)
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
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &s.key,
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("put snapshot object: %w", err)
	}
	return nil
}

type gzipReadCloser struct {
	zr   *gzip.Reader
	body io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	zerr := g.zr.Close()
	berr := g.body.Close()
	if zerr != nil {
		return zerr
	}
	return berr
}
