package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// Store abstracts where job outputs are written.
type Store interface {
	// Save stores data. key format: {job_id}/{filename}
	Save(ctx context.Context, key string, data []byte, contentType string) error

	// Open returns a reader for a stored object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if an object is stored.
	Exists(ctx context.Context, key string) bool

	// Location returns a human-readable address for key (path or s3:// URI).
	Location(key string) string

	// Type returns "local" or "s3".
	Type() string
}

// New creates a Store based on config. Returns an error if S3 is configured but unreachable.
func New(ctx context.Context, cfg config.StorageConfig, outputDir string, log logger.Logger) (Store, error) {
	if !cfg.S3Enabled() {
		return NewLocalStore(outputDir), nil
	}

	s3store, err := NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("S3 init failed: %w", err)
	}

	// Startup validation: verify credentials and bucket access
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3store.HeadBucket(checkCtx); err != nil {
		return nil, fmt.Errorf("S3 startup check failed (bucket=%q endpoint=%q): %w",
			cfg.Bucket, cfg.Endpoint, err)
	}
	log.Info(ctx, "S3 connection verified: bucket=%s endpoint=%s", cfg.Bucket, cfg.Endpoint)
	return s3store, nil
}
