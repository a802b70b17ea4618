// Package storage abstracts where uploaded file contents live. The local
// driver keeps files on disk under a configured root; the s3 driver talks to
// any S3-compatible object store (AWS, MinIO).
package storage

import (
	"context"
	"fmt"
	"io"

	"modulith/internal/config"
)

// Backend stores and retrieves raw file contents addressed by key.
type Backend interface {
	// Save writes the contents of r under key, returning the number of
	// bytes written.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	// Open returns a reader for the contents stored under key. The caller
	// must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the contents stored under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by STORAGE_DRIVER.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocal(cfg.StoragePath)
	case "s3":
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
