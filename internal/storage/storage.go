// Package storage persists feature tables and summaries.
// It defines the Storage interface (port) and implementations for local disk
// and local disk mirrored to S3.
package storage

import (
	"context"
	"io"
)

// Storage defines the file operations needed by the OpenSMILE checks.
type Storage interface {
	// Open returns a reader for the file at path.
	// The caller is responsible for closing the returned ReadCloser.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Replace writes data to path atomically, creating or overwriting it.
	// Readers never observe a partially written file.
	Replace(ctx context.Context, path string, data io.Reader) error

	// UploadToS3 uploads data under key and returns the object URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}
