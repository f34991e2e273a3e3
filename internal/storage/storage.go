// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"io"
)

// Storage is the interface for storing blobs and resolving their public URLs.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Remove deletes the objects identified by keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	// It is a pure function of key.
	PublicURL(key string) string
}
