package storage

import (
	"context"
	"io"
)

// ObjectStorage stores exported kit assets.
type ObjectStorage interface {
	// Upload writes an object under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens an object for reading. The caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the address under which key can be fetched.
	GetURL(key string) string

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)
}

// BucketEnsurer is implemented by stores that need their container created up front.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}
