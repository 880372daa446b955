package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore abstracts the object store holding APF attachment forms.
// Backends hand out presigned URLs; the engine itself only ever stores keys.
type BlobStore interface {
	// PresignUpload returns a URL a client can PUT the file to.
	PresignUpload(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// PresignDownload returns a URL a client can GET the stored file from.
	PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Exists checks whether a key holds an object.
	Exists(ctx context.Context, key string) (bool, error)

	// Save writes an object (used by the local backend's upload handler).
	Save(key string, reader io.Reader) error

	// Open reads an object (used by the local backend's download handler).
	Open(key string) (io.ReadCloser, error)
}

// Config holds blob store configuration.
type Config struct {
	BaseURL  string // server base URL used in presigned URLs
	LocalDir string // directory for the local backend
}
