package storage

import (
	"context"
	"io"
)

// BlobStorage is the common capability set of the blob backends. Keys are
// opaque to callers; only the backend that minted the layout may interpret
// them. Delete is idempotent: removing an absent blob is not an error.
type BlobStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
