package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a Blobstore when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Blobstore is the keyed persistence surface the application state lives on:
// JSON blobs under fixed string keys. Implementations are file-backed (the
// default) and redis-backed, selected by configuration.
type Blobstore interface {
	// Get returns the blob stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the blob under key, overwriting any previous value.
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
