package storage

import (
	"context"
	"sync"
)

// Compile-time check to ensure memoryBlobstore implements Blobstore
var _ Blobstore = (*memoryBlobstore)(nil)

type memoryBlobstore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobstore creates an in-memory Blobstore. It backs tests and has
// no durability.
func NewMemoryBlobstore() Blobstore {
	return &memoryBlobstore{blobs: make(map[string][]byte)}
}

func (s *memoryBlobstore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *memoryBlobstore) Set(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[key] = stored
	return nil
}

func (s *memoryBlobstore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
