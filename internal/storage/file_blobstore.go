package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Compile-time check to ensure fileBlobstore implements Blobstore
var _ Blobstore = (*fileBlobstore)(nil)

type fileBlobstore struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileBlobstore creates a Blobstore that keeps each key as one JSON file
// under dir. Writes go through a temp file and rename so a crash mid-write
// never leaves a truncated blob behind.
func NewFileBlobstore(dir string, logger *zap.Logger) (Blobstore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &fileBlobstore{
		dir:    dir,
		logger: logger.Named("FileBlobstore"),
	}, nil
}

func (s *fileBlobstore) path(key string) string {
	// Keys are fixed application constants, but keep the filename safe anyway.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, safe+".json")
}

func (s *fileBlobstore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		s.logger.Error("Failed to read blob file", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *fileBlobstore) Set(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".blob-*")
	if err != nil {
		s.logger.Error("Failed to create temp file for blob", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to create temp file for blob %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.logger.Error("Failed to write blob file", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close blob temp file for %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		s.logger.Error("Failed to move blob file into place", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to store blob %s: %w", key, err)
	}
	return nil
}

func (s *fileBlobstore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to delete blob file", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
