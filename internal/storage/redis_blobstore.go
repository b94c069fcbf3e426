package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisBlobstore implements Blobstore
var _ Blobstore = (*redisBlobstore)(nil)

type redisBlobstore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBlobstore creates a redis-backed Blobstore. Keys are stored without
// TTL: story data lives until explicitly deleted.
func NewRedisBlobstore(client *redis.Client, logger *zap.Logger) Blobstore {
	return &redisBlobstore{
		client: client,
		logger: logger.Named("RedisBlobstore"),
	}
}

func (s *redisBlobstore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrKeyNotFound
		}
		s.logger.Error("Failed to get blob from redis", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get blob %s from redis: %w", key, err)
	}
	return data, nil
}

func (s *redisBlobstore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		s.logger.Error("Failed to set blob in redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set blob %s in redis: %w", key, err)
	}
	return nil
}

func (s *redisBlobstore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("Failed to delete blob from redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete blob %s from redis: %w", key, err)
	}
	return nil
}
