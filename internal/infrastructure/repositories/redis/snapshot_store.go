package redis

import (
	"context"
	"fmt"

	"roomgate/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) ports.SnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (s *RedisSnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}
	return data, true, nil
}

func (s *RedisSnapshotStore) Put(ctx context.Context, key string, blob []byte) error {
	if err := s.client.Set(ctx, key, blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to put snapshot in Redis: %w", err)
	}
	return nil
}
