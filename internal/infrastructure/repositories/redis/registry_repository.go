package redis

import (
	"context"
	"fmt"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisRoomRegistry struct {
	client *redis.Client
	prefix string
}

func NewRedisRoomRegistry(client *redis.Client) ports.RoomRegistry {
	return &RedisRoomRegistry{
		client: client,
		prefix: "roomgate:",
	}
}

func (r *RedisRoomRegistry) activeSetKey() string {
	return r.prefix + "rooms:active"
}

func (r *RedisRoomRegistry) hostKey(room domain.RoomName) string {
	return r.prefix + "host:" + string(room)
}

// TryActivate relies on SADD returning the number of members actually added:
// 1 means this caller won the activation race, 0 means the room was already
// active. The set-add is the single atomic gate; the host key is written only
// by the winner.
func (r *RedisRoomRegistry) TryActivate(ctx context.Context, room domain.RoomName, host domain.Identity) (bool, error) {
	added, err := r.client.SAdd(ctx, r.activeSetKey(), string(room)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to activate room in Redis: %w", err)
	}
	if added == 0 {
		return false, nil
	}

	if err := r.client.Set(ctx, r.hostKey(room), string(host), 0).Err(); err != nil {
		return false, fmt.Errorf("failed to set room host in Redis: %w", err)
	}
	return true, nil
}

func (r *RedisRoomRegistry) IsActive(ctx context.Context, room domain.RoomName) (bool, error) {
	active, err := r.client.SIsMember(ctx, r.activeSetKey(), string(room)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check room membership in Redis: %w", err)
	}
	return active, nil
}

func (r *RedisRoomRegistry) GetHost(ctx context.Context, room domain.RoomName) (domain.Identity, error) {
	host, err := r.client.Get(ctx, r.hostKey(room)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get room host from Redis: %w", err)
	}
	return domain.Identity(host), nil
}

func (r *RedisRoomRegistry) Deactivate(ctx context.Context, room domain.RoomName) error {
	if err := r.client.SRem(ctx, r.activeSetKey(), string(room)).Err(); err != nil {
		return fmt.Errorf("failed to remove room from active set: %w", err)
	}
	if err := r.client.Del(ctx, r.hostKey(room)).Err(); err != nil {
		return fmt.Errorf("failed to delete room host key: %w", err)
	}
	return nil
}
