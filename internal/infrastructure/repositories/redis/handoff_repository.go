package redis

import (
	"context"
	"fmt"
	"time"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisHandoffSlot struct {
	client *redis.Client
	prefix string
}

func NewRedisHandoffSlot(client *redis.Client) ports.HandoffSlot {
	return &RedisHandoffSlot{
		client: client,
		prefix: "roomgate:approved:",
	}
}

func (s *RedisHandoffSlot) slotKey(room domain.RoomName, identity domain.Identity) string {
	return s.prefix + string(room) + ":" + string(identity)
}

func (s *RedisHandoffSlot) Put(ctx context.Context, room domain.RoomName, identity domain.Identity, credential string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.slotKey(room, identity), credential, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write handoff slot: %w", err)
	}
	return nil
}

func (s *RedisHandoffSlot) Exists(ctx context.Context, room domain.RoomName, identity domain.Identity) (bool, error) {
	n, err := s.client.Exists(ctx, s.slotKey(room, identity)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check handoff slot: %w", err)
	}
	return n > 0, nil
}

// Claim uses GETDEL so the read-and-delete is a single atomic operation:
// even two overlapping polls can hand the credential out at most once.
func (s *RedisHandoffSlot) Claim(ctx context.Context, room domain.RoomName, identity domain.Identity) (string, bool, error) {
	credential, err := s.client.GetDel(ctx, s.slotKey(room, identity)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to claim handoff slot: %w", err)
	}
	return credential, true, nil
}
