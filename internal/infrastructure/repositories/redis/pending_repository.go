package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisPendingQueue struct {
	client *redis.Client
	prefix string
}

func NewRedisPendingQueue(client *redis.Client) ports.PendingQueue {
	return &RedisPendingQueue{
		client: client,
		prefix: "roomgate:pending:",
	}
}

func (q *RedisPendingQueue) queueKey(room domain.RoomName) string {
	return q.prefix + string(room)
}

func (q *RedisPendingQueue) Enqueue(ctx context.Context, room domain.RoomName, guest domain.Guest) error {
	data, err := json.Marshal(guest)
	if err != nil {
		return fmt.Errorf("failed to marshal pending guest: %w", err)
	}
	if err := q.client.RPush(ctx, q.queueKey(room), data).Err(); err != nil {
		return fmt.Errorf("failed to push pending guest to Redis: %w", err)
	}
	return nil
}

func (q *RedisPendingQueue) List(ctx context.Context, room domain.RoomName) ([]domain.Guest, error) {
	raw, err := q.client.LRange(ctx, q.queueKey(room), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending guests from Redis: %w", err)
	}

	guests := make([]domain.Guest, 0, len(raw))
	for _, item := range raw {
		var guest domain.Guest
		if err := json.Unmarshal([]byte(item), &guest); err != nil {
			// Skip entries that no longer parse
			continue
		}
		guests = append(guests, guest)
	}
	return guests, nil
}

// RemoveAll removes every queued entry for identity. Entries are stored as
// JSON, so matching means re-serializing each candidate and LREM-ing it with
// count 0 (all occurrences).
func (q *RedisPendingQueue) RemoveAll(ctx context.Context, room domain.RoomName, identity domain.Identity) (int, error) {
	raw, err := q.client.LRange(ctx, q.queueKey(room), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan pending queue: %w", err)
	}

	removed := 0
	for _, item := range raw {
		var guest domain.Guest
		if err := json.Unmarshal([]byte(item), &guest); err != nil {
			continue
		}
		if guest.Identity != identity {
			continue
		}
		n, err := q.client.LRem(ctx, q.queueKey(room), 0, item).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to remove pending guest: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}

func (q *RedisPendingQueue) Drop(ctx context.Context, room domain.RoomName) error {
	if err := q.client.Del(ctx, q.queueKey(room)).Err(); err != nil {
		return fmt.Errorf("failed to drop pending queue: %w", err)
	}
	return nil
}
