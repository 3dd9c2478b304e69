package memory

import (
	"context"
	"sync"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
)

type MemoryPendingQueue struct {
	queues map[domain.RoomName][]domain.Guest
	mu     sync.Mutex
}

func NewMemoryPendingQueue() ports.PendingQueue {
	return &MemoryPendingQueue{
		queues: make(map[domain.RoomName][]domain.Guest),
	}
}

func (q *MemoryPendingQueue) Enqueue(ctx context.Context, room domain.RoomName, guest domain.Guest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queues[room] = append(q.queues[room], guest)
	return nil
}

func (q *MemoryPendingQueue) List(ctx context.Context, room domain.RoomName) ([]domain.Guest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	guests := make([]domain.Guest, len(q.queues[room]))
	copy(guests, q.queues[room])
	return guests, nil
}

func (q *MemoryPendingQueue) RemoveAll(ctx context.Context, room domain.RoomName, identity domain.Identity) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.queues[room][:0]
	removed := 0
	for _, guest := range q.queues[room] {
		if guest.Identity == identity {
			removed++
			continue
		}
		kept = append(kept, guest)
	}
	q.queues[room] = kept
	return removed, nil
}

func (q *MemoryPendingQueue) Drop(ctx context.Context, room domain.RoomName) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.queues, room)
	return nil
}
