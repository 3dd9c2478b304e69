package memory

import (
	"context"
	"sync"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
)

type MemoryRoomRegistry struct {
	hosts map[domain.RoomName]domain.Identity
	mu    sync.Mutex
}

func NewMemoryRoomRegistry() ports.RoomRegistry {
	return &MemoryRoomRegistry{
		hosts: make(map[domain.RoomName]domain.Identity),
	}
}

func (r *MemoryRoomRegistry) TryActivate(ctx context.Context, room domain.RoomName, host domain.Identity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.hosts[room]; exists {
		return false, nil
	}
	r.hosts[room] = host
	return true, nil
}

func (r *MemoryRoomRegistry) IsActive(ctx context.Context, room domain.RoomName) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.hosts[room]
	return exists, nil
}

func (r *MemoryRoomRegistry) GetHost(ctx context.Context, room domain.RoomName) (domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.hosts[room], nil
}

func (r *MemoryRoomRegistry) Deactivate(ctx context.Context, room domain.RoomName) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.hosts, room)
	return nil
}
