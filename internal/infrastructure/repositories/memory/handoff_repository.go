package memory

import (
	"context"
	"sync"
	"time"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
)

type slot struct {
	credential string
	expiresAt  time.Time
}

type MemoryHandoffSlot struct {
	slots map[string]slot
	mu    sync.Mutex
}

func NewMemoryHandoffSlot() ports.HandoffSlot {
	return &MemoryHandoffSlot{
		slots: make(map[string]slot),
	}
}

func slotKey(room domain.RoomName, identity domain.Identity) string {
	return string(room) + ":" + string(identity)
}

func (s *MemoryHandoffSlot) Put(ctx context.Context, room domain.RoomName, identity domain.Identity, credential string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[slotKey(room, identity)] = slot{
		credential: credential,
		expiresAt:  time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryHandoffSlot) Exists(ctx context.Context, room domain.RoomName, identity domain.Identity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.slots[slotKey(room, identity)]
	if !exists {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.slots, slotKey(room, identity))
		return false, nil
	}
	return true, nil
}

func (s *MemoryHandoffSlot) Claim(ctx context.Context, room domain.RoomName, identity domain.Identity) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey(room, identity)
	entry, exists := s.slots[key]
	if !exists {
		return "", false, nil
	}
	delete(s.slots, key)
	if time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.credential, true, nil
}
