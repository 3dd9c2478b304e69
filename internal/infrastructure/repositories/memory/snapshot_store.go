package memory

import (
	"context"
	"sync"

	"roomgate/internal/core/ports"
)

type MemorySnapshotStore struct {
	blobs map[string][]byte
	mu    sync.Mutex
}

func NewMemorySnapshotStore() ports.SnapshotStore {
	return &MemorySnapshotStore{
		blobs: make(map[string][]byte),
	}
}

func (s *MemorySnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, exists := s.blobs[key]
	if !exists {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (s *MemorySnapshotStore) Put(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.blobs[key] = stored
	return nil
}
