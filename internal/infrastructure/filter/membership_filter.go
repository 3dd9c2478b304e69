package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"
)

// snapshot is the persisted form of the filter: the serialized bloom filter
// plus an update timestamp.
type snapshot struct {
	Filter    json.RawMessage `json:"filter"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BloomMembershipFilter is an approximate set of every room name ever
// created. It only grows; rooms ending never remove entries. The registry is
// the authoritative check that masks false positives.
type BloomMembershipFilter struct {
	store       ports.SnapshotStore
	snapshotKey string
	capacity    uint
	fpRate      float64
	logger      *zap.SugaredLogger

	mu    sync.RWMutex
	bloom *bloom.BloomFilter
}

// Load builds a filter from the stored snapshot, or a fresh empty one sized
// to capacity/fpRate when no snapshot exists or it fails to parse.
func Load(ctx context.Context, store ports.SnapshotStore, snapshotKey string, capacity uint, fpRate float64, logger *zap.SugaredLogger) (*BloomMembershipFilter, error) {
	f := &BloomMembershipFilter{
		store:       store,
		snapshotKey: snapshotKey,
		capacity:    capacity,
		fpRate:      fpRate,
		logger:      logger,
	}

	blob, ok, err := store.Get(ctx, snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter snapshot: %w", err)
	}

	if ok {
		var snap snapshot
		if err := json.Unmarshal(blob, &snap); err == nil {
			var b bloom.BloomFilter
			if err := json.Unmarshal(snap.Filter, &b); err == nil {
				f.bloom = &b
				logger.Infow("loaded membership filter snapshot",
					"key", snapshotKey,
					"updated_at", snap.UpdatedAt,
				)
				return f, nil
			}
		}
		logger.Warnw("failed to parse filter snapshot, starting fresh", "key", snapshotKey)
	}

	f.bloom = bloom.NewWithEstimates(capacity, fpRate)
	return f, nil
}

func (f *BloomMembershipFilter) Add(name domain.RoomName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bloom.Add([]byte(name))
}

func (f *BloomMembershipFilter) MayContain(name domain.RoomName) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bloom.Test([]byte(name))
}

func (f *BloomMembershipFilter) Persist(ctx context.Context) error {
	f.mu.RLock()
	data, err := json.Marshal(f.bloom)
	f.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal filter: %w", err)
	}

	blob, err := json.Marshal(snapshot{Filter: data, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal filter snapshot: %w", err)
	}

	if err := f.store.Put(ctx, f.snapshotKey, blob); err != nil {
		return fmt.Errorf("failed to persist filter snapshot: %w", err)
	}
	return nil
}

// Reset replaces the filter with a fresh empty one and persists it.
// Administrative operation; not part of normal room teardown.
func (f *BloomMembershipFilter) Reset(ctx context.Context) error {
	f.mu.Lock()
	f.bloom = bloom.NewWithEstimates(f.capacity, f.fpRate)
	f.mu.Unlock()

	if err := f.Persist(ctx); err != nil {
		return err
	}
	f.logger.Infow("membership filter reset", "key", f.snapshotKey)
	return nil
}
