package filter

import (
	"context"
	"fmt"
	"testing"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
	"roomgate/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSnapshotKey = "roomgate:room_bloom"

func loadTestFilter(t *testing.T, store ports.SnapshotStore) *BloomMembershipFilter {
	t.Helper()

	f, err := Load(context.Background(), store, testSnapshotKey, 1000, 0.01, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return f
}

func TestLoad_NoSnapshot_StartsEmpty(t *testing.T) {
	store := memory.NewMemorySnapshotStore()
	f := loadTestFilter(t, store)

	assert.False(t, f.MayContain("demo"))
}

func TestFilter_NoFalseNegatives(t *testing.T) {
	store := memory.NewMemorySnapshotStore()
	f := loadTestFilter(t, store)

	// Every name ever added must always test positive.
	for i := 0; i < 500; i++ {
		f.Add(domain.RoomName(fmt.Sprintf("room-%d", i)))
	}
	for i := 0; i < 500; i++ {
		assert.True(t, f.MayContain(domain.RoomName(fmt.Sprintf("room-%d", i))))
	}
}

func TestFilter_PersistAndReload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemorySnapshotStore()

	f := loadTestFilter(t, store)
	f.Add("demo")
	f.Add("standup")
	require.NoError(t, f.Persist(ctx))

	// A restarted instance sees everything the previous one persisted.
	reloaded := loadTestFilter(t, store)
	assert.True(t, reloaded.MayContain("demo"))
	assert.True(t, reloaded.MayContain("standup"))
}

func TestLoad_CorruptSnapshot_StartsFresh(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemorySnapshotStore()
	require.NoError(t, store.Put(ctx, testSnapshotKey, []byte("not json at all")))

	f := loadTestFilter(t, store)
	assert.False(t, f.MayContain("demo"))

	// The fresh filter still works and persists over the bad blob.
	f.Add("demo")
	require.NoError(t, f.Persist(ctx))
	reloaded := loadTestFilter(t, store)
	assert.True(t, reloaded.MayContain("demo"))
}

func TestReset_ClearsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemorySnapshotStore()

	f := loadTestFilter(t, store)
	f.Add("demo")
	require.NoError(t, f.Persist(ctx))

	require.NoError(t, f.Reset(ctx))
	assert.False(t, f.MayContain("demo"))

	reloaded := loadTestFilter(t, store)
	assert.False(t, reloaded.MayContain("demo"), "reset must be persisted, not just in-memory")
}
