package memory

import (
	"context"
	"testing"
	"time"

	"roomgate/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHandoffSlot_Expiry(t *testing.T) {
	slot := NewMemoryHandoffSlot()
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "demo", "bob", "token-123", time.Millisecond))

	time.Sleep(5 * time.Millisecond)

	exists, err := slot.Exists(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	_, ok, err := slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryHandoffSlot_ClaimOnce(t *testing.T) {
	slot := NewMemoryHandoffSlot()
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "demo", "bob", "token-123", time.Minute))

	credential, ok, err := slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "token-123", credential)

	_, ok, err = slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryPendingQueue_RemoveAllDuplicates(t *testing.T) {
	queue := NewMemoryPendingQueue()
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, "demo", domain.Guest{Identity: "bob"}))
	require.NoError(t, queue.Enqueue(ctx, "demo", domain.Guest{Identity: "carol"}))
	require.NoError(t, queue.Enqueue(ctx, "demo", domain.Guest{Identity: "bob"}))

	removed, err := queue.RemoveAll(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	guests, err := queue.List(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, domain.Identity("carol"), guests[0].Identity)
}

func TestMemoryRoomRegistry_ActivationRace(t *testing.T) {
	registry := NewMemoryRoomRegistry()
	ctx := context.Background()

	won, err := registry.TryActivate(ctx, "demo", "alice")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = registry.TryActivate(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, won)

	host, err := registry.GetHost(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("alice"), host)
}
