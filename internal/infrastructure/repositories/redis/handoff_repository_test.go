package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoffSlot_PutExistsClaim(t *testing.T) {
	slot := NewRedisHandoffSlot(newTestClient(t))
	ctx := context.Background()

	exists, err := slot.Exists(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, slot.Put(ctx, "demo", "bob", "token-123", 5*time.Minute))

	exists, err = slot.Exists(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.True(t, exists)

	credential, ok, err := slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "token-123", credential)
}

func TestHandoffSlot_ClaimConsumesSlot(t *testing.T) {
	slot := NewRedisHandoffSlot(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "demo", "bob", "token-123", 5*time.Minute))

	_, ok, err := slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := slot.Exists(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHandoffSlot_ConcurrentClaims_AtMostOnce(t *testing.T) {
	slot := NewRedisHandoffSlot(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "demo", "bob", "token-123", 5*time.Minute))

	const pollers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	handed := 0

	for i := 0; i < pollers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := slot.Claim(ctx, "demo", "bob")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				handed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, handed, "a credential must be handed out at most once")
}

func TestHandoffSlot_Expires(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	slot := NewRedisHandoffSlot(client)
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "demo", "bob", "token-123", 5*time.Minute))

	srv.FastForward(6 * time.Minute)

	exists, err := slot.Exists(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	_, ok, err := slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandoffSlot_SlotsAreScopedPerRoomAndIdentity(t *testing.T) {
	slot := NewRedisHandoffSlot(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, "demo", "bob", "token-demo", 5*time.Minute))
	require.NoError(t, slot.Put(ctx, "standup", "bob", "token-standup", 5*time.Minute))

	credential, ok, err := slot.Claim(ctx, "demo", "bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "token-demo", credential)

	exists, err := slot.Exists(ctx, "standup", "bob")
	require.NoError(t, err)
	assert.True(t, exists)
}
