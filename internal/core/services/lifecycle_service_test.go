package services

import (
	"context"
	"errors"
	"testing"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
	"roomgate/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type lifecycleFixture struct {
	service  ports.LifecycleService
	registry ports.RoomRegistry
	pending  ports.PendingQueue
	provider *fakeProvider
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	registry := memory.NewMemoryRoomRegistry()
	pending := memory.NewMemoryPendingQueue()
	provider := &fakeProvider{}
	service := NewLifecycleService(registry, pending, provider, newTestCollector(), zaptest.NewLogger(t).Sugar())

	return &lifecycleFixture{
		service:  service,
		registry: registry,
		pending:  pending,
		provider: provider,
	}
}

func (fx *lifecycleFixture) activate(t *testing.T, room domain.RoomName, host domain.Identity) {
	t.Helper()
	won, err := fx.registry.TryActivate(context.Background(), room, host)
	require.NoError(t, err)
	require.True(t, won)
}

func TestHandleEvent_HostLeft_TearsDown(t *testing.T) {
	fx := newLifecycleFixture(t)
	ctx := context.Background()

	fx.activate(t, "demo", "alice")
	require.NoError(t, fx.pending.Enqueue(ctx, "demo", domain.Guest{Identity: "bob"}))

	err := fx.service.HandleEvent(ctx, domain.LifecycleEvent{
		Type:        domain.EventParticipantLeft,
		Room:        "demo",
		Participant: "alice",
	})
	require.NoError(t, err)

	active, err := fx.registry.IsActive(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, active)

	queued, err := fx.pending.List(ctx, "demo")
	require.NoError(t, err)
	assert.Empty(t, queued)

	assert.Equal(t, []domain.RoomName{"demo"}, fx.provider.deleted)
}

func TestHandleEvent_GuestLeft_NoOp(t *testing.T) {
	fx := newLifecycleFixture(t)
	ctx := context.Background()

	fx.activate(t, "demo", "alice")

	err := fx.service.HandleEvent(ctx, domain.LifecycleEvent{
		Type:        domain.EventParticipantLeft,
		Room:        "demo",
		Participant: "bob",
	})
	require.NoError(t, err)

	active, err := fx.registry.IsActive(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, active)
	assert.Empty(t, fx.provider.deleted)
}

func TestHandleEvent_ParticipantLeft_UnknownRoom_NoOp(t *testing.T) {
	fx := newLifecycleFixture(t)

	err := fx.service.HandleEvent(context.Background(), domain.LifecycleEvent{
		Type:        domain.EventParticipantLeft,
		Room:        "ghost",
		Participant: "alice",
	})
	require.NoError(t, err)
	assert.Empty(t, fx.provider.deleted)
}

func TestHandleEvent_RoomFinished_Idempotent(t *testing.T) {
	fx := newLifecycleFixture(t)
	ctx := context.Background()

	fx.activate(t, "demo", "alice")

	event := domain.LifecycleEvent{Type: domain.EventRoomFinished, Room: "demo"}
	require.NoError(t, fx.service.HandleEvent(ctx, event))

	// At-least-once delivery: the duplicate converges without error.
	require.NoError(t, fx.service.HandleEvent(ctx, event))

	active, err := fx.registry.IsActive(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHandleEvent_ProviderFailure_StillDeactivates(t *testing.T) {
	fx := newLifecycleFixture(t)
	ctx := context.Background()

	fx.activate(t, "demo", "alice")
	fx.provider.deleteErr = errors.New("provider down")

	err := fx.service.HandleEvent(ctx, domain.LifecycleEvent{Type: domain.EventRoomFinished, Room: "demo"})
	require.NoError(t, err)

	active, err := fx.registry.IsActive(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, active, "local bookkeeping must converge even when the provider call fails")
}

func TestHandleEvent_UnknownType_Ignored(t *testing.T) {
	fx := newLifecycleFixture(t)

	err := fx.service.HandleEvent(context.Background(), domain.LifecycleEvent{
		Type: "track_published",
		Room: "demo",
	})
	require.NoError(t, err)
	assert.Empty(t, fx.provider.deleted)
}
