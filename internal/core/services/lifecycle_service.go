package services

import (
	"context"
	"fmt"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
	"roomgate/pkg/tracing"

	"go.uber.org/zap"
)

type lifecycleService struct {
	registry ports.RoomRegistry
	pending  ports.PendingQueue
	provider ports.RoomProvider
	metrics  MetricsRecorder
	logger   *zap.SugaredLogger
}

// NewLifecycleService builds the reconciler that converges local bookkeeping
// to provider-reported lifecycle events.
func NewLifecycleService(
	registry ports.RoomRegistry,
	pending ports.PendingQueue,
	provider ports.RoomProvider,
	metrics MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.LifecycleService {
	return &lifecycleService{
		registry: registry,
		pending:  pending,
		provider: provider,
		metrics:  metrics,
		logger:   logger,
	}
}

// HandleEvent processes one notification. Delivery is at-least-once and may
// be out of order, so every step tolerates "already gone": a duplicate
// room_finished, or a participant_left for a room another path already
// deactivated, converges without error.
func (s *lifecycleService) HandleEvent(ctx context.Context, event domain.LifecycleEvent) error {
	ctx, span := tracing.TraceLifecycleEvent(ctx, string(event.Type), string(event.Room))
	defer span.End()

	s.metrics.WebhookEvent(string(event.Type))

	switch event.Type {
	case domain.EventParticipantLeft:
		host, err := s.registry.GetHost(ctx, event.Room)
		if err != nil {
			return fmt.Errorf("failed to look up host for %q: %w", event.Room, err)
		}
		if host == "" || event.Participant != host {
			// Guest departure, or room already gone. Nothing to reconcile.
			return nil
		}
		return s.teardown(ctx, event.Room, "host_left")

	case domain.EventRoomFinished:
		return s.teardown(ctx, event.Room, "finished")

	default:
		s.logger.Debugw("ignoring lifecycle event", "type", event.Type, "room", event.Room)
		return nil
	}
}

// teardown force-ends the provider session so remaining guests are not left
// in a hostless room, then clears local bookkeeping. The filter is never
// shrunk here.
func (s *lifecycleService) teardown(ctx context.Context, room domain.RoomName, reason string) error {
	if err := s.provider.DeleteRoom(ctx, room); err != nil {
		// The session may already be gone; deactivation must still proceed.
		s.logger.Warnw("provider room delete failed", "room", room, "error", err)
	}

	if err := s.registry.Deactivate(ctx, room); err != nil {
		return fmt.Errorf("failed to deactivate room %q: %w", room, err)
	}

	if err := s.pending.Drop(ctx, room); err != nil {
		s.logger.Warnw("failed to drop pending queue", "room", room, "error", err)
	}

	s.metrics.RoomEnded(reason)
	s.logger.Infow("room torn down", "room", room, "reason", reason)
	return nil
}
