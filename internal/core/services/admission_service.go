package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
	apperrors "roomgate/pkg/errors"
	"roomgate/pkg/tracing"

	"go.uber.org/zap"
)

type admissionService struct {
	registry    ports.RoomRegistry
	pending     ports.PendingQueue
	handoff     ports.HandoffSlot
	filter      ports.MembershipFilter
	credentials ports.CredentialService
	lifecycle   ports.LifecycleService
	provider    ports.RoomProvider
	metrics     MetricsRecorder
	logger      *zap.SugaredLogger

	handoffTTL  time.Duration
	joinBaseURL string
}

func NewAdmissionService(
	registry ports.RoomRegistry,
	pending ports.PendingQueue,
	handoff ports.HandoffSlot,
	filter ports.MembershipFilter,
	credentials ports.CredentialService,
	lifecycle ports.LifecycleService,
	provider ports.RoomProvider,
	metrics MetricsRecorder,
	logger *zap.SugaredLogger,
	handoffTTL time.Duration,
	joinBaseURL string,
) ports.AdmissionService {
	return &admissionService{
		registry:    registry,
		pending:     pending,
		handoff:     handoff,
		filter:      filter,
		credentials: credentials,
		lifecycle:   lifecycle,
		provider:    provider,
		metrics:     metrics,
		logger:      logger,
		handoffTTL:  handoffTTL,
		joinBaseURL: joinBaseURL,
	}
}

// CreateRoom decides whether a room name may be activated. The filter add is
// persisted before the registry activation so a crash between the two leaves
// the filter in the safe "may think the room exists" state; the registry's
// atomic TryActivate is the only correctness gate.
func (s *admissionService) CreateRoom(ctx context.Context, room domain.RoomName, host domain.Identity) (*domain.SessionHandle, error) {
	if room == "" || host == "" {
		return nil, apperrors.NewInvalidInputError("room name and host identity are required")
	}

	ctx, span := tracing.TraceAdmission(ctx, "create_room", string(room), string(host))
	defer span.End()

	s.filter.Add(room)
	if err := s.filter.Persist(ctx); err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"failed to persist membership filter", http.StatusServiceUnavailable)
	}

	won, err := s.registry.TryActivate(ctx, room, host)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"room registry unavailable", http.StatusServiceUnavailable)
	}
	if !won {
		s.metrics.AdmissionDecision("conflict")
		err := apperrors.NewConflictError("room already exists")
		tracing.RecordError(ctx, err)
		return nil, err
	}

	credential, err := s.credentials.MintHostCredential(room, host)
	if err != nil {
		return nil, fmt.Errorf("failed to mint host credential: %w", err)
	}

	s.metrics.RoomCreated()
	s.logger.Infow("room created", "room", room, "host", host)

	return &domain.SessionHandle{
		Room:       room,
		Credential: credential,
		JoinURL:    fmt.Sprintf("%s/%s?host=true", s.joinBaseURL, room),
	}, nil
}

// CheckRoom reports whether a name is free. A filter miss is a definitive
// "never existed"; a filter hit defers to the registry, which corrects false
// positives.
func (s *admissionService) CheckRoom(ctx context.Context, room domain.RoomName) (bool, error) {
	if room == "" {
		return false, apperrors.NewInvalidInputError("room name is required")
	}

	if !s.filter.MayContain(room) {
		return true, nil
	}

	active, err := s.registry.IsActive(ctx, room)
	if err != nil {
		return false, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"room registry unavailable", http.StatusServiceUnavailable)
	}
	return !active, nil
}

func (s *admissionService) RequestJoin(ctx context.Context, room domain.RoomName, guest domain.Guest) (*domain.JoinResult, error) {
	if room == "" || guest.Identity == "" {
		return nil, apperrors.NewInvalidInputError("room name and guest identity are required")
	}

	ctx, span := tracing.TraceAdmission(ctx, "request_join", string(room), string(guest.Identity))
	defer span.End()

	// Cheap rejection without a round trip: no false negatives here.
	if !s.filter.MayContain(room) {
		s.metrics.AdmissionDecision("not_found")
		return nil, apperrors.NewNotFoundError("room")
	}

	active, err := s.registry.IsActive(ctx, room)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"room registry unavailable", http.StatusServiceUnavailable)
	}
	if !active {
		// Filter false positive, corrected by the authoritative check.
		s.metrics.AdmissionDecision("not_found")
		return nil, apperrors.NewNotFoundError("room")
	}

	approved, err := s.handoff.Exists(ctx, room, guest.Identity)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"handoff store unavailable", http.StatusServiceUnavailable)
	}
	if approved {
		s.metrics.AdmissionDecision("already_approved")
		return &domain.JoinResult{Status: domain.JoinAlreadyApproved}, nil
	}

	queued, err := s.pending.List(ctx, room)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"pending queue unavailable", http.StatusServiceUnavailable)
	}
	for _, entry := range queued {
		if entry.Identity == guest.Identity {
			s.metrics.AdmissionDecision("queued")
			return &domain.JoinResult{Status: domain.JoinQueued}, nil
		}
	}

	guest.EnqueuedAt = time.Now()
	if err := s.pending.Enqueue(ctx, room, guest); err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"pending queue unavailable", http.StatusServiceUnavailable)
	}

	s.metrics.AdmissionDecision("queued")
	s.logger.Infow("guest queued", "room", room, "identity", guest.Identity)
	return &domain.JoinResult{Status: domain.JoinQueued}, nil
}

func (s *admissionService) ListPending(ctx context.Context, room domain.RoomName) ([]domain.Guest, error) {
	if room == "" {
		return nil, apperrors.NewInvalidInputError("room name is required")
	}
	guests, err := s.pending.List(ctx, room)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"pending queue unavailable", http.StatusServiceUnavailable)
	}
	return guests, nil
}

// Approve removes the guest's pending entries and, only if at least one was
// removed, mints a credential into the handoff slot. Approving an identity
// with no pending entry is an idempotent no-op so retried approvals stay
// harmless.
func (s *admissionService) Approve(ctx context.Context, room domain.RoomName, identity domain.Identity) error {
	if room == "" || identity == "" {
		return apperrors.NewInvalidInputError("room name and identity are required")
	}

	// Capture the display name before removal; last-writer-wins on races.
	displayName := ""
	if queued, err := s.pending.List(ctx, room); err == nil {
		for _, entry := range queued {
			if entry.Identity == identity {
				displayName = entry.Name
				break
			}
		}
	}

	removed, err := s.pending.RemoveAll(ctx, room, identity)
	if err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"pending queue unavailable", http.StatusServiceUnavailable)
	}
	if removed == 0 {
		s.logger.Debugw("approve with no pending entry", "room", room, "identity", identity)
		return nil
	}

	credential, err := s.credentials.MintJoinCredential(room, identity, displayName)
	if err != nil {
		return fmt.Errorf("failed to mint join credential: %w", err)
	}

	if err := s.handoff.Put(ctx, room, identity, credential, s.handoffTTL); err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"handoff store unavailable", http.StatusServiceUnavailable)
	}

	s.metrics.CredentialIssued()
	s.logger.Infow("guest approved", "room", room, "identity", identity)
	return nil
}

func (s *admissionService) Reject(ctx context.Context, room domain.RoomName, identity domain.Identity) error {
	if room == "" || identity == "" {
		return apperrors.NewInvalidInputError("room name and identity are required")
	}

	if _, err := s.pending.RemoveAll(ctx, room, identity); err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"pending queue unavailable", http.StatusServiceUnavailable)
	}

	s.logger.Infow("guest rejected", "room", room, "identity", identity)
	return nil
}

// Claim atomically reads and deletes the handoff slot. A missing slot is the
// normal "not yet" answer so guests can keep polling.
func (s *admissionService) Claim(ctx context.Context, room domain.RoomName, identity domain.Identity) (*domain.ClaimResult, error) {
	if room == "" || identity == "" {
		return nil, apperrors.NewInvalidInputError("room name and identity are required")
	}

	credential, ok, err := s.handoff.Claim(ctx, room, identity)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"handoff store unavailable", http.StatusServiceUnavailable)
	}
	if !ok {
		return &domain.ClaimResult{Ready: false}, nil
	}

	s.metrics.CredentialClaimed()
	return &domain.ClaimResult{Ready: true, Credential: credential}, nil
}

// EndRoom lets the recorded host tear down the room through the same path the
// lifecycle reconciler uses.
func (s *admissionService) EndRoom(ctx context.Context, room domain.RoomName, caller domain.Identity) error {
	host, err := s.hostOf(ctx, room)
	if err != nil {
		return err
	}
	if host != caller {
		return apperrors.NewForbiddenError("only the host may end the room")
	}

	return s.lifecycle.HandleEvent(ctx, domain.LifecycleEvent{
		Type: domain.EventRoomFinished,
		Room: room,
	})
}

func (s *admissionService) RemoveParticipant(ctx context.Context, room domain.RoomName, caller, target domain.Identity) error {
	if target == "" {
		return apperrors.NewInvalidInputError("target identity is required")
	}

	host, err := s.hostOf(ctx, room)
	if err != nil {
		return err
	}
	if host != caller {
		return apperrors.NewForbiddenError("only the host may remove participants")
	}

	if err := s.provider.RemoveParticipant(ctx, room, target); err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"media provider unavailable", http.StatusServiceUnavailable)
	}

	s.logger.Infow("participant removed", "room", room, "identity", target)
	return nil
}

func (s *admissionService) hostOf(ctx context.Context, room domain.RoomName) (domain.Identity, error) {
	if room == "" {
		return "", apperrors.NewInvalidInputError("room name is required")
	}
	host, err := s.registry.GetHost(ctx, room)
	if err != nil {
		return "", apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable,
			"room registry unavailable", http.StatusServiceUnavailable)
	}
	if host == "" {
		return "", apperrors.NewNotFoundError("room")
	}
	return host, nil
}
