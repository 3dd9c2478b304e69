package ports

import (
	"context"

	"roomgate/internal/core/domain"
)

// MembershipFilter is an approximate set of room names ever created. No false
// negatives; false positives are masked by the authoritative registry.
type MembershipFilter interface {
	Add(name domain.RoomName)
	MayContain(name domain.RoomName) bool
	// Persist writes the current snapshot to durable storage. Every Add must
	// be persisted before the creating request is acknowledged.
	Persist(ctx context.Context) error
	// Reset replaces the filter with a fresh empty one and persists it.
	// Administrative operation only; rooms ending never shrink the filter.
	Reset(ctx context.Context) error
}

// AdmissionService implements room creation, join requests, host decisions and
// credential claims.
type AdmissionService interface {
	CreateRoom(ctx context.Context, room domain.RoomName, host domain.Identity) (*domain.SessionHandle, error)
	// CheckRoom reports whether a room name is available for creation.
	CheckRoom(ctx context.Context, room domain.RoomName) (bool, error)
	RequestJoin(ctx context.Context, room domain.RoomName, guest domain.Guest) (*domain.JoinResult, error)
	ListPending(ctx context.Context, room domain.RoomName) ([]domain.Guest, error)
	Approve(ctx context.Context, room domain.RoomName, identity domain.Identity) error
	Reject(ctx context.Context, room domain.RoomName, identity domain.Identity) error
	Claim(ctx context.Context, room domain.RoomName, identity domain.Identity) (*domain.ClaimResult, error)
	// EndRoom tears down a room on behalf of its host.
	EndRoom(ctx context.Context, room domain.RoomName, caller domain.Identity) error
	// RemoveParticipant force-disconnects one participant, host only.
	RemoveParticipant(ctx context.Context, room domain.RoomName, caller, target domain.Identity) error
}

// LifecycleService converges local bookkeeping to provider-reported events.
type LifecycleService interface {
	// HandleEvent processes one notification idempotently. Unknown rooms and
	// duplicate deliveries are not errors.
	HandleEvent(ctx context.Context, event domain.LifecycleEvent) error
}

// CredentialService mints signed, time-bounded join credentials.
type CredentialService interface {
	MintHostCredential(room domain.RoomName, host domain.Identity) (string, error)
	MintJoinCredential(room domain.RoomName, identity domain.Identity, name string) (string, error)
}
