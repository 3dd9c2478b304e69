package ports

import (
	"context"
	"time"

	"roomgate/internal/core/domain"
)

// RoomRegistry is the authoritative store of active rooms and their hosts.
// TryActivate is the single correctness gate for concurrent creates.
type RoomRegistry interface {
	// TryActivate atomically tests-and-sets room activation. Returns true if
	// this caller won, false if the room was already active.
	TryActivate(ctx context.Context, room domain.RoomName, host domain.Identity) (bool, error)
	IsActive(ctx context.Context, room domain.RoomName) (bool, error)
	// GetHost returns the recorded host identity, empty when none.
	GetHost(ctx context.Context, room domain.RoomName) (domain.Identity, error)
	// Deactivate removes active membership and the host association.
	// Idempotent: safe on an already-inactive room.
	Deactivate(ctx context.Context, room domain.RoomName) error
}

// PendingQueue holds per-room ordered guest entries awaiting host approval.
type PendingQueue interface {
	Enqueue(ctx context.Context, room domain.RoomName, guest domain.Guest) error
	List(ctx context.Context, room domain.RoomName) ([]domain.Guest, error)
	// RemoveAll removes every entry matching identity and reports how many
	// were removed. Zero removals is not an error.
	RemoveAll(ctx context.Context, room domain.RoomName, identity domain.Identity) (int, error)
	// Drop discards the whole queue for a room. Idempotent.
	Drop(ctx context.Context, room domain.RoomName) error
}

// HandoffSlot is the single-use, TTL-bounded credential delivery cell keyed by
// (room, identity).
type HandoffSlot interface {
	Put(ctx context.Context, room domain.RoomName, identity domain.Identity, credential string, ttl time.Duration) error
	Exists(ctx context.Context, room domain.RoomName, identity domain.Identity) (bool, error)
	// Claim atomically reads and deletes the slot. ok=false means no
	// credential is waiting (not yet approved, already claimed, or expired).
	Claim(ctx context.Context, room domain.RoomName, identity domain.Identity) (string, bool, error)
}

// SnapshotStore persists opaque blobs, used for the membership filter snapshot.
type SnapshotStore interface {
	// Get returns ok=false when no blob exists under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, blob []byte) error
}
