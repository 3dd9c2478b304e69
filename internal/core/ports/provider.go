package ports

import (
	"context"

	"roomgate/internal/core/domain"
)

// RoomProvider is the external media-session provider boundary. Both
// operations must tolerate "already gone": deleting a finished room or
// removing a departed participant is not an error worth surfacing.
type RoomProvider interface {
	DeleteRoom(ctx context.Context, room domain.RoomName) error
	RemoveParticipant(ctx context.Context, room domain.RoomName, identity domain.Identity) error
}
