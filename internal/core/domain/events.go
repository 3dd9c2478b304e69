package domain

// LifecycleEventType identifies a provider lifecycle notification.
type LifecycleEventType string

const (
	EventParticipantLeft LifecycleEventType = "participant_left"
	EventRoomFinished    LifecycleEventType = "room_finished"
)

// LifecycleEvent is one asynchronous notification from the media provider.
// Delivery is at-least-once and possibly out of order; handling must be
// idempotent.
type LifecycleEvent struct {
	Type        LifecycleEventType `json:"event"`
	Room        RoomName           `json:"room"`
	Participant Identity           `json:"participant,omitempty"`
}
