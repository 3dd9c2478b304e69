package domain

// RoomName is a unique, user-chosen room identifier.
type RoomName string

// Identity is the verified identity of a caller (host or guest).
type Identity string

// Room is the bookkeeping view of a provider-hosted room. Active and Host are
// derived from registry membership; the media session itself lives with the
// provider.
type Room struct {
	Name   RoomName `json:"name"`
	Host   Identity `json:"host,omitempty"`
	Active bool     `json:"active"`
}

// SessionHandle is returned to a host after a successful room creation.
type SessionHandle struct {
	Room       RoomName `json:"room"`
	Credential string   `json:"credential"`
	JoinURL    string   `json:"join_url"`
}
