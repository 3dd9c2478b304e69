package domain

import "time"

// Guest is one pending admission entry: a guest waiting for host approval.
type Guest struct {
	Identity   Identity  `json:"identity"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// JoinStatus discriminates the outcome of a join request.
type JoinStatus string

const (
	// JoinQueued means the guest was appended to the pending queue and should
	// poll for a credential.
	JoinQueued JoinStatus = "queued"
	// JoinAlreadyApproved means a credential is already waiting in the
	// handoff slot; the guest should claim it instead of queueing again.
	JoinAlreadyApproved JoinStatus = "already_approved"
)

// JoinResult is the tagged result of RequestJoin.
type JoinResult struct {
	Status JoinStatus `json:"status"`
}

// ClaimResult is the tagged result of a credential claim poll. Ready=false is
// the normal "not yet" answer, not an error.
type ClaimResult struct {
	Ready      bool   `json:"ready"`
	Credential string `json:"credential,omitempty"`
}
