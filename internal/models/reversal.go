package models

import "time"

type ReversalStatus string

const (
	ReversalPending  ReversalStatus = "PENDING"
	ReversalApproved ReversalStatus = "APPROVED"
	ReversalRejected ReversalStatus = "REJECTED"
)

// Reversal is a two-party undo request against a completed transfer.
// RequesterID is always one of the transfer's parties; ApproverID is set on
// resolution and is always the other party.
type Reversal struct {
	ID          string         `json:"id"`
	TransferID  string         `json:"transfer_id"`
	RequesterID string         `json:"requester_id"`
	ApproverID  *string        `json:"approver_id,omitempty"`
	Status      ReversalStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Active reports whether the reversal still blocks new reversal requests
// for its transfer. REJECTED is terminal and frees the transfer.
func (r Reversal) Active() bool {
	return r.Status == ReversalPending || r.Status == ReversalApproved
}
