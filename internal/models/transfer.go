package models

import (
	"time"

	"github.com/cristyanmorais/desafio-gac/internal/money"
)

type TransferStatus string

const (
	TransferCompleted TransferStatus = "COMPLETED"
	TransferReversed  TransferStatus = "REVERSED"
)

// Transfer is immutable after creation except for Status, which moves
// COMPLETED -> REVERSED exactly once via an approved reversal.
type Transfer struct {
	ID         string         `json:"id"`
	SenderID   string         `json:"sender_id"`
	ReceiverID string         `json:"receiver_id"`
	Amount     money.Money    `json:"amount"`
	Status     TransferStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Counterparty returns the other party of the transfer, or "" when the
// given account is not a party at all.
func (t Transfer) Counterparty(accountID string) string {
	switch accountID {
	case t.SenderID:
		return t.ReceiverID
	case t.ReceiverID:
		return t.SenderID
	}
	return ""
}
