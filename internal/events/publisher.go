package events

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cristyanmorais/desafio-gac/internal/models"
)

const (
	TopicTransferCompleted = "transfer_completed"
	TopicReversalRequested = "reversal_requested"
	TopicReversalResolved  = "reversal_resolved"
)

// Publisher receives domain notifications. Publishing is fire-and-forget
// from the engine's perspective: a failed publish never rolls back the
// financial state it describes.
type Publisher interface {
	Publish(topic string, event any) error
}

type TransferCompleted struct {
	TransferID string          `json:"transfer_id"`
	SenderID   string          `json:"sender_id"`
	ReceiverID string          `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type ReversalRequested struct {
	ReversalID  string    `json:"reversal_id"`
	TransferID  string    `json:"transfer_id"`
	RequesterID string    `json:"requester_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type ReversalResolved struct {
	ReversalID string                `json:"reversal_id"`
	TransferID string                `json:"transfer_id"`
	ApproverID string                `json:"approver_id"`
	Status     models.ReversalStatus `json:"status"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// LogPublisher writes events to the log. Used when no broker is configured
// and as the fallback of last resort.
type LogPublisher struct{}

func (LogPublisher) Publish(topic string, event any) error {
	slog.Info("event", "topic", topic, "payload", event)
	return nil
}
