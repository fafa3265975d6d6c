// Package reversal implements the two-party undo state machine layered on
// top of completed transfers. Approval is counterparty-based: the party who
// did not request the reversal must approve or reject it, so no party can
// unilaterally undo a transfer.
package reversal

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cristyanmorais/desafio-gac/internal/directory"
	"github.com/cristyanmorais/desafio-gac/internal/events"
	"github.com/cristyanmorais/desafio-gac/internal/ledger"
	"github.com/cristyanmorais/desafio-gac/internal/metrics"
	"github.com/cristyanmorais/desafio-gac/internal/models"
	repo "github.com/cristyanmorais/desafio-gac/internal/repository"
	"github.com/cristyanmorais/desafio-gac/internal/worker"
)

type Workflow struct {
	dir       directory.Directory
	engine    *ledger.Engine
	reversals repo.Reversals
	pub       events.Publisher
	wp        *worker.Pool
}

func NewWorkflow(dir directory.Directory, engine *ledger.Engine, reversals repo.Reversals, pub events.Publisher, wp *worker.Pool) *Workflow {
	return &Workflow{dir: dir, engine: engine, reversals: reversals, pub: pub, wp: wp}
}

// Request opens a PENDING reversal against a completed transfer. Only a
// party to the transfer may request; a transfer carries at most one active
// reversal at a time.
func (w *Workflow) Request(ctx context.Context, transferID, requesterID string) (models.Reversal, error) {
	tr, err := w.engine.GetTransfer(ctx, transferID)
	if err != nil {
		return models.Reversal{}, err
	}
	if _, err := w.dir.Get(ctx, requesterID); err != nil {
		return models.Reversal{}, err
	}
	if tr.Status == models.TransferReversed {
		return models.Reversal{}, models.ErrAlreadyReversed
	}
	if tr.Counterparty(requesterID) == "" {
		return models.Reversal{}, models.ErrUnauthorized
	}

	rv, err := w.reversals.Create(ctx, models.Reversal{
		ID:          uuid.NewString(),
		TransferID:  transferID,
		RequesterID: requesterID,
		Status:      models.ReversalPending,
	})
	if err != nil {
		return models.Reversal{}, err
	}
	w.emit(events.TopicReversalRequested, events.ReversalRequested{
		ReversalID:  rv.ID,
		TransferID:  rv.TransferID,
		RequesterID: rv.RequesterID,
		OccurredAt:  time.Now().UTC(),
	})
	return rv, nil
}

// Approve applies the compensating movement and the PENDING -> APPROVED
// flip as one commit unit; a concurrent rejection makes the whole unit fail
// with no balance movement. If the movement fails the reversal stays
// PENDING and the error propagates, so the approver can retry.
func (w *Workflow) Approve(ctx context.Context, reversalID, approverID string) (models.Reversal, error) {
	rv, err := w.authorize(ctx, reversalID, approverID)
	if err != nil {
		return models.Reversal{}, err
	}

	if _, err := w.engine.ApplyReversal(ctx, rv.TransferID, rv.ID, approverID); err != nil {
		return models.Reversal{}, err
	}
	resolved, err := w.reversals.Get(ctx, rv.ID)
	if err != nil {
		return models.Reversal{}, err
	}
	metrics.ReversalsTotal.WithLabelValues("approved").Inc()
	w.emitResolved(resolved, approverID)
	return resolved, nil
}

// Reject terminally declines a pending reversal. No balances move; the
// transfer becomes eligible for a new reversal request.
func (w *Workflow) Reject(ctx context.Context, reversalID, approverID string) (models.Reversal, error) {
	rv, err := w.authorize(ctx, reversalID, approverID)
	if err != nil {
		return models.Reversal{}, err
	}

	resolved, err := w.reversals.Resolve(ctx, rv.ID, models.ReversalRejected, approverID)
	if err != nil {
		return models.Reversal{}, err
	}
	metrics.ReversalsTotal.WithLabelValues("rejected").Inc()
	w.emitResolved(resolved, approverID)
	return resolved, nil
}

func (w *Workflow) Get(ctx context.Context, reversalID string) (models.Reversal, error) {
	return w.reversals.Get(ctx, reversalID)
}

// authorize loads the reversal and checks that the caller is the
// counterparty to the requester on the underlying transfer.
func (w *Workflow) authorize(ctx context.Context, reversalID, approverID string) (models.Reversal, error) {
	rv, err := w.reversals.Get(ctx, reversalID)
	if err != nil {
		return models.Reversal{}, err
	}
	if rv.Status != models.ReversalPending {
		return models.Reversal{}, models.ErrAlreadyResolved
	}
	tr, err := w.engine.GetTransfer(ctx, rv.TransferID)
	if err != nil {
		return models.Reversal{}, err
	}
	if tr.Counterparty(rv.RequesterID) != approverID {
		return models.Reversal{}, models.ErrUnauthorized
	}
	return rv, nil
}

func (w *Workflow) emitResolved(rv models.Reversal, approverID string) {
	w.emit(events.TopicReversalResolved, events.ReversalResolved{
		ReversalID: rv.ID,
		TransferID: rv.TransferID,
		ApproverID: approverID,
		Status:     rv.Status,
		OccurredAt: time.Now().UTC(),
	})
}

func (w *Workflow) emit(topic string, event any) {
	w.wp.Submit(func() {
		if err := w.pub.Publish(topic, event); err != nil {
			slog.Error("event publish failed", "topic", topic, "err", err)
		}
	})
}
