// Package ledger implements the transaction engine: the only code path that
// mutates account balances. Every mutation is a guarded write committed in a
// single storage unit; correctness under concurrency rests on those guards
// plus a bounded retry loop, never on an in-process lock spanning the
// operation.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cristyanmorais/desafio-gac/internal/directory"
	"github.com/cristyanmorais/desafio-gac/internal/events"
	"github.com/cristyanmorais/desafio-gac/internal/metrics"
	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
	repo "github.com/cristyanmorais/desafio-gac/internal/repository"
	"github.com/cristyanmorais/desafio-gac/internal/worker"
)

// maxAttempts bounds the retry loop on balance conflicts. After the budget
// is exhausted the caller sees models.ErrContention.
const maxAttempts = 3

type Engine struct {
	dir   directory.Directory
	store repo.Ledger
	pub   events.Publisher
	wp    *worker.Pool
}

func NewEngine(dir directory.Directory, store repo.Ledger, pub events.Publisher, wp *worker.Pool) *Engine {
	return &Engine{dir: dir, store: store, pub: pub, wp: wp}
}

// Transfer moves amount from sender to receiver. The amount is a decimal
// string parsed exactly once here, at the boundary.
func (e *Engine) Transfer(ctx context.Context, senderID, receiverID, amount string) (models.Transfer, error) {
	if senderID == receiverID {
		return models.Transfer{}, models.ErrSelfTransfer
	}
	amt, err := money.Parse(amount)
	if err != nil {
		metrics.TransfersFailed.WithLabelValues("invalid_amount").Inc()
		return models.Transfer{}, err
	}
	if !amt.IsPositive() {
		metrics.TransfersFailed.WithLabelValues("invalid_amount").Inc()
		return models.Transfer{}, models.ErrInvalidAmount
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		tr, err := e.attemptTransfer(ctx, senderID, receiverID, amt)
		if errors.Is(err, models.ErrBalanceConflict) {
			metrics.BalanceConflicts.Inc()
			continue
		}
		// a directory timeout is indistinguishable from contention
		if errors.Is(err, context.DeadlineExceeded) {
			continue
		}
		if err != nil {
			metrics.TransfersFailed.WithLabelValues(failReason(err)).Inc()
			return models.Transfer{}, err
		}
		metrics.TransfersTotal.Inc()
		e.emit(events.TopicTransferCompleted, events.TransferCompleted{
			TransferID: tr.ID,
			SenderID:   tr.SenderID,
			ReceiverID: tr.ReceiverID,
			Amount:     tr.Amount.Decimal(),
			OccurredAt: time.Now().UTC(),
		})
		return tr, nil
	}
	metrics.TransfersFailed.WithLabelValues("contention").Inc()
	return models.Transfer{}, models.ErrContention
}

func (e *Engine) attemptTransfer(ctx context.Context, senderID, receiverID string, amt money.Money) (models.Transfer, error) {
	sender, err := e.dir.Get(ctx, senderID)
	if err != nil {
		return models.Transfer{}, err
	}
	receiver, err := e.dir.Get(ctx, receiverID)
	if err != nil {
		return models.Transfer{}, err
	}

	if sender.Balance.Cmp(amt) < 0 {
		return models.Transfer{}, models.ErrInsufficientFunds
	}
	newSender, err := sender.Balance.Sub(amt)
	if err != nil {
		return models.Transfer{}, err
	}
	newReceiver, err := receiver.Balance.Add(amt)
	if err != nil {
		return models.Transfer{}, err
	}

	tr := models.Transfer{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amt,
		Status:     models.TransferCompleted,
	}
	err = e.store.CommitTransfer(ctx, tr,
		repo.BalanceSwap{AccountID: senderID, Expected: sender.Balance, New: newSender},
		repo.BalanceSwap{AccountID: receiverID, Expected: receiver.Balance, New: newReceiver},
	)
	if err != nil {
		return models.Transfer{}, err
	}
	return e.store.GetTransfer(ctx, tr.ID)
}

// ApplyReversal performs the compensating movement for a reversal being
// approved: transfer.Amount flows from the original receiver back to the
// original sender, the transfer flips to REVERSED and the reversal flips to
// APPROVED, all in one commit unit — if a concurrent rejection already
// resolved the reversal, nothing moves. Invoked only by the reversal
// workflow.
func (e *Engine) ApplyReversal(ctx context.Context, transferID, reversalID, approverID string) (models.Transfer, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tr, err := e.store.GetTransfer(ctx, transferID)
		if err != nil {
			return models.Transfer{}, err
		}
		if tr.Status != models.TransferCompleted {
			return models.Transfer{}, models.ErrAlreadyReversed
		}

		sender, err := e.dir.Get(ctx, tr.SenderID)
		if err != nil {
			return models.Transfer{}, err
		}
		receiver, err := e.dir.Get(ctx, tr.ReceiverID)
		if err != nil {
			return models.Transfer{}, err
		}

		// The receiver is now the paying side; its balance must cover the
		// original amount or the invariant balance >= 0 would break.
		if receiver.Balance.Cmp(tr.Amount) < 0 {
			return models.Transfer{}, models.ErrInsufficientFunds
		}
		newReceiver, err := receiver.Balance.Sub(tr.Amount)
		if err != nil {
			return models.Transfer{}, err
		}
		newSender, err := sender.Balance.Add(tr.Amount)
		if err != nil {
			return models.Transfer{}, err
		}

		err = e.store.CommitReversal(ctx, tr.ID, reversalID, approverID,
			repo.BalanceSwap{AccountID: tr.ReceiverID, Expected: receiver.Balance, New: newReceiver},
			repo.BalanceSwap{AccountID: tr.SenderID, Expected: sender.Balance, New: newSender},
		)
		if errors.Is(err, models.ErrBalanceConflict) || errors.Is(err, context.DeadlineExceeded) {
			metrics.BalanceConflicts.Inc()
			continue
		}
		if err != nil {
			return models.Transfer{}, err
		}
		return e.store.GetTransfer(ctx, tr.ID)
	}
	return models.Transfer{}, models.ErrContention
}

func (e *Engine) GetTransfer(ctx context.Context, id string) (models.Transfer, error) {
	return e.store.GetTransfer(ctx, id)
}

func (e *Engine) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Transfer, error) {
	return e.store.ListByAccount(ctx, accountID, limit, offset)
}

func (e *Engine) emit(topic string, event any) {
	e.wp.Submit(func() {
		if err := e.pub.Publish(topic, event); err != nil {
			slog.Error("event publish failed", "topic", topic, "err", err)
		}
	})
}

func failReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, models.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, money.ErrOverflow):
		return "overflow"
	}
	return "other"
}
