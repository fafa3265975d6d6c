package repository

import (
	"context"

	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
)

// BalanceSwap is a guarded balance write: the new balance is stored only if
// the account's balance still equals Expected at commit time. This is the
// compare-and-set primitive the engine relies on instead of holding a lock
// across the whole operation.
type BalanceSwap struct {
	AccountID string
	Expected  money.Money
	New       money.Money
}

// Ledger owns transfer rows and the atomic commit units that mutate
// balances. Both Commit methods apply every write as one unit: all commit
// together or none do.
type Ledger interface {
	// CommitTransfer applies both guarded balance writes and inserts the
	// transfer row. Returns models.ErrBalanceConflict when either guard
	// fails, leaving no partial state.
	CommitTransfer(ctx context.Context, tr models.Transfer, debit, credit BalanceSwap) error

	// CommitReversal applies the compensating balance writes, flips the
	// transfer COMPLETED -> REVERSED and the reversal PENDING -> APPROVED,
	// all under one guard set. Returns models.ErrAlreadyReversed if the
	// transfer is no longer COMPLETED, models.ErrAlreadyResolved if the
	// reversal lost a resolution race (a concurrent reject wins and no
	// balances move), models.ErrBalanceConflict on a lost balance race.
	CommitReversal(ctx context.Context, transferID, reversalID, approverID string, debit, credit BalanceSwap) error

	GetTransfer(ctx context.Context, id string) (models.Transfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Transfer, error)
}

// Reversals owns reversal rows.
type Reversals interface {
	// Create inserts a PENDING reversal. Returns models.ErrActiveReversal
	// if the transfer already has a PENDING or APPROVED reversal.
	Create(ctx context.Context, rv models.Reversal) (models.Reversal, error)

	Get(ctx context.Context, id string) (models.Reversal, error)

	// Resolve moves a PENDING reversal to APPROVED or REJECTED and records
	// the approver. Returns models.ErrAlreadyResolved if the reversal is
	// not PENDING anymore.
	Resolve(ctx context.Context, id string, status models.ReversalStatus, approverID string) (models.Reversal, error)
}
