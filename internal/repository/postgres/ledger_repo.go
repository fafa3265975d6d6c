package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
	repo "github.com/cristyanmorais/desafio-gac/internal/repository"
)

type ledgerRepo struct{ pool *pgxpool.Pool }

// swapBalance performs the guarded balance write inside tx. The WHERE clause
// is the compare-and-set: zero rows affected means the balance moved since
// it was read.
func swapBalance(ctx context.Context, tx pgx.Tx, s repo.BalanceSwap) error {
	tag, err := tx.Exec(ctx,
		`UPDATE accounts
		    SET balance=$3, updated_at=now()
		  WHERE id=$1 AND balance=$2`,
		s.AccountID, s.Expected.Cents(), s.New.Cents(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrBalanceConflict
	}
	return nil
}

func (r *ledgerRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapSerialization(err)
	}
	return nil
}

// mapSerialization folds serialization failures into the conflict error so
// the engine's retry loop handles both the same way.
func mapSerialization(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return models.ErrBalanceConflict
	}
	return err
}

func (r *ledgerRepo) CommitTransfer(ctx context.Context, tr models.Transfer, debit, credit repo.BalanceSwap) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := swapBalance(ctx, tx, debit); err != nil {
			return mapSerialization(err)
		}
		if err := swapBalance(ctx, tx, credit); err != nil {
			return mapSerialization(err)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO transfers(id, sender_id, receiver_id, amount, status)
			 VALUES($1,$2,$3,$4,$5)`,
			tr.ID, tr.SenderID, tr.ReceiverID, tr.Amount.Cents(), tr.Status,
		)
		return mapSerialization(err)
	})
}

func (r *ledgerRepo) CommitReversal(ctx context.Context, transferID, reversalID, approverID string, debit, credit repo.BalanceSwap) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		// Both status guards live in the same unit as the balance writes:
		// a concurrent double-reversal loses on the transfer row, a
		// concurrent reject loses on the reversal row, and either failure
		// rolls the whole unit back.
		tag, err := tx.Exec(ctx,
			`UPDATE transfers SET status=$2 WHERE id=$1 AND status=$3`,
			transferID, models.TransferReversed, models.TransferCompleted,
		)
		if err != nil {
			return mapSerialization(err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrAlreadyReversed
		}
		tag, err = tx.Exec(ctx,
			`UPDATE reversals SET status=$2, approver_id=$3 WHERE id=$1 AND status=$4`,
			reversalID, models.ReversalApproved, approverID, models.ReversalPending,
		)
		if err != nil {
			return mapSerialization(err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrAlreadyResolved
		}
		if err := swapBalance(ctx, tx, debit); err != nil {
			return mapSerialization(err)
		}
		return mapSerialization(swapBalance(ctx, tx, credit))
	})
}

func (r *ledgerRepo) GetTransfer(ctx context.Context, id string) (models.Transfer, error) {
	var (
		tr    models.Transfer
		cents int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, sender_id, receiver_id, amount, status, created_at
		   FROM transfers WHERE id=$1`, id,
	).Scan(&tr.ID, &tr.SenderID, &tr.ReceiverID, &cents, &tr.Status, &tr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transfer{}, models.ErrTransferNotFound
	}
	if err != nil {
		return models.Transfer{}, err
	}
	tr.Amount = money.FromCents(cents)
	return tr, nil
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sender_id, receiver_id, amount, status, created_at
		   FROM transfers
		  WHERE sender_id=$1 OR receiver_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transfer
	for rows.Next() {
		var (
			tr    models.Transfer
			cents int64
		)
		if err := rows.Scan(&tr.ID, &tr.SenderID, &tr.ReceiverID, &cents, &tr.Status, &tr.CreatedAt); err != nil {
			return nil, err
		}
		tr.Amount = money.FromCents(cents)
		out = append(out, tr)
	}
	return out, rows.Err()
}
