package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cristyanmorais/desafio-gac/internal/models"
)

type reversalsRepo struct{ pool *pgxpool.Pool }

func (r *reversalsRepo) Create(ctx context.Context, rv models.Reversal) (models.Reversal, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reversals(id, transfer_id, requester_id, status)
		 VALUES($1,$2,$3,$4)
		 RETURNING created_at`,
		rv.ID, rv.TransferID, rv.RequesterID, rv.Status,
	).Scan(&rv.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// partial unique index on active reversals per transfer
		return models.Reversal{}, models.ErrActiveReversal
	}
	if err != nil {
		return models.Reversal{}, err
	}
	return rv, nil
}

func (r *reversalsRepo) Get(ctx context.Context, id string) (models.Reversal, error) {
	var rv models.Reversal
	err := r.pool.QueryRow(ctx,
		`SELECT id, transfer_id, requester_id, approver_id, status, created_at
		   FROM reversals WHERE id=$1`, id,
	).Scan(&rv.ID, &rv.TransferID, &rv.RequesterID, &rv.ApproverID, &rv.Status, &rv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Reversal{}, models.ErrReversalNotFound
	}
	if err != nil {
		return models.Reversal{}, err
	}
	return rv, nil
}

func (r *reversalsRepo) Resolve(ctx context.Context, id string, status models.ReversalStatus, approverID string) (models.Reversal, error) {
	var rv models.Reversal
	err := r.pool.QueryRow(ctx,
		`UPDATE reversals
		    SET status=$2, approver_id=$3
		  WHERE id=$1 AND status=$4
		  RETURNING id, transfer_id, requester_id, approver_id, status, created_at`,
		id, status, approverID, models.ReversalPending,
	).Scan(&rv.ID, &rv.TransferID, &rv.RequesterID, &rv.ApproverID, &rv.Status, &rv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// either unknown or no longer PENDING; disambiguate for the caller
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return models.Reversal{}, getErr
		}
		return models.Reversal{}, models.ErrAlreadyResolved
	}
	if err != nil {
		return models.Reversal{}, err
	}
	return rv, nil
}
