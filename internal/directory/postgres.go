package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
)

type pgDirectory struct{ pool *pgxpool.Pool }

func NewPostgres(pool *pgxpool.Pool) Directory {
	return &pgDirectory{pool: pool}
}

func (d *pgDirectory) Get(ctx context.Context, id string) (models.Account, error) {
	return d.one(ctx,
		`SELECT id, name, email, password_hash, balance, created_at, updated_at
		   FROM accounts WHERE id=$1`, id)
}

func (d *pgDirectory) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	return d.one(ctx,
		`SELECT id, name, email, password_hash, balance, created_at, updated_at
		   FROM accounts WHERE email=$1`, email)
}

func (d *pgDirectory) one(ctx context.Context, q string, arg any) (models.Account, error) {
	var (
		a     models.Account
		cents int64
	)
	err := d.pool.QueryRow(ctx, q, arg).
		Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &cents, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	a.Balance = money.FromCents(cents)
	return a, nil
}

func (d *pgDirectory) Create(ctx context.Context, name, email, password string, opening money.Money) (models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, err
	}
	id := uuid.NewString()
	_, err = d.pool.Exec(ctx,
		`INSERT INTO accounts(id, name, email, password_hash, balance) VALUES($1,$2,$3,$4,$5)`,
		id, name, email, string(hash), opening.Cents(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return models.Account{}, models.ErrEmailTaken
	}
	if err != nil {
		return models.Account{}, err
	}
	return d.Get(ctx, id)
}

func (d *pgDirectory) List(ctx context.Context) ([]models.Account, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, email, password_hash, balance, created_at, updated_at
		   FROM accounts ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var (
			a     models.Account
			cents int64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &cents, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Balance = money.FromCents(cents)
		out = append(out, a)
	}
	return out, rows.Err()
}
