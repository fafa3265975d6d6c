package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/cristyanmorais/desafio-gac/internal/repository"
)

type Repositories struct {
	Ledger    repo.Ledger
	Reversals repo.Reversals
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Ledger:    &ledgerRepo{pool},
		Reversals: &reversalsRepo{pool},
	}
}
