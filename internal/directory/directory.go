package directory

import (
	"context"

	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
)

// Directory is the account lookup surface the ledger core depends on.
// It never writes balances: the only balance write path is the guarded
// update inside a repository commit unit (repository.Ledger).
type Directory interface {
	Get(ctx context.Context, id string) (models.Account, error)
	GetByEmail(ctx context.Context, email string) (models.Account, error)
	Create(ctx context.Context, name, email, password string, opening money.Money) (models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
}
