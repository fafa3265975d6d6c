// Package memory is the in-process reference implementation of the account
// directory and the ledger/reversal stores. A single store mutex plays the
// role of the database commit unit: every guard the postgres backend
// expresses in SQL is evaluated here under the same lock that applies the
// writes, so both backends expose identical observable semantics.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
	repo "github.com/cristyanmorais/desafio-gac/internal/repository"
)

type Store struct {
	mu        sync.Mutex
	accounts  map[string]models.Account
	transfers map[string]models.Transfer
	reversals map[string]models.Reversal
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]models.Account),
		transfers: make(map[string]models.Transfer),
		reversals: make(map[string]models.Reversal),
	}
}

// ---- directory.Directory ----

func (s *Store) Get(ctx context.Context, id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, models.ErrAccountNotFound
}

func (s *Store) Create(ctx context.Context, name, email, password string, opening money.Money) (models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return models.Account{}, models.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	a := models.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Balance:      opening,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) List(ctx context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- repository.Ledger ----

func (s *Store) swapBalance(sw repo.BalanceSwap) error {
	a, ok := s.accounts[sw.AccountID]
	if !ok {
		return models.ErrAccountNotFound
	}
	if a.Balance.Cmp(sw.Expected) != 0 {
		return models.ErrBalanceConflict
	}
	a.Balance = sw.New
	a.UpdatedAt = time.Now().UTC()
	s.accounts[sw.AccountID] = a
	return nil
}

func (s *Store) CommitTransfer(ctx context.Context, tr models.Transfer, debit, credit repo.BalanceSwap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Validate both guards before touching anything so a failed commit
	// leaves no partial state.
	for _, sw := range []repo.BalanceSwap{debit, credit} {
		a, ok := s.accounts[sw.AccountID]
		if !ok {
			return models.ErrAccountNotFound
		}
		if a.Balance.Cmp(sw.Expected) != 0 {
			return models.ErrBalanceConflict
		}
	}
	_ = s.swapBalance(debit)
	_ = s.swapBalance(credit)
	tr.CreatedAt = time.Now().UTC()
	s.transfers[tr.ID] = tr
	return nil
}

func (s *Store) CommitReversal(ctx context.Context, transferID, reversalID, approverID string, debit, credit repo.BalanceSwap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.transfers[transferID]
	if !ok {
		return models.ErrTransferNotFound
	}
	if tr.Status != models.TransferCompleted {
		return models.ErrAlreadyReversed
	}
	// The reversal flip shares the commit unit with the balance writes so
	// a concurrent reject can never race money past a recorded rejection.
	rv, ok := s.reversals[reversalID]
	if !ok {
		return models.ErrReversalNotFound
	}
	if rv.Status != models.ReversalPending {
		return models.ErrAlreadyResolved
	}
	for _, sw := range []repo.BalanceSwap{debit, credit} {
		a, ok := s.accounts[sw.AccountID]
		if !ok {
			return models.ErrAccountNotFound
		}
		if a.Balance.Cmp(sw.Expected) != 0 {
			return models.ErrBalanceConflict
		}
	}
	_ = s.swapBalance(debit)
	_ = s.swapBalance(credit)
	tr.Status = models.TransferReversed
	s.transfers[transferID] = tr
	rv.Status = models.ReversalApproved
	rv.ApproverID = &approverID
	s.reversals[reversalID] = rv
	return nil
}

func (s *Store) GetTransfer(ctx context.Context, id string) (models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.transfers[id]
	if !ok {
		return models.Transfer{}, models.ErrTransferNotFound
	}
	return tr, nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Transfer
	for _, tr := range s.transfers {
		if tr.SenderID == accountID || tr.ReceiverID == accountID {
			all = append(all, tr)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ---- repository.Reversals ----

func (s *Store) CreateReversal(ctx context.Context, rv models.Reversal) (models.Reversal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reversals {
		if existing.TransferID == rv.TransferID && existing.Active() {
			return models.Reversal{}, models.ErrActiveReversal
		}
	}
	rv.CreatedAt = time.Now().UTC()
	s.reversals[rv.ID] = rv
	return rv, nil
}

func (s *Store) GetReversal(ctx context.Context, id string) (models.Reversal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reversals[id]
	if !ok {
		return models.Reversal{}, models.ErrReversalNotFound
	}
	return rv, nil
}

func (s *Store) ResolveReversal(ctx context.Context, id string, status models.ReversalStatus, approverID string) (models.Reversal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reversals[id]
	if !ok {
		return models.Reversal{}, models.ErrReversalNotFound
	}
	if rv.Status != models.ReversalPending {
		return models.Reversal{}, models.ErrAlreadyResolved
	}
	rv.Status = status
	rv.ApproverID = &approverID
	s.reversals[id] = rv
	return rv, nil
}

// Reversals adapts the store to repository.Reversals; the method names on
// Store itself are qualified to avoid clashing with repository.Ledger's Get.
func (s *Store) Reversals() repo.Reversals { return reversalsView{s} }

type reversalsView struct{ s *Store }

func (v reversalsView) Create(ctx context.Context, rv models.Reversal) (models.Reversal, error) {
	return v.s.CreateReversal(ctx, rv)
}

func (v reversalsView) Get(ctx context.Context, id string) (models.Reversal, error) {
	return v.s.GetReversal(ctx, id)
}

func (v reversalsView) Resolve(ctx context.Context, id string, status models.ReversalStatus, approverID string) (models.Reversal, error) {
	return v.s.ResolveReversal(ctx, id, status, approverID)
}
