package reversal_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cristyanmorais/desafio-gac/internal/events"
	"github.com/cristyanmorais/desafio-gac/internal/ledger"
	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
	"github.com/cristyanmorais/desafio-gac/internal/repository/memory"
	"github.com/cristyanmorais/desafio-gac/internal/reversal"
	"github.com/cristyanmorais/desafio-gac/internal/worker"
)

type fixture struct {
	store    *memory.Store
	wp       *worker.Pool
	engine   *ledger.Engine
	workflow *reversal.Workflow
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := events.LogPublisher{}
	wp := worker.NewPool(1)
	engine := ledger.NewEngine(store, store, pub, wp)
	return &fixture{
		store:    store,
		wp:       wp,
		engine:   engine,
		workflow: reversal.NewWorkflow(store, engine, store.Reversals(), pub, wp),
	}
}

func (f *fixture) account(t *testing.T, name string, cents int64) models.Account {
	t.Helper()
	a, err := f.store.Create(context.Background(), name, name+"@example.com", "secret123", money.FromCents(cents))
	require.NoError(t, err)
	return a
}

func (f *fixture) balance(t *testing.T, id string) int64 {
	t.Helper()
	a, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return a.Balance.Cents()
}

func (f *fixture) transfer(t *testing.T, from, to, amount string) models.Transfer {
	t.Helper()
	tr, err := f.engine.Transfer(context.Background(), from, to, amount)
	require.NoError(t, err)
	return tr
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)

	tr := f.transfer(t, a.ID, b.ID, "200.00")
	require.Equal(t, int64(80000), f.balance(t, a.ID))
	require.Equal(t, int64(70000), f.balance(t, b.ID))

	rv, err := f.workflow.Request(ctx, tr.ID, a.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReversalPending, rv.Status)
	require.Nil(t, rv.ApproverID)

	resolved, err := f.workflow.Approve(ctx, rv.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReversalApproved, resolved.Status)
	require.NotNil(t, resolved.ApproverID)
	require.Equal(t, b.ID, *resolved.ApproverID)

	got, err := f.engine.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	require.Equal(t, models.TransferReversed, got.Status)

	require.Equal(t, int64(100000), f.balance(t, a.ID))
	require.Equal(t, int64(50000), f.balance(t, b.ID))
}

func TestRequestByReceiverApprovedBySender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	tr := f.transfer(t, a.ID, b.ID, "10.00")

	rv, err := f.workflow.Request(ctx, tr.ID, b.ID)
	require.NoError(t, err)

	_, err = f.workflow.Approve(ctx, rv.ID, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100000), f.balance(t, a.ID))
}

func TestRequesterCannotSelfApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	tr := f.transfer(t, a.ID, b.ID, "10.00")

	rv, err := f.workflow.Request(ctx, tr.ID, a.ID)
	require.NoError(t, err)

	_, err = f.workflow.Approve(ctx, rv.ID, a.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	got, err := f.workflow.Get(ctx, rv.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReversalPending, got.Status)
}

func TestStrangerCannotRequestOrApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	mallory := f.account(t, "mallory", 0)
	tr := f.transfer(t, a.ID, b.ID, "10.00")

	_, err := f.workflow.Request(ctx, tr.ID, mallory.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	rv, err := f.workflow.Request(ctx, tr.ID, a.ID)
	require.NoError(t, err)

	_, err = f.workflow.Approve(ctx, rv.ID, mallory.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.workflow.Reject(ctx, rv.ID, mallory.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	tr := f.transfer(t, a.ID, b.ID, "10.00")

	_, err := f.workflow.Request(ctx, "nope", a.ID)
	require.ErrorIs(t, err, models.ErrTransferNotFound)

	_, err = f.workflow.Request(ctx, tr.ID, "nope")
	require.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestOneActiveReversalPerTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	tr := f.transfer(t, a.ID, b.ID, "10.00")

	_, err := f.workflow.Request(ctx, tr.ID, a.ID)
	require.NoError(t, err)

	_, err = f.workflow.Request(ctx, tr.ID, b.ID)
	require.ErrorIs(t, err, models.ErrActiveReversal)
}

func TestRejectIsTerminalAndFreesTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	tr := f.transfer(t, a.ID, b.ID, "10.00")

	rv, err := f.workflow.Request(ctx, tr.ID, a.ID)
	require.NoError(t, err)

	rejected, err := f.workflow.Reject(ctx, rv.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReversalRejected, rejected.Status)

	// no balances moved
	require.Equal(t, int64(99000), f.balance(t, a.ID))
	require.Equal(t, int64(51000), f.balance(t, b.ID))

	// resolution is terminal
	_, err = f.workflow.Approve(ctx, rv.ID, b.ID)
	require.ErrorIs(t, err, models.ErrAlreadyResolved)

	// a rejected reversal no longer blocks a fresh request
	_, err = f.workflow.Request(ctx, tr.ID, b.ID)
	require.NoError(t, err)
}

func TestRequestAfterReversalCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	tr := f.transfer(t, a.ID, b.ID, "10.00")

	rv, err := f.workflow.Request(ctx, tr.ID, a.ID)
	require.NoError(t, err)
	_, err = f.workflow.Approve(ctx, rv.ID, b.ID)
	require.NoError(t, err)

	_, err = f.workflow.Request(ctx, tr.ID, a.ID)
	require.ErrorIs(t, err, models.ErrAlreadyReversed)
}

func TestApproveUnknownReversal(t *testing.T) {
	f := newFixture(t)
	a := f.account(t, "alice", 100000)

	_, err := f.workflow.Approve(context.Background(), "nope", a.ID)
	require.ErrorIs(t, err, models.ErrReversalNotFound)
}

func TestConcurrentApproveCompensatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.account(t, "alice", 100000)
	b := f.account(t, "bob", 50000)
	tr := f.transfer(t, a.ID, b.ID, "200.00")

	rv, err := f.workflow.Request(ctx, tr.ID, a.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.workflow.Approve(ctx, rv.ID, b.ID)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.True(t,
			errors.Is(err, models.ErrAlreadyResolved) || errors.Is(err, models.ErrAlreadyReversed),
			"unexpected error: %v", err)
	}
	require.Equal(t, 1, ok)

	// exactly one compensation
	require.Equal(t, int64(100000), f.balance(t, a.ID))
	require.Equal(t, int64(50000), f.balance(t, b.ID))
}

func TestConcurrentApproveVsReject(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		ctx := context.Background()

		a := f.account(t, "alice", 100000)
		b := f.account(t, "bob", 50000)
		tr := f.transfer(t, a.ID, b.ID, "200.00")

		rv, err := f.workflow.Request(ctx, tr.ID, a.ID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var approveErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = f.workflow.Approve(ctx, rv.ID, b.ID)
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = f.workflow.Reject(ctx, rv.ID, b.ID)
		}()
		wg.Wait()

		// exactly one resolution wins, the loser sees the race
		if approveErr == nil {
			require.ErrorIs(t, rejectErr, models.ErrAlreadyResolved)
		} else {
			require.NoError(t, rejectErr)
			require.ErrorIs(t, approveErr, models.ErrAlreadyResolved)
		}

		got, err := f.workflow.Get(ctx, rv.ID)
		require.NoError(t, err)
		trGot, err := f.engine.GetTransfer(ctx, tr.ID)
		require.NoError(t, err)

		// reversal status, transfer status and balances always agree
		switch got.Status {
		case models.ReversalApproved:
			require.NoError(t, approveErr)
			require.Equal(t, models.TransferReversed, trGot.Status)
			require.Equal(t, int64(100000), f.balance(t, a.ID))
			require.Equal(t, int64(50000), f.balance(t, b.ID))
		case models.ReversalRejected:
			require.NoError(t, rejectErr)
			require.Equal(t, models.TransferCompleted, trGot.Status)
			require.Equal(t, int64(80000), f.balance(t, a.ID))
			require.Equal(t, int64(70000), f.balance(t, b.ID))
		default:
			t.Fatalf("reversal left unresolved: %s", got.Status)
		}
	}
}
