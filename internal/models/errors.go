package models

import "errors"

// Sentinel errors returned by the core. Each maps to a stable error code at
// the HTTP boundary; none are swallowed inside the engine.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrTransferNotFound = errors.New("transfer not found")
	ErrReversalNotFound = errors.New("reversal not found")

	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrUnauthorized    = errors.New("caller is not a party to this operation")
	ErrAlreadyReversed = errors.New("transfer already reversed")
	ErrAlreadyResolved = errors.New("reversal already resolved")
	ErrActiveReversal  = errors.New("transfer already has an active reversal")

	// ErrBalanceConflict means a guarded balance write lost a race; the
	// engine retries it, callers only ever see ErrContention.
	ErrBalanceConflict = errors.New("balance changed since read")
	ErrContention      = errors.New("too much contention, retry budget exhausted")

	ErrEmailTaken = errors.New("email already registered")
)
