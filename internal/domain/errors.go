package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountName = errors.New("account name cannot be empty")

	// Movement errors
	ErrInvalidAmount         = errors.New("amount must be representable with at most two fractional digits")
	ErrSameAccount           = errors.New("source and destination accounts are the same")
	ErrInsufficientFunds     = errors.New("insufficient funds on source account")
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")
	ErrTransactionNotFound   = errors.New("transaction not found")

	// ErrIdempotencyKeyTaken is reported by the store when an insert loses the
	// race on the idempotency key uniqueness constraint. The transfer engine
	// converts it into an already-applied success.
	ErrIdempotencyKeyTaken = errors.New("idempotency key already recorded")
)
