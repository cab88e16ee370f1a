package usecase

import (
	"context"
	"errors"
)

// ErrUnbalancedLedger is returned when the signed sum of all postings is not
// zero.
var ErrUnbalancedLedger = errors.New("ledger is unbalanced: postings do not sum to zero")

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledger LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledger LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{ledger: ledger}
}

// CheckConsistency verifies the double-entry invariant: with credits positive
// and debits negative, every posting in the system must net to zero.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	sum, err := uc.ledger.PostingSum(ctx)
	if err != nil {
		return false, err
	}

	if !sum.IsZero() {
		return false, ErrUnbalancedLedger
	}

	return true, nil
}
