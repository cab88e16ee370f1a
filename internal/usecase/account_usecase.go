package usecase

import (
	"context"
	"strings"

	"github.com/mkru/transferd/internal/domain"
)

// AccountUseCase handles account reads and creation.
type AccountUseCase struct {
	accounts AccountRepository
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accounts AccountRepository) *AccountUseCase {
	return &AccountUseCase{accounts: accounts}
}

// GetAccount returns the account identity plus its currently derived balance.
// Non-positive ids are reported as not found without touching storage.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	if id <= 0 {
		return nil, domain.ErrAccountNotFound
	}

	return uc.accounts.GetWithBalance(ctx, id)
}

// CreateAccount opens a new account with a zero derived balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidAccountName
	}

	return uc.accounts.Create(ctx, name)
}
