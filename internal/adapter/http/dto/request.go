package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mkru/transferd/internal/domain"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name string `json:"name"`
}

// MoveRequest carries the amount for deposits, withdrawals and transfers.
// Amounts accept both JSON numbers and strings; the scale check happens in
// domain.NewMoney.
type MoveRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Money converts the raw amount into domain money.
func (r MoveRequest) Money() (domain.Money, error) {
	return domain.NewMoney(r.Amount)
}
