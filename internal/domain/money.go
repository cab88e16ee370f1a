package domain

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the maximum number of fractional digits a Money value may
// carry. Values that cannot be represented exactly at this scale are rejected
// at construction time rather than rounded.
const MoneyScale = 2

// Money is a fixed-precision monetary amount. The zero value is zero money.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates a Money from a decimal, rejecting values with more than
// MoneyScale fractional digits.
func NewMoney(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Round(MoneyScale)) {
		return Money{}, ErrInvalidAmount
	}

	return Money{amount: d}, nil
}

// NewMoneyFromString parses a decimal string into a Money.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}

	return NewMoney(d)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal reports exact decimal equality.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan reports whether m < other by exact decimal comparison.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.String()
}
