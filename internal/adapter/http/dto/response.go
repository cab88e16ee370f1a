package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkru/transferd/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:      a.ID,
		Name:    a.Name,
		Balance: a.Balance.Decimal(),
	}
}

// TransactionResponse represents a recorded movement in API responses.
// Postings carries the stored double-entry legs and is only populated on
// transaction lookups.
type TransactionResponse struct {
	ID                   int64             `json:"id"`
	Type                 string            `json:"type"`
	Amount               decimal.Decimal   `json:"amount"`
	SourceAccountID      int64             `json:"source_account_id"`
	DestinationAccountID int64             `json:"destination_account_id"`
	IdempotencyKey       string            `json:"idempotency_key"`
	CreatedAt            time.Time         `json:"created_at"`
	Postings             []PostingResponse `json:"postings,omitempty"`
}

// PostingResponse represents one leg of a recorded movement.
type PostingResponse struct {
	AccountID int64           `json:"account_id"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                   t.ID,
		Type:                 string(t.Type),
		Amount:               t.Amount.Decimal(),
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		IdempotencyKey:       t.IdempotencyKey,
		CreatedAt:            t.CreatedAt,
	}
}

// TransactionWithPostings converts a domain transaction and its stored
// posting legs to a response.
func TransactionWithPostings(t *domain.Transaction, postings []domain.Posting) *TransactionResponse {
	resp := TransactionFromDomain(t)
	for _, p := range postings {
		resp.Postings = append(resp.Postings, PostingResponse{
			AccountID: p.AccountID,
			Side:      string(p.Side),
			Amount:    p.Amount.Decimal(),
		})
	}
	return resp
}

// ConsistencyResponse reports whether the ledger's postings sum to zero.
type ConsistencyResponse struct {
	Consistent bool `json:"consistent"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
