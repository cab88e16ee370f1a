package domain

import "time"

// TransactionType classifies a monetary movement.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeTransfer   TransactionType = "transfer"
)

// PostingSide is the accounting side of a posting.
type PostingSide string

const (
	SideDebit  PostingSide = "debit"
	SideCredit PostingSide = "credit"
)

// Transaction is one logical monetary movement, recorded append-only together
// with its two postings. Instances returned to callers are immutable
// snapshots.
type Transaction struct {
	ID                   int64
	Type                 TransactionType
	Amount               Money
	SourceAccountID      int64
	DestinationAccountID int64
	IdempotencyKey       string
	CreatedAt            time.Time
}

// Validate checks the structural invariants of a movement before it is
// recorded.
func (t *Transaction) Validate() error {
	if t.SourceAccountID == t.DestinationAccountID {
		return ErrSameAccount
	}

	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if t.IdempotencyKey == "" {
		return ErrMissingIdempotencyKey
	}

	return nil
}

// Postings derives the balanced pair of legs for the movement: a debit on the
// source account and a credit of equal amount on the destination account.
func (t *Transaction) Postings() (debit, credit Posting) {
	debit = Posting{
		TransactionID: t.ID,
		AccountID:     t.SourceAccountID,
		Side:          SideDebit,
		Amount:        t.Amount,
	}
	credit = Posting{
		TransactionID: t.ID,
		AccountID:     t.DestinationAccountID,
		Side:          SideCredit,
		Amount:        t.Amount,
	}

	return debit, credit
}

// Posting is one leg of a transaction's accounting entry.
type Posting struct {
	TransactionID int64
	AccountID     int64
	Side          PostingSide
	Amount        Money
}

// Signed returns the posting amount with debits negated, so that the sum of
// signed postings over any set of accounts nets to their combined balance.
func (p Posting) Signed() Money {
	if p.Side == SideDebit {
		return Money{}.Sub(p.Amount)
	}

	return p.Amount
}
