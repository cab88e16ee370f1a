package usecase

import (
	"context"

	"github.com/mkru/transferd/internal/domain"
)

// Tx is an opaque handle for an active storage transaction. It is threaded
// explicitly through repository calls so that every step of a unit of work
// shares one connection; repositories downcast it to their concrete type.
type Tx any

// IsolationLevel selects the transaction isolation level for a unit of work.
type IsolationLevel int

const (
	ReadCommitted IsolationLevel = iota
	RepeatableRead
	Serializable
)

// TxRunner runs a unit of work inside a single storage transaction. The
// transaction commits when fn returns nil and rolls back on any error. A call
// made while a transaction is already active on ctx reuses the open
// transaction instead of starting a nested one.
type TxRunner interface {
	WithinTx(ctx context.Context, level IsolationLevel, fn func(ctx context.Context, tx Tx) error) error
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, name string) (*domain.Account, error)
	// GetWithBalance returns the account identity together with its derived
	// balance, computed from postings in one query.
	GetWithBalance(ctx context.Context, id int64) (*domain.Account, error)
	ExistsTx(ctx context.Context, tx Tx, id int64) (bool, error)
	// LockForUpdate acquires an exclusive row lock on the account, held until
	// the enclosing transaction finishes. Returns false when the account does
	// not exist.
	LockForUpdate(ctx context.Context, tx Tx, id int64) (bool, error)
}

// TransactionRepository defines data access for recorded movements.
type TransactionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	GetByIdempotencyKeyTx(ctx context.Context, tx Tx, key string) (*domain.Transaction, error)
	NextID(ctx context.Context, tx Tx) (int64, error)
	// Create inserts the transaction row. A uniqueness violation on the
	// idempotency key is reported as domain.ErrIdempotencyKeyTaken.
	Create(ctx context.Context, tx Tx, txn *domain.Transaction) error
}

// PostingRepository defines data access for posting legs.
type PostingRepository interface {
	// CreatePair inserts both legs of a movement in one statement.
	CreatePair(ctx context.Context, tx Tx, debit, credit domain.Posting) error
	// BalanceOf derives the account balance as the signed sum over its
	// postings, inside the caller's transaction and lock scope.
	BalanceOf(ctx context.Context, tx Tx, accountID int64) (domain.Money, error)
	ListByTransaction(ctx context.Context, transactionID int64) ([]domain.Posting, error)
}

// LedgerRepository defines ledger-wide queries.
type LedgerRepository interface {
	// PostingSum returns the signed sum of every posting in the ledger,
	// credits positive and debits negative. A balanced ledger sums to zero.
	PostingSum(ctx context.Context) (domain.Money, error)
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
