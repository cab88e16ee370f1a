package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkru/transferd/internal/domain"
	"github.com/mkru/transferd/internal/usecase"
)

const (
	// Transaction ids are drawn from a sequence before insert so that both
	// posting legs can reference the id inside the same statement batch.
	queryNextTransactionID = `SELECT nextval('transaction_id')`

	queryInsertTransaction = `
INSERT INTO transaction (id, type, amount, source_account_id, destination_account_id, idempotency_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryTransactionByKey = `
SELECT id, type, amount, source_account_id, destination_account_id, idempotency_key, created_at
  FROM transaction
 WHERE idempotency_key = $1`

	queryTransactionByID = `
SELECT id, type, amount, source_account_id, destination_account_id, idempotency_key, created_at
  FROM transaction
 WHERE id = $1`
)

const uniqueViolationCode = "23505"

// TransactionRepository implements usecase.TransactionRepository over PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.pool.QueryRow(ctx, queryTransactionByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return txn, nil
}

func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.pool.QueryRow(ctx, queryTransactionByKey, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction by key: %w", err)
	}
	return txn, nil
}

func (r *TransactionRepository) GetByIdempotencyKeyTx(ctx context.Context, tx usecase.Tx, key string) (*domain.Transaction, error) {
	txn, err := scanTransaction(pgxTxFrom(tx).QueryRow(ctx, queryTransactionByKey, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction by key: %w", err)
	}
	return txn, nil
}

func (r *TransactionRepository) NextID(ctx context.Context, tx usecase.Tx) (int64, error) {
	var id int64
	if err := pgxTxFrom(tx).QueryRow(ctx, queryNextTransactionID).Scan(&id); err != nil {
		return 0, fmt.Errorf("next transaction id: %w", err)
	}
	return id, nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, txn *domain.Transaction) error {
	amount, err := moneyToNumeric(txn.Amount)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	_, err = pgxTxFrom(tx).Exec(ctx, queryInsertTransaction,
		txn.ID, string(txn.Type), amount,
		txn.SourceAccountID, txn.DestinationAccountID,
		txn.IdempotencyKey, txn.CreatedAt,
	)
	if isIdempotencyKeyViolation(err) {
		return domain.ErrIdempotencyKeyTaken
	}
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// isIdempotencyKeyViolation reports whether err is a unique constraint
// violation on the idempotency key. A concurrent request with the same key
// committed between the pre-check and this insert.
func isIdempotencyKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}
	return strings.Contains(pgErr.ConstraintName, "idempotency_key")
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn       domain.Transaction
		txnType   string
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&txn.ID, &txnType, &amount,
		&txn.SourceAccountID, &txn.DestinationAccountID,
		&txn.IdempotencyKey, &createdAt)
	if err != nil {
		return nil, err
	}
	txn.Type = domain.TransactionType(txnType)
	txn.CreatedAt = createdAt.Time
	txn.Amount, err = numericToMoney(amount)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
