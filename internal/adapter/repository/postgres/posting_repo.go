package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkru/transferd/internal/domain"
	"github.com/mkru/transferd/internal/usecase"
)

const (
	queryInsertPostingPair = `
INSERT INTO posting (transaction_id, account_id, side, amount)
VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)`

	queryAccountPostingSum = `
SELECT COALESCE(SUM(CASE WHEN side = 'debit' THEN -amount ELSE amount END), 0)
  FROM posting
 WHERE account_id = $1`

	queryPostingsByTransaction = `
SELECT transaction_id, account_id, side, amount
  FROM posting
 WHERE transaction_id = $1
 ORDER BY side`
)

// PostingRepository implements usecase.PostingRepository over PostgreSQL.
type PostingRepository struct {
	pool *pgxpool.Pool
}

func NewPostingRepository(pool *pgxpool.Pool) *PostingRepository {
	return &PostingRepository{pool: pool}
}

// CreatePair writes both legs of a movement in a single statement, so a
// transaction can never be half-posted.
func (r *PostingRepository) CreatePair(ctx context.Context, tx usecase.Tx, debit, credit domain.Posting) error {
	debitAmount, err := moneyToNumeric(debit.Amount)
	if err != nil {
		return fmt.Errorf("create postings: %w", err)
	}
	creditAmount, err := moneyToNumeric(credit.Amount)
	if err != nil {
		return fmt.Errorf("create postings: %w", err)
	}
	_, err = pgxTxFrom(tx).Exec(ctx, queryInsertPostingPair,
		debit.TransactionID, debit.AccountID, string(debit.Side), debitAmount,
		credit.TransactionID, credit.AccountID, string(credit.Side), creditAmount,
	)
	if err != nil {
		return fmt.Errorf("create postings: %w", err)
	}
	return nil
}

func (r *PostingRepository) BalanceOf(ctx context.Context, tx usecase.Tx, accountID int64) (domain.Money, error) {
	var sum pgtype.Numeric
	if err := pgxTxFrom(tx).QueryRow(ctx, queryAccountPostingSum, accountID).Scan(&sum); err != nil {
		return domain.Money{}, fmt.Errorf("balance of account %d: %w", accountID, err)
	}
	balance, err := numericToMoney(sum)
	if err != nil {
		return domain.Money{}, fmt.Errorf("balance of account %d: %w", accountID, err)
	}
	return balance, nil
}

func (r *PostingRepository) ListByTransaction(ctx context.Context, transactionID int64) ([]domain.Posting, error) {
	rows, err := r.pool.Query(ctx, queryPostingsByTransaction, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	defer rows.Close()

	var postings []domain.Posting
	for rows.Next() {
		var (
			posting domain.Posting
			side    string
			amount  pgtype.Numeric
		)
		if err := rows.Scan(&posting.TransactionID, &posting.AccountID, &side, &amount); err != nil {
			return nil, fmt.Errorf("list postings: %w", err)
		}
		posting.Side = domain.PostingSide(side)
		posting.Amount, err = numericToMoney(amount)
		if err != nil {
			return nil, fmt.Errorf("list postings: %w", err)
		}
		postings = append(postings, posting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	return postings, nil
}
