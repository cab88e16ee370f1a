package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkru/transferd/internal/domain"
)

// A healthy ledger sums to exactly zero: every debit leg is matched by a
// credit leg of the same amount.
const queryLedgerPostingSum = `
SELECT COALESCE(SUM(CASE WHEN side = 'debit' THEN -amount ELSE amount END), 0)
  FROM posting`

// LedgerRepository implements usecase.LedgerRepository over PostgreSQL.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) PostingSum(ctx context.Context) (domain.Money, error) {
	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, queryLedgerPostingSum).Scan(&sum); err != nil {
		return domain.Money{}, fmt.Errorf("ledger posting sum: %w", err)
	}
	total, err := numericToMoney(sum)
	if err != nil {
		return domain.Money{}, fmt.Errorf("ledger posting sum: %w", err)
	}
	return total, nil
}
