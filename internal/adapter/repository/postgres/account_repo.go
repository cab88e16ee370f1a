package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkru/transferd/internal/domain"
	"github.com/mkru/transferd/internal/usecase"
)

const (
	queryCreateAccount = `INSERT INTO account (name) VALUES ($1) RETURNING id`

	// Balance is never stored. It is derived from postings on every read:
	// credits add, debits subtract.
	queryAccountWithBalance = `
SELECT a.id, a.name,
       COALESCE((SELECT SUM(CASE WHEN p.side = 'debit' THEN -p.amount ELSE p.amount END)
                   FROM posting p
                  WHERE p.account_id = a.id), 0) AS balance
  FROM account a
 WHERE a.id = $1`

	queryAccountExists = `SELECT EXISTS (SELECT 1 FROM account WHERE id = $1)`

	queryLockAccount = `SELECT id FROM account WHERE id = $1 FOR UPDATE`
)

// AccountRepository implements usecase.AccountRepository over PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, name string) (*domain.Account, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, queryCreateAccount, name).Scan(&id); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &domain.Account{ID: id, Name: name}, nil
}

func (r *AccountRepository) GetWithBalance(ctx context.Context, id int64) (*domain.Account, error) {
	var (
		account domain.Account
		balance pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, queryAccountWithBalance, id).Scan(&account.ID, &account.Name, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	account.Balance, err = numericToMoney(balance)
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return &account, nil
}

func (r *AccountRepository) ExistsTx(ctx context.Context, tx usecase.Tx, id int64) (bool, error) {
	var exists bool
	if err := pgxTxFrom(tx).QueryRow(ctx, queryAccountExists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account %d: %w", id, err)
	}
	return exists, nil
}

func (r *AccountRepository) LockForUpdate(ctx context.Context, tx usecase.Tx, id int64) (bool, error) {
	var locked int64
	err := pgxTxFrom(tx).QueryRow(ctx, queryLockAccount, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock account %d: %w", id, err)
	}
	return true, nil
}
