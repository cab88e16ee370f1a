package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkru/transferd/internal/usecase"
)

// pgxPool is the slice of pgxpool.Pool the transaction manager needs.
type pgxPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TxRunner on top of a pgx connection pool.
type TxManager struct {
	pool pgxPool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Tx is the database transaction handle passed to repositories.
type Tx struct {
	tx pgx.Tx
}

// PgxTx exposes the underlying pgx transaction.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

// pgxTxFrom unwraps the opaque usecase handle. Repositories only ever
// receive handles minted by this package, so the assertion is safe.
func pgxTxFrom(tx usecase.Tx) pgx.Tx {
	return tx.(*Tx).PgxTx()
}

type txContextKey struct{}

func isoLevel(level usecase.IsolationLevel) pgx.TxIsoLevel {
	switch level {
	case usecase.RepeatableRead:
		return pgx.RepeatableRead
	case usecase.Serializable:
		return pgx.Serializable
	default:
		return pgx.ReadCommitted
	}
}

// WithinTx runs fn inside a database transaction at the requested
// isolation level. The handle is also stored in the context, so a
// nested WithinTx call joins the open transaction instead of starting
// a second one. fn returning an error rolls the transaction back,
// otherwise it is committed.
func (m *TxManager) WithinTx(ctx context.Context, level usecase.IsolationLevel, fn func(ctx context.Context, tx usecase.Tx) error) (err error) {
	if active, ok := ctx.Value(txContextKey{}).(*Tx); ok {
		return fn(ctx, active)
	}

	pgxTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: isoLevel(level)})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	handle := &Tx{tx: pgxTx}
	ctx = context.WithValue(ctx, txContextKey{}, handle)

	// The deferred rollback also runs when fn panics, so the pooled
	// connection never escapes with an open transaction and its row
	// locks. pgx closes the transaction on Commit whatever its outcome,
	// so the rollback is skipped once commit has been reached.
	committing := false
	defer func() {
		if committing {
			return
		}
		// rollback must run even when ctx is already cancelled
		rbCtx := context.WithoutCancel(ctx)
		if rbErr := pgxTx.Rollback(rbCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
	}()

	if err = fn(ctx, handle); err != nil {
		return err
	}

	committing = true
	if err = pgxTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
