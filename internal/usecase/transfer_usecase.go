package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkru/transferd/internal/domain"
)

// TransferUseCase is the ledger transfer engine. It validates and records a
// monetary movement as a balanced pair of postings inside one database
// transaction, enforcing idempotency through the storage layer's uniqueness
// constraint and overdraft safety through an exclusive row lock on the source
// account.
type TransferUseCase struct {
	txRunner     TxRunner
	accounts     AccountRepository
	transactions TransactionRepository
	postings     PostingRepository
	retrier      Retrier
	logger       zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txRunner TxRunner,
	accounts AccountRepository,
	transactions TransactionRepository,
	postings PostingRepository,
	retrier Retrier,
	logger zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		postings:     postings,
		retrier:      retrier,
		logger:       logger,
	}
}

// MoveInput represents one requested monetary movement.
type MoveInput struct {
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               domain.Money
	IdempotencyKey       string
	Type                 domain.TransactionType
}

// Move atomically records the movement. Calling it again with the same
// idempotency key returns the originally recorded transaction without
// touching the ledger.
func (uc *TransferUseCase) Move(ctx context.Context, input MoveInput) (*domain.Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if input.SourceAccountID == input.DestinationAccountID {
		return nil, domain.ErrSameAccount
	}

	if input.SourceAccountID < 0 || input.DestinationAccountID < 0 {
		return nil, domain.ErrAccountNotFound
	}

	if input.IdempotencyKey == "" {
		return nil, domain.ErrMissingIdempotencyKey
	}

	var txn *domain.Transaction

	operation := func() error {
		txn = nil

		return uc.txRunner.WithinTx(ctx, ReadCommitted, func(ctx context.Context, tx Tx) error {
			applied, err := uc.transactions.GetByIdempotencyKeyTx(ctx, tx, input.IdempotencyKey)
			if err == nil {
				// Already applied; the retry is a no-op success.
				txn = applied
				return nil
			}

			if !errors.Is(err, domain.ErrTransactionNotFound) {
				return err
			}

			exists, err := uc.accounts.ExistsTx(ctx, tx, input.DestinationAccountID)
			if err != nil {
				return err
			}

			if !exists {
				return domain.ErrAccountNotFound
			}

			// The cash book is exempt from the overdraft check and is never
			// locked, so concurrent deposits and withdrawals against it do
			// not serialize on a single row.
			if !domain.IsCashBook(input.SourceAccountID) {
				locked, err := uc.accounts.LockForUpdate(ctx, tx, input.SourceAccountID)
				if err != nil {
					return err
				}

				if !locked {
					return domain.ErrAccountNotFound
				}

				balance, err := uc.postings.BalanceOf(ctx, tx, input.SourceAccountID)
				if err != nil {
					return err
				}

				if balance.LessThan(input.Amount) {
					return domain.ErrInsufficientFunds
				}
			}

			return uc.record(ctx, tx, input, &txn)
		})
	}

	err := uc.retrier.Retry(ctx, operation)
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyKeyTaken) {
			// Lost the insert race against a concurrent first attempt with
			// the same key. The movement is already recorded; return it.
			uc.logger.Debug().
				Str("idempotency_key", input.IdempotencyKey).
				Msg("duplicate idempotency key, returning applied transaction")

			return uc.transactions.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		}

		return nil, err
	}

	return txn, nil
}

func (uc *TransferUseCase) record(ctx context.Context, tx Tx, input MoveInput, out **domain.Transaction) error {
	id, err := uc.transactions.NextID(ctx, tx)
	if err != nil {
		return err
	}

	txn := &domain.Transaction{
		ID:                   id,
		Type:                 input.Type,
		Amount:               input.Amount,
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		IdempotencyKey:       input.IdempotencyKey,
		CreatedAt:            time.Now().UTC(),
	}

	if err := txn.Validate(); err != nil {
		return err
	}

	if err := uc.transactions.Create(ctx, tx, txn); err != nil {
		return err
	}

	debit, credit := txn.Postings()
	if err := uc.postings.CreatePair(ctx, tx, debit, credit); err != nil {
		return err
	}

	uc.logger.Info().
		Int64("transaction_id", txn.ID).
		Str("type", string(txn.Type)).
		Int64("source_account_id", txn.SourceAccountID).
		Int64("destination_account_id", txn.DestinationAccountID).
		Str("amount", txn.Amount.String()).
		Msg("movement recorded")

	*out = txn

	return nil
}

// Deposit records a movement from the cash book into the account.
func (uc *TransferUseCase) Deposit(ctx context.Context, accountID int64, amount domain.Money, idempotencyKey string) (*domain.Transaction, error) {
	if accountID <= 0 {
		return nil, domain.ErrAccountNotFound
	}

	return uc.Move(ctx, MoveInput{
		SourceAccountID:      domain.CashBookAccountID,
		DestinationAccountID: accountID,
		Amount:               amount,
		IdempotencyKey:       idempotencyKey,
		Type:                 domain.TypeDeposit,
	})
}

// Withdraw records a movement from the account into the cash book.
func (uc *TransferUseCase) Withdraw(ctx context.Context, accountID int64, amount domain.Money, idempotencyKey string) (*domain.Transaction, error) {
	if accountID <= 0 {
		return nil, domain.ErrAccountNotFound
	}

	return uc.Move(ctx, MoveInput{
		SourceAccountID:      accountID,
		DestinationAccountID: domain.CashBookAccountID,
		Amount:               amount,
		IdempotencyKey:       idempotencyKey,
		Type:                 domain.TypeWithdrawal,
	})
}

// Transfer records a peer-to-peer movement between two ordinary accounts.
func (uc *TransferUseCase) Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount domain.Money, idempotencyKey string) (*domain.Transaction, error) {
	if fromAccountID <= 0 || toAccountID <= 0 {
		return nil, domain.ErrAccountNotFound
	}

	return uc.Move(ctx, MoveInput{
		SourceAccountID:      fromAccountID,
		DestinationAccountID: toAccountID,
		Amount:               amount,
		IdempotencyKey:       idempotencyKey,
		Type:                 domain.TypeTransfer,
	})
}

// GetTransaction retrieves a recorded movement by ID together with its two
// posting legs as they were written to the ledger.
func (uc *TransferUseCase) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, []domain.Posting, error) {
	txn, err := uc.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	postings, err := uc.postings.ListByTransaction(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return txn, postings, nil
}
