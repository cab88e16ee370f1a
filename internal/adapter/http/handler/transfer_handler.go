package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mkru/transferd/internal/adapter/http/dto"
	"github.com/mkru/transferd/internal/domain"
	"github.com/mkru/transferd/internal/infrastructure/metrics"
)

// IdempotencyKeyHeader carries the client's key for safe retries. Every
// money movement requires it.
const IdempotencyKeyHeader = "Idempotency-Key"

// TransferService is the slice of the transfer use case the handler needs.
type TransferService interface {
	Deposit(ctx context.Context, accountID int64, amount domain.Money, idempotencyKey string) (*domain.Transaction, error)
	Withdraw(ctx context.Context, accountID int64, amount domain.Money, idempotencyKey string) (*domain.Transaction, error)
	Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount domain.Money, idempotencyKey string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*domain.Transaction, []domain.Posting, error)
}

// TransferHandler handles money movement HTTP requests.
type TransferHandler struct {
	transfers TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Deposit moves money from the cash book into an account.
func (h *TransferHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID, amount, key, ok := h.moveParams(w, r, "account_id")
	if !ok {
		return
	}

	txn, err := h.transfers.Deposit(r.Context(), accountID, amount, key)
	if err != nil {
		metrics.ObserveTransactionError(errorReason(err))
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	metrics.ObserveTransaction(txn)
	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Withdraw moves money from an account back to the cash book.
func (h *TransferHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountID, amount, key, ok := h.moveParams(w, r, "account_id")
	if !ok {
		return
	}

	txn, err := h.transfers.Withdraw(r.Context(), accountID, amount, key)
	if err != nil {
		metrics.ObserveTransactionError(errorReason(err))
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	metrics.ObserveTransaction(txn)
	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Transfer moves money between two customer accounts.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	fromID, amount, key, ok := h.moveParams(w, r, "from_account_id")
	if !ok {
		return
	}
	toID, err := pathID(r, "to_account_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id", err.Error())
		return
	}

	txn, err := h.transfers.Transfer(r.Context(), fromID, toID, amount, key)
	if err != nil {
		metrics.ObserveTransactionError(errorReason(err))
		writeError(w, mapDomainError(err), "failed to transfer", err.Error())
		return
	}

	metrics.ObserveTransaction(txn)
	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Get retrieves a recorded transaction by ID, including both posting legs.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id", err.Error())
		return
	}

	txn, postings, err := h.transfers.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionWithPostings(txn, postings))
}

// moveParams parses the pieces every movement endpoint shares: the account id
// path parameter, the request body amount, and the Idempotency-Key header.
func (h *TransferHandler) moveParams(w http.ResponseWriter, r *http.Request, idParam string) (int64, domain.Money, string, bool) {
	accountID, err := pathID(r, idParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id", err.Error())
		return 0, domain.Money{}, "", false
	}

	var req dto.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return 0, domain.Money{}, "", false
	}

	amount, err := req.Money()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return 0, domain.Money{}, "", false
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing Idempotency-Key header", "")
		return 0, domain.Money{}, "", false
	}

	return accountID, amount, key, true
}
