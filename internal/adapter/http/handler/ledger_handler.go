package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/mkru/transferd/internal/adapter/http/dto"
	"github.com/mkru/transferd/internal/usecase"
)

// LedgerService is the slice of the ledger use case the handler needs.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (bool, error)
}

// LedgerHandler handles ledger-wide HTTP requests.
type LedgerHandler struct {
	ledger LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Consistency reports whether all postings sum to zero. An unbalanced ledger
// is reported in the payload, not as a transport failure.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.ledger.CheckConsistency(r.Context())
	if err != nil && !errors.Is(err, usecase.ErrUnbalancedLedger) {
		writeError(w, http.StatusInternalServerError, "failed to check ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: consistent})
}
