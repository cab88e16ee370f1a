package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mkru/transferd/internal/adapter/http/dto"
	"github.com/mkru/transferd/internal/domain"
	"github.com/mkru/transferd/internal/infrastructure/metrics"
)

// AccountService is the slice of the account use case the handler needs.
type AccountService interface {
	CreateAccount(ctx context.Context, name string) (*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.Name)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	metrics.ObserveAccountCreated()
	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get returns an account with its derived balance.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "account_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id", err.Error())
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
