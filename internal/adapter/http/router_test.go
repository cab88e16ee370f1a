package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mkru/transferd/internal/adapter/http/handler"
	"github.com/mkru/transferd/internal/domain"
)

type routerStubs struct{}

func (routerStubs) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	return &domain.Account{ID: 1, Name: name}, nil
}

func (routerStubs) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return &domain.Account{ID: id, Name: "x"}, nil
}

func (routerStubs) Deposit(ctx context.Context, accountID int64, amount domain.Money, key string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: 1, Type: domain.TypeDeposit, Amount: amount}, nil
}

func (routerStubs) Withdraw(ctx context.Context, accountID int64, amount domain.Money, key string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: 2, Type: domain.TypeWithdrawal, Amount: amount}, nil
}

func (routerStubs) Transfer(ctx context.Context, fromID, toID int64, amount domain.Money, key string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: 3, Type: domain.TypeTransfer, Amount: amount}, nil
}

func (routerStubs) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, []domain.Posting, error) {
	return &domain.Transaction{ID: id, Type: domain.TypeTransfer}, nil, nil
}

func (routerStubs) CheckConsistency(ctx context.Context) (bool, error) {
	return true, nil
}

func newTestRouter() http.Handler {
	stubs := routerStubs{}
	return NewRouter(RouterConfig{
		AccountHandler:  handler.NewAccountHandler(stubs),
		TransferHandler: handler.NewTransferHandler(stubs),
		LedgerHandler:   handler.NewLedgerHandler(stubs),
		HealthHandler:   handler.NewHealthHandler(nil, nil),
		Logger:          zerolog.Nop(),
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
		key    bool
		status int
	}{
		{http.MethodGet, "/health", "", false, http.StatusOK},
		{http.MethodPost, "/accounts", `{"name":"alice"}`, false, http.StatusCreated},
		{http.MethodGet, "/accounts/1", "", false, http.StatusOK},
		{http.MethodPost, "/accounts/1/deposit", `{"amount":"10"}`, true, http.StatusOK},
		{http.MethodPost, "/accounts/1/withdrawal", `{"amount":"10"}`, true, http.StatusOK},
		{http.MethodPost, "/accounts/1/transfer/2", `{"amount":"10"}`, true, http.StatusOK},
		{http.MethodGet, "/transactions/3", "", false, http.StatusOK},
		{http.MethodGet, "/ledger/consistency", "", false, http.StatusOK},
		{http.MethodGet, "/metrics", "", false, http.StatusOK},
		{http.MethodGet, "/nope", "", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.key {
				req.Header.Set("Idempotency-Key", "router-test")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}
