package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mkru/transferd/internal/adapter/http/handler"
	"github.com/mkru/transferd/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	TransferHandler *handler.TransferHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler
	Logger          zerolog.Logger
	// ResponseStore enables response replay for repeated write requests.
	// Optional; the ledger's unique constraint guarantees idempotency
	// either way.
	ResponseStore middleware.ResponseStore
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Wrap)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.ResponseStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.ResponseStore, cfg.Logger).Wrap)
		}

		r.Post("/accounts", cfg.AccountHandler.Create)
		r.Get("/accounts/{account_id}", cfg.AccountHandler.Get)

		r.Post("/accounts/{account_id}/deposit", cfg.TransferHandler.Deposit)
		r.Post("/accounts/{account_id}/withdrawal", cfg.TransferHandler.Withdraw)
		r.Post("/accounts/{from_account_id}/transfer/{to_account_id}", cfg.TransferHandler.Transfer)
		r.Get("/transactions/{transaction_id}", cfg.TransferHandler.Get)

		r.Get("/ledger/consistency", cfg.LedgerHandler.Consistency)
	})

	return r
}
