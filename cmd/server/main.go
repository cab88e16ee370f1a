package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/mkru/transferd/internal/adapter/http"
	"github.com/mkru/transferd/internal/adapter/http/handler"
	postgresRepo "github.com/mkru/transferd/internal/adapter/repository/postgres"
	redisRepo "github.com/mkru/transferd/internal/adapter/repository/redis"
	"github.com/mkru/transferd/internal/infrastructure/config"
	"github.com/mkru/transferd/internal/infrastructure/logger"
	"github.com/mkru/transferd/internal/infrastructure/postgres"
	"github.com/mkru/transferd/internal/infrastructure/redis"
	"github.com/mkru/transferd/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	postingRepo := postgresRepo.NewPostingRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	retrier := postgresRepo.NewRetrier(appLogger)
	responseCache := redisRepo.NewResponseCache(redisClient, cfg.IdempotencyTTL)

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transactionRepo, postingRepo, retrier, appLogger)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	// HTTP surface
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		TransferHandler: handler.NewTransferHandler(transferUC),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		Logger:          appLogger,
		ResponseStore:   responseCache,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
