package integration

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	adaptershttp "github.com/mkru/transferd/internal/adapter/http"
	"github.com/mkru/transferd/internal/adapter/http/handler"
	"github.com/mkru/transferd/internal/adapter/repository/postgres"
	redisrepo "github.com/mkru/transferd/internal/adapter/repository/redis"
	infraredis "github.com/mkru/transferd/internal/infrastructure/redis"
	"github.com/mkru/transferd/internal/usecase"
	"github.com/mkru/transferd/tests/testutil"
)

// testApp wires the full service against a real database and an in-process
// Redis, mirroring cmd/server.
type testApp struct {
	Router     http.Handler
	TransferUC *usecase.TransferUseCase
	AccountUC  *usecase.AccountUseCase
	LedgerUC   *usecase.LedgerUseCase
}

func newTestApp(t *testing.T, testDB *testutil.TestDB) *testApp {
	t.Helper()

	ctx := context.Background()
	pool := testDB.Pool

	mr := miniredis.RunT(t)
	redisClient, err := infraredis.NewClient(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	logger := zerolog.Nop()

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	postingRepo := postgres.NewPostingRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	retrier := postgres.NewRetrier(logger)
	responseCache := redisrepo.NewResponseCache(redisClient, time.Minute)

	accountUC := usecase.NewAccountUseCase(accountRepo)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transactionRepo, postingRepo, retrier, logger)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		TransferHandler: handler.NewTransferHandler(transferUC),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		Logger:          logger,
		ResponseStore:   responseCache,
	})

	return &testApp{
		Router:     router,
		TransferUC: transferUC,
		AccountUC:  accountUC,
		LedgerUC:   ledgerUC,
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
