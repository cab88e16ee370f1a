package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mkru/transferd/internal/adapter/http/dto"
	"github.com/mkru/transferd/tests/testutil"
)

func TestAccounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	app := newTestApp(t, testDB)
	router := app.Router

	t.Run("create and fetch an account", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		rec := doJSON(t, router, http.MethodPost, "/accounts", `{"name":"carol"}`, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created dto.AccountResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.Equal(t, "carol", created.Name)
		require.True(t, created.Balance.IsZero())

		rec = doJSON(t, router, http.MethodGet, "/accounts/"+itoa(created.ID), "", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/accounts", `{"name":"  "}`, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/accounts/424242", "", "")
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("balance is derived from postings", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		dave := testDB.CreateTestAccount(ctx, "dave")
		testDB.FundAccount(ctx, dave.ID, "40")
		testDB.FundAccount(ctx, dave.ID, "2.50")

		balance := accountBalance(t, router, itoa(dave.ID))
		require.True(t, balance.Equal(decimal.RequireFromString("42.50")), "got %s", balance)
	})
}
