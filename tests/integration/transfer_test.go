package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mkru/transferd/internal/adapter/http/dto"
	"github.com/mkru/transferd/tests/testutil"
)

func doJSON(t *testing.T, router http.Handler, method, path, body, idempotencyKey string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func accountBalance(t *testing.T, router http.Handler, id string) decimal.Decimal {
	t.Helper()

	rec := doJSON(t, router, http.MethodGet, "/accounts/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Balance
}

func TestMovements(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	app := newTestApp(t, testDB)
	router := app.Router

	t.Run("deposit credits the account", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")

		rec := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/deposit", `{"amount":"100.50"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp dto.TransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "deposit", resp.Type)
		require.Equal(t, int64(0), resp.SourceAccountID)
		require.Equal(t, alice.ID, resp.DestinationAccountID)

		balance := accountBalance(t, router, itoa(alice.ID))
		require.True(t, balance.Equal(decimal.RequireFromString("100.50")), "got %s", balance)
	})

	t.Run("withdrawal of the exact balance drains the account", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		testDB.FundAccount(ctx, alice.ID, "75.25")

		rec := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/withdrawal", `{"amount":"75.25"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		balance := accountBalance(t, router, itoa(alice.ID))
		require.True(t, balance.IsZero(), "got %s", balance)
	})

	t.Run("overdraft is rejected and balance unchanged", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		testDB.FundAccount(ctx, alice.ID, "50")

		rec := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/withdrawal", `{"amount":"50.01"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		balance := accountBalance(t, router, itoa(alice.ID))
		require.True(t, balance.Equal(decimal.RequireFromString("50")), "got %s", balance)
	})

	t.Run("transfer moves money between accounts", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		bob := testDB.CreateTestAccount(ctx, "bob")
		testDB.FundAccount(ctx, alice.ID, "1000")

		path := "/accounts/" + itoa(alice.ID) + "/transfer/" + itoa(bob.ID)
		rec := doJSON(t, router, http.MethodPost, path, `{"amount":"100.50"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		require.True(t, accountBalance(t, router, itoa(alice.ID)).Equal(decimal.RequireFromString("899.50")))
		require.True(t, accountBalance(t, router, itoa(bob.ID)).Equal(decimal.RequireFromString("100.50")))
	})

	t.Run("transaction lookup returns both posting legs", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		bob := testDB.CreateTestAccount(ctx, "bob")
		testDB.FundAccount(ctx, alice.ID, "200")

		path := "/accounts/" + itoa(alice.ID) + "/transfer/" + itoa(bob.ID)
		rec := doJSON(t, router, http.MethodPost, path, `{"amount":"60.25"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var created dto.TransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = doJSON(t, router, http.MethodGet, "/transactions/"+itoa(created.ID), "", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var fetched dto.TransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
		require.Len(t, fetched.Postings, 2)

		legs := map[string]dto.PostingResponse{}
		for _, p := range fetched.Postings {
			legs[p.Side] = p
		}
		require.Equal(t, alice.ID, legs["debit"].AccountID)
		require.Equal(t, bob.ID, legs["credit"].AccountID)
		require.True(t, legs["debit"].Amount.Equal(decimal.RequireFromString("60.25")))
		require.True(t, legs["credit"].Amount.Equal(legs["debit"].Amount), "legs must balance")
	})

	t.Run("transfer to missing destination is 404", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		testDB.FundAccount(ctx, alice.ID, "100")

		path := "/accounts/" + itoa(alice.ID) + "/transfer/999999"
		rec := doJSON(t, router, http.MethodPost, path, `{"amount":"10"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("transfer to the same account is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		testDB.FundAccount(ctx, alice.ID, "100")

		path := "/accounts/" + itoa(alice.ID) + "/transfer/" + itoa(alice.ID)
		rec := doJSON(t, router, http.MethodPost, path, `{"amount":"10"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("sub-cent amount is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")

		rec := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/deposit", `{"amount":"10.555"}`, testutil.GenerateKey())
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("movement without idempotency key is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")

		rec := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/deposit", `{"amount":"10"}`, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("repeating a deposit with the same key applies it once", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		key := testutil.GenerateKey()

		first := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/deposit", `{"amount":"10"}`, key)
		require.Equal(t, http.StatusOK, first.Code, first.Body.String())

		second := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/deposit", `{"amount":"10"}`, key)
		require.Equal(t, http.StatusOK, second.Code, second.Body.String())

		var firstResp, secondResp dto.TransactionResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
		require.Equal(t, firstResp.ID, secondResp.ID)

		balance := accountBalance(t, router, itoa(alice.ID))
		require.True(t, balance.Equal(decimal.RequireFromString("10")), "got %s", balance)
	})

	t.Run("failed withdrawal does not consume the key", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		alice := testDB.CreateTestAccount(ctx, "alice")
		key := testutil.GenerateKey()

		rec := doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/withdrawal", `{"amount":"10"}`, key)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		testDB.FundAccount(ctx, alice.ID, "10")

		rec = doJSON(t, router, http.MethodPost, "/accounts/"+itoa(alice.ID)+"/withdrawal", `{"amount":"10"}`, key)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}
