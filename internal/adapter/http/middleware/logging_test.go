package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func TestLoggingRecordsStatusAndSize(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := NewLoggingMiddleware(logger).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/accounts/1", nil)
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "req-7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if entry["status"].(float64) != http.StatusTeapot {
		t.Errorf("expected recorded status %d, got %v", http.StatusTeapot, entry["status"])
	}
	if entry["bytes"].(float64) != float64(len("short and stout")) {
		t.Errorf("unexpected response size: %v", entry["bytes"])
	}
	if entry["request_id"] != "req-7" {
		t.Errorf("expected request id to be logged, got %v", entry["request_id"])
	}
	if entry["path"] != "/accounts/1" {
		t.Errorf("unexpected path: %v", entry["path"])
	}
}
