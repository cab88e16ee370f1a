package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/rs/zerolog"

	redisrepo "github.com/mkru/transferd/internal/adapter/repository/redis"
)

// IdempotencyKeyHeader is the header name for idempotency keys.
const IdempotencyKeyHeader = "Idempotency-Key"

// ResponseStore claims idempotency keys and replays recorded responses.
type ResponseStore interface {
	Begin(ctx context.Context, key string) (claimed bool, cached *redisrepo.CachedResponse, err error)
	Complete(ctx context.Context, key string, status int, body []byte) error
	Release(ctx context.Context, key string) error
}

// IdempotencyMiddleware short-circuits repeated write requests by replaying
// the recorded response for a seen Idempotency-Key. It is an optimization in
// front of the ledger's own idempotency guarantee, so store failures degrade
// to passing the request through.
type IdempotencyMiddleware struct {
	store  ResponseStore
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store ResponseStore, logger zerolog.Logger) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		claimed, cached, err := m.store.Begin(r.Context(), key)
		if err != nil {
			m.logger.Warn().Err(err).Msg("idempotency store unavailable, passing request through")
			next.ServeHTTP(w, r)
			return
		}

		if claimed && cached != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.WriteHeader(cached.Status)
			w.Write(cached.Body)
			return
		}

		if claimed {
			// first request with this key is still being processed
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"request with this idempotency key is in flight"}`))
			return
		}

		recorder := &bodyRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		// only successful movements are worth replaying; failures release
		// the claim so the client may retry
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			if err := m.store.Complete(r.Context(), key, recorder.statusCode, recorder.body.Bytes()); err != nil {
				m.logger.Warn().Err(err).Msg("failed to record idempotent response")
			}
			return
		}
		if err := m.store.Release(r.Context(), key); err != nil {
			m.logger.Warn().Err(err).Msg("failed to release idempotency key")
		}
	})
}

type bodyRecorder struct {
	http.ResponseWriter

	statusCode int
	body       bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *bodyRecorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
