package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// processingMarker claims a key while the first request is still in flight.
const processingMarker = "processing"

// CachedResponse is the recorded outcome of a completed write request,
// replayed verbatim when the same Idempotency-Key arrives again.
type CachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// ResponseCache stores completed responses in Redis, keyed by the client's
// Idempotency-Key. It is a best-effort replay layer in front of the ledger;
// the database unique constraint remains the source of truth.
type ResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		client: client,
		prefix: "transferd:idem:",
		ttl:    ttl,
	}
}

// Begin claims the key for the current request. When a previous request with
// the same key already finished, its recorded response is returned for
// replay. When that request is still in flight, claimed is true with a nil
// response and the caller decides how to answer.
func (c *ResponseCache) Begin(ctx context.Context, key string) (claimed bool, cached *CachedResponse, err error) {
	fullKey := c.prefix + key

	set, err := c.client.SetNX(ctx, fullKey, processingMarker, c.ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if set {
		return false, nil, nil
	}

	raw, err := c.client.Get(ctx, fullKey).Bytes()
	if err == redis.Nil {
		// claim expired between SetNX and Get, treat the key as ours
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if string(raw) == processingMarker {
		return true, nil, nil
	}

	var response CachedResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return false, nil, fmt.Errorf("decode cached response: %w", err)
	}
	return true, &response, nil
}

// Complete records the final response under the key for later replay.
func (c *ResponseCache) Complete(ctx context.Context, key string, status int, body []byte) error {
	raw, err := json.Marshal(CachedResponse{Status: status, Body: body})
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("store cached response: %w", err)
	}
	return nil
}

// Release drops the claim so the client may retry, used when the request
// failed without recording a ledger transaction.
func (c *ResponseCache) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
