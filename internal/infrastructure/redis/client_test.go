package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClientRejectsMalformedURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-redis-url")
	if err == nil {
		t.Fatalf("expected error for malformed redis URL")
	}
}

func TestNewClientFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), "redis://"+addr)
	if err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestNewClientConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}
