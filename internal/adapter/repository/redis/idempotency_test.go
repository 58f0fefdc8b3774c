package redis

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestIdempotencyCheckAndSetNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if exists {
		t.Fatal("expected new key to not exist")
	}
}

func TestIdempotencyCheckAndSetExistingKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	response := []byte(`{"status":"ok"}`)
	if _, _, err := store.CheckAndSet(ctx, "key-1", response, time.Minute); err != nil {
		t.Fatalf("first check failed: %v", err)
	}

	exists, cached, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if !exists {
		t.Fatal("expected key to exist")
	}
	if !bytes.Equal(cached, response) {
		t.Fatalf("expected cached response %s, got %s", response, cached)
	}
}

func TestIdempotencyUpdate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	final := []byte(`{"status":"done"}`)
	if err := store.Update(ctx, "key-1", final, time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, cached, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !exists || !bytes.Equal(cached, final) {
		t.Fatalf("expected final response, got exists=%v cached=%s", exists, cached)
	}
}
