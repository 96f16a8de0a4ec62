package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"patch:p1", "8", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "patch:p1", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists || string(resp) != "8" {
		t.Fatalf("expected existing response, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_CheckAndSetLocksNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || exists || resp != nil {
		t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
	}

	val, err := client.Get(ctx, store.prefix+"pending").Result()
	if err != nil || val != placeholder {
		t.Fatalf("expected placeholder lock, got val=%s err=%v", val, err)
	}

	ttl := mr.TTL(store.prefix + "pending")
	if ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %v", ttl)
	}
}

func TestIdempotencyStore_CheckAndSetKeepsFirstResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if exists, _, err := store.CheckAndSet(ctx, "key", []byte("first"), time.Minute); err != nil || exists {
		t.Fatalf("expected first call to claim the key, got exists=%v err=%v", exists, err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", []byte("second"), time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}
	if !exists || string(resp) != "first" {
		t.Fatalf("expected first response to win, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_Update(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := store.Update(ctx, "complete", []byte("done"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"complete").Result()
	if err != nil || val != "done" {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}
}

func TestIdempotencyStore_DeleteReleasesKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "http:ws-1:k", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}
	if err := store.Delete(ctx, "http:ws-1:k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, _, err := store.CheckAndSet(ctx, "http:ws-1:k", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("expected released key to be free, got exists=%v err=%v", exists, err)
	}
}
