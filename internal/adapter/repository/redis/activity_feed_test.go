package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/domain"
)

func TestActivityFeedDeliversUpdates(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	feed := NewActivityFeed(client, "budget:activity", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []domain.ActivityUpdate
	received := make(chan struct{}, 4)

	done := make(chan error, 1)
	go func() {
		done <- feed.Subscribe(ctx, func(_ context.Context, u domain.ActivityUpdate) error {
			mu.Lock()
			got = append(got, u)
			mu.Unlock()
			received <- struct{}{}
			if u.CategoryID == "bad" {
				return errors.New("handler failed")
			}
			return nil
		})
	}()

	waitForSubscriber(t, mr.PubSubNumSub, "budget:activity")

	// A malformed message is skipped; the handler error does not stop the loop.
	mr.Publish("budget:activity", "{not json")

	updates := []domain.ActivityUpdate{
		{WorkspaceID: "ws-1", Kind: domain.ActivityKindCategory, Month: domain.MustParseMonth("2024-06"), CategoryID: "bad", Amount: 100},
		{WorkspaceID: "ws-1", Kind: domain.ActivityKindIncome, Month: domain.MustParseMonth("2024-06"), Amount: 500000},
	}
	for _, u := range updates {
		if err := feed.Publish(ctx, u); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	for range updates {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for updates")
		}
	}

	mu.Lock()
	if len(got) != 2 || got[1].Kind != domain.ActivityKindIncome || got[1].Amount != 500000 {
		t.Fatalf("unexpected updates: %+v", got)
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("subscriber did not stop")
	}
}

func TestActivityFeedSubscribeDownServer(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	feed := NewActivityFeed(client, "budget:activity", zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := feed.Subscribe(ctx, func(context.Context, domain.ActivityUpdate) error { return nil })
	if err == nil {
		t.Fatalf("expected subscribe error")
	}
}

func waitForSubscriber(t *testing.T, numSub func(...string) map[string]int, channel string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if numSub(channel)[channel] > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no subscriber on %s", channel)
}
