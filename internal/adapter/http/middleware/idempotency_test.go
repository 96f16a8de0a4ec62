package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/budgetplanner/internal/infrastructure/logger"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	deleted       []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func workspaceRequest(method, key string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/workspaces/ws-1/undo", bytes.NewBufferString(`{}`))
	req = req.WithContext(logger.WithWorkspaceID(req.Context(), "ws-1"))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func TestIdempotencyMiddleware_FailsOnStoreErrors(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, workspaceRequest(http.MethodPost, "key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyOnFailure(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})).ServeHTTP(rr, workspaceRequest(http.MethodPost, "key-fail"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if len(store.deleted) != 1 || store.deleted[0] != "http:ws-1:key-fail" {
		t.Fatalf("expected key to be released, got %v", store.deleted)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatalf("store should not be consulted for GET")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store)

	called := false
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(httptest.NewRecorder(), workspaceRequest(http.MethodGet, "key-get"))

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_ReturnsCachedResponse(t *testing.T) {
	var seenKey string
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			seenKey = key
			return true, []byte(`{"cached":true}`), nil
		},
	}
	mw := NewIdempotencyMiddleware(store)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, workspaceRequest(http.MethodPost, "key-123"))

	if seenKey != "http:ws-1:key-123" {
		t.Fatalf("expected key scoped to workspace, got %s", seenKey)
	}

	if rr.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected X-Idempotency-Replay header to be set")
	}

	if got := rr.Body.String(); got != `{"cached":true}` {
		t.Fatalf("unexpected cached body: %s", got)
	}
}

func TestIdempotencyMiddleware_RejectsInFlightDuplicate(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(processingMarker), nil
		},
	}
	mw := NewIdempotencyMiddleware(store)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the first request is in flight")
	})).ServeHTTP(rr, workspaceRequest(http.MethodPut, "key-dup"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var updatedBody []byte
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updatedBody = append([]byte(nil), response...)
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})).ServeHTTP(rr, workspaceRequest(http.MethodPost, "key-456"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}

	if string(updatedBody) != `{"ok":true}` {
		t.Fatalf("expected cached body to be stored, got %s", string(updatedBody))
	}
}
