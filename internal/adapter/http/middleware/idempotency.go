package middleware

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/infrastructure/logger"
	"github.com/iho/budgetplanner/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"

	processingMarker = "processing"
)

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key. Keys are scoped to the workspace.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(IdempotencyKeyHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := "http:" + logger.WorkspaceID(r.Context()) + ":" + header

		exists, cachedResponse, err := m.store.CheckAndSet(r.Context(), key, nil, usecase.IdempotencyKeyTTL)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if exists {
			if string(cachedResponse) == processingMarker {
				http.Error(w, "request with this idempotency key is in progress", http.StatusConflict)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.Write(cachedResponse)
			return
		}

		// Capture response
		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Failed attempts release the key so the client can retry.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			err = m.store.Update(r.Context(), key, recorder.body.Bytes(), usecase.IdempotencyKeyTTL)
		} else {
			err = m.store.Delete(r.Context(), key)
		}
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("idempotency_key", header).Msg("failed to settle idempotency key")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
