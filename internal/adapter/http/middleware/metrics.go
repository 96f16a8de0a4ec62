package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP metrics.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with request counting and timing.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := routePattern(r)

		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern prefers the matched chi pattern and falls back to a
// normalized path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// placeholders maps a collection segment to the name of the id following it.
var placeholders = map[string]string{
	"workspaces": ":workspace",
	"months":     ":month",
	"categories": ":category",
	"pending":    ":command",
}

// normalizePath normalizes URL paths to avoid high cardinality.
// /api/v1/workspaces/ws-1/months/2024-06 -> /api/v1/workspaces/:workspace/months/:month
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if name, ok := placeholders[segments[i-1]]; ok && segments[i] != "" {
			segments[i] = name
		}
	}
	return strings.Join(segments, "/")
}
