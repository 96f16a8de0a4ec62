package postgres

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
)

var (
	queryNamePattern = regexp.MustCompile(`^-- name: (\w+)`)
	tablePattern     = regexp.MustCompile(`(?i)\b(?:from|into|update)\s+(\w+)`)
)

type traceKey struct{}

type traceStart struct {
	at        time.Time
	operation string
	table     string
}

// MetricsTracer records query counts, durations and errors.
type MetricsTracer struct {
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewMetricsTracer creates a new MetricsTracer.
func NewMetricsTracer(m *metrics.Metrics) *MetricsTracer {
	return &MetricsTracer{metrics: m, now: time.Now}
}

func (t *MetricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	operation, table := describeQuery(data.SQL)
	return context.WithValue(ctx, traceKey{}, traceStart{at: t.now(), operation: operation, table: table})
}

func (t *MetricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}

	t.metrics.DBQueries.WithLabelValues(start.operation, start.table).Inc()
	t.metrics.DBDuration.WithLabelValues(start.operation, start.table).Observe(t.now().Sub(start.at).Seconds())

	// No rows is an expected outcome of :one queries.
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		t.metrics.DBErrors.WithLabelValues(start.operation).Inc()
	}
}

// describeQuery labels a query by its sqlc name, or by its leading keyword
// for hand-written SQL, and by the first table it touches.
func describeQuery(sql string) (operation, table string) {
	sql = strings.TrimSpace(sql)

	if m := queryNamePattern.FindStringSubmatch(sql); m != nil {
		operation = m[1]
	} else if fields := strings.Fields(sql); len(fields) > 0 {
		operation = strings.ToLower(fields[0])
	}

	table = "unknown"
	if m := tablePattern.FindStringSubmatch(sql); m != nil {
		table = strings.ToLower(m[1])
	}

	return operation, table
}

// ReportPoolStats samples the pool size into the connections gauge until ctx
// is done.
func ReportPoolStats(ctx context.Context, pool *pgxpool.Pool, m *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.DBConnections.Set(float64(pool.Stat().TotalConns()))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
