package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
)

// MetricsHook records command counts, durations and errors.
type MetricsHook struct {
	metrics *metrics.Metrics
}

// NewMetricsHook creates a new MetricsHook. Register it with client.AddHook.
func NewMetricsHook(m *metrics.Metrics) *MetricsHook {
	return &MetricsHook{metrics: m}
}

func (h *MetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.metrics.RedisErrors.WithLabelValues("dial").Inc()
		}
		return conn, err
	}
}

func (h *MetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(cmd.Name(), start, err)
		return err
	}
}

func (h *MetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe("pipeline", start, err)
		return err
	}
}

func (h *MetricsHook) observe(operation string, start time.Time, err error) {
	h.metrics.RedisOperations.WithLabelValues(operation).Inc()
	h.metrics.RedisDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	// A missing key is a normal cache miss.
	if err != nil && !errors.Is(err, redis.Nil) {
		h.metrics.RedisErrors.WithLabelValues(operation).Inc()
	}
}
