package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Planner metrics
	CommandsApplied    *prometheus.CounterVec
	CommandsUndone     *prometheus.CounterVec
	CommandsRedone     *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	CommandDuration    prometheus.Histogram
	LoadedEngines      prometheus.Gauge

	// Sync metrics
	PatchesSynced   *prometheus.CounterVec
	SyncRetries     prometheus.Counter
	SyncReverts     *prometheus.CounterVec
	SyncConflicts   prometheus.Counter
	SyncDuration    prometheus.Histogram
	OutboxBacklog   prometheus.Gauge
	ActivityUpdates *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Planner metrics
		CommandsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_commands_applied_total",
				Help: "Total number of commands applied by kind",
			},
			[]string{"kind"},
		),
		CommandsUndone: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_commands_undone_total",
				Help: "Total number of commands undone by kind",
			},
			[]string{"kind"},
		),
		CommandsRedone: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_commands_redone_total",
				Help: "Total number of commands redone by kind",
			},
			[]string{"kind"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_validation_failures_total",
				Help: "Total number of rejected commands by kind",
			},
			[]string{"kind"},
		),
		CommandDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "budgetplanner_command_duration_seconds",
			Help:    "Duration of command application including recompute",
			Buckets: prometheus.DefBuckets,
		}),
		LoadedEngines: factory.NewGauge(prometheus.GaugeOpts{
			Name: "budgetplanner_loaded_engines",
			Help: "Current number of workspaces with a loaded planner",
		}),

		// Sync metrics
		PatchesSynced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_patches_synced_total",
				Help: "Total patches handed to the backend by outcome",
			},
			[]string{"op", "status"},
		),
		SyncRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetplanner_sync_retries_total",
			Help: "Total number of patch send retries",
		}),
		SyncReverts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_sync_reverts_total",
				Help: "Total commands reverted after exhausting retries",
			},
			[]string{"kind"},
		),
		SyncConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetplanner_sync_conflicts_total",
			Help: "Total reconciliations caused by concurrent modification",
		}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "budgetplanner_sync_duration_seconds",
			Help:    "Duration of a single patch send including retries",
			Buckets: prometheus.DefBuckets,
		}),
		OutboxBacklog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "budgetplanner_outbox_backlog",
			Help: "Patches fetched but not yet synced in the last poll",
		}),
		ActivityUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_activity_updates_total",
				Help: "Total activity feed updates by kind and status",
			},
			[]string{"kind", "status"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetplanner_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetplanner_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "budgetplanner_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetplanner_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetplanner_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
