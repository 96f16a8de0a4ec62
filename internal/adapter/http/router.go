package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/adapter/http/handler"
	"github.com/iho/budgetplanner/internal/adapter/http/middleware"
	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
	"github.com/iho/budgetplanner/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PlannerHandler   *handler.PlannerHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1/workspaces/{workspaceID}", func(r chi.Router) {
		r.Use(middleware.Workspace)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/months/{month}", func(r chi.Router) {
			r.Get("/", cfg.PlannerHandler.GetMonth)
			r.Post("/", cfg.PlannerHandler.OpenMonth)
			r.Post("/distribute", cfg.PlannerHandler.Distribute)
			r.Post("/activity", cfg.PlannerHandler.RecordActivity)

			r.Route("/categories/{categoryID}", func(r chi.Router) {
				r.Put("/budgeted", cfg.PlannerHandler.SetBudgeted)
				r.Post("/rollover", cfg.PlannerHandler.ToggleRollover)
				r.Post("/hide", cfg.PlannerHandler.HideCategory)
				r.Post("/unhide", cfg.PlannerHandler.UnhideCategory)
			})
		})

		r.Post("/undo", cfg.PlannerHandler.Undo)
		r.Post("/redo", cfg.PlannerHandler.Redo)
		r.Get("/history", cfg.PlannerHandler.GetHistory)

		r.Get("/pending", cfg.PlannerHandler.ListPending)
		r.Post("/pending/{commandID}/confirm", cfg.PlannerHandler.ConfirmPending)
		r.Delete("/pending/{commandID}", cfg.PlannerHandler.DiscardPending)

		r.Get("/failures", cfg.PlannerHandler.ListFailures)
		r.Delete("/failures", cfg.PlannerHandler.ClearFailures)

		r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
