package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/budgetplanner/internal/adapter/http"
	"github.com/iho/budgetplanner/internal/adapter/http/handler"
	"github.com/iho/budgetplanner/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/budgetplanner/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/budgetplanner/internal/adapter/repository/redis"
	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/infrastructure/config"
	"github.com/iho/budgetplanner/internal/infrastructure/logger"
	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
	"github.com/iho/budgetplanner/internal/infrastructure/postgres"
	"github.com/iho/budgetplanner/internal/infrastructure/redis"
	"github.com/iho/budgetplanner/internal/infrastructure/syncworker"
	"github.com/iho/budgetplanner/internal/usecase"
)

const (
	poolStatsInterval   = 15 * time.Second
	limiterCleanupEvery = 10 * time.Minute
	limiterMaxIdle      = time.Hour
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
		Metrics:        m,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return err
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	redisClient.AddHook(redis.NewMetricsHook(m))
	log.Info().Msg("connected to redis")

	// Initialize repositories
	budgetRepo := postgresRepo.NewBudgetRepository(pool, postgresRepo.NewRetrier(log))
	outbox := postgresRepo.NewPatchOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	feed := redisRepo.NewActivityFeed(redisClient, cfg.ActivityChannel, log)

	// One engine per workspace
	registry := usecase.NewRegistry(budgetRepo, outbox, idGen, cache, m, log)

	worker := syncworker.New(syncworker.Config{
		Outbox:         outbox,
		Repo:           budgetRepo,
		Engines:        registry,
		Retrier:        postgresRepo.NewSyncRetrier(int(cfg.SyncMaxRetries), cfg.SyncMaxElapsed, log),
		Idempotency:    idempotencyStore,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Metrics:        m,
		Logger:         log,
		BatchSize:      cfg.SyncBatchSize,
		Interval:       cfg.SyncPollInterval,
		Retention:      cfg.SyncRetention,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PlannerHandler: handler.NewPlannerHandler(registry, feed),
		LedgerHandler:  handler.NewLedgerHandler(registry),
		HealthHandler: handler.NewHealthHandler(pool, handler.PingerFunc(func(ctx context.Context) error {
			return redis.Ping(ctx, redisClient)
		})),
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		Gatherer:         prometheus.DefaultGatherer,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return worker.Start(gctx)
	})

	g.Go(func() error {
		return feed.Subscribe(gctx, applyActivity(registry, log))
	})

	g.Go(func() error {
		postgres.ReportPoolStats(gctx, pool, m, poolStatsInterval)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				rateLimiter.CleanupLimiters(limiterMaxIdle)
			}
		}
	})

	return g.Wait()
}

// applyActivity routes feed updates to loaded engines. Updates for
// workspaces nobody has opened are skipped; the next load reads the
// figures from the database.
func applyActivity(registry *usecase.Registry, log zerolog.Logger) func(context.Context, domain.ActivityUpdate) error {
	return func(ctx context.Context, update domain.ActivityUpdate) error {
		engine, ok := registry.Lookup(update.WorkspaceID)
		if !ok {
			log.Debug().
				Str("workspace_id", update.WorkspaceID).
				Msg("skipping activity for unloaded workspace")
			return nil
		}
		return engine.HandleActivity(ctx, update)
	}
}
