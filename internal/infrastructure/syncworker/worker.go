// Package syncworker drains the patch outbox into the budget backend. It is
// the only component that talks to the backend on behalf of the engines.
package syncworker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
	"github.com/iho/budgetplanner/internal/usecase"
)

const cleanupInterval = time.Hour

// Engines resolves the engine that owns a workspace.
type Engines interface {
	Get(ctx context.Context, workspaceID string) (*usecase.PlannerUseCase, error)
	// Invalidate drops any cached copy of the workspace state.
	Invalidate(ctx context.Context, workspaceID string)
}

// Retrier runs an operation until it succeeds, fails permanently or runs out
// of attempts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Config for Worker.
type Config struct {
	Outbox  usecase.PatchOutbox
	Repo    usecase.BudgetRepository
	Engines Engines
	Retrier Retrier
	// Idempotency is optional. When set, committed versions are remembered
	// under patch:<id> so a patch is never sent twice.
	Idempotency    usecase.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
	BatchSize      int           // Number of patches to fetch per poll
	Interval       time.Duration // Polling interval
	Retention      time.Duration // How long settled patches are kept
}

// Worker sends queued patches to the backend in enqueue order and reports
// each outcome back to the owning engine.
type Worker struct {
	outbox         usecase.PatchOutbox
	repo           usecase.BudgetRepository
	engines        Engines
	retrier        Retrier
	idempotency    usecase.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	batchSize      int
	interval       time.Duration
	retention      time.Duration

	now         func() time.Time
	lastCleanup time.Time
}

// New creates a new Worker.
func New(cfg Config) *Worker {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 200 * time.Millisecond
	}
	if cfg.Retention == 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if cfg.IdempotencyTTL == 0 {
		cfg.IdempotencyTTL = usecase.IdempotencyKeyTTL
	}

	return &Worker{
		outbox:         cfg.Outbox,
		repo:           cfg.Repo,
		engines:        cfg.Engines,
		retrier:        cfg.Retrier,
		idempotency:    cfg.Idempotency,
		idempotencyTTL: cfg.IdempotencyTTL,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger.With().Str("component", "sync_worker").Logger(),
		batchSize:      cfg.BatchSize,
		interval:       cfg.Interval,
		retention:      cfg.Retention,
		now:            time.Now,
	}
}

// Start runs the worker until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("batch_size", w.batchSize).
		Dur("interval", w.interval).
		Msg("sync worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Drain immediately on start
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("sync worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Worker) poll(ctx context.Context) {
	if err := w.processPatches(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error().Err(err).Msg("error processing patches")
	}

	if w.now().Sub(w.lastCleanup) >= cleanupInterval {
		w.cleanup(ctx)
	}
}

// processPatches sends one batch. A workspace whose patch could not be
// settled is skipped for the rest of the batch so its order is kept.
func (w *Worker) processPatches(ctx context.Context) error {
	patches, err := w.outbox.GetPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending patches: %w", err)
	}

	w.setBacklog(len(patches))
	if len(patches) == 0 {
		return nil
	}

	w.logger.Debug().Int("count", len(patches)).Msg("processing patches")

	halted := make(map[string]bool)
	for i, patch := range patches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if halted[patch.WorkspaceID] {
			continue
		}

		halt, err := w.syncPatch(ctx, patch)
		if err != nil {
			w.logger.Error().
				Err(err).
				Str("patch_id", patch.ID).
				Str("workspace_id", patch.WorkspaceID).
				Msg("failed to sync patch")
		}
		if halt {
			halted[patch.WorkspaceID] = true
		}

		w.setBacklog(len(patches) - i - 1)
	}

	return ctx.Err()
}

// syncPatch sends a single patch and settles it. halt reports that the
// workspace's remaining patches must wait for a later poll.
func (w *Worker) syncPatch(ctx context.Context, patch *domain.Patch) (halt bool, err error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.SyncDuration.Observe(time.Since(start).Seconds())
		}
	}()

	engine, err := w.engines.Get(ctx, patch.WorkspaceID)
	if err != nil {
		return true, fmt.Errorf("failed to load planner: %w", err)
	}

	if version, ok := w.recorded(ctx, patch); ok {
		engine.MarkCommitted(patch, version)
		w.settle(ctx, patch, "committed")
		return false, nil
	}

	// The engine's version moves as earlier patches commit, so the base is
	// taken at send time rather than at enqueue time.
	send := *patch
	send.BaseVersion = engine.BaseVersion()

	var version int64
	attempts := 0
	err = w.retrier.Retry(ctx, func() error {
		attempts++
		v, err := w.repo.ApplyPatch(ctx, &send)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	if attempts > 1 && w.metrics != nil {
		w.metrics.SyncRetries.Add(float64(attempts - 1))
	}

	switch {
	case err == nil:
		engine.MarkCommitted(patch, version)
		w.engines.Invalidate(ctx, patch.WorkspaceID)
		w.remember(ctx, patch, version)
		w.settle(ctx, patch, "committed")

		w.logger.Debug().
			Str("patch_id", patch.ID).
			Str("command_id", patch.CommandID).
			Int64("version", version).
			Msg("patch committed")
		return false, nil

	case errors.Is(err, domain.ErrConflictOnReconcile):
		w.count(patch, "conflict")
		w.logger.Warn().
			Err(err).
			Str("patch_id", patch.ID).
			Str("workspace_id", patch.WorkspaceID).
			Msg("workspace changed underneath, reconciling")

		w.engines.Invalidate(ctx, patch.WorkspaceID)
		if rerr := engine.Reconcile(ctx); rerr != nil {
			return true, rerr
		}
		return true, nil

	case ctx.Err() != nil:
		// Shutting down; the patch stays queued for the next run.
		return true, ctx.Err()

	default:
		failure := engine.RevertFailed(patch, err)
		w.settle(ctx, patch, "reverted")
		return false, failure
	}
}

// recorded returns the version a previous send of the patch produced.
func (w *Worker) recorded(ctx context.Context, patch *domain.Patch) (int64, bool) {
	if w.idempotency == nil {
		return 0, false
	}

	exists, value, err := w.idempotency.CheckAndSet(ctx, idempotencyKey(patch.ID), nil, w.idempotencyTTL)
	if err != nil {
		w.logger.Warn().Err(err).Str("patch_id", patch.ID).Msg("idempotency check failed")
		return 0, false
	}
	if !exists {
		return 0, false
	}

	// Anything but a version means an earlier send never finished; the
	// backend's own deduplication covers that case.
	version, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, false
	}

	return version, true
}

func (w *Worker) remember(ctx context.Context, patch *domain.Patch, version int64) {
	if w.idempotency == nil {
		return
	}

	value := []byte(strconv.FormatInt(version, 10))
	if err := w.idempotency.Update(ctx, idempotencyKey(patch.ID), value, w.idempotencyTTL); err != nil {
		w.logger.Warn().Err(err).Str("patch_id", patch.ID).Msg("failed to record committed patch")
	}
}

// settle marks a patch as handled so it is not sent again.
func (w *Worker) settle(ctx context.Context, patch *domain.Patch, status string) {
	if err := w.outbox.MarkSent(ctx, patch.ID, w.now()); err != nil {
		w.logger.Error().
			Err(err).
			Str("patch_id", patch.ID).
			Msg("failed to mark patch as sent")
	}
	w.count(patch, status)
}

func (w *Worker) count(patch *domain.Patch, status string) {
	if w.metrics != nil {
		w.metrics.PatchesSynced.WithLabelValues(string(patch.Op), status).Inc()
	}
}

func (w *Worker) setBacklog(n int) {
	if w.metrics != nil {
		w.metrics.OutboxBacklog.Set(float64(n))
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	w.lastCleanup = w.now()
	before := w.lastCleanup.Add(-w.retention)

	if err := w.outbox.DeleteSent(ctx, before); err != nil {
		w.logger.Error().Err(err).Msg("failed to delete settled patches")
	}
}

func idempotencyKey(patchID string) string {
	return "patch:" + patchID
}
