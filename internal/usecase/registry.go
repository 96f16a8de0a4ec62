package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
)

// Registry hands out one engine per workspace. Engines are created on first
// use and live until evicted.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*PlannerUseCase
	loads   singleflight.Group

	repo    BudgetRepository
	outbox  PatchOutbox
	idGen   IDGenerator
	cache   Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRegistry creates a new Registry. cache may be nil.
func NewRegistry(
	repo BudgetRepository,
	outbox PatchOutbox,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *Registry {
	return &Registry{
		engines: make(map[string]*PlannerUseCase),
		repo:    repo,
		outbox:  outbox,
		idGen:   idGen,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Get returns the workspace's engine, loading it if needed.
func (r *Registry) Get(ctx context.Context, workspaceID string) (*PlannerUseCase, error) {
	if workspaceID == "" {
		return nil, domain.ErrWorkspaceRequired
	}

	if uc, ok := r.Lookup(workspaceID); ok {
		return uc, nil
	}

	v, err, _ := r.loads.Do(workspaceID, func() (any, error) {
		if uc, ok := r.Lookup(workspaceID); ok {
			return uc, nil
		}

		uc, err := r.load(ctx, workspaceID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.engines[workspaceID] = uc
		count := len(r.engines)
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.LoadedEngines.Set(float64(count))
		}

		return uc, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*PlannerUseCase), nil
}

// Lookup returns an already loaded engine.
func (r *Registry) Lookup(workspaceID string) (*PlannerUseCase, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uc, ok := r.engines[workspaceID]
	return uc, ok
}

// Evict unloads a workspace's engine and drops its cached state.
func (r *Registry) Evict(ctx context.Context, workspaceID string) {
	r.mu.Lock()
	delete(r.engines, workspaceID)
	count := len(r.engines)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.LoadedEngines.Set(float64(count))
	}

	r.Invalidate(ctx, workspaceID)
}

// Invalidate drops the cached state of a workspace. It is called whenever the
// backend version moves so a later load does not start from a stale copy.
func (r *Registry) Invalidate(ctx context.Context, workspaceID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, stateCacheKey(workspaceID)); err != nil {
		r.logger.Warn().Err(err).Str("workspace_id", workspaceID).Msg("failed to drop cached budget state")
	}
}

// Workspaces lists the loaded workspaces in sorted order.
func (r *Registry) Workspaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) load(ctx context.Context, workspaceID string) (*PlannerUseCase, error) {
	state, err := r.loadState(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	uc, err := NewPlannerUseCase(state, r.repo, r.outbox, r.idGen, r.metrics, r.logger)
	if err != nil {
		return nil, err
	}

	queued, err := r.outbox.GetPendingByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to read queued patches for workspace %s: %w", workspaceID, err)
	}
	if err := uc.replay(queued); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("workspace_id", workspaceID).
		Int64("version", state.Version).
		Int("months", len(state.Months)).
		Int("replayed_patches", len(queued)).
		Msg("planner loaded")

	return uc, nil
}

func (r *Registry) loadState(ctx context.Context, workspaceID string) (*domain.BudgetState, error) {
	key := stateCacheKey(workspaceID)

	if r.cache != nil {
		if data, err := r.cache.Get(ctx, key); err == nil {
			var state domain.BudgetState
			if err := json.Unmarshal(data, &state); err == nil {
				return &state, nil
			}
		}
	}

	state, err := r.repo.Load(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace %s: %w", workspaceID, err)
	}
	state.WorkspaceID = workspaceID

	if r.cache != nil {
		if data, err := json.Marshal(state); err == nil {
			if err := r.cache.Set(ctx, key, data, BudgetStateTTL); err != nil {
				r.logger.Warn().Err(err).Str("workspace_id", workspaceID).Msg("failed to cache budget state")
			}
		}
	}

	return state, nil
}

func stateCacheKey(workspaceID string) string {
	return "budget_state:" + workspaceID
}
