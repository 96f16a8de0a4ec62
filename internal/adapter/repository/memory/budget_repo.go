// Package memory provides in-process implementations of the persistence
// interfaces. The offline CLI and tests run the engine against them.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/budgetplanner/internal/domain"
)

type workspace struct {
	budget  *domain.Budget
	applied map[string]int64
}

// BudgetRepository keeps every workspace's authoritative state in memory and
// follows the same version and idempotency rules as the PostgreSQL backend.
type BudgetRepository struct {
	mu         sync.Mutex
	workspaces map[string]*workspace
}

// NewBudgetRepository creates an empty BudgetRepository.
func NewBudgetRepository() *BudgetRepository {
	return &BudgetRepository{
		workspaces: make(map[string]*workspace),
	}
}

// Import stores a complete workspace.
func (r *BudgetRepository) Import(_ context.Context, state *domain.BudgetState) error {
	b, err := domain.NewBudget(*state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[state.WorkspaceID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrWorkspaceExists, state.WorkspaceID)
	}
	r.workspaces[state.WorkspaceID] = &workspace{budget: b, applied: make(map[string]int64)}

	return nil
}

// Load returns a copy of the workspace state.
func (r *BudgetRepository) Load(_ context.Context, workspaceID string) (*domain.BudgetState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, workspaceID)
	}

	state := ws.budget.State()
	return &state, nil
}

// ApplyPatch writes a patch when its base version matches.
func (r *BudgetRepository) ApplyPatch(_ context.Context, patch *domain.Patch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[patch.WorkspaceID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, patch.WorkspaceID)
	}

	if v, ok := ws.applied[patch.ID]; ok {
		return v, nil
	}

	if ws.budget.Version != patch.BaseVersion {
		return 0, fmt.Errorf("%w: workspace %s is at version %d, patch based on %d",
			domain.ErrConflictOnReconcile, patch.WorkspaceID, ws.budget.Version, patch.BaseVersion)
	}

	if err := ws.budget.ApplyPatch(patch); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPatchRejected, err)
	}

	ws.budget.Version++
	ws.applied[patch.ID] = ws.budget.Version

	return ws.budget.Version, nil
}

// CreateMonth stores a newly opened month.
func (r *BudgetRepository) CreateMonth(_ context.Context, workspaceID string, ledger *domain.MonthLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, workspaceID)
	}
	if ws.budget.HasMonth(ledger.Month) {
		return fmt.Errorf("%w: %s", domain.ErrMonthExists, ledger.Month)
	}

	state := ws.budget.State()
	state.Months = append(state.Months, *ledger)

	b, err := domain.NewBudget(state)
	if err != nil {
		return err
	}
	ws.budget = b

	return nil
}

// Bump advances a workspace's version as if another session had written to
// it.
func (r *BudgetRepository) Bump(workspaceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces[workspaceID]; ok {
		ws.budget.Version++
	}
}
