package usecase

import (
	"context"
	"time"

	"github.com/iho/budgetplanner/internal/domain"
)

// BudgetRepository defines data access for a workspace's budget.
type BudgetRepository interface {
	// Load returns the authoritative state, including its version.
	Load(ctx context.Context, workspaceID string) (*domain.BudgetState, error)
	// ApplyPatch writes a patch if its base version matches and returns the
	// new version. Re-sending an applied patch returns the version it produced.
	// A version mismatch returns domain.ErrConflictOnReconcile.
	ApplyPatch(ctx context.Context, patch *domain.Patch) (int64, error)
	// CreateMonth persists a newly opened month.
	CreateMonth(ctx context.Context, workspaceID string, ledger *domain.MonthLedger) error
}

// PatchOutbox defines the ordered queue of patches awaiting persistence.
type PatchOutbox interface {
	Enqueue(ctx context.Context, patch *domain.Patch) error
	// GetPending returns unsent patches oldest first.
	GetPending(ctx context.Context, limit int) ([]*domain.Patch, error)
	// GetPendingByWorkspace returns one workspace's unsent patches oldest first.
	GetPendingByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Patch, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	// DeleteByWorkspace drops every unsent patch of a workspace.
	DeleteByWorkspace(ctx context.Context, workspaceID string) error
	DeleteSent(ctx context.Context, before time.Time) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key so the request can be retried.
	Delete(ctx context.Context, key string) error
}

// ActivityFeed delivers authoritative activity and income figures.
type ActivityFeed interface {
	// Subscribe calls handle for every update until ctx is done.
	Subscribe(ctx context.Context, handle func(context.Context, domain.ActivityUpdate) error) error
	Publish(ctx context.Context, update domain.ActivityUpdate) error
}
