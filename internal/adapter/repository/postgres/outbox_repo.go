package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/infrastructure/postgres/generated"
)

// PatchOutboxRepository implements usecase.PatchOutbox on the patch_outbox
// table. Patches are returned in enqueue order.
type PatchOutboxRepository struct {
	queries *generated.Queries
}

// NewPatchOutboxRepository creates a new PatchOutboxRepository.
func NewPatchOutboxRepository(pool generated.DBTX) *PatchOutboxRepository {
	return &PatchOutboxRepository{
		queries: generated.New(pool),
	}
}

// Enqueue appends a patch to the outbox.
func (r *PatchOutboxRepository) Enqueue(ctx context.Context, patch *domain.Patch) error {
	payload, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	return r.queries.CreatePatchOutbox(ctx, generated.CreatePatchOutboxParams{
		ID:          patch.ID,
		WorkspaceID: patch.WorkspaceID,
		CommandID:   patch.CommandID,
		Payload:     payload,
		CreatedAt:   timeToPgTimestamptz(patch.CreatedAt),
	})
}

// GetPending retrieves unsent patches, oldest first.
func (r *PatchOutboxRepository) GetPending(ctx context.Context, limit int) ([]*domain.Patch, error) {
	rows, err := r.queries.GetPendingPatches(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	return decodePatches(rows)
}

// GetPendingByWorkspace retrieves one workspace's unsent patches, oldest first.
func (r *PatchOutboxRepository) GetPendingByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Patch, error) {
	rows, err := r.queries.GetPendingPatchesByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	return decodePatches(rows)
}

// MarkSent marks a patch as settled.
func (r *PatchOutboxRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.queries.MarkPatchSent(ctx, generated.MarkPatchSentParams{
		ID:     id,
		SentAt: timeToPgTimestamptz(sentAt),
	})
}

// DeleteByWorkspace drops a workspace's unsent patches.
func (r *PatchOutboxRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	return r.queries.DeletePendingPatchesByWorkspace(ctx, workspaceID)
}

// DeleteSent deletes settled patches older than the given time.
func (r *PatchOutboxRepository) DeleteSent(ctx context.Context, before time.Time) error {
	return r.queries.DeleteSentPatches(ctx, timeToPgTimestamptz(before))
}

func decodePatches(rows [][]byte) ([]*domain.Patch, error) {
	patches := make([]*domain.Patch, 0, len(rows))
	for _, payload := range rows {
		var p domain.Patch
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode queued patch: %w", err)
		}
		patches = append(patches, &p)
	}

	return patches, nil
}
