package postgres

import (
	"context"
	"time"

	"github.com/iho/budgetplanner/internal/domain"
)

// NullPatchOutbox discards every patch. Dry runs use it to apply commands
// without persisting them.
type NullPatchOutbox struct{}

// NewNullPatchOutbox creates a new NullPatchOutbox.
func NewNullPatchOutbox() *NullPatchOutbox {
	return &NullPatchOutbox{}
}

func (r *NullPatchOutbox) Enqueue(ctx context.Context, patch *domain.Patch) error {
	return nil
}

func (r *NullPatchOutbox) GetPending(ctx context.Context, limit int) ([]*domain.Patch, error) {
	return nil, nil
}

func (r *NullPatchOutbox) GetPendingByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Patch, error) {
	return nil, nil
}

func (r *NullPatchOutbox) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return nil
}

func (r *NullPatchOutbox) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	return nil
}

func (r *NullPatchOutbox) DeleteSent(ctx context.Context, before time.Time) error {
	return nil
}
