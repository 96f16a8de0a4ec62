package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/budgetplanner/internal/domain"
)

// SequenceIDGenerator is an IDGenerator returning prefix-1, prefix-2, ...
type SequenceIDGenerator struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{Prefix: prefix}
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.Prefix, g.n)
}

// RecordingOutbox is an in-memory PatchOutbox that keeps every patch it sees.
type RecordingOutbox struct {
	mu      sync.Mutex
	patches []*domain.Patch
	sent    map[string]bool

	EnqueueFunc func(ctx context.Context, patch *domain.Patch) error
}

func NewRecordingOutbox() *RecordingOutbox {
	return &RecordingOutbox{
		sent: make(map[string]bool),
	}
}

func (o *RecordingOutbox) Enqueue(ctx context.Context, patch *domain.Patch) error {
	if o.EnqueueFunc != nil {
		if err := o.EnqueueFunc(ctx, patch); err != nil {
			return err
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.patches = append(o.patches, patch)
	return nil
}

func (o *RecordingOutbox) GetPending(ctx context.Context, limit int) ([]*domain.Patch, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*domain.Patch
	for _, p := range o.patches {
		if o.sent[p.ID] {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (o *RecordingOutbox) GetPendingByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Patch, error) {
	pending, _ := o.GetPending(ctx, 0)
	var out []*domain.Patch
	for _, p := range pending {
		if p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (o *RecordingOutbox) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent[id] = true
	return nil
}

func (o *RecordingOutbox) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	kept := o.patches[:0:0]
	for _, p := range o.patches {
		if p.WorkspaceID != workspaceID || o.sent[p.ID] {
			kept = append(kept, p)
		}
	}
	o.patches = kept
	return nil
}

func (o *RecordingOutbox) DeleteSent(ctx context.Context, before time.Time) error {
	return nil
}

// Patches returns every patch enqueued so far, oldest first.
func (o *RecordingOutbox) Patches() []*domain.Patch {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*domain.Patch(nil), o.patches...)
}
