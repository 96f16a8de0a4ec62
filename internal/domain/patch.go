package domain

import (
	"fmt"
	"time"
)

// PatchOp says which side of a command a patch carries.
type PatchOp string

const (
	PatchOpApply PatchOp = "apply"
	PatchOpUndo  PatchOp = "undo"
	PatchOpRedo  PatchOp = "redo"
)

// PatchField is the absolute value a field must hold after the patch.
type PatchField struct {
	Month      Month  `json:"month"`
	CategoryID string `json:"category_id"`
	Field      Field  `json:"field"`
	Value      Value  `json:"value"`
}

// Patch is the serializable form of a command step handed to the sync
// coordinator. Fields carry absolute values, so re-sending a patch converges
// on the same state; the backend additionally deduplicates by ID.
type Patch struct {
	ID          string       `json:"id"`
	CommandID   string       `json:"command_id"`
	WorkspaceID string       `json:"workspace_id"`
	Kind        CommandKind  `json:"kind"`
	Op          PatchOp      `json:"op"`
	TargetMonth Month        `json:"target_month"`
	CategoryID  string       `json:"category_id,omitempty"`
	Fields      []PatchField `json:"fields"`
	BaseVersion int64        `json:"base_version"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewPatch builds the patch for one step of a command. Undo patches carry the
// before values, apply and redo patches the after values.
func NewPatch(id, workspaceID string, cmd *Command, op PatchOp, baseVersion int64, now time.Time) *Patch {
	changes := PatchChanges(cmd, op)
	fields := make([]PatchField, 0, len(changes))
	for _, ch := range changes {
		fields = append(fields, PatchField{
			Month:      ch.Month,
			CategoryID: ch.CategoryID,
			Field:      ch.Field,
			Value:      ch.After,
		})
	}

	return &Patch{
		ID:          id,
		CommandID:   cmd.ID,
		WorkspaceID: workspaceID,
		Kind:        cmd.Kind,
		Op:          op,
		TargetMonth: cmd.TargetMonth,
		CategoryID:  cmd.CategoryID,
		Fields:      fields,
		BaseVersion: baseVersion,
		CreatedAt:   now,
	}
}

// PatchChanges is the change set a patch step writes: the command's changes
// for apply and redo, their inverse for undo.
func PatchChanges(cmd *Command, op PatchOp) []Change {
	if op == PatchOpUndo {
		return InvertChanges(cmd.Changes)
	}
	return cmd.Changes
}

// Changes turns the patch fields back into forward changes.
func (p *Patch) Changes() []Change {
	changes := make([]Change, 0, len(p.Fields))
	for _, f := range p.Fields {
		changes = append(changes, Change{
			Month:      f.Month,
			CategoryID: f.CategoryID,
			Field:      f.Field,
			After:      f.Value,
		})
	}
	return changes
}

// CategoryIDs lists the categories the patch writes, in field order.
func (p *Patch) CategoryIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, f := range p.Fields {
		if !seen[f.CategoryID] {
			seen[f.CategoryID] = true
			ids = append(ids, f.CategoryID)
		}
	}
	return ids
}

// ApplyPatch writes a patch's absolute values onto the budget. Backends use it
// to keep their copy of the state in step with the engine.
func (b *Budget) ApplyPatch(p *Patch) error {
	return b.ApplyChanges(p.Changes(), true)
}

// ReplayPatch applies a patch like ApplyPatch and returns the changes it made
// with their before values read from the budget, so the write can be reverted.
func (b *Budget) ReplayPatch(p *Patch) ([]Change, error) {
	changes := p.Changes()
	for i := range changes {
		cur, err := b.read(changes[i])
		if err != nil {
			return nil, fmt.Errorf("%s %s %s: %w", changes[i].Field, changes[i].CategoryID, changes[i].Month, err)
		}
		changes[i].Before = cur
	}

	if err := b.ApplyChanges(changes, true); err != nil {
		return nil, err
	}
	return changes, nil
}

// ActivityKind distinguishes activity and income updates from the feed.
type ActivityKind string

const (
	ActivityKindCategory ActivityKind = "activity"
	ActivityKindIncome   ActivityKind = "income"
)

// ActivityUpdate is an authoritative figure from the external activity feed.
type ActivityUpdate struct {
	WorkspaceID string       `json:"workspace_id"`
	Kind        ActivityKind `json:"kind"`
	Month       Month        `json:"month"`
	CategoryID  string       `json:"category_id,omitempty"`
	Amount      Money        `json:"amount_cents"`
}
