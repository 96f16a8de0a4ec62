package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Validation errors
	ErrInvalidAmount     = errors.New("budgeted amount must not be negative")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrMonthNotFound     = errors.New("month not found")
	ErrInvalidMonth      = errors.New("invalid month, expected YYYY-MM")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrUnknownCommand    = errors.New("unknown command kind")
	ErrEmptyDistribution = errors.New("distribution produced no changes")
	ErrAlreadyHidden     = errors.New("category is already hidden")
	ErrNotHidden         = errors.New("category is not hidden")
	ErrMonthExists       = errors.New("month already open")
	ErrWorkspaceRequired = errors.New("workspace id is required")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrWorkspaceExists   = errors.New("workspace already exists")

	// History conditions, reported as disabled controls
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// Sync errors
	ErrConflictOnReconcile = errors.New("ledger was modified by another session")
	ErrCommandNotFound     = errors.New("command not found")
	ErrPatchRejected       = errors.New("patch rejected by backend")
)

// ValidationError reports a command that would break a ledger invariant.
// The ledger is unchanged when it is returned.
type ValidationError struct {
	Kind       CommandKind
	Month      Month
	CategoryID string
	Err        error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Kind != "" {
		fmt.Fprintf(&b, " for %s", e.Kind)
	}
	if e.CategoryID != "" {
		fmt.Fprintf(&b, " on category %s", e.CategoryID)
	}
	if !e.Month.IsZero() {
		fmt.Fprintf(&b, " in %s", e.Month)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SyncFailure reports a command whose persistence failed after all retries.
// Its local effect has been reverted; the user may re-attempt it.
type SyncFailure struct {
	CommandID   string
	Kind        CommandKind
	Month       Month
	CategoryIDs []string
	Err         error
}

func (e *SyncFailure) Error() string {
	return fmt.Sprintf("failed to persist %s for %s in %s: %v",
		e.Kind, strings.Join(e.CategoryIDs, ","), e.Month, e.Err)
}

func (e *SyncFailure) Unwrap() error {
	return e.Err
}

func newValidationError(kind CommandKind, month Month, categoryID string, err error) *ValidationError {
	return &ValidationError{Kind: kind, Month: month, CategoryID: categoryID, Err: err}
}
