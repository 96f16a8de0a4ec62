package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/infrastructure/metrics"
)

var (
	// ErrInconsistentLedger is returned when a derived figure does not match its inputs.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: derived figures do not match")
)

// PlannerUseCase is the command and undo engine of one workspace. It is the
// single writer of the budget and of both history stacks. Every method runs
// under one mutex, so commands apply strictly in submission order.
type PlannerUseCase struct {
	mu sync.Mutex

	workspaceID string
	budget      *domain.Budget
	undo        []*domain.Command
	redo        []*domain.Command
	pending     []*domain.Command
	failures    []domain.SyncFailure

	// commands indexes every command that is on a stack or still has
	// patches in the outbox; inflight counts those patches.
	commands map[string]*domain.Command
	inflight map[string]int
	// replayed holds, by patch ID, the changes of queued patches that were
	// applied at load time and have no command of their own.
	replayed map[string][]domain.Change
	// activity holds the latest feed figures received since load.
	activity map[activityKey]domain.ActivityUpdate

	repo    BudgetRepository
	outbox  PatchOutbox
	idGen   IDGenerator
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewPlannerUseCase creates an engine over a loaded budget state.
func NewPlannerUseCase(
	state *domain.BudgetState,
	repo BudgetRepository,
	outbox PatchOutbox,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) (*PlannerUseCase, error) {
	budget, err := domain.NewBudget(*state)
	if err != nil {
		return nil, fmt.Errorf("invalid budget state for workspace %s: %w", state.WorkspaceID, err)
	}

	return &PlannerUseCase{
		workspaceID: state.WorkspaceID,
		budget:      budget,
		commands:    make(map[string]*domain.Command),
		inflight:    make(map[string]int),
		replayed:    make(map[string][]domain.Change),
		activity:    make(map[activityKey]domain.ActivityUpdate),
		repo:        repo,
		outbox:      outbox,
		idGen:       idGen,
		metrics:     metrics,
		logger:      logger.With().Str("workspace_id", state.WorkspaceID).Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// WorkspaceID returns the workspace the engine serves.
func (uc *PlannerUseCase) WorkspaceID() string {
	return uc.workspaceID
}

// BaseVersion is the backend version the local state is based on.
func (uc *PlannerUseCase) BaseVersion() int64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.budget.Version
}

// Apply validates and applies a command built by the caller. Its before
// values are refreshed from the current state first.
func (uc *PlannerUseCase) Apply(ctx context.Context, cmd *domain.Command) (*domain.MonthLedger, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rebased, err := uc.budget.Rebase(cmd)
	if err != nil {
		uc.rejected(cmd.Kind)
		return nil, err
	}

	return uc.applyLocked(ctx, rebased)
}

// SetBudgeted assigns amount to a category in month.
func (uc *PlannerUseCase) SetBudgeted(ctx context.Context, month domain.Month, categoryID string, amount domain.Money) (*domain.MonthLedger, error) {
	return uc.plan(ctx, domain.CommandSetBudgeted, func() (*domain.Command, error) {
		return uc.budget.PlanSetBudgeted(month, categoryID, amount)
	})
}

// ToggleRollover flips a category's rollover setting from month onwards.
func (uc *PlannerUseCase) ToggleRollover(ctx context.Context, month domain.Month, categoryID string) (*domain.MonthLedger, error) {
	return uc.plan(ctx, domain.CommandToggleRollover, func() (*domain.Command, error) {
		return uc.budget.PlanToggleRollover(month, categoryID)
	})
}

// HideCategory hides a category.
func (uc *PlannerUseCase) HideCategory(ctx context.Context, month domain.Month, categoryID string) (*domain.MonthLedger, error) {
	return uc.plan(ctx, domain.CommandHideCategory, func() (*domain.Command, error) {
		return uc.budget.PlanHide(month, categoryID)
	})
}

// UnhideCategory shows a hidden category again, starting fresh in month.
func (uc *PlannerUseCase) UnhideCategory(ctx context.Context, month domain.Month, categoryID string) (*domain.MonthLedger, error) {
	return uc.plan(ctx, domain.CommandUnhideCategory, func() (*domain.Command, error) {
		return uc.budget.PlanUnhide(month, categoryID)
	})
}

// Distribute runs a distribution strategy and applies it as one command.
func (uc *PlannerUseCase) Distribute(ctx context.Context, month domain.Month, strategy domain.Strategy) (*domain.MonthLedger, error) {
	return uc.plan(ctx, domain.CommandBulkDistribute, func() (*domain.Command, error) {
		patches, err := uc.budget.Distribute(month, strategy)
		if err != nil {
			return nil, err
		}
		return uc.budget.PlanBulkDistribute(month, strategy, patches)
	})
}

func (uc *PlannerUseCase) plan(ctx context.Context, kind domain.CommandKind, build func() (*domain.Command, error)) (*domain.MonthLedger, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	cmd, err := build()
	if err != nil {
		uc.rejected(kind)
		return nil, err
	}

	return uc.applyLocked(ctx, cmd)
}

func (uc *PlannerUseCase) applyLocked(ctx context.Context, cmd *domain.Command) (*domain.MonthLedger, error) {
	start := uc.now()

	cmd.ID = uc.idGen.Generate()
	cmd.Timestamp = start
	cmd.State = domain.CommandPending

	if err := uc.budget.ApplyChanges(cmd.Changes, true); err != nil {
		uc.rejected(cmd.Kind)
		return nil, err
	}

	if err := uc.enqueue(ctx, cmd, domain.PatchOpApply); err != nil {
		uc.restore(cmd.Changes, false)
		return nil, err
	}

	_ = cmd.Transition(domain.CommandApplied)
	uc.commands[cmd.ID] = cmd
	uc.undo = append(uc.undo, cmd)
	uc.clearRedo()
	uc.trimHistory()

	if uc.metrics != nil {
		uc.metrics.CommandsApplied.WithLabelValues(string(cmd.Kind)).Inc()
		uc.metrics.CommandDuration.Observe(time.Since(start).Seconds())
	}

	return uc.budget.Snapshot(cmd.TargetMonth)
}

// Undo reverts the most recent command. A bulk distribution is one step.
func (uc *PlannerUseCase) Undo(ctx context.Context) (*domain.MonthLedger, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(uc.undo) == 0 {
		return nil, domain.ErrNothingToUndo
	}

	cmd := uc.undo[len(uc.undo)-1]

	if err := uc.budget.ApplyChanges(cmd.Changes, false); err != nil {
		return nil, err
	}

	if err := uc.enqueue(ctx, cmd, domain.PatchOpUndo); err != nil {
		uc.restore(cmd.Changes, true)
		return nil, err
	}

	_ = cmd.Transition(domain.CommandRolledBack)
	uc.undo = uc.undo[:len(uc.undo)-1]
	uc.redo = append(uc.redo, cmd)

	if uc.metrics != nil {
		uc.metrics.CommandsUndone.WithLabelValues(string(cmd.Kind)).Inc()
	}

	return uc.budget.Snapshot(cmd.TargetMonth)
}

// Redo re-applies the most recently undone command.
func (uc *PlannerUseCase) Redo(ctx context.Context) (*domain.MonthLedger, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(uc.redo) == 0 {
		return nil, domain.ErrNothingToRedo
	}

	cmd := uc.redo[len(uc.redo)-1]

	if err := uc.budget.ApplyChanges(cmd.Changes, true); err != nil {
		return nil, err
	}

	if err := uc.enqueue(ctx, cmd, domain.PatchOpRedo); err != nil {
		uc.restore(cmd.Changes, false)
		return nil, err
	}

	_ = cmd.Transition(domain.CommandApplied)
	uc.redo = uc.redo[:len(uc.redo)-1]
	uc.undo = append(uc.undo, cmd)

	if uc.metrics != nil {
		uc.metrics.CommandsRedone.WithLabelValues(string(cmd.Kind)).Inc()
	}

	return uc.budget.Snapshot(cmd.TargetMonth)
}

// LastActionLabel describes the command the next undo would revert.
func (uc *PlannerUseCase) LastActionLabel() (string, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(uc.undo) == 0 {
		return "", false
	}
	return uc.undo[len(uc.undo)-1].Label, true
}

func (uc *PlannerUseCase) CanUndo() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.undo) > 0
}

func (uc *PlannerUseCase) CanRedo() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.redo) > 0
}

// GetLedger returns a detached snapshot of one month.
func (uc *PlannerUseCase) GetLedger(month domain.Month) (*domain.MonthLedger, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.budget.Snapshot(month)
}

// State returns a deep copy of the whole budget.
func (uc *PlannerUseCase) State() domain.BudgetState {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.budget.State()
}

// Months lists the loaded months, oldest first.
func (uc *PlannerUseCase) Months() []domain.Month {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.budget.Months()
}

// Projection is everything a month view needs in one consistent read.
type Projection struct {
	Ledger          *domain.MonthLedger
	Visible         []domain.CategoryMonthFigures
	Hidden          []domain.CategoryMonthFigures
	CanUndo         bool
	CanRedo         bool
	LastActionLabel string
	Pending         []*domain.Command
	Failures        []domain.SyncFailure
	Version         int64
}

// Project builds the read model of one month.
func (uc *PlannerUseCase) Project(month domain.Month) (*Projection, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ledger, err := uc.budget.Snapshot(month)
	if err != nil {
		return nil, err
	}

	p := &Projection{
		Ledger:   ledger,
		Visible:  domain.ListVisible(ledger),
		Hidden:   domain.ListHidden(ledger),
		CanUndo:  len(uc.undo) > 0,
		CanRedo:  len(uc.redo) > 0,
		Pending:  cloneCommands(uc.pending),
		Failures: append([]domain.SyncFailure(nil), uc.failures...),
		Version:  uc.budget.Version,
	}
	if p.CanUndo {
		p.LastActionLabel = uc.undo[len(uc.undo)-1].Label
	}

	return p, nil
}

// HistoryView lists both stacks, oldest first.
type HistoryView struct {
	Undo []*domain.Command
	Redo []*domain.Command
}

// History returns copies of the undo and redo stacks.
func (uc *PlannerUseCase) History() HistoryView {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return HistoryView{
		Undo: cloneCommands(uc.undo),
		Redo: cloneCommands(uc.redo),
	}
}

// OpenMonth starts a new month and persists it.
func (uc *PlannerUseCase) OpenMonth(ctx context.Context, month domain.Month) (*domain.MonthLedger, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.budget.OpenMonth(month); err != nil {
		return nil, err
	}

	ledger, err := uc.budget.Snapshot(month)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.CreateMonth(ctx, uc.workspaceID, ledger); err != nil {
		if cerr := uc.budget.CloseMonth(month); cerr != nil {
			uc.logger.Error().Err(cerr).Str("month", month.String()).Msg("failed to back out month")
		}
		return nil, fmt.Errorf("failed to persist month %s: %w", month, err)
	}

	return ledger, nil
}

// SetActivity records an authoritative activity figure. It is not undoable
// and never written back.
func (uc *PlannerUseCase) SetActivity(month domain.Month, categoryID string, activity domain.Money) error {
	return uc.HandleActivity(context.Background(), domain.ActivityUpdate{
		WorkspaceID: uc.workspaceID,
		Kind:        domain.ActivityKindCategory,
		Month:       month,
		CategoryID:  categoryID,
		Amount:      activity,
	})
}

// SetIncome records an authoritative income figure for a month.
func (uc *PlannerUseCase) SetIncome(month domain.Month, income domain.Money) error {
	return uc.HandleActivity(context.Background(), domain.ActivityUpdate{
		WorkspaceID: uc.workspaceID,
		Kind:        domain.ActivityKindIncome,
		Month:       month,
		Amount:      income,
	})
}

// HandleActivity applies one update from the activity feed. The producer of
// the feed owns persistence; the engine keeps the latest figure per month and
// category so a reconcile against a lagging backend does not drop it.
func (uc *PlannerUseCase) HandleActivity(_ context.Context, update domain.ActivityUpdate) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	err := applyActivity(uc.budget, update)
	if err == nil {
		uc.activity[activityKey{kind: update.Kind, month: update.Month, categoryID: update.CategoryID}] = update
	}

	if uc.metrics != nil {
		status := "applied"
		if err != nil {
			status = "rejected"
		}
		uc.metrics.ActivityUpdates.WithLabelValues(string(update.Kind), status).Inc()
	}

	return err
}

type activityKey struct {
	kind       domain.ActivityKind
	month      domain.Month
	categoryID string
}

func applyActivity(budget *domain.Budget, update domain.ActivityUpdate) error {
	switch update.Kind {
	case domain.ActivityKindCategory:
		return budget.SetActivity(update.Month, update.CategoryID, update.Amount)
	case domain.ActivityKindIncome:
		return budget.SetIncome(update.Month, update.Amount)
	default:
		return fmt.Errorf("unknown activity kind %q", update.Kind)
	}
}

// MarkCommitted records the backend's acknowledgment of a patch.
func (uc *PlannerUseCase) MarkCommitted(patch *domain.Patch, version int64) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if version > uc.budget.Version {
		uc.budget.Version = version
	}
	delete(uc.replayed, patch.ID)

	cmd, ok := uc.commands[patch.CommandID]
	if !ok {
		return
	}

	if patch.Op != domain.PatchOpUndo && cmd.State == domain.CommandApplied {
		_ = cmd.Transition(domain.CommandCommitted)
	}

	uc.release(cmd.ID)
}

// RevertFailed backs out a patch the backend never applied. Only fields that
// still hold the patch's value are restored, so later edits survive. The
// command leaves both stacks and the failure is recorded for display.
func (uc *PlannerUseCase) RevertFailed(patch *domain.Patch, cause error) *domain.SyncFailure {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	failure := domain.SyncFailure{
		CommandID:   patch.CommandID,
		Kind:        patch.Kind,
		Month:       patch.TargetMonth,
		CategoryIDs: patch.CategoryIDs(),
		Err:         cause,
	}

	cmd, ok := uc.commands[patch.CommandID]
	if !ok {
		uc.revertReplayed(patch, cause)
		uc.recordFailure(failure)
		return &failure
	}

	failure.CategoryIDs = cmd.CategoryIDs()
	reverted := uc.budget.RevertChanges(domain.PatchChanges(cmd, patch.Op))

	if err := cmd.Transition(domain.CommandReverted); err != nil {
		uc.logger.Warn().Err(err).Str("command_id", cmd.ID).Msg("unexpected command state on revert")
	}
	uc.undo = removeCommand(uc.undo, cmd.ID)
	uc.redo = removeCommand(uc.redo, cmd.ID)
	uc.release(cmd.ID)
	uc.recordFailure(failure)

	if uc.metrics != nil {
		uc.metrics.SyncReverts.WithLabelValues(string(cmd.Kind)).Inc()
	}

	uc.logger.Warn().
		Err(cause).
		Str("command_id", cmd.ID).
		Str("op", string(patch.Op)).
		Int("fields_reverted", len(reverted)).
		Msg("reverted command after sync failure")

	return &failure
}

// revertReplayed backs out a patch that was queued before this engine loaded.
func (uc *PlannerUseCase) revertReplayed(patch *domain.Patch, cause error) {
	changes, ok := uc.replayed[patch.ID]
	if !ok {
		uc.logger.Warn().
			Str("patch_id", patch.ID).
			Str("command_id", patch.CommandID).
			Msg("failed patch belongs to an unknown command")
		return
	}
	delete(uc.replayed, patch.ID)

	reverted := uc.budget.RevertChanges(changes)

	if uc.metrics != nil {
		uc.metrics.SyncReverts.WithLabelValues(string(patch.Kind)).Inc()
	}

	uc.logger.Warn().
		Err(cause).
		Str("patch_id", patch.ID).
		Str("command_id", patch.CommandID).
		Int("fields_reverted", len(reverted)).
		Msg("reverted replayed patch after sync failure")
}

// Failures lists recent sync failures, oldest first.
func (uc *PlannerUseCase) Failures() []domain.SyncFailure {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]domain.SyncFailure(nil), uc.failures...)
}

// ClearFailures dismisses every recorded sync failure.
func (uc *PlannerUseCase) ClearFailures() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.failures = nil
}

// Reconcile replaces local state with the backend's after a conflict.
// Commands the backend never acknowledged move to the pending list; the user
// re-applies them with ConfirmPending or drops them with DiscardPending.
func (uc *PlannerUseCase) Reconcile(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.repo.Load(ctx, uc.workspaceID)
	if err != nil {
		return fmt.Errorf("failed to reload workspace %s: %w", uc.workspaceID, err)
	}

	budget, err := domain.NewBudget(*state)
	if err != nil {
		return fmt.Errorf("invalid budget state for workspace %s: %w", uc.workspaceID, err)
	}

	if err := uc.outbox.DeleteByWorkspace(ctx, uc.workspaceID); err != nil {
		return fmt.Errorf("failed to clear outbox for workspace %s: %w", uc.workspaceID, err)
	}

	var unconfirmed []*domain.Command
	for _, cmd := range uc.undo {
		if cmd.State == domain.CommandApplied {
			unconfirmed = append(unconfirmed, cmd.Clone())
		}
	}
	// An undo whose patch never reached the backend is a local change too.
	for _, cmd := range uc.redo {
		if cmd.State == domain.CommandRolledBack && uc.inflight[cmd.ID] > 0 {
			unconfirmed = append(unconfirmed, inverseCommand(cmd))
		}
	}

	for key, update := range uc.activity {
		if err := applyActivity(budget, update); err != nil {
			delete(uc.activity, key)
			uc.logger.Warn().
				Err(err).
				Str("kind", string(update.Kind)).
				Str("month", update.Month.String()).
				Msg("dropping activity figure after reconcile")
		}
	}

	uc.budget = budget
	uc.undo = nil
	uc.redo = nil
	uc.commands = make(map[string]*domain.Command)
	uc.inflight = make(map[string]int)
	uc.replayed = make(map[string][]domain.Change)
	uc.pending = append(uc.pending, unconfirmed...)

	if uc.metrics != nil {
		uc.metrics.SyncConflicts.Inc()
	}

	uc.logger.Warn().
		Int64("version", budget.Version).
		Int("pending", len(unconfirmed)).
		Msg("reconciled with backend after conflict")

	return nil
}

// PendingCommands lists commands awaiting confirmation after a conflict.
func (uc *PlannerUseCase) PendingCommands() []*domain.Command {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return cloneCommands(uc.pending)
}

// ConfirmPending re-applies a pending command on top of the refreshed state.
func (uc *PlannerUseCase) ConfirmPending(ctx context.Context, commandID string) (*domain.MonthLedger, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := indexCommand(uc.pending, commandID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrCommandNotFound, commandID)
	}

	rebased, err := uc.budget.Rebase(uc.pending[i])
	if err != nil {
		uc.rejected(uc.pending[i].Kind)
		return nil, err
	}

	ledger, err := uc.applyLocked(ctx, rebased)
	if err != nil {
		return nil, err
	}

	uc.pending = removeCommand(uc.pending, commandID)
	return ledger, nil
}

// DiscardPending drops a pending command.
func (uc *PlannerUseCase) DiscardPending(commandID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if indexCommand(uc.pending, commandID) < 0 {
		return fmt.Errorf("%w: %s", domain.ErrCommandNotFound, commandID)
	}
	uc.pending = removeCommand(uc.pending, commandID)
	return nil
}

// CheckConsistency verifies every derived figure against its inputs.
func (uc *PlannerUseCase) CheckConsistency(_ context.Context) (bool, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.budget.CheckConsistency(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInconsistentLedger, err)
	}
	return true, nil
}

// replay applies patches that were queued before the engine was loaded, so
// local state matches what the backend will hold once they are sent.
func (uc *PlannerUseCase) replay(patches []*domain.Patch) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, p := range patches {
		changes, err := uc.budget.ReplayPatch(p)
		if err != nil {
			return fmt.Errorf("failed to replay patch %s: %w", p.ID, err)
		}
		uc.replayed[p.ID] = changes
	}
	return nil
}

func (uc *PlannerUseCase) enqueue(ctx context.Context, cmd *domain.Command, op domain.PatchOp) error {
	patch := domain.NewPatch(uc.idGen.Generate(), uc.workspaceID, cmd, op, uc.budget.Version, uc.now())
	if err := uc.outbox.Enqueue(ctx, patch); err != nil {
		return fmt.Errorf("failed to enqueue %s patch: %w", op, err)
	}
	uc.inflight[cmd.ID]++
	return nil
}

// restore undoes a local write whose patch could not be queued.
func (uc *PlannerUseCase) restore(changes []domain.Change, forward bool) {
	if err := uc.budget.ApplyChanges(changes, forward); err != nil {
		uc.logger.Error().Err(err).Msg("failed to restore state after enqueue failure")
	}
}

// release drops one in-flight patch and forgets the command once nothing
// references it.
func (uc *PlannerUseCase) release(commandID string) {
	if uc.inflight[commandID] > 0 {
		uc.inflight[commandID]--
	}
	uc.forget(commandID)
}

func (uc *PlannerUseCase) forget(commandID string) {
	if uc.inflight[commandID] > 0 {
		return
	}
	if indexCommand(uc.undo, commandID) >= 0 || indexCommand(uc.redo, commandID) >= 0 {
		return
	}
	delete(uc.inflight, commandID)
	delete(uc.commands, commandID)
}

func (uc *PlannerUseCase) clearRedo() {
	dropped := uc.redo
	uc.redo = nil
	for _, cmd := range dropped {
		uc.forget(cmd.ID)
	}
}

func (uc *PlannerUseCase) trimHistory() {
	for len(uc.undo) > MaxHistory {
		oldest := uc.undo[0]
		uc.undo = uc.undo[1:]
		uc.forget(oldest.ID)
	}
}

func (uc *PlannerUseCase) recordFailure(f domain.SyncFailure) {
	uc.failures = append(uc.failures, f)
	if len(uc.failures) > MaxFailures {
		uc.failures = uc.failures[len(uc.failures)-MaxFailures:]
	}
}

func (uc *PlannerUseCase) rejected(kind domain.CommandKind) {
	if uc.metrics != nil {
		uc.metrics.ValidationFailures.WithLabelValues(string(kind)).Inc()
	}
}

func indexCommand(cmds []*domain.Command, id string) int {
	for i, c := range cmds {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func removeCommand(cmds []*domain.Command, id string) []*domain.Command {
	out := cmds[:0:0]
	for _, c := range cmds {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// inverseCommand turns an undone command into a pending step that restores
// its before values.
func inverseCommand(cmd *domain.Command) *domain.Command {
	inv := cmd.Clone()
	inv.Changes = domain.InvertChanges(cmd.Changes)
	inv.Label = "Undo " + cmd.Label
	inv.State = domain.CommandPending
	return inv
}

func cloneCommands(cmds []*domain.Command) []*domain.Command {
	out := make([]*domain.Command, len(cmds))
	for i, c := range cmds {
		out[i] = c.Clone()
	}
	return out
}
