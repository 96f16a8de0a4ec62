package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func twoMonthBudget(t *testing.T) *Budget {
	t.Helper()

	return newTestBudget(t,
		MonthLedger{Month: MustParseMonth("2024-05"), Income: 300000, Figures: []CategoryMonthFigures{
			{CategoryID: "rent", Budgeted: 150000, Activity: 150000},
			{CategoryID: "groceries", Budgeted: 2000, Activity: 1200, PrevAvailable: -500, RolloverEnabled: true},
			{CategoryID: "fun", Budgeted: 5000, Activity: 2000, RolloverEnabled: true},
		}},
		MonthLedger{Month: MustParseMonth("2024-06"), Income: 500000, Figures: []CategoryMonthFigures{
			{CategoryID: "rent", Budgeted: 150000},
			{CategoryID: "groceries", Budgeted: 40000, Activity: 1000, RolloverEnabled: true},
			{CategoryID: "fun", Budgeted: 3000, RolloverEnabled: true},
		}},
	)
}

func mustApply(t *testing.T, b *Budget, cmd *Command, err error) *Command {
	t.Helper()

	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if err := b.ApplyChanges(cmd.Changes, true); err != nil {
		t.Fatalf("ApplyChanges: %v", err)
	}
	return cmd
}

func TestToggleRollover_OffKeepsCurrentMonth(t *testing.T) {
	b := twoMonthBudget(t)
	may := MustParseMonth("2024-05")
	june := MustParseMonth("2024-06")

	before := mustFigure(t, b, may, "groceries")
	if before.Available != 300 {
		t.Fatalf("precondition: may available = %d, want 300", before.Available)
	}

	cmd, err := b.PlanToggleRollover(may, "groceries")
	mustApply(t, b, cmd, err)

	after := mustFigure(t, b, may, "groceries")
	if after.Available != 300 || after.AppliedPrev() != -500 {
		t.Errorf("may changed: available %d applied prev %d", after.Available, after.AppliedPrev())
	}

	next := mustFigure(t, b, june, "groceries")
	if next.AppliedPrev() != 0 {
		t.Errorf("june applied prev = %d, want 0", next.AppliedPrev())
	}
	if next.Available != 39000 {
		t.Errorf("june available = %d, want 39000", next.Available)
	}

	if c, _ := b.Category("groceries"); c.RolloverEnabled {
		t.Error("category flag still on")
	}
	if cmd.Label != "Turn rollover off for Groceries from 2024-05" {
		t.Errorf("label = %q", cmd.Label)
	}
}

func TestSetBudgeted_ReadyToAssign(t *testing.T) {
	june := MustParseMonth("2024-06")
	b := newTestBudget(t, MonthLedger{Month: june, Income: 500000, Figures: []CategoryMonthFigures{
		{CategoryID: "rent", Budgeted: 300000},
		{CategoryID: "groceries", Budgeted: 20000},
	}})

	if got := b.ReadyToAssign(june); got != 180000 {
		t.Fatalf("ready to assign = %d, want 180000", got)
	}

	cmd, err := b.PlanSetBudgeted(june, "groceries", 70000)
	mustApply(t, b, cmd, err)

	if got := b.ReadyToAssign(june); got != 130000 {
		t.Errorf("after set = %d, want 130000", got)
	}

	if err := b.ApplyChanges(cmd.Changes, false); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := b.ReadyToAssign(june); got != 180000 {
		t.Errorf("after undo = %d, want 180000", got)
	}
}

func TestCommands_RoundTrip(t *testing.T) {
	b := twoMonthBudget(t)
	may := MustParseMonth("2024-05")
	june := MustParseMonth("2024-06")
	initial := b.State()

	var applied []*Command
	step := func(cmd *Command, err error) {
		applied = append(applied, mustApply(t, b, cmd, err))
	}

	step(b.PlanSetBudgeted(june, "rent", 155000))
	step(b.PlanToggleRollover(may, "fun"))
	step(b.PlanSetBudgeted(june, "rent", 160000))
	step(b.PlanHide(june, "fun"))
	patches, err := b.Distribute(june, StrategyCopyPrevious)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	step(b.PlanBulkDistribute(june, StrategyCopyPrevious, patches))
	step(b.PlanUnhide(june, "fun"))

	if err := b.CheckConsistency(); err != nil {
		t.Fatalf("CheckConsistency after apply: %v", err)
	}

	afterApply := b.State()

	for i := len(applied) - 1; i >= 0; i-- {
		if err := b.ApplyChanges(applied[i].Changes, false); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}

	if got := b.State(); !reflect.DeepEqual(got, initial) {
		t.Errorf("state after undoing everything differs\n got: %+v\nwant: %+v", got, initial)
	}

	for _, cmd := range applied {
		if err := b.ApplyChanges(cmd.Changes, true); err != nil {
			t.Fatalf("redo: %v", err)
		}
	}

	if got := b.State(); !reflect.DeepEqual(got, afterApply) {
		t.Error("state after redoing everything differs from the applied state")
	}
}

func TestBulkDistribute_UndoRestoresAllInOneStep(t *testing.T) {
	b := twoMonthBudget(t)
	june := MustParseMonth("2024-06")

	patches := []BudgetPatch{
		{CategoryID: "rent", Budgeted: 100000},
		{CategoryID: "groceries", Budgeted: 40000},
		{CategoryID: "fun", Budgeted: 9000},
	}
	cmd, err := b.PlanBulkDistribute(june, StrategyThreeMonthAverage, patches)
	mustApply(t, b, cmd, err)

	if len(cmd.Changes) != 2 {
		t.Fatalf("changes = %d, want 2 (groceries unchanged)", len(cmd.Changes))
	}
	if cmd.Label != "Distribute by 3-month average for 2 categories in 2024-06" {
		t.Errorf("label = %q", cmd.Label)
	}

	if err := b.ApplyChanges(cmd.Changes, false); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if f := mustFigure(t, b, june, "rent"); f.Budgeted != 150000 {
		t.Errorf("rent = %d, want 150000", f.Budgeted)
	}
	if f := mustFigure(t, b, june, "fun"); f.Budgeted != 3000 {
		t.Errorf("fun = %d, want 3000", f.Budgeted)
	}
}

func TestPlanBulkDistribute_Validation(t *testing.T) {
	b := twoMonthBudget(t)
	june := MustParseMonth("2024-06")

	_, err := b.PlanBulkDistribute(june, StrategyCopyPrevious, []BudgetPatch{{CategoryID: "rent", Budgeted: 150000}})
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrEmptyDistribution) {
		t.Errorf("no-op distribution error = %v", err)
	}

	_, err = b.PlanBulkDistribute(june, StrategyCopyPrevious, []BudgetPatch{
		{CategoryID: "rent", Budgeted: 1},
		{CategoryID: "ghost", Budgeted: 1},
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("unknown category error = %v", err)
	}
	if f := mustFigure(t, b, june, "rent"); f.Budgeted != 150000 {
		t.Error("rejected distribution changed the ledger")
	}
}

func TestPlanSetBudgeted_Validation(t *testing.T) {
	b := twoMonthBudget(t)
	june := MustParseMonth("2024-06")

	tests := []struct {
		name     string
		month    Month
		category string
		amount   Money
		wantErr  error
	}{
		{name: "negative amount", month: june, category: "rent", amount: -1, wantErr: ErrInvalidAmount},
		{name: "unknown category", month: june, category: "ghost", amount: 1, wantErr: ErrCategoryNotFound},
		{name: "unknown month", month: MustParseMonth("2030-01"), category: "rent", amount: 1, wantErr: ErrMonthNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.PlanSetBudgeted(tt.month, tt.category, tt.amount)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a ValidationError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHideAndUnhide(t *testing.T) {
	b := twoMonthBudget(t)
	june := MustParseMonth("2024-06")

	if _, err := b.PlanUnhide(june, "fun"); !errors.Is(err, ErrNotHidden) {
		t.Errorf("unhide visible error = %v", err)
	}

	cmd, err := b.PlanHide(june, "fun")
	mustApply(t, b, cmd, err)

	if _, err := b.PlanHide(june, "fun"); !errors.Is(err, ErrAlreadyHidden) {
		t.Errorf("hide twice error = %v", err)
	}

	l, _ := b.Snapshot(june)
	if len(ListHidden(l)) != 1 {
		t.Fatalf("hidden = %d, want 1", len(ListHidden(l)))
	}
	// Hidden categories still hold their money.
	if l.Assigned != 193000 {
		t.Errorf("assigned = %d, want 193000", l.Assigned)
	}

	cmd, err = b.PlanUnhide(june, "fun")
	mustApply(t, b, cmd, err)

	f := mustFigure(t, b, june, "fun")
	if f.AppliedPrev() != 0 || f.Available != 3000 {
		t.Errorf("unhidden fun = applied prev %d available %d, want 0 / 3000", f.AppliedPrev(), f.Available)
	}
	if f.PrevAvailable != 3000 {
		t.Errorf("prev available = %d, want May's 3000 kept as history", f.PrevAvailable)
	}
}

func TestRevertChanges_SkipsOverwrittenFields(t *testing.T) {
	b := twoMonthBudget(t)
	june := MustParseMonth("2024-06")

	first, err := b.PlanBulkDistribute(june, StrategyCopyPrevious, []BudgetPatch{
		{CategoryID: "rent", Budgeted: 1000},
		{CategoryID: "fun", Budgeted: 2000},
	})
	mustApply(t, b, first, err)
	second, err := b.PlanSetBudgeted(june, "rent", 7777)
	mustApply(t, b, second, err)

	reverted := b.RevertChanges(first.Changes)

	if len(reverted) != 1 || reverted[0].CategoryID != "fun" {
		t.Fatalf("reverted = %+v, want only fun", reverted)
	}
	if f := mustFigure(t, b, june, "rent"); f.Budgeted != 7777 {
		t.Errorf("rent = %d, later edit must survive", f.Budgeted)
	}
	if f := mustFigure(t, b, june, "fun"); f.Budgeted != 3000 {
		t.Errorf("fun = %d, want 3000", f.Budgeted)
	}
}

func TestApplyChanges_AtomicOnFailure(t *testing.T) {
	b := twoMonthBudget(t)
	june := MustParseMonth("2024-06")
	before := b.State()

	err := b.ApplyChanges([]Change{
		{Month: june, CategoryID: "rent", Field: FieldBudgeted, After: AmountValue(1)},
		{Month: MustParseMonth("2031-01"), CategoryID: "rent", Field: FieldBudgeted, After: AmountValue(1)},
	}, true)
	if !errors.Is(err, ErrMonthNotFound) {
		t.Fatalf("error = %v, want ErrMonthNotFound", err)
	}
	if !reflect.DeepEqual(b.State(), before) {
		t.Error("failed ApplyChanges mutated the budget")
	}
}

func TestCommand_Transition(t *testing.T) {
	tests := []struct {
		name  string
		path  []CommandState
		legal bool
	}{
		{name: "happy path", path: []CommandState{CommandApplied, CommandCommitted}, legal: true},
		{name: "undo before ack", path: []CommandState{CommandApplied, CommandRolledBack}, legal: true},
		{name: "undo after ack", path: []CommandState{CommandApplied, CommandCommitted, CommandRolledBack}, legal: true},
		{name: "redo", path: []CommandState{CommandApplied, CommandRolledBack, CommandApplied}, legal: true},
		{name: "sync failure", path: []CommandState{CommandApplied, CommandReverted}, legal: true},
		{name: "skip apply", path: []CommandState{CommandCommitted}, legal: false},
		{name: "revive reverted", path: []CommandState{CommandApplied, CommandReverted, CommandApplied}, legal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &Command{ID: "c1", State: CommandPending}
			var err error
			for _, s := range tt.path {
				if err = cmd.Transition(s); err != nil {
					break
				}
			}
			if (err == nil) != tt.legal {
				t.Errorf("legal = %v, err = %v", tt.legal, err)
			}
		})
	}
}

func TestPatch_ReplayConverges(t *testing.T) {
	b := twoMonthBudget(t)
	mirror := twoMonthBudget(t)
	june := MustParseMonth("2024-06")

	cmd, err := b.PlanToggleRollover(MustParseMonth("2024-05"), "groceries")
	mustApply(t, b, cmd, err)
	cmd.ID = "cmd-1"
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	p := NewPatch("patch-1", "ws-1", cmd, PatchOpApply, 1, now)
	if p.Op != PatchOpApply || len(p.Fields) != len(cmd.Changes) {
		t.Fatalf("patch = %+v", p)
	}

	for i := 0; i < 2; i++ {
		if err := mirror.ApplyPatch(p); err != nil {
			t.Fatalf("ApplyPatch: %v", err)
		}
	}

	if !reflect.DeepEqual(mirror.State(), b.State()) {
		t.Error("mirror diverged after replaying the patch")
	}

	undo := NewPatch("patch-2", "ws-1", cmd, PatchOpUndo, 2, now)
	if err := mirror.ApplyPatch(undo); err != nil {
		t.Fatalf("ApplyPatch undo: %v", err)
	}
	if f := mustFigure(t, mirror, june, "groceries"); !f.RolloverEnabled {
		t.Error("undo patch did not restore the carry-in flag")
	}
}
