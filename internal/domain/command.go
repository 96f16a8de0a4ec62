package domain

import (
	"fmt"
	"time"
)

// CommandKind names a reversible edit.
type CommandKind string

const (
	CommandSetBudgeted    CommandKind = "set_budgeted"
	CommandToggleRollover CommandKind = "toggle_rollover"
	CommandHideCategory   CommandKind = "hide_category"
	CommandUnhideCategory CommandKind = "unhide_category"
	CommandBulkDistribute CommandKind = "bulk_distribute"
)

// Valid reports whether k is a known command kind.
func (k CommandKind) Valid() bool {
	switch k {
	case CommandSetBudgeted, CommandToggleRollover, CommandHideCategory,
		CommandUnhideCategory, CommandBulkDistribute:
		return true
	}
	return false
}

// CommandState is the lifecycle of a command.
type CommandState string

const (
	CommandPending    CommandState = "pending"
	CommandApplied    CommandState = "applied"
	CommandCommitted  CommandState = "committed"
	CommandRolledBack CommandState = "rolled_back"
	CommandReverted   CommandState = "reverted"
)

var commandTransitions = map[CommandState][]CommandState{
	CommandPending:    {CommandApplied},
	CommandApplied:    {CommandCommitted, CommandRolledBack, CommandReverted},
	CommandCommitted:  {CommandRolledBack},
	CommandRolledBack: {CommandApplied, CommandReverted},
}

// Field names a value a command can change.
type Field string

const (
	// FieldBudgeted is a category's budgeted amount in one month.
	FieldBudgeted Field = "budgeted_cents"
	// FieldRollover is the category-level rollover setting.
	FieldRollover Field = "rollover_enabled"
	// FieldCarryIn is the carry-in flag frozen on one month's figures.
	FieldCarryIn Field = "carry_in"
	// FieldHidden is the category-level hidden flag.
	FieldHidden Field = "hidden"
)

// Value holds either an amount or a flag, depending on the field.
type Value struct {
	Cents Money `json:"cents"`
	Flag  bool  `json:"flag"`
}

func AmountValue(m Money) Value { return Value{Cents: m} }
func FlagValue(b bool) Value    { return Value{Flag: b} }

// Change is one field's before and after value. Month is zero for
// category-level fields.
type Change struct {
	Month      Month  `json:"month"`
	CategoryID string `json:"category_id"`
	Field      Field  `json:"field"`
	Before     Value  `json:"before"`
	After      Value  `json:"after"`
}

// Command is a reversible unit of change.
type Command struct {
	ID          string       `json:"id"`
	Kind        CommandKind  `json:"kind"`
	TargetMonth Month        `json:"target_month"`
	CategoryID  string       `json:"category_id,omitempty"`
	Strategy    Strategy     `json:"strategy,omitempty"`
	Label       string       `json:"label"`
	Changes     []Change     `json:"changes"`
	Timestamp   time.Time    `json:"timestamp"`
	State       CommandState `json:"state"`
}

// Committed reports whether the backend acknowledged the command.
func (c *Command) Committed() bool {
	return c.State == CommandCommitted
}

// Transition moves the command to a new state, enforcing the lifecycle.
func (c *Command) Transition(to CommandState) error {
	for _, allowed := range commandTransitions[c.State] {
		if allowed == to {
			c.State = to
			return nil
		}
	}
	return fmt.Errorf("command %s: illegal transition %s -> %s", c.ID, c.State, to)
}

// CategoryIDs lists the categories the command touches, in change order.
func (c *Command) CategoryIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, ch := range c.Changes {
		if !seen[ch.CategoryID] {
			seen[ch.CategoryID] = true
			ids = append(ids, ch.CategoryID)
		}
	}
	return ids
}

// Clone returns a deep copy.
func (c *Command) Clone() *Command {
	cp := *c
	cp.Changes = make([]Change, len(c.Changes))
	copy(cp.Changes, c.Changes)
	return &cp
}

// InvertChanges swaps before and after on every change.
func InvertChanges(changes []Change) []Change {
	out := make([]Change, len(changes))
	for i, ch := range changes {
		ch.Before, ch.After = ch.After, ch.Before
		out[i] = ch
	}
	return out
}

// Rebase returns a copy of cmd whose before values are read from the current
// budget, so that undoing it restores what is there now.
func (b *Budget) Rebase(cmd *Command) (*Command, error) {
	if !cmd.Kind.Valid() {
		return nil, newValidationError(cmd.Kind, cmd.TargetMonth, cmd.CategoryID, ErrUnknownCommand)
	}
	if len(cmd.Changes) == 0 {
		return nil, newValidationError(cmd.Kind, cmd.TargetMonth, cmd.CategoryID, ErrEmptyDistribution)
	}
	if !b.HasMonth(cmd.TargetMonth) {
		return nil, newValidationError(cmd.Kind, cmd.TargetMonth, cmd.CategoryID, ErrMonthNotFound)
	}

	out := cmd.Clone()
	for i := range out.Changes {
		ch := &out.Changes[i]
		cur, err := b.read(*ch)
		if err != nil {
			return nil, newValidationError(cmd.Kind, ch.Month, ch.CategoryID, err)
		}
		if ch.Field == FieldBudgeted && ch.After.Cents.IsNegative() {
			return nil, newValidationError(cmd.Kind, ch.Month, ch.CategoryID, ErrInvalidAmount)
		}
		ch.Before = cur
	}
	return out, nil
}

func (b *Budget) read(ch Change) (Value, error) {
	c, ok := b.byID[ch.CategoryID]
	if !ok {
		return Value{}, ErrCategoryNotFound
	}

	switch ch.Field {
	case FieldRollover:
		return FlagValue(c.RolloverEnabled), nil
	case FieldHidden:
		return FlagValue(c.Hidden), nil
	case FieldBudgeted, FieldCarryIn:
		l, ok := b.months[ch.Month]
		if !ok {
			return Value{}, ErrMonthNotFound
		}
		f, ok := l.figure(ch.CategoryID)
		if !ok {
			return Value{}, ErrCategoryNotFound
		}
		if ch.Field == FieldBudgeted {
			return AmountValue(f.Budgeted), nil
		}
		return FlagValue(f.RolloverEnabled), nil
	default:
		return Value{}, fmt.Errorf("unknown field %q", ch.Field)
	}
}

// write assumes read succeeded for the same change.
func (b *Budget) write(ch Change, v Value) {
	c := b.byID[ch.CategoryID]

	switch ch.Field {
	case FieldRollover:
		c.RolloverEnabled = v.Flag
	case FieldHidden:
		c.Hidden = v.Flag
	case FieldBudgeted:
		f, _ := b.months[ch.Month].figure(ch.CategoryID)
		f.Budgeted = v.Cents
	case FieldCarryIn:
		f, _ := b.months[ch.Month].figure(ch.CategoryID)
		f.RolloverEnabled = v.Flag
	}
}

// ApplyChanges writes either the after or the before value of every change,
// then recomputes. Every change is checked first so that a failure leaves the
// budget untouched.
func (b *Budget) ApplyChanges(changes []Change, forward bool) error {
	for _, ch := range changes {
		if _, err := b.read(ch); err != nil {
			return fmt.Errorf("%s %s %s: %w", ch.Field, ch.CategoryID, ch.Month, err)
		}
		v := ch.Before
		if forward {
			v = ch.After
		}
		if ch.Field == FieldBudgeted && v.Cents.IsNegative() {
			return newValidationError("", ch.Month, ch.CategoryID, ErrInvalidAmount)
		}
	}

	for _, ch := range changes {
		if forward {
			b.write(ch, ch.After)
		} else {
			b.write(ch, ch.Before)
		}
	}

	b.recomputeFor(changes)
	return nil
}

// RevertChanges restores the before value of each change whose field still
// holds the after value, and returns the changes it restored. Fields that a
// later edit has since overwritten are left alone.
func (b *Budget) RevertChanges(changes []Change) []Change {
	var reverted []Change
	for _, ch := range changes {
		cur, err := b.read(ch)
		if err != nil || cur != ch.After {
			continue
		}
		b.write(ch, ch.Before)
		reverted = append(reverted, ch)
	}

	b.recomputeFor(reverted)
	return reverted
}

func (b *Budget) recomputeFor(changes []Change) {
	if len(changes) == 0 {
		return
	}

	var from Month
	for _, ch := range changes {
		m := ch.Month
		if m.IsZero() {
			// Category-level flags can affect every month.
			months := b.Months()
			if len(months) == 0 {
				return
			}
			m = months[0]
		}
		if from.IsZero() || m.Before(from) {
			from = m
		}
	}

	b.Recompute(from)
}
