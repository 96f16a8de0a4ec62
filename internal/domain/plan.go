package domain

import (
	"fmt"
)

// The Plan* methods turn a user intent into a pending command with full
// before/after snapshots. They never mutate the budget.

func (b *Budget) requireFigure(kind CommandKind, m Month, categoryID string) (*Category, *CategoryMonthFigures, error) {
	l, ok := b.months[m]
	if !ok {
		return nil, nil, newValidationError(kind, m, categoryID, ErrMonthNotFound)
	}
	c, ok := b.byID[categoryID]
	if !ok {
		return nil, nil, newValidationError(kind, m, categoryID, ErrCategoryNotFound)
	}
	f, ok := l.figure(categoryID)
	if !ok {
		return nil, nil, newValidationError(kind, m, categoryID, ErrCategoryNotFound)
	}
	return c, f, nil
}

// PlanSetBudgeted builds a command assigning amount to the category in month m.
func (b *Budget) PlanSetBudgeted(m Month, categoryID string, amount Money) (*Command, error) {
	c, f, err := b.requireFigure(CommandSetBudgeted, m, categoryID)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, newValidationError(CommandSetBudgeted, m, categoryID, ErrInvalidAmount)
	}

	return &Command{
		Kind:        CommandSetBudgeted,
		TargetMonth: m,
		CategoryID:  categoryID,
		Label:       fmt.Sprintf("Set %s to %s in %s", c.Name, amount, m),
		Changes: []Change{{
			Month:      m,
			CategoryID: categoryID,
			Field:      FieldBudgeted,
			Before:     AmountValue(f.Budgeted),
			After:      AmountValue(amount),
		}},
		State: CommandPending,
	}, nil
}

// PlanToggleRollover flips the category's rollover setting from month m on.
// Month m keeps its own carry-in; every loaded later month follows the new
// setting.
func (b *Budget) PlanToggleRollover(m Month, categoryID string) (*Command, error) {
	c, _, err := b.requireFigure(CommandToggleRollover, m, categoryID)
	if err != nil {
		return nil, err
	}

	enabled := !c.RolloverEnabled
	changes := []Change{{
		CategoryID: categoryID,
		Field:      FieldRollover,
		Before:     FlagValue(c.RolloverEnabled),
		After:      FlagValue(enabled),
	}}

	for _, later := range b.Months() {
		if !m.Before(later) {
			continue
		}
		f, ok := b.months[later].figure(categoryID)
		if !ok || f.RolloverEnabled == enabled {
			continue
		}
		changes = append(changes, Change{
			Month:      later,
			CategoryID: categoryID,
			Field:      FieldCarryIn,
			Before:     FlagValue(f.RolloverEnabled),
			After:      FlagValue(enabled),
		})
	}

	state := "off"
	if enabled {
		state = "on"
	}

	return &Command{
		Kind:        CommandToggleRollover,
		TargetMonth: m,
		CategoryID:  categoryID,
		Label:       fmt.Sprintf("Turn rollover %s for %s from %s", state, c.Name, m),
		Changes:     changes,
		State:       CommandPending,
	}, nil
}

// PlanHide hides the category.
func (b *Budget) PlanHide(m Month, categoryID string) (*Command, error) {
	c, _, err := b.requireFigure(CommandHideCategory, m, categoryID)
	if err != nil {
		return nil, err
	}
	if c.Hidden {
		return nil, newValidationError(CommandHideCategory, m, categoryID, ErrAlreadyHidden)
	}

	return &Command{
		Kind:        CommandHideCategory,
		TargetMonth: m,
		CategoryID:  categoryID,
		Label:       fmt.Sprintf("Hide %s", c.Name),
		Changes: []Change{{
			CategoryID: categoryID,
			Field:      FieldHidden,
			Before:     FlagValue(false),
			After:      FlagValue(true),
		}},
		State: CommandPending,
	}, nil
}

// PlanUnhide shows the category again. It restarts in month m without any
// carried balance.
func (b *Budget) PlanUnhide(m Month, categoryID string) (*Command, error) {
	c, f, err := b.requireFigure(CommandUnhideCategory, m, categoryID)
	if err != nil {
		return nil, err
	}
	if !c.Hidden {
		return nil, newValidationError(CommandUnhideCategory, m, categoryID, ErrNotHidden)
	}

	changes := []Change{{
		CategoryID: categoryID,
		Field:      FieldHidden,
		Before:     FlagValue(true),
		After:      FlagValue(false),
	}}
	if f.RolloverEnabled {
		changes = append(changes, Change{
			Month:      m,
			CategoryID: categoryID,
			Field:      FieldCarryIn,
			Before:     FlagValue(true),
			After:      FlagValue(false),
		})
	}

	return &Command{
		Kind:        CommandUnhideCategory,
		TargetMonth: m,
		CategoryID:  categoryID,
		Label:       fmt.Sprintf("Unhide %s", c.Name),
		Changes:     changes,
		State:       CommandPending,
	}, nil
}

// PlanBulkDistribute turns a strategy's patch set into one atomic command.
// Categories whose amount does not change are left out.
func (b *Budget) PlanBulkDistribute(m Month, strategy Strategy, patches []BudgetPatch) (*Command, error) {
	if _, ok := b.months[m]; !ok {
		return nil, newValidationError(CommandBulkDistribute, m, "", ErrMonthNotFound)
	}

	var changes []Change
	for _, p := range patches {
		_, f, err := b.requireFigure(CommandBulkDistribute, m, p.CategoryID)
		if err != nil {
			return nil, err
		}
		if p.Budgeted.IsNegative() {
			return nil, newValidationError(CommandBulkDistribute, m, p.CategoryID, ErrInvalidAmount)
		}
		if f.Budgeted == p.Budgeted {
			continue
		}
		changes = append(changes, Change{
			Month:      m,
			CategoryID: p.CategoryID,
			Field:      FieldBudgeted,
			Before:     AmountValue(f.Budgeted),
			After:      AmountValue(p.Budgeted),
		})
	}

	if len(changes) == 0 {
		return nil, newValidationError(CommandBulkDistribute, m, "", ErrEmptyDistribution)
	}

	return &Command{
		Kind:        CommandBulkDistribute,
		TargetMonth: m,
		Strategy:    strategy,
		Label:       fmt.Sprintf("%s for %d categories in %s", strategy.Label(), len(changes), m),
		Changes:     changes,
		State:       CommandPending,
	}, nil
}
