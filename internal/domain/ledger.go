package domain

import (
	"fmt"
	"sort"
)

// MonthLedger is every category's figures for one month plus its income pool.
type MonthLedger struct {
	Month   Month                  `json:"month"`
	Income  Money                  `json:"income_cents"`
	Figures []CategoryMonthFigures `json:"figures"`

	// Aggregates, filled in on snapshots.
	Assigned      Money `json:"assigned_cents"`
	Activity      Money `json:"activity_cents"`
	Available     Money `json:"available_cents"`
	ReadyToAssign Money `json:"ready_to_assign_cents"`
}

func (l *MonthLedger) figure(categoryID string) (*CategoryMonthFigures, bool) {
	for i := range l.Figures {
		if l.Figures[i].CategoryID == categoryID {
			return &l.Figures[i], true
		}
	}
	return nil, false
}

// Figure returns a copy of the category's figures.
func (l *MonthLedger) Figure(categoryID string) (CategoryMonthFigures, bool) {
	f, ok := l.figure(categoryID)
	if !ok {
		return CategoryMonthFigures{}, false
	}
	return *f, true
}

// AssignedTotal sums budgeted amounts over all categories, hidden included.
func (l *MonthLedger) AssignedTotal() Money {
	var total Money
	for i := range l.Figures {
		total += l.Figures[i].Budgeted
	}
	return total
}

// ActivityTotal sums activity over all categories.
func (l *MonthLedger) ActivityTotal() Money {
	var total Money
	for i := range l.Figures {
		total += l.Figures[i].Activity
	}
	return total
}

// AvailableTotal sums available balances over all categories.
func (l *MonthLedger) AvailableTotal() Money {
	var total Money
	for i := range l.Figures {
		total += l.Figures[i].Available
	}
	return total
}

func (l *MonthLedger) clone() *MonthLedger {
	c := *l
	c.Figures = make([]CategoryMonthFigures, len(l.Figures))
	copy(c.Figures, l.Figures)
	return &c
}

// ListVisible returns the figures of categories that are not hidden, in display order.
func ListVisible(l *MonthLedger) []CategoryMonthFigures {
	out := make([]CategoryMonthFigures, 0, len(l.Figures))
	for _, f := range l.Figures {
		if !f.Category.Hidden {
			out = append(out, f)
		}
	}
	return out
}

// ListHidden returns the figures of hidden categories, in display order.
func ListHidden(l *MonthLedger) []CategoryMonthFigures {
	out := make([]CategoryMonthFigures, 0)
	for _, f := range l.Figures {
		if f.Category.Hidden {
			out = append(out, f)
		}
	}
	return out
}

// Budget is the full planner state of one workspace: its categories and every
// loaded month. It is owned by a single engine.
type Budget struct {
	WorkspaceID string
	// Version is the backend version the local state is based on.
	Version int64
	// OpeningReadyToAssign is unassigned income carried in from months that are
	// not loaded.
	OpeningReadyToAssign Money

	categories []*Category
	byID       map[string]*Category
	months     map[Month]*MonthLedger
}

// BudgetState is the plain form of a Budget used to load and persist it.
type BudgetState struct {
	WorkspaceID          string        `json:"workspace_id"`
	Version              int64         `json:"version"`
	OpeningReadyToAssign Money         `json:"opening_ready_to_assign_cents"`
	Categories           []Category    `json:"categories"`
	Months               []MonthLedger `json:"months"`
}

// NewBudget validates state and builds a Budget from it.
func NewBudget(state BudgetState) (*Budget, error) {
	b := &Budget{
		WorkspaceID:          state.WorkspaceID,
		Version:              state.Version,
		OpeningReadyToAssign: state.OpeningReadyToAssign,
		byID:                 make(map[string]*Category, len(state.Categories)),
		months:               make(map[Month]*MonthLedger, len(state.Months)),
	}

	for i := range state.Categories {
		c := state.Categories[i]
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := b.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, c.ID)
		}
		b.byID[c.ID] = &c
		b.categories = append(b.categories, &c)
	}

	sort.SliceStable(b.categories, func(i, j int) bool {
		return displayLess(b.categories[i], b.categories[j])
	})

	for i := range state.Months {
		l := state.Months[i].clone()
		if err := b.validateLedger(l); err != nil {
			return nil, err
		}
		if _, dup := b.months[l.Month]; dup {
			return nil, fmt.Errorf("%w: %s", ErrMonthExists, l.Month)
		}
		b.sortFigures(l)
		b.months[l.Month] = l
	}

	if len(b.months) > 0 {
		b.Recompute(b.Months()[0])
	}

	return b, nil
}

// validateLedger enforces the ledger boundary: a well-formed month, known
// categories listed once, and no negative budgeted amounts.
func (b *Budget) validateLedger(l *MonthLedger) error {
	if l.Month.IsZero() {
		return ErrInvalidMonth
	}

	seen := make(map[string]bool, len(l.Figures))
	for _, f := range l.Figures {
		if _, ok := b.byID[f.CategoryID]; !ok {
			return newValidationError("", l.Month, f.CategoryID, ErrCategoryNotFound)
		}
		if seen[f.CategoryID] {
			return newValidationError("", l.Month, f.CategoryID, ErrDuplicateCategory)
		}
		seen[f.CategoryID] = true

		if f.Budgeted.IsNegative() {
			return newValidationError("", l.Month, f.CategoryID, ErrInvalidAmount)
		}
	}

	return nil
}

func (b *Budget) position() map[string]int {
	pos := make(map[string]int, len(b.categories))
	for i, c := range b.categories {
		pos[c.ID] = i
	}
	return pos
}

func (b *Budget) sortFigures(l *MonthLedger) {
	pos := b.position()
	sort.SliceStable(l.Figures, func(i, j int) bool {
		return pos[l.Figures[i].CategoryID] < pos[l.Figures[j].CategoryID]
	})
}

// Categories returns copies of all categories in display order.
func (b *Budget) Categories() []Category {
	out := make([]Category, len(b.categories))
	for i, c := range b.categories {
		out[i] = *c
	}
	return out
}

// Category returns a copy of the category.
func (b *Budget) Category(id string) (Category, bool) {
	c, ok := b.byID[id]
	if !ok {
		return Category{}, false
	}
	return *c, true
}

// HasMonth reports whether the month is loaded.
func (b *Budget) HasMonth(m Month) bool {
	_, ok := b.months[m]
	return ok
}

// Months returns the loaded months, oldest first.
func (b *Budget) Months() []Month {
	out := make([]Month, 0, len(b.months))
	for m := range b.months {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ReadyToAssign is the income not yet assigned, accumulated over every loaded
// month up to and including m.
func (b *Budget) ReadyToAssign(m Month) Money {
	total := b.OpeningReadyToAssign
	for month, l := range b.months {
		if month.Before(m) || month == m {
			total = total.Add(l.Income).Sub(l.AssignedTotal())
		}
	}
	return total
}

// Snapshot returns a deep copy of the month's ledger with aggregates and
// category metadata filled in.
func (b *Budget) Snapshot(m Month) (*MonthLedger, error) {
	l, ok := b.months[m]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMonthNotFound, m)
	}

	s := l.clone()
	for i := range s.Figures {
		s.Figures[i].Category = *b.byID[s.Figures[i].CategoryID]
	}

	s.Assigned = s.AssignedTotal()
	s.Activity = s.ActivityTotal()
	s.Available = s.AvailableTotal()
	s.ReadyToAssign = b.ReadyToAssign(m)

	return s, nil
}

// State returns a deep copy of the budget in its plain form.
func (b *Budget) State() BudgetState {
	state := BudgetState{
		WorkspaceID:          b.WorkspaceID,
		Version:              b.Version,
		OpeningReadyToAssign: b.OpeningReadyToAssign,
		Categories:           b.Categories(),
	}
	for _, m := range b.Months() {
		state.Months = append(state.Months, *b.months[m].clone())
	}
	return state
}

// OpenMonth adds an empty ledger for m. Every category gets a row whose
// carry-in flag follows the category's current rollover setting, and the
// balances of m-1 carry in when it is loaded.
func (b *Budget) OpenMonth(m Month) error {
	if _, ok := b.months[m]; ok {
		return fmt.Errorf("%w: %s", ErrMonthExists, m)
	}

	l := &MonthLedger{Month: m}
	for _, c := range b.categories {
		l.Figures = append(l.Figures, CategoryMonthFigures{
			CategoryID:      c.ID,
			RolloverEnabled: c.RolloverEnabled,
		})
	}

	b.months[m] = l
	b.Recompute(m)
	return nil
}

// CloseMonth drops a loaded month. It only backs out a month that failed to
// persist; commands never reference it by then.
func (b *Budget) CloseMonth(m Month) error {
	if _, ok := b.months[m]; !ok {
		return fmt.Errorf("%w: %s", ErrMonthNotFound, m)
	}
	delete(b.months, m)
	b.Recompute(m)
	return nil
}

// SetActivity records externally supplied activity for a category.
func (b *Budget) SetActivity(m Month, categoryID string, activity Money) error {
	l, ok := b.months[m]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMonthNotFound, m)
	}
	f, ok := l.figure(categoryID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
	}
	f.Activity = activity
	b.Recompute(m)
	return nil
}

// SetIncome records externally supplied income for a month.
func (b *Budget) SetIncome(m Month, income Money) error {
	l, ok := b.months[m]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMonthNotFound, m)
	}
	l.Income = income
	return nil
}

// CheckConsistency verifies the available invariant on every figure.
func (b *Budget) CheckConsistency() error {
	for _, m := range b.Months() {
		l := b.months[m]
		prev, hasPrev := b.months[m.Prev()]
		for _, f := range l.Figures {
			if hasPrev {
				want := Money(0)
				if pf, ok := prev.figure(f.CategoryID); ok {
					want = pf.Available
				}
				if f.PrevAvailable != want {
					return fmt.Errorf("category %s in %s: prev available %s, want %s",
						f.CategoryID, m, f.PrevAvailable, want)
				}
			}
			want := ResolveAvailable(f.RolloverEnabled, f.PrevAvailable, f.Budgeted, f.Activity)
			if f.Available != want {
				return fmt.Errorf("category %s in %s: available %s, want %s",
					f.CategoryID, m, f.Available, want)
			}
		}
	}
	return nil
}
