package domain

import (
	"fmt"
)

// Strategy names a bulk distribution.
type Strategy string

const (
	StrategyCopyPrevious      Strategy = "copy_previous"
	StrategyThreeMonthAverage Strategy = "three_month_average"
)

// AverageWindow is how many completed months the average strategy looks back.
const AverageWindow = 3

// averageDenominator is divisible by every possible month count in the window.
const averageDenominator = 6

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyCopyPrevious, StrategyThreeMonthAverage:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("%w: strategy %q", ErrUnknownCommand, s)
	}
}

// Label is the human-readable strategy name.
func (s Strategy) Label() string {
	switch s {
	case StrategyCopyPrevious:
		return "Copy previous month"
	case StrategyThreeMonthAverage:
		return "Distribute by 3-month average"
	default:
		return string(s)
	}
}

// BudgetPatch is one category's new budgeted amount.
type BudgetPatch struct {
	CategoryID string `json:"category_id"`
	Budgeted   Money  `json:"budgeted_cents"`
}

// CopyPreviousMonth budgets every visible category of current with what it
// had in previous. Categories absent from previous get zero. previous may be nil.
func CopyPreviousMonth(current, previous *MonthLedger) []BudgetPatch {
	visible := ListVisible(current)
	patches := make([]BudgetPatch, 0, len(visible))

	for _, f := range visible {
		var amount Money
		if previous != nil {
			if pf, ok := previous.figure(f.CategoryID); ok {
				amount = pf.Budgeted
			}
		}
		patches = append(patches, BudgetPatch{CategoryID: f.CategoryID, Budgeted: amount})
	}

	return patches
}

// ThreeMonthAverage budgets every visible category of current with its mean
// activity over the trailing completed months in history (most recent first,
// at most AverageWindow used). A category seen in fewer months is averaged
// over those it has. Rounding goes through AllocateRounded so the parts add up
// to the rounded total of the means. A net-negative history counts as zero.
func ThreeMonthAverage(current *MonthLedger, history []*MonthLedger) []BudgetPatch {
	if len(history) > AverageWindow {
		history = history[:AverageWindow]
	}

	visible := ListVisible(current)
	numerators := make([]int64, len(visible))

	for i, f := range visible {
		var sum Money
		var months int64
		for _, h := range history {
			if h == nil {
				continue
			}
			if hf, ok := h.figure(f.CategoryID); ok {
				sum = sum.Add(hf.Activity)
				months++
			}
		}
		if months == 0 || sum.IsNegative() {
			continue
		}
		numerators[i] = sum.Cents() * (averageDenominator / months)
	}

	amounts := allocateRounded(numerators, averageDenominator)

	patches := make([]BudgetPatch, len(visible))
	for i, f := range visible {
		patches[i] = BudgetPatch{CategoryID: f.CategoryID, Budgeted: amounts[i]}
	}

	return patches
}

// Distribute runs a strategy for month m against the loaded history.
func (b *Budget) Distribute(m Month, strategy Strategy) ([]BudgetPatch, error) {
	current, err := b.Snapshot(m)
	if err != nil {
		return nil, newValidationError(CommandBulkDistribute, m, "", ErrMonthNotFound)
	}

	switch strategy {
	case StrategyCopyPrevious:
		var previous *MonthLedger
		if b.HasMonth(m.Prev()) {
			previous, _ = b.Snapshot(m.Prev())
		}
		return CopyPreviousMonth(current, previous), nil

	case StrategyThreeMonthAverage:
		var history []*MonthLedger
		for back := 1; back <= AverageWindow; back++ {
			prior := m.AddMonths(-back)
			if !b.HasMonth(prior) {
				continue
			}
			s, _ := b.Snapshot(prior)
			history = append(history, s)
		}
		return ThreeMonthAverage(current, history), nil

	default:
		return nil, newValidationError(CommandBulkDistribute, m, "", ErrUnknownCommand)
	}
}
