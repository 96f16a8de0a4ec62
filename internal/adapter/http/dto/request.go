package dto

import (
	"fmt"

	"github.com/iho/budgetplanner/internal/domain"
)

// SetBudgetedRequest represents a request to set a category's budgeted amount.
type SetBudgetedRequest struct {
	// Amount in major units, e.g. "2500.00".
	Amount string `json:"amount"`
}

// ToMoney parses the amount.
func (r *SetBudgetedRequest) ToMoney() (domain.Money, error) {
	return domain.ParseMoney(r.Amount)
}

// DistributeRequest represents a request to run a bulk distribution.
type DistributeRequest struct {
	Strategy string `json:"strategy"`
}

// ToStrategy validates the strategy name.
func (r *DistributeRequest) ToStrategy() (domain.Strategy, error) {
	return domain.ParseStrategy(r.Strategy)
}

// ActivityRequest represents an authoritative activity or income figure.
type ActivityRequest struct {
	Kind       string `json:"kind"`
	CategoryID string `json:"category_id,omitempty"`
	Amount     string `json:"amount"`
}

// ToUpdate converts the request into a feed update for the workspace and month.
func (r *ActivityRequest) ToUpdate(workspaceID string, month domain.Month) (domain.ActivityUpdate, error) {
	amount, err := domain.ParseMoney(r.Amount)
	if err != nil {
		return domain.ActivityUpdate{}, err
	}

	kind := domain.ActivityKind(r.Kind)
	switch kind {
	case domain.ActivityKindCategory:
		if r.CategoryID == "" {
			return domain.ActivityUpdate{}, fmt.Errorf("%w: activity needs a category", domain.ErrCategoryNotFound)
		}
	case domain.ActivityKindIncome:
	default:
		return domain.ActivityUpdate{}, fmt.Errorf("unknown activity kind %q", r.Kind)
	}

	return domain.ActivityUpdate{
		WorkspaceID: workspaceID,
		Kind:        kind,
		Month:       month,
		CategoryID:  r.CategoryID,
		Amount:      amount,
	}, nil
}
