package dto

import (
	"time"

	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/usecase"
)

// Amounts are rendered in major units with two decimals.

// CategoryFiguresResponse represents one category row of a month view.
type CategoryFiguresResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	GroupID       string `json:"group_id"`
	GroupName     string `json:"group_name"`
	Color         string `json:"color,omitempty"`
	Icon          string `json:"icon,omitempty"`
	Budgeted      string `json:"budgeted"`
	Activity      string `json:"activity"`
	PrevAvailable string `json:"prev_available"`
	Available     string `json:"available"`
	// CarryIn reports whether the previous balance counts this month.
	CarryIn         bool `json:"carry_in"`
	RolloverEnabled bool `json:"rollover_enabled"`
	Hidden          bool `json:"hidden"`
}

// FiguresFromDomain converts snapshot figures to responses.
func FiguresFromDomain(figures []domain.CategoryMonthFigures) []CategoryFiguresResponse {
	result := make([]CategoryFiguresResponse, len(figures))
	for i, f := range figures {
		result[i] = CategoryFiguresResponse{
			ID:              f.CategoryID,
			Name:            f.Category.Name,
			GroupID:         f.Category.GroupID,
			GroupName:       f.Category.GroupName,
			Color:           f.Category.Color,
			Icon:            f.Category.Icon,
			Budgeted:        f.Budgeted.String(),
			Activity:        f.Activity.String(),
			PrevAvailable:   f.PrevAvailable.String(),
			Available:       f.Available.String(),
			CarryIn:         f.RolloverEnabled,
			RolloverEnabled: f.Category.RolloverEnabled,
			Hidden:          f.Category.Hidden,
		}
	}
	return result
}

// MonthResponse represents the full view of one month.
type MonthResponse struct {
	Month           string                    `json:"month"`
	Income          string                    `json:"income"`
	Assigned        string                    `json:"assigned"`
	Activity        string                    `json:"activity"`
	Available       string                    `json:"available"`
	ReadyToAssign   string                    `json:"ready_to_assign"`
	Categories      []CategoryFiguresResponse `json:"categories"`
	Hidden          []CategoryFiguresResponse `json:"hidden"`
	CanUndo         bool                      `json:"can_undo"`
	CanRedo         bool                      `json:"can_redo"`
	LastActionLabel string                    `json:"last_action_label,omitempty"`
	Pending         []CommandResponse         `json:"pending"`
	Failures        []SyncFailureResponse     `json:"failures"`
	Version         int64                     `json:"version"`
}

// MonthFromProjection converts a projection to a response.
func MonthFromProjection(p *usecase.Projection) *MonthResponse {
	l := p.Ledger
	return &MonthResponse{
		Month:           l.Month.String(),
		Income:          l.Income.String(),
		Assigned:        l.Assigned.String(),
		Activity:        l.Activity.String(),
		Available:       l.Available.String(),
		ReadyToAssign:   l.ReadyToAssign.String(),
		Categories:      FiguresFromDomain(p.Visible),
		Hidden:          FiguresFromDomain(p.Hidden),
		CanUndo:         p.CanUndo,
		CanRedo:         p.CanRedo,
		LastActionLabel: p.LastActionLabel,
		Pending:         CommandsFromDomain(p.Pending),
		Failures:        FailuresFromDomain(p.Failures),
		Version:         p.Version,
	}
}

// CommandResponse represents a command in history listings.
type CommandResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Month      string    `json:"month"`
	CategoryID string    `json:"category_id,omitempty"`
	Strategy   string    `json:"strategy,omitempty"`
	Label      string    `json:"label"`
	State      string    `json:"state"`
	Committed  bool      `json:"committed"`
	Timestamp  time.Time `json:"timestamp"`
}

// CommandFromDomain converts a domain command to a response.
func CommandFromDomain(c *domain.Command) CommandResponse {
	return CommandResponse{
		ID:         c.ID,
		Kind:       string(c.Kind),
		Month:      c.TargetMonth.String(),
		CategoryID: c.CategoryID,
		Strategy:   string(c.Strategy),
		Label:      c.Label,
		State:      string(c.State),
		Committed:  c.Committed(),
		Timestamp:  c.Timestamp,
	}
}

// CommandsFromDomain converts domain commands to responses.
func CommandsFromDomain(commands []*domain.Command) []CommandResponse {
	result := make([]CommandResponse, len(commands))
	for i, c := range commands {
		result[i] = CommandFromDomain(c)
	}
	return result
}

// HistoryResponse lists both history stacks, oldest first.
type HistoryResponse struct {
	Undo    []CommandResponse `json:"undo"`
	Redo    []CommandResponse `json:"redo"`
	CanUndo bool              `json:"can_undo"`
	CanRedo bool              `json:"can_redo"`
}

// HistoryFromDomain converts a history view to a response.
func HistoryFromDomain(h usecase.HistoryView) *HistoryResponse {
	return &HistoryResponse{
		Undo:    CommandsFromDomain(h.Undo),
		Redo:    CommandsFromDomain(h.Redo),
		CanUndo: len(h.Undo) > 0,
		CanRedo: len(h.Redo) > 0,
	}
}

// SyncFailureResponse represents a command the backend never persisted.
type SyncFailureResponse struct {
	CommandID   string   `json:"command_id"`
	Kind        string   `json:"kind"`
	Month       string   `json:"month"`
	CategoryIDs []string `json:"category_ids"`
	Error       string   `json:"error"`
}

// FailuresFromDomain converts sync failures to responses.
func FailuresFromDomain(failures []domain.SyncFailure) []SyncFailureResponse {
	result := make([]SyncFailureResponse, len(failures))
	for i, f := range failures {
		var msg string
		if f.Err != nil {
			msg = f.Err.Error()
		}
		result[i] = SyncFailureResponse{
			CommandID:   f.CommandID,
			Kind:        string(f.Kind),
			Month:       f.Month.String(),
			CategoryIDs: f.CategoryIDs,
			Error:       msg,
		}
	}
	return result
}

// ConsistencyResponse reports the outcome of a consistency check.
type ConsistencyResponse struct {
	Status     string `json:"status"`
	Consistent bool   `json:"consistent"`
	Message    string `json:"message,omitempty"`
}

// HistoryUnavailableResponse is returned when undo or redo has nothing to
// move. The flags let a client disable the matching control.
type HistoryUnavailableResponse struct {
	Error           string `json:"error"`
	Message         string `json:"message,omitempty"`
	CanUndo         bool   `json:"can_undo"`
	CanRedo         bool   `json:"can_redo"`
	LastActionLabel string `json:"last_action_label,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
