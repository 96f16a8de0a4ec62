package domain

import (
	"fmt"
	"strings"
)

// Category is the static shape of a budget envelope.
// Category CRUD happens outside the engine; only the rollover and hidden
// flags are changed here, through commands.
type Category struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	GroupID         string `json:"group_id"`
	GroupName       string `json:"group_name"`
	Color           string `json:"color,omitempty"`
	Icon            string `json:"icon,omitempty"`
	GroupOrder      int    `json:"group_order"`
	SortOrder       int    `json:"sort_order"`
	RolloverEnabled bool   `json:"rollover_enabled"`
	Hidden          bool   `json:"hidden"`
}

// Validate checks the category identity.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCategory)
	}
	return nil
}

// displayLess orders categories by group, then by position within the group.
func displayLess(a, b *Category) bool {
	if a.GroupOrder != b.GroupOrder {
		return a.GroupOrder < b.GroupOrder
	}
	if a.GroupID != b.GroupID {
		return a.GroupID < b.GroupID
	}
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	return a.ID < b.ID
}

// CategoryMonthFigures holds one category's numbers for one month.
type CategoryMonthFigures struct {
	CategoryID string `json:"category_id"`
	Budgeted   Money  `json:"budgeted_cents"`
	Activity   Money  `json:"activity_cents"`
	// PrevAvailable is the prior month's final available balance.
	PrevAvailable Money `json:"prev_available_cents"`
	// Available is derived by the rollover resolver and never set directly.
	Available Money `json:"available_cents"`
	// RolloverEnabled is the carry-in flag frozen for this month.
	RolloverEnabled bool `json:"rollover_enabled"`

	// Category is filled in on snapshots for display.
	Category Category `json:"category"`
}

// AppliedPrev is the part of PrevAvailable that counts towards this month.
func (f *CategoryMonthFigures) AppliedPrev() Money {
	if f.RolloverEnabled {
		return f.PrevAvailable
	}
	return 0
}
