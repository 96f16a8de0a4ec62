package domain

import (
	"errors"
	"testing"
)

func activityMonth(m string, activity map[string]Money) MonthLedger {
	l := MonthLedger{Month: MustParseMonth(m)}
	for _, id := range []string{"rent", "groceries", "fun"} {
		a, ok := activity[id]
		if !ok {
			continue
		}
		l.Figures = append(l.Figures, CategoryMonthFigures{CategoryID: id, Activity: a})
	}
	return l
}

func emptyJune() MonthLedger {
	return MonthLedger{Month: MustParseMonth("2024-06"), Figures: []CategoryMonthFigures{
		{CategoryID: "rent"}, {CategoryID: "groceries"}, {CategoryID: "fun"},
	}}
}

func patchMap(patches []BudgetPatch) map[string]Money {
	out := make(map[string]Money, len(patches))
	for _, p := range patches {
		out[p.CategoryID] = p.Budgeted
	}
	return out
}

func TestThreeMonthAverage(t *testing.T) {
	tests := []struct {
		name   string
		months []MonthLedger
		want   map[string]Money
	}{
		{
			name: "largest remainder gets the missing cent",
			months: []MonthLedger{
				activityMonth("2024-03", map[string]Money{"rent": 167, "groceries": 1, "fun": 2}),
				activityMonth("2024-04", map[string]Money{"rent": 167, "groceries": 1, "fun": 2}),
				activityMonth("2024-05", map[string]Money{"rent": 167, "groceries": 2, "fun": 1}),
			},
			want: map[string]Money{"rent": 167, "groceries": 1, "fun": 2},
		},
		{
			name: "tie goes to the category shown first",
			months: []MonthLedger{
				activityMonth("2024-04", map[string]Money{"rent": 1, "groceries": 2}),
				activityMonth("2024-05", map[string]Money{"rent": 2, "groceries": 1}),
			},
			want: map[string]Money{"rent": 2, "groceries": 1, "fun": 0},
		},
		{
			name: "single month of history",
			months: []MonthLedger{
				activityMonth("2024-05", map[string]Money{"rent": 90000, "groceries": 12345}),
			},
			want: map[string]Money{"rent": 90000, "groceries": 12345, "fun": 0},
		},
		{
			name: "older months beyond the window are ignored",
			months: []MonthLedger{
				activityMonth("2024-02", map[string]Money{"rent": 999999}),
				activityMonth("2024-03", map[string]Money{"rent": 300}),
				activityMonth("2024-04", map[string]Money{"rent": 300}),
				activityMonth("2024-05", map[string]Money{"rent": 300}),
			},
			want: map[string]Money{"rent": 300, "groceries": 0, "fun": 0},
		},
		{
			name: "net refunds clamp to zero",
			months: []MonthLedger{
				activityMonth("2024-04", map[string]Money{"rent": 600, "fun": -300}),
				activityMonth("2024-05", map[string]Money{"rent": 600, "fun": 100}),
			},
			want: map[string]Money{"rent": 600, "groceries": 0, "fun": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBudget(t, append(tt.months, emptyJune())...)

			patches, err := b.Distribute(MustParseMonth("2024-06"), StrategyThreeMonthAverage)
			if err != nil {
				t.Fatalf("Distribute: %v", err)
			}

			got := patchMap(patches)
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("%s = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestThreeMonthAverage_SumMatchesRoundedTotal(t *testing.T) {
	current := &MonthLedger{Figures: []CategoryMonthFigures{
		{CategoryID: "a"}, {CategoryID: "b"}, {CategoryID: "c"}, {CategoryID: "d"},
	}}
	history := []*MonthLedger{
		{Figures: []CategoryMonthFigures{{CategoryID: "a", Activity: 101}, {CategoryID: "b", Activity: 7}, {CategoryID: "c", Activity: 1}, {CategoryID: "d", Activity: 5}}},
		{Figures: []CategoryMonthFigures{{CategoryID: "a", Activity: 100}, {CategoryID: "b", Activity: 7}, {CategoryID: "c", Activity: 1}}},
		{Figures: []CategoryMonthFigures{{CategoryID: "a", Activity: 100}, {CategoryID: "b", Activity: 8}, {CategoryID: "c", Activity: 0}}},
	}

	patches := ThreeMonthAverage(current, history)

	// Means 301/3, 22/3, 2/3 and 5 add up to 113.33.
	var sum Money
	for _, p := range patches {
		sum += p.Budgeted
	}
	if sum != 113 {
		t.Errorf("sum = %d, want 113", sum)
	}
}

func TestCopyPreviousMonth(t *testing.T) {
	may := MonthLedger{Month: MustParseMonth("2024-05"), Figures: []CategoryMonthFigures{
		{CategoryID: "rent", Budgeted: 90000},
		{CategoryID: "groceries", Budgeted: 40000},
	}}
	b := newTestBudget(t, may, emptyJune())

	patches, err := b.Distribute(MustParseMonth("2024-06"), StrategyCopyPrevious)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}

	got := patchMap(patches)
	want := map[string]Money{"rent": 90000, "groceries": 40000, "fun": 0}
	for id, w := range want {
		if v, ok := got[id]; !ok || v != w {
			t.Errorf("%s = %d (present %v), want %d", id, v, ok, w)
		}
	}
}

func TestCopyPreviousMonth_SkipsHiddenCategories(t *testing.T) {
	cats := testCategories()
	cats[2].Hidden = true
	b, err := NewBudget(BudgetState{Categories: cats, Months: []MonthLedger{emptyJune()}})
	if err != nil {
		t.Fatalf("NewBudget: %v", err)
	}

	patches, err := b.Distribute(MustParseMonth("2024-06"), StrategyCopyPrevious)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if _, ok := patchMap(patches)["fun"]; ok {
		t.Error("hidden category should not be distributed to")
	}
}

func TestDistribute_Errors(t *testing.T) {
	b := newTestBudget(t, emptyJune())

	if _, err := b.Distribute(MustParseMonth("2024-09"), StrategyCopyPrevious); !errors.Is(err, ErrMonthNotFound) {
		t.Errorf("missing month error = %v", err)
	}
	if _, err := b.Distribute(MustParseMonth("2024-06"), Strategy("median")); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown strategy error = %v", err)
	}
	if _, err := ParseStrategy("median"); err == nil {
		t.Error("ParseStrategy accepted an unknown name")
	}
}
