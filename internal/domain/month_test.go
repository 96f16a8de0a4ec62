package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{input: "2024-06", want: Month{Year: 2024, Month: 6}},
		{input: "1999-12", want: Month{Year: 1999, Month: 12}},
		{input: "2024-13", wantErr: true},
		{input: "2024-6", wantErr: true},
		{input: "June", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMonth) {
					t.Errorf("ParseMonth(%q) error = %v, want ErrInvalidMonth", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonth_Arithmetic(t *testing.T) {
	jan := MustParseMonth("2024-01")

	if got := jan.Prev().String(); got != "2023-12" {
		t.Errorf("Prev = %s, want 2023-12", got)
	}
	if got := jan.AddMonths(14).String(); got != "2025-03" {
		t.Errorf("AddMonths(14) = %s, want 2025-03", got)
	}
	if !jan.Prev().Before(jan) || jan.Before(jan) {
		t.Error("Before is not a strict order")
	}
	if (Month{}).String() != "" || !(Month{}).IsZero() {
		t.Error("zero month should be empty")
	}
}

func TestMonth_JSON(t *testing.T) {
	type wrapper struct {
		M Month `json:"m"`
	}

	data, err := json.Marshal(wrapper{M: MustParseMonth("2024-06")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"m":"2024-06"}` {
		t.Errorf("Marshal = %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"m":"2023-02"}`), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if w.M != MustParseMonth("2023-02") {
		t.Errorf("Unmarshal = %v", w.M)
	}

	if err := json.Unmarshal([]byte(`{"m":"02/2023"}`), &w); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("Unmarshal bad month error = %v", err)
	}
}
