package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month identifies a calendar month. The zero value means "no month".
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM identifier.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MustParseMonth is ParseMonth for constants and tests.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns m shifted by n months.
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.start().AddDate(0, n, 0))
}

func (m Month) Prev() Month { return m.AddMonths(-1) }
func (m Month) Next() Month { return m.AddMonths(1) }

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
