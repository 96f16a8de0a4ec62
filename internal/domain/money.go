package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxFractionDigits is the number of minor-unit digits a money string may carry.
const MaxFractionDigits = 2

var (
	ErrInvalidMoney    = errors.New("invalid money amount")
	ErrTooManyDecimals = errors.New("money amount has more than 2 fractional digits")
	ErrZeroDenominator = errors.New("ratio denominator must not be zero")
)

// Money is an amount expressed as an integer count of cents.
type Money int64

// NewMoney creates Money from a cents value.
func NewMoney(cents int64) Money {
	return Money(cents)
}

// ParseMoney parses a decimal string such as "12.34", "-5" or "7,5" into Money.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidMoney)
	}

	s = strings.ReplaceAll(s, ",", ".")

	// decimal also accepts exponent notation; money is plain digits only.
	if !moneyPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > MaxFractionDigits {
		return 0, fmt.Errorf("%w: %q", ErrTooManyDecimals, s)
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	cents := d.Shift(MaxFractionDigits)

	if cents.GreaterThan(decimal.NewFromInt(maxCents)) || cents.LessThan(decimal.NewFromInt(-maxCents)) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidMoney, s)
	}

	return Money(cents.IntPart()), nil
}

const maxCents = 1<<62 - 1

var moneyPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Cents returns the raw cents value.
func (m Money) Cents() int64 {
	return int64(m)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return m + o
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return m - o
}

// Neg returns -m.
func (m Money) Neg() Money {
	return -m
}

func (m Money) IsNegative() bool { return m < 0 }
func (m Money) IsZero() bool     { return m == 0 }

// Decimal converts to major units. Only for formatting boundaries.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MaxFractionDigits)
}

// String formats the amount in major units with two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(MaxFractionDigits)
}

// MulRatio returns m * num / den rounded to the nearest cent, halves away from zero.
func (m Money) MulRatio(num, den int64) (Money, error) {
	if den == 0 {
		return 0, ErrZeroDenominator
	}

	return Money(roundDiv(int64(m)*num, den)), nil
}

// roundDiv divides rounding halves away from zero.
func roundDiv(n, d int64) int64 {
	if d < 0 {
		n, d = -n, -d
	}

	q, r := n/d, n%d
	if r < 0 {
		r = -r
	}

	if 2*r >= d {
		if n < 0 {
			q--
		} else {
			q++
		}
	}

	return q
}

// AllocateRounded turns the exact shares numerators[i]/den into whole cents.
// Each share is floored, then the cents missing to reach round(sum/den) are
// handed out one by one to the shares with the largest remainders. Ties go to
// the earlier index, so callers pass shares in display order. Numerators must
// be non-negative.
func AllocateRounded(numerators []int64, den int64) ([]Money, error) {
	if den <= 0 {
		return nil, ErrZeroDenominator
	}

	for i, n := range numerators {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative share at index %d", ErrInvalidMoney, i)
		}
	}

	return allocateRounded(numerators, den), nil
}

func allocateRounded(numerators []int64, den int64) []Money {
	parts := make([]Money, len(numerators))
	remainders := make([]int64, len(numerators))

	var total, floored int64
	for i, n := range numerators {
		parts[i] = Money(n / den)
		remainders[i] = n % den
		total += n
		floored += n / den
	}

	missing := roundDiv(total, den) - floored

	order := make([]int, len(numerators))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	for i := 0; i < int(missing) && i < len(order); i++ {
		parts[order[i]]++
	}

	return parts
}

// SumMoney adds up amounts.
func SumMoney(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}
