// Package amount is the decimal engine every money computation goes through.
// Values are shopspring decimals; nothing here touches binary floating point.
package amount

import (
	"fmt"
	"strings"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept by divisions.
const Scale int32 = 12

// DivisionByZeroError is returned when a divisor rounds to zero at Scale.
type DivisionByZeroError struct {
	Dividend decimal.Decimal
	Divisor  decimal.Decimal
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero: %s / %s", e.Dividend.String(), e.Divisor.String())
}

func (e *DivisionByZeroError) Unwrap() error {
	return apperrors.ErrArithmetic
}

// Parse reads a decimal string such as "-50.00". Empty input is zero.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", apperrors.ErrArithmetic, s)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Add(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) }
func Sub(a, b decimal.Decimal) decimal.Decimal { return a.Sub(b) }
func Mul(a, b decimal.Decimal) decimal.Decimal { return a.Mul(b) }

// Div divides a by b keeping Scale fractional digits.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.Round(Scale).IsZero() {
		return decimal.Zero, &DivisionByZeroError{Dividend: a, Divisor: b}
	}
	return a.DivRound(b, Scale), nil
}

// Cmp returns -1, 0 or 1.
func Cmp(a, b decimal.Decimal) int { return a.Cmp(b) }

// Abs returns |a|.
func Abs(a decimal.Decimal) decimal.Decimal { return a.Abs() }

// Positive forces a non-negative value.
func Positive(a decimal.Decimal) decimal.Decimal { return a.Abs() }

// Negative forces a non-positive value.
func Negative(a decimal.Decimal) decimal.Decimal { return a.Abs().Neg() }

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Format renders a with exactly places fractional digits, half away from zero.
func Format(a decimal.Decimal, places int) string {
	if places < 0 {
		places = 0
	}
	return a.StringFixed(int32(places))
}
