// Package money provides exact fixed-point amounts with two fractional
// digits. All ledger arithmetic goes through this type; binary floating
// point never touches an amount.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable two-decimal amount. The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero is the 0.00 amount.
var Zero = Money{}

// Parse converts a decimal string such as "30.00" or "7.5" into Money.
// Inputs with more than two fractional digits are rejected rather than
// rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for compile-time-known literals; it panics on bad input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromCents builds Money from an integer count of hundredths, the
// representation amounts take in storage.
func FromCents(c int64) Money {
	return Money{d: decimal.New(c, -2)}
}

// Cents returns the amount as an integer count of hundredths.
func (m Money) Cents() int64 {
	return m.d.Shift(2).IntPart()
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

// Cmp returns -1, 0 or 1 as m is less than, equal to or greater than o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) IsZero() bool       { return m.d.IsZero() }
func (m Money) IsNegative() bool   { return m.d.IsNegative() }
func (m Money) IsPositive() bool   { return m.d.IsPositive() }

// String renders with exactly two decimal places, e.g. "30.00".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// Sum adds a sequence of amounts exactly.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
