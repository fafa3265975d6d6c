package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount with two fractional digits, stored in minor
// units (cents). All external numeric input goes through Parse exactly once;
// after that point amounts never round-trip through floats.
type Money struct {
	cents int64
}

var (
	ErrOverflow        = errors.New("arithmetic overflow")
	ErrMalformedAmount = errors.New("malformed amount")
)

func FromCents(c int64) Money { return Money{cents: c} }

// Parse converts a decimal string ("12.34") into Money. Amounts with more
// than two fractional digits are rejected rather than rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return Money{}, fmt.Errorf("%w: %q has more than 2 decimal places", ErrMalformedAmount, s)
	}
	scaled := d.Shift(2)
	if !scaled.IsInteger() || !scaled.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return Money{cents: scaled.IntPart()}, nil
}

func (m Money) Add(other Money) (Money, error) {
	sum := m.cents + other.cents
	if (other.cents > 0 && sum < m.cents) || (other.cents < 0 && sum > m.cents) {
		return Money{}, ErrOverflow
	}
	return Money{cents: sum}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if other.cents == math.MinInt64 {
		return Money{}, ErrOverflow
	}
	return m.Add(Money{cents: -other.cents})
}

func (m Money) IsPositive() bool { return m.cents > 0 }
func (m Money) IsNegative() bool { return m.cents < 0 }
func (m Money) IsZero() bool     { return m.cents == 0 }

// Cmp returns -1, 0 or 1 as m is less than, equal to or greater than other.
func (m Money) Cmp(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	}
	return 0
}

func (m Money) Cents() int64 { return m.cents }

// Decimal exposes the amount for serialized payloads.
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.cents, -2) }

func (m Money) String() string { return m.Decimal().StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
