package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places money is posted with
const CentPlaces int32 = 2

// Money is an immutable amount in Brazilian reais. The engine keeps a
// single currency, so arithmetic never fails.
type Money struct {
	amount decimal.Decimal
}

// NewMoneyBRL wraps an amount in reais
func NewMoneyBRL(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyBRLFromString parses an amount such as "1500.25"
func NewMoneyBRLFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// ZeroBRL returns R$ 0,00
func ZeroBRL() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the unrounded amount
func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Add returns the sum
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns the difference
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Abs returns the magnitude, as used when comparing a debit to a payable
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

// Posted returns the amount rounded half away from zero to cents
func (m Money) Posted() Money {
	return Money{amount: m.amount.Round(CentPlaces)}
}

// Equals compares amounts numerically, so 1.5 equals 1.50
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String formats as R$ with a dot thousands separator and a comma before
// the cents: R$ 1.234,56 or -R$ 10,00
func (m Money) String() string {
	fixed := m.amount.Abs().StringFixed(CentPlaces)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if m.amount.Round(CentPlaces).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(cents)
	return b.String()
}

// MarshalJSON writes the amount as a decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return m.amount.MarshalJSON()
}

// UnmarshalJSON accepts a decimal string or number
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.amount.UnmarshalJSON(data)
}
