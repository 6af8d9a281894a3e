package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultKgPerArroba is the carcass weight of one arroba
var DefaultKgPerArroba = decimal.NewFromInt(15)

// Weight is a non-negative live or carcass weight in kilograms
type Weight struct {
	kg decimal.Decimal
}

// NewWeight creates a Weight from kilograms
func NewWeight(kg decimal.Decimal) (Weight, error) {
	if kg.IsNegative() {
		return Weight{}, errors.New("weight cannot be negative")
	}
	return Weight{kg: kg}, nil
}

// MustNewWeight creates a Weight, panics on negative input
func MustNewWeight(kg decimal.Decimal) Weight {
	w, err := NewWeight(kg)
	if err != nil {
		panic(err)
	}
	return w
}

// Kg returns the weight in kilograms
func (w Weight) Kg() decimal.Decimal {
	return w.kg
}

// IsZero returns true if the weight is zero
func (w Weight) IsZero() bool {
	return w.kg.IsZero()
}

// Add returns the sum of both weights
func (w Weight) Add(other Weight) Weight {
	return Weight{kg: w.kg.Add(other.kg)}
}

// Carcass applies a carcass yield percentage (0-100) to a live weight
func (w Weight) Carcass(yieldPercent decimal.Decimal) Weight {
	return Weight{kg: w.kg.Mul(yieldPercent).Div(decimal.NewFromInt(100))}
}

// Arrobas converts the weight to arrobas. A non-positive kgPerArroba
// falls back to DefaultKgPerArroba.
func (w Weight) Arrobas(kgPerArroba decimal.Decimal) decimal.Decimal {
	if !kgPerArroba.IsPositive() {
		kgPerArroba = DefaultKgPerArroba
	}
	return w.kg.Div(kgPerArroba)
}

// String returns the weight formatted in kilograms
func (w Weight) String() string {
	return fmt.Sprintf("%s kg", w.kg.StringFixed(2))
}

// MarshalJSON implements json.Marshaler
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.kg.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (w *Weight) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid weight: %w", err)
	}
	if d.IsNegative() {
		return errors.New("weight cannot be negative")
	}
	w.kg = d
	return nil
}
