package costing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Weighted is one participant of a proportional split. Key orders
// participants deterministically when weights tie.
type Weighted struct {
	Key    string
	Weight decimal.Decimal
}

// Share is a participant's part of a split, in input order
type Share struct {
	Key     string
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// Distribute splits amount across participants in proportion to their
// weights. Every share is truncated to places and the leftover is given to
// the largest weight (lowest key on ties), so amounts sum to amount and
// percents sum to 100 exactly. Returns nil when the weights total zero.
func Distribute(amount decimal.Decimal, parts []Weighted, places int32) []Share {
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p.Weight)
	}
	if !total.IsPositive() {
		return nil
	}

	shares := make([]Share, len(parts))
	sumAmount := decimal.Zero
	sumPercent := decimal.Zero
	largest := 0
	for i, p := range parts {
		a := amount.Mul(p.Weight).Div(total).Truncate(places)
		pct := hundred.Mul(p.Weight).Div(total).Truncate(places)
		shares[i] = Share{Key: p.Key, Amount: a, Percent: pct}
		sumAmount = sumAmount.Add(a)
		sumPercent = sumPercent.Add(pct)
		if isLarger(p, parts[largest]) {
			largest = i
		}
	}

	shares[largest].Amount = shares[largest].Amount.Add(amount.Sub(sumAmount))
	shares[largest].Percent = shares[largest].Percent.Add(hundred.Sub(sumPercent))
	return shares
}

func isLarger(a, b Weighted) bool {
	if c := a.Weight.Cmp(b.Weight); c != 0 {
		return c > 0
	}
	return a.Key < b.Key
}
