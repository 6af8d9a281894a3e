package costing

import (
	"time"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// AllocationMethod selects the basis an indirect cost is split by
type AllocationMethod string

const (
	MethodByHeads  AllocationMethod = "by_heads"
	MethodByValue  AllocationMethod = "by_value"
	MethodByDays   AllocationMethod = "by_days"
	MethodByWeight AllocationMethod = "by_weight"
)

// IsValid checks if the method is known
func (m AllocationMethod) IsValid() bool {
	switch m {
	case MethodByHeads, MethodByValue, MethodByDays, MethodByWeight:
		return true
	}
	return false
}

// BasisStrategy computes a lot's weight in an indirect allocation
type BasisStrategy interface {
	strategy.Strategy
	Method() AllocationMethod
	Basis(lot *livestock.Lot, asOf time.Time) decimal.Decimal
}

type basisFunc struct {
	strategy.Base
	method AllocationMethod
	fn     func(lot *livestock.Lot, asOf time.Time) decimal.Decimal
}

func (b basisFunc) Method() AllocationMethod { return b.method }

func (b basisFunc) Basis(lot *livestock.Lot, asOf time.Time) decimal.Decimal {
	return b.fn(lot, asOf)
}

func newBasis(method AllocationMethod, desc string, fn func(*livestock.Lot, time.Time) decimal.Decimal) BasisStrategy {
	return basisFunc{
		Base:   strategy.NewBase(string(method), strategy.TypeRateioBasis, desc),
		method: method,
		fn:     fn,
	}
}

// DefaultBasisStrategies returns the four bases keyed by method
func DefaultBasisStrategies() map[AllocationMethod]BasisStrategy {
	return map[AllocationMethod]BasisStrategy{
		MethodByHeads: newBasis(MethodByHeads, "Live head count", func(l *livestock.Lot, _ time.Time) decimal.Decimal {
			return decimal.NewFromInt(int64(l.LiveHeads()))
		}),
		MethodByValue: newBasis(MethodByValue, "Accumulated ledger cost", func(l *livestock.Lot, _ time.Time) decimal.Decimal {
			return l.Costs.Total
		}),
		MethodByDays: newBasis(MethodByDays, "Days in confinement times live heads", func(l *livestock.Lot, asOf time.Time) decimal.Decimal {
			return decimal.NewFromInt(int64(l.DaysInConfinement(asOf) * l.LiveHeads()))
		}),
		MethodByWeight: newBasis(MethodByWeight, "Entry weight", func(l *livestock.Lot, _ time.Time) decimal.Decimal {
			return l.EntryWeight.Kg()
		}),
	}
}
