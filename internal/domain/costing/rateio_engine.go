package costing

import (
	"fmt"
	"sort"
	"time"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// GenerationParams requests a draft indirect cost allocation
type GenerationParams struct {
	CostType            IndirectCostType
	Period              valueobject.Period
	TotalAmount         decimal.Decimal
	Method              AllocationMethod
	IncludeInactiveLots bool
	Description         string
}

// Validate checks the parameters
func (p GenerationParams) Validate() error {
	if !p.CostType.IsValid() {
		return shared.Errorf("INVALID_COST_TYPE", "Unknown indirect cost type %q", p.CostType)
	}
	if !p.Method.IsValid() {
		return shared.Errorf("INVALID_METHOD", "Unknown allocation method %q", p.Method)
	}
	if !p.TotalAmount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if p.Period.End.Before(p.Period.Start) {
		return shared.NewDomainError("INVALID_PERIOD", "Period end must not be before start")
	}
	return nil
}

// RateioEngine distributes lump-sum indirect costs across lots
type RateioEngine struct {
	bases  map[AllocationMethod]BasisStrategy
	places int32
}

// RateioOption configures a RateioEngine
type RateioOption func(*RateioEngine)

// WithBasisStrategy registers or replaces the basis for a method
func WithBasisStrategy(s BasisStrategy) RateioOption {
	return func(e *RateioEngine) {
		e.bases[s.Method()] = s
	}
}

// WithRateioRoundingPlaces sets the decimal places lines are posted with
func WithRateioRoundingPlaces(places int32) RateioOption {
	return func(e *RateioEngine) {
		if places >= 0 {
			e.places = places
		}
	}
}

// NewRateioEngine creates an engine with the default bases
func NewRateioEngine(opts ...RateioOption) *RateioEngine {
	e := &RateioEngine{
		bases:  DefaultBasisStrategies(),
		places: valueobject.CentPlaces,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QualifyingLots filters candidate lots for a run
func QualifyingLots(lots []*livestock.Lot, includeInactive bool) []*livestock.Lot {
	out := make([]*livestock.Lot, 0, len(lots))
	for _, l := range lots {
		if includeInactive || l.IsActive() {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Generate builds a draft allocation. It returns shared.ErrNoCandidatePool
// when no lot qualifies and shared.ErrZeroBasis when the basis totals zero;
// no allocation is produced in either case.
func (e *RateioEngine) Generate(params GenerationParams, lots []*livestock.Lot, asOf time.Time) (*IndirectCostAllocation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	basis, ok := e.bases[params.Method]
	if !ok {
		return nil, shared.Errorf("INVALID_METHOD", "No basis registered for %q", params.Method)
	}

	qualifying := QualifyingLots(lots, params.IncludeInactiveLots)
	if len(qualifying) == 0 {
		return nil, shared.ErrNoCandidatePool
	}

	parts := make([]Weighted, len(qualifying))
	basisTotal := decimal.Zero
	for i, l := range qualifying {
		b := basis.Basis(l, asOf)
		if b.IsNegative() {
			b = decimal.Zero
		}
		parts[i] = Weighted{Key: l.ID.String(), Weight: b}
		basisTotal = basisTotal.Add(b)
	}

	shares := Distribute(params.TotalAmount, parts, e.places)
	if shares == nil {
		return nil, shared.ErrZeroBasis
	}

	lines := make([]IndirectAllocationLine, len(qualifying))
	for i, l := range qualifying {
		lines[i] = IndirectAllocationLine{
			LotID:           l.ID,
			LotCode:         l.Code,
			Heads:           l.LiveHeads(),
			Value:           l.Costs.Total,
			Days:            l.DaysInConfinement(asOf),
			Weight:          l.EntryWeight.Kg(),
			Basis:           parts[i].Weight,
			Percentage:      shares[i].Percent,
			AllocatedAmount: shares[i].Amount,
		}
	}

	description := params.Description
	if description == "" {
		description = fmt.Sprintf("Automatic allocation by %s", params.Method)
	}
	alloc := &IndirectCostAllocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              fmt.Sprintf("%s cost allocation", params.CostType.Label()),
		Description:       description,
		Period:            params.Period,
		TotalAmount:       params.TotalAmount,
		CostType:          params.CostType,
		Method:            params.Method,
		BasisTotal:        basisTotal,
		Lines:             lines,
		Status:            AllocationStatusDraft,
	}
	alloc.Raise(NewIndirectAllocationGeneratedEvent(alloc))
	return alloc, nil
}
