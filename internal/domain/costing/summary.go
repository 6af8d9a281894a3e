package costing

import (
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IndirectCostSummary totals applied indirect costs for an entity over a period
type IndirectCostSummary struct {
	Period        valueobject.Period                   `json:"period"`
	Costs         map[IndirectCostType]decimal.Decimal `json:"costs"`
	Total         decimal.Decimal                      `json:"total"`
	CostPerHead   *decimal.Decimal                     `json:"cost_per_head,omitempty"`
	CostPerDay    *decimal.Decimal                     `json:"cost_per_day,omitempty"`
	AllocationIDs []uuid.UUID                          `json:"allocation_ids"`
}

// Summarize totals the applied allocations whose period falls inside the
// requested one. A nil lotIDs means global: every line counts. Returns
// false when nothing qualifies.
func Summarize(allocations []IndirectCostAllocation, lotIDs []uuid.UUID, period valueobject.Period, heads int) (*IndirectCostSummary, bool) {
	var wanted map[uuid.UUID]struct{}
	if lotIDs != nil {
		wanted = make(map[uuid.UUID]struct{}, len(lotIDs))
		for _, id := range lotIDs {
			wanted[id] = struct{}{}
		}
	}

	s := &IndirectCostSummary{
		Period: period,
		Costs:  make(map[IndirectCostType]decimal.Decimal),
		Total:  decimal.Zero,
	}
	for i := range allocations {
		a := &allocations[i]
		if a.Status != AllocationStatusApplied {
			continue
		}
		if a.Period.Start.Before(period.Start) || a.Period.End.After(period.End) {
			continue
		}
		amount := decimal.Zero
		matched := wanted == nil
		for _, line := range a.Lines {
			if wanted != nil {
				if _, ok := wanted[line.LotID]; !ok {
					continue
				}
				matched = true
			}
			amount = amount.Add(line.AllocatedAmount)
		}
		if !matched {
			continue
		}
		s.Costs[a.CostType] = s.Costs[a.CostType].Add(amount)
		s.Total = s.Total.Add(amount)
		s.AllocationIDs = append(s.AllocationIDs, a.ID)
	}
	if len(s.AllocationIDs) == 0 {
		return nil, false
	}

	if heads > 0 {
		v := s.Total.Div(decimal.NewFromInt(int64(heads))).Round(valueobject.CentPlaces)
		s.CostPerHead = &v
	}
	if days := valueobject.DaysBetween(period.Start, period.End); days > 0 {
		v := s.Total.Div(decimal.NewFromInt(int64(days))).Round(valueobject.CentPlaces)
		s.CostPerDay = &v
	}
	return s, true
}
