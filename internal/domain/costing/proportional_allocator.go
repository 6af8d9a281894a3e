package costing

import (
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProportionalAllocator splits a pen's cost across the lots it houses in
// proportion to each active link's head count
type ProportionalAllocator struct {
	places int32
}

// AllocatorOption configures a ProportionalAllocator
type AllocatorOption func(*ProportionalAllocator)

// WithRoundingPlaces sets the decimal places allocated amounts are posted with
func WithRoundingPlaces(places int32) AllocatorOption {
	return func(a *ProportionalAllocator) {
		if places >= 0 {
			a.places = places
		}
	}
}

// NewProportionalAllocator creates an allocator posting in cents by default
func NewProportionalAllocator(opts ...AllocatorOption) *ProportionalAllocator {
	a := &ProportionalAllocator{places: valueobject.CentPlaces}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Places returns the configured rounding places
func (a *ProportionalAllocator) Places() int32 {
	return a.places
}

// Allocate produces one record per active link of the origin's pen.
// Returns shared.ErrNoCandidatePool when the pen holds no animals.
func (a *ProportionalAllocator) Allocate(origin CostOrigin, links []livestock.PenLotLink) ([]CostAllocationRecord, error) {
	active := make([]livestock.PenLotLink, 0, len(links))
	parts := make([]Weighted, 0, len(links))
	for _, l := range links {
		if !l.IsActive() || l.PenID != origin.PenID || l.Quantity <= 0 {
			continue
		}
		active = append(active, l)
		parts = append(parts, Weighted{
			Key:    l.LotID.String() + "/" + l.ID.String(),
			Weight: decimal.NewFromInt(int64(l.Quantity)),
		})
	}

	shares := Distribute(origin.Amount, parts, a.places)
	if shares == nil {
		return nil, shared.ErrNoCandidatePool
	}

	records := make([]CostAllocationRecord, len(active))
	for i, l := range active {
		records[i] = CostAllocationRecord{
			ID:               uuid.New(),
			OriginID:         origin.ID,
			OriginCategory:   origin.Category,
			PenID:            origin.PenID,
			LotID:            l.LotID,
			LinkID:           l.ID,
			Quantity:         l.Quantity,
			OriginalAmount:   origin.Amount,
			AllocatedAmount:  shares[i].Amount,
			AllocatedPercent: shares[i].Percent,
			AllocationDate:   origin.Date,
		}
	}
	return records, nil
}

// TotalsByLot sums allocated amounts per lot, preserving first-seen order
func TotalsByLot(records []CostAllocationRecord) ([]uuid.UUID, map[uuid.UUID]decimal.Decimal) {
	order := make([]uuid.UUID, 0, len(records))
	totals := make(map[uuid.UUID]decimal.Decimal, len(records))
	for _, r := range records {
		if _, ok := totals[r.LotID]; !ok {
			order = append(order, r.LotID)
			totals[r.LotID] = decimal.Zero
		}
		totals[r.LotID] = totals[r.LotID].Add(r.AllocatedAmount)
	}
	return order, totals
}
