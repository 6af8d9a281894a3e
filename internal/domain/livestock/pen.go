package livestock

import (
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pen is a physical enclosure that may house portions of several lots
type Pen struct {
	shared.BaseAggregateRoot
	Code      string `json:"code"`
	Capacity  int    `json:"capacity"`
	Occupancy int    `json:"occupancy"`
}

// NewPen creates an empty pen
func NewPen(code string, capacity int) (*Pen, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PEN_CODE", "Pen code cannot be empty")
	}
	if capacity <= 0 {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Pen capacity must be positive")
	}
	return &Pen{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Capacity:          capacity,
	}, nil
}

// AddAnimals increases occupancy; exceeding capacity is allowed and flagged by callers
func (p *Pen) AddAnimals(quantity int) {
	p.Occupancy += quantity
	p.Bump()
}

// RemoveAnimals decreases occupancy, floored at zero
func (p *Pen) RemoveAnimals(quantity int) {
	p.Occupancy -= quantity
	if p.Occupancy < 0 {
		p.Occupancy = 0
	}
	p.Bump()
}

// LinkStatus is the status of a pen-lot link
type LinkStatus string

const (
	LinkStatusActive  LinkStatus = "active"
	LinkStatusRemoved LinkStatus = "removed"
)

// PenLotLink records that part of a lot occupies a pen
type PenLotLink struct {
	shared.BaseEntity
	LotID        uuid.UUID       `json:"lot_id"`
	PenID        uuid.UUID       `json:"pen_id"`
	Quantity     int             `json:"quantity"`
	PercentOfLot decimal.Decimal `json:"percent_of_lot"`
	PercentOfPen decimal.Decimal `json:"percent_of_pen"`
	Status       LinkStatus      `json:"status"`
	AllocatedAt  time.Time       `json:"allocated_at"`
	RemovedAt    *time.Time      `json:"removed_at,omitempty"`
}

// NewPenLotLink creates an active link. Percentages are computed by the caller
// since they depend on the whole assignment.
func NewPenLotLink(lotID, penID uuid.UUID, quantity int, allocatedAt time.Time) (*PenLotLink, error) {
	if lotID == uuid.Nil || penID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINK", "Lot and pen are required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Link quantity must be positive")
	}
	return &PenLotLink{
		BaseEntity:   shared.NewBaseEntity(),
		LotID:        lotID,
		PenID:        penID,
		Quantity:     quantity,
		PercentOfLot: decimal.Zero,
		PercentOfPen: decimal.Zero,
		Status:       LinkStatusActive,
		AllocatedAt:  allocatedAt,
	}, nil
}

// IsActive returns true while the link takes part in allocations
func (l *PenLotLink) IsActive() bool {
	return l.Status == LinkStatusActive
}

// SetShares records the link's share of the lot's live heads and of the
// pen's occupancy, as percentages with two decimals
func (l *PenLotLink) SetShares(lotHeads, penOccupancy int) {
	q := decimal.NewFromInt(int64(l.Quantity))
	pct := func(of int) decimal.Decimal {
		if of <= 0 {
			return decimal.Zero
		}
		return q.Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(of))).Round(2)
	}
	l.PercentOfLot = pct(lotHeads)
	l.PercentOfPen = pct(penOccupancy)
}

// Remove takes the link out of the pen
func (l *PenLotLink) Remove(at time.Time) error {
	if !l.IsActive() {
		return shared.ErrInvalidState.WithMessagef("Link %s is already removed", l.ID)
	}
	l.Status = LinkStatusRemoved
	l.RemovedAt = &at
	l.Touch()
	return nil
}

// WarningKind names a soft occupancy violation
type WarningKind string

const (
	WarningLotOverAssigned WarningKind = "lot_over_assigned"
	WarningPenOverCapacity WarningKind = "pen_over_capacity"
)

// OccupancyWarning flags a soft invariant violation. These never block an operation.
type OccupancyWarning struct {
	Kind     WarningKind `json:"kind"`
	EntityID uuid.UUID   `json:"entity_id"`
	Limit    int         `json:"limit"`
	Assigned int         `json:"assigned"`
}

// CheckLotAssignment flags active links whose quantities exceed the lot's live heads
func CheckLotAssignment(lot *Lot, activeLinks []PenLotLink) *OccupancyWarning {
	assigned := 0
	for _, l := range activeLinks {
		if l.IsActive() && l.LotID == lot.ID {
			assigned += l.Quantity
		}
	}
	if assigned > lot.LiveHeads() {
		return &OccupancyWarning{Kind: WarningLotOverAssigned, EntityID: lot.ID, Limit: lot.LiveHeads(), Assigned: assigned}
	}
	return nil
}

// CheckPenCapacity flags active links whose quantities exceed pen capacity
func CheckPenCapacity(pen *Pen, activeLinks []PenLotLink) *OccupancyWarning {
	assigned := 0
	for _, l := range activeLinks {
		if l.IsActive() && l.PenID == pen.ID {
			assigned += l.Quantity
		}
	}
	if assigned > pen.Capacity {
		return &OccupancyWarning{Kind: WarningPenOverCapacity, EntityID: pen.ID, Limit: pen.Capacity, Assigned: assigned}
	}
	return nil
}
