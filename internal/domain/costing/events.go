package costing

import (
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeCostAllocated               = "CostAllocated"
	EventTypeIndirectAllocationGenerated = "IndirectAllocationGenerated"
	EventTypeIndirectAllocationStatus    = "IndirectAllocationStatusChanged"
)

// CostAllocatedEvent is raised once all records of a cost origin are posted
type CostAllocatedEvent struct {
	shared.BaseDomainEvent
	OriginID    uuid.UUID       `json:"origin_id"`
	PenID       uuid.UUID       `json:"pen_id"`
	Amount      decimal.Decimal `json:"amount"`
	RecordCount int             `json:"record_count"`
}

// NewCostAllocatedEvent creates a new CostAllocatedEvent
func NewCostAllocatedEvent(origin CostOrigin, records int) *CostAllocatedEvent {
	return &CostAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCostAllocated, shared.AggregatePen, origin.PenID),
		OriginID:        origin.ID,
		PenID:           origin.PenID,
		Amount:          origin.Amount,
		RecordCount:     records,
	}
}

// IndirectAllocationGeneratedEvent is raised when a draft is produced
type IndirectAllocationGeneratedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID        `json:"allocation_id"`
	CostType     IndirectCostType `json:"cost_type"`
	Method       AllocationMethod `json:"method"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
}

// NewIndirectAllocationGeneratedEvent creates a new IndirectAllocationGeneratedEvent
func NewIndirectAllocationGeneratedEvent(a *IndirectCostAllocation) *IndirectAllocationGeneratedEvent {
	return &IndirectAllocationGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndirectAllocationGenerated, shared.AggregateIndirectCostAllocation, a.ID),
		AllocationID:    a.ID,
		CostType:        a.CostType,
		Method:          a.Method,
		TotalAmount:     a.TotalAmount,
	}
}

// IndirectAllocationStatusChangedEvent is raised on every lifecycle transition
type IndirectAllocationStatusChangedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID        `json:"allocation_id"`
	Status       AllocationStatus `json:"status"`
}

// NewIndirectAllocationStatusChangedEvent creates a new IndirectAllocationStatusChangedEvent
func NewIndirectAllocationStatusChangedEvent(a *IndirectCostAllocation) *IndirectAllocationStatusChangedEvent {
	return &IndirectAllocationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndirectAllocationStatus, shared.AggregateIndirectCostAllocation, a.ID),
		AllocationID:    a.ID,
		Status:          a.Status,
	}
}
