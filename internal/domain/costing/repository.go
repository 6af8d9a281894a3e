package costing

import (
	"context"

	"github.com/google/uuid"
)

// AllocationRecordRepository persists pen cost allocation records
type AllocationRecordRepository interface {
	// SaveAll stores every record of one origin
	SaveAll(ctx context.Context, records []CostAllocationRecord) error
	// FindByOrigin returns the records posted for an origin
	FindByOrigin(ctx context.Context, originID uuid.UUID) ([]CostAllocationRecord, error)
	// ExistsForOrigin reports whether the origin has already been posted
	ExistsForOrigin(ctx context.Context, originID uuid.UUID) (bool, error)
}

// IndirectAllocationRepository persists indirect cost allocations
type IndirectAllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*IndirectCostAllocation, error)
	FindByStatus(ctx context.Context, status AllocationStatus) ([]IndirectCostAllocation, error)
	Save(ctx context.Context, allocation *IndirectCostAllocation) error
}
