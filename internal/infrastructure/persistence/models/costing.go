package models

import (
	"time"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostAllocationRecordModel is the persistence model for one link's share of a cost origin
type CostAllocationRecordModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OriginID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	OriginCategory   string          `gorm:"type:varchar(20);not null"`
	PenID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	LinkID           uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         int             `gorm:"not null"`
	OriginalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AllocatedAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AllocatedPercent decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	AllocationDate   time.Time       `gorm:"not null"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CostAllocationRecordModel) TableName() string {
	return "cost_allocation_records"
}

// ToDomain converts the persistence model to a domain CostAllocationRecord
func (m *CostAllocationRecordModel) ToDomain() costing.CostAllocationRecord {
	return costing.CostAllocationRecord{
		ID:               m.ID,
		OriginID:         m.OriginID,
		OriginCategory:   livestock.CostCategory(m.OriginCategory),
		PenID:            m.PenID,
		LotID:            m.LotID,
		LinkID:           m.LinkID,
		Quantity:         m.Quantity,
		OriginalAmount:   m.OriginalAmount,
		AllocatedAmount:  m.AllocatedAmount,
		AllocatedPercent: m.AllocatedPercent,
		AllocationDate:   m.AllocationDate,
	}
}

// CostAllocationRecordModelFromDomain creates a new persistence model from a domain record
func CostAllocationRecordModelFromDomain(r costing.CostAllocationRecord) CostAllocationRecordModel {
	return CostAllocationRecordModel{
		ID:               r.ID,
		OriginID:         r.OriginID,
		OriginCategory:   string(r.OriginCategory),
		PenID:            r.PenID,
		LotID:            r.LotID,
		LinkID:           r.LinkID,
		Quantity:         r.Quantity,
		OriginalAmount:   r.OriginalAmount,
		AllocatedAmount:  r.AllocatedAmount,
		AllocatedPercent: r.AllocatedPercent,
		AllocationDate:   r.AllocationDate,
		CreatedAt:        time.Now(),
	}
}

// IndirectAllocationModel is the persistence model for the IndirectCostAllocation aggregate root
type IndirectAllocationModel struct {
	VersionedRow
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	PeriodStart   time.Time       `gorm:"not null;index"`
	PeriodEnd     time.Time       `gorm:"not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostType      string          `gorm:"type:varchar(30);not null"`
	Method        string          `gorm:"type:varchar(20);not null"`
	BasisTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Lines         IndirectLines   `gorm:"type:jsonb;default:'[]'"`
	Status        string          `gorm:"type:varchar(20);not null;default:'draft';index"`
	ApprovedBy    string          `gorm:"type:varchar(100)"`
	ApprovedAt    *time.Time
	AppliedAt     *time.Time
	DiscardedAt   *time.Time
	DiscardReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (IndirectAllocationModel) TableName() string {
	return "indirect_cost_allocations"
}

// ToDomain converts the persistence model to a domain IndirectCostAllocation
func (m *IndirectAllocationModel) ToDomain() *costing.IndirectCostAllocation {
	lines := make([]costing.IndirectAllocationLine, len(m.Lines))
	copy(lines, m.Lines)
	return &costing.IndirectCostAllocation{
		BaseAggregateRoot: m.Aggregate(),
		Name:              m.Name,
		Description:       m.Description,
		Period:            valueobject.Period{Start: m.PeriodStart, End: m.PeriodEnd},
		TotalAmount:       m.TotalAmount,
		CostType:          costing.IndirectCostType(m.CostType),
		Method:            costing.AllocationMethod(m.Method),
		BasisTotal:        m.BasisTotal,
		Lines:             lines,
		Status:            costing.AllocationStatus(m.Status),
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		AppliedAt:         m.AppliedAt,
		DiscardedAt:       m.DiscardedAt,
		DiscardReason:     m.DiscardReason,
	}
}

// FromDomain populates the persistence model from a domain IndirectCostAllocation
func (m *IndirectAllocationModel) FromDomain(a *costing.IndirectCostAllocation) {
	m.SetAggregate(a.BaseAggregateRoot)
	m.Name = a.Name
	m.Description = a.Description
	m.PeriodStart = a.Period.Start
	m.PeriodEnd = a.Period.End
	m.TotalAmount = a.TotalAmount
	m.CostType = string(a.CostType)
	m.Method = string(a.Method)
	m.BasisTotal = a.BasisTotal
	m.Lines = IndirectLines(a.Lines)
	m.Status = string(a.Status)
	m.ApprovedBy = a.ApprovedBy
	m.ApprovedAt = a.ApprovedAt
	m.AppliedAt = a.AppliedAt
	m.DiscardedAt = a.DiscardedAt
	m.DiscardReason = a.DiscardReason
}

// IndirectAllocationModelFromDomain creates a new persistence model from a domain allocation
func IndirectAllocationModelFromDomain(a *costing.IndirectCostAllocation) *IndirectAllocationModel {
	m := &IndirectAllocationModel{}
	m.FromDomain(a)
	return m
}
