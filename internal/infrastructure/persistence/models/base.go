package models

import (
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntityRow holds the identity and timestamp columns shared by every table
type EntityRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Entity rebuilds the domain identity from the row
func (r EntityRow) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// SetEntity copies the domain identity into the row
func (r *EntityRow) SetEntity(e shared.BaseEntity) {
	*r = EntityRow{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// VersionedRow adds the optimistic lock column of aggregate roots.
// Repositories update with WHERE version = the aggregate's stored version.
type VersionedRow struct {
	EntityRow
	Version int `gorm:"not null;default:1"`
}

// Aggregate rebuilds the domain root; pending events are not persisted
func (r VersionedRow) Aggregate() shared.BaseAggregateRoot {
	return shared.RestoreAggregateRoot(r.Entity(), r.Version)
}

// SetAggregate copies identity and version from the domain root
func (r *VersionedRow) SetAggregate(a shared.BaseAggregateRoot) {
	r.SetEntity(a.BaseEntity)
	r.Version = a.Version
}

// All lists every model in the order the tables are created
func All() []any {
	return []any{
		&LotModel{},
		&PenModel{},
		&PenLotLinkModel{},
		&NonCashLossModel{},
		&CostAllocationRecordModel{},
		&IndirectAllocationModel{},
		&BankStatementModel{},
		&FinancialAccountModel{},
		&ReconciliationRecordModel{},
		&IncomeStatementModel{},
		&DomainEventModel{},
	}
}
