package models

import (
	"time"

	"github.com/feedlot/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeStatementModel is the persistence model for a saved income statement.
// The full statement lives in Payload; the other columns are for listing.
type IncomeStatementModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	EntityType  string           `gorm:"type:varchar(10);not null;index:idx_income_statements_entity,priority:1"`
	EntityID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_income_statements_entity,priority:2"`
	PeriodStart time.Time        `gorm:"not null"`
	PeriodEnd   time.Time        `gorm:"not null"`
	NetIncome   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Payload     StatementPayload `gorm:"type:jsonb;not null"`
	GeneratedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IncomeStatementModel) TableName() string {
	return "income_statements"
}

// ToDomain converts the persistence model to a domain IncomeStatement
func (m *IncomeStatementModel) ToDomain() *report.IncomeStatement {
	stmt := report.IncomeStatement(m.Payload)
	return &stmt
}

// IncomeStatementModelFromDomain creates a new persistence model from a domain statement
func IncomeStatementModelFromDomain(s *report.IncomeStatement) *IncomeStatementModel {
	return &IncomeStatementModel{
		ID:          s.ID,
		EntityType:  string(s.EntityType),
		EntityID:    s.EntityID,
		PeriodStart: s.Period.Start,
		PeriodEnd:   s.Period.End,
		NetIncome:   s.NetIncome,
		Payload:     StatementPayload(*s),
		GeneratedAt: s.GeneratedAt,
	}
}
