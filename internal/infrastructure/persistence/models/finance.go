package models

import (
	"time"

	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankStatementModel is the persistence model for an imported bank movement
type BankStatementModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	Date           time.Time       `gorm:"column:statement_date;not null;index"`
	Description    string          `gorm:"type:varchar(500);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Direction      string          `gorm:"type:varchar(10);not null"`
	BankAccountRef string          `gorm:"type:varchar(100);not null;index:idx_bank_statements_ref_reconciled,priority:1"`
	Reconciled     bool            `gorm:"not null;default:false;index:idx_bank_statements_ref_reconciled,priority:2"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BankStatementModel) TableName() string {
	return "bank_statements"
}

// ToDomain converts the persistence model to a domain BankStatementEntry
func (m *BankStatementModel) ToDomain() *finance.BankStatementEntry {
	return &finance.BankStatementEntry{
		ID:             m.ID,
		Date:           m.Date,
		Description:    m.Description,
		Amount:         m.Amount,
		Direction:      finance.Direction(m.Direction),
		BankAccountRef: m.BankAccountRef,
		Reconciled:     m.Reconciled,
		CreatedAt:      m.CreatedAt,
	}
}

// BankStatementModelFromDomain creates a new persistence model from a domain entry
func BankStatementModelFromDomain(e *finance.BankStatementEntry) *BankStatementModel {
	return &BankStatementModel{
		ID:             e.ID,
		Date:           e.Date,
		Description:    e.Description,
		Amount:         e.Amount,
		Direction:      string(e.Direction),
		BankAccountRef: e.BankAccountRef,
		Reconciled:     e.Reconciled,
		CreatedAt:      e.CreatedAt,
	}
}

// FinancialAccountModel is the persistence model for a receivable or payable
type FinancialAccountModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	Direction     string          `gorm:"type:varchar(20);not null;index:idx_financial_accounts_direction_status,priority:1"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DueDate       time.Time       `gorm:"not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index:idx_financial_accounts_direction_status,priority:2"`
	Category      string          `gorm:"type:varchar(20);not null;default:'operational';index"`
	LotID         *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentDate   *time.Time      `gorm:"index"`
	PaymentMethod string          `gorm:"type:varchar(30)"`
	Version       int             `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FinancialAccountModel) TableName() string {
	return "financial_accounts"
}

// ToDomain converts the persistence model to a domain FinancialAccount
func (m *FinancialAccountModel) ToDomain() *finance.FinancialAccount {
	return &finance.FinancialAccount{
		ID:            m.ID,
		Direction:     finance.AccountDirection(m.Direction),
		Description:   m.Description,
		Amount:        m.Amount,
		DueDate:       m.DueDate,
		Status:        finance.AccountStatus(m.Status),
		Category:      finance.AccountCategory(m.Category),
		LotID:         m.LotID,
		PaymentDate:   m.PaymentDate,
		PaymentMethod: m.PaymentMethod,
		Version:       m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FinancialAccountModelFromDomain creates a new persistence model from a domain account
func FinancialAccountModelFromDomain(a *finance.FinancialAccount) *FinancialAccountModel {
	return &FinancialAccountModel{
		ID:            a.ID,
		Direction:     string(a.Direction),
		Description:   a.Description,
		Amount:        a.Amount,
		DueDate:       a.DueDate,
		Status:        string(a.Status),
		Category:      string(a.Category),
		LotID:         a.LotID,
		PaymentDate:   a.PaymentDate,
		PaymentMethod: a.PaymentMethod,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ReconciliationRecordModel is the persistence model for a reconciliation record
type ReconciliationRecordModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	StatementID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_reconciliations_statement_live,priority:1"`
	AccountID      string          `gorm:"type:varchar(50);not null;index"`
	BankAccountRef string          `gorm:"type:varchar(100);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Difference     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null"`
	Confidence     int             `gorm:"not null;default:0"`
	MatchReason    string          `gorm:"type:varchar(500)"`
	Notes          string          `gorm:"type:text"`
	CreatedBy      string          `gorm:"type:varchar(100);not null"`
	AutoMatched    bool            `gorm:"not null;default:false"`
	Superseded     bool            `gorm:"not null;default:false;index:idx_reconciliations_statement_live,priority:2"`
	SupersededAt   *time.Time
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReconciliationRecordModel) TableName() string {
	return "reconciliation_records"
}

// ToDomain converts the persistence model to a domain ReconciliationRecord
func (m *ReconciliationRecordModel) ToDomain() *finance.ReconciliationRecord {
	return &finance.ReconciliationRecord{
		ID:             m.ID,
		StatementID:    m.StatementID,
		AccountID:      m.AccountID,
		BankAccountRef: m.BankAccountRef,
		Amount:         m.Amount,
		Difference:     m.Difference,
		Status:         finance.ReconciliationStatus(m.Status),
		Confidence:     m.Confidence,
		MatchReason:    m.MatchReason,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		AutoMatched:    m.AutoMatched,
		Superseded:     m.Superseded,
		SupersededAt:   m.SupersededAt,
		CreatedAt:      m.CreatedAt,
	}
}

// ReconciliationRecordModelFromDomain creates a new persistence model from a domain record
func ReconciliationRecordModelFromDomain(r *finance.ReconciliationRecord) *ReconciliationRecordModel {
	return &ReconciliationRecordModel{
		ID:             r.ID,
		StatementID:    r.StatementID,
		AccountID:      r.AccountID,
		BankAccountRef: r.BankAccountRef,
		Amount:         r.Amount,
		Difference:     r.Difference,
		Status:         string(r.Status),
		Confidence:     r.Confidence,
		MatchReason:    r.MatchReason,
		Notes:          r.Notes,
		CreatedBy:      r.CreatedBy,
		AutoMatched:    r.AutoMatched,
		Superseded:     r.Superseded,
		SupersededAt:   r.SupersededAt,
		CreatedAt:      r.CreatedAt,
	}
}
