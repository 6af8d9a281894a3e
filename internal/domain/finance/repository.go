package finance

import (
	"context"

	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// StatementRepository persists bank statement entries
type StatementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankStatementEntry, error)
	// FindUnreconciled returns unreconciled entries ordered by date; an empty
	// bankAccountRef means all bank accounts
	FindUnreconciled(ctx context.Context, bankAccountRef string) ([]BankStatementEntry, error)
	Save(ctx context.Context, entry *BankStatementEntry) error
}

// FinancialAccountRepository persists receivables and payables
type FinancialAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FinancialAccount, error)
	// FindOpen returns pending accounts of a direction
	FindOpen(ctx context.Context, direction AccountDirection) ([]FinancialAccount, error)
	// FindPaidInPeriod returns paid accounts of a category whose payment date is in the period
	FindPaidInPeriod(ctx context.Context, category AccountCategory, period valueobject.Period) ([]FinancialAccount, error)
	Save(ctx context.Context, account *FinancialAccount) error
}

// ReconciliationRecordRepository persists reconciliation records
type ReconciliationRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReconciliationRecord, error)
	// FindLiveByStatement returns the non-superseded record of a statement,
	// shared.ErrNotFound if none
	FindLiveByStatement(ctx context.Context, statementID uuid.UUID) (*ReconciliationRecord, error)
	Save(ctx context.Context, record *ReconciliationRecord) error
}
