package finance

import (
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeStatementReconciled  = "StatementReconciled"
	EventTypeReconciliationUndone = "ReconciliationUndone"
)

// StatementReconciledEvent is raised after a commit
type StatementReconciledEvent struct {
	shared.BaseDomainEvent
	RecordID    uuid.UUID            `json:"record_id"`
	StatementID uuid.UUID            `json:"statement_id"`
	AccountID   string               `json:"account_id"`
	Status      ReconciliationStatus `json:"status"`
	Difference  decimal.Decimal      `json:"difference"`
	AutoMatched bool                 `json:"auto_matched"`
}

// NewStatementReconciledEvent creates a new StatementReconciledEvent
func NewStatementReconciledEvent(r *ReconciliationRecord) *StatementReconciledEvent {
	return &StatementReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatementReconciled, shared.AggregateBankStatementEntry, r.StatementID),
		RecordID:        r.ID,
		StatementID:     r.StatementID,
		AccountID:       r.AccountID,
		Status:          r.Status,
		Difference:      r.Difference,
		AutoMatched:     r.AutoMatched,
	}
}

// ReconciliationUndoneEvent is raised when a record is superseded
type ReconciliationUndoneEvent struct {
	shared.BaseDomainEvent
	RecordID    uuid.UUID `json:"record_id"`
	StatementID uuid.UUID `json:"statement_id"`
}

// NewReconciliationUndoneEvent creates a new ReconciliationUndoneEvent
func NewReconciliationUndoneEvent(r *ReconciliationRecord) *ReconciliationUndoneEvent {
	return &ReconciliationUndoneEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReconciliationUndone, shared.AggregateBankStatementEntry, r.StatementID),
		RecordID:        r.ID,
		StatementID:     r.StatementID,
	}
}
