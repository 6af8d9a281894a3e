package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManualAccountID is stored when a statement is reconciled without an account
const ManualAccountID = "manual"

// SystemUser is recorded as the author of automatic reconciliations
const SystemUser = "system"

// ReconciliationStatus is the outcome of a commit
type ReconciliationStatus string

const (
	ReconciliationStatusReconciled  ReconciliationStatus = "reconciled"
	ReconciliationStatusDiscrepancy ReconciliationStatus = "discrepancy"
)

// ReconciliationRecord links a statement entry to the account it settled.
// At most one non-superseded record exists per statement.
type ReconciliationRecord struct {
	ID             uuid.UUID            `json:"id"`
	StatementID    uuid.UUID            `json:"statement_id"`
	AccountID      string               `json:"account_id"`
	BankAccountRef string               `json:"bank_account_ref"`
	Amount         decimal.Decimal      `json:"amount"`
	Difference     decimal.Decimal      `json:"difference"`
	Status         ReconciliationStatus `json:"status"`
	Confidence     int                  `json:"confidence"`
	MatchReason    string               `json:"match_reason"`
	Notes          string               `json:"notes"`
	CreatedBy      string               `json:"created_by"`
	AutoMatched    bool                 `json:"auto_matched"`
	Superseded     bool                 `json:"superseded"`
	SupersededAt   *time.Time           `json:"superseded_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// IsManual returns true for records committed without an account
func (r *ReconciliationRecord) IsManual() bool {
	return r.AccountID == ManualAccountID
}

// Supersede retires a live record
func (r *ReconciliationRecord) Supersede(at time.Time) {
	r.Superseded = true
	r.SupersededAt = &at
}
