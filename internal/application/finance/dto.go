package finance

import (
	"time"

	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportStatementRequest is one parsed bank movement
type ImportStatementRequest struct {
	Date           time.Time       `json:"date" binding:"required"`
	Description    string          `json:"description" binding:"max=500"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      string          `json:"direction" binding:"omitempty,oneof=debit credit"`
	BankAccountRef string          `json:"bank_account_ref" binding:"required,max=100"`
}

// CreateAccountRequest registers a receivable or payable
type CreateAccountRequest struct {
	Direction   string          `json:"direction" binding:"required,oneof=payable receivable"`
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
	Category    string          `json:"category" binding:"omitempty,oneof=operational financial livestock other"`
	LotID       *uuid.UUID      `json:"lot_id"`
}

// CommitRequest accepts a candidate, or reconciles manually when AccountID is nil
type CommitRequest struct {
	AccountID *uuid.UUID `json:"account_id"`
	Notes     string     `json:"notes" binding:"max=1000"`
	CreatedBy string     `json:"created_by" binding:"max=100"`
}

// BatchRequest selects the statements of a batch run; an empty
// BankAccountRef runs every bank account
type BatchRequest struct {
	BankAccountRef string `json:"bank_account_ref" binding:"max=100"`
}

// BatchError is the failure of one statement inside a batch
type BatchError struct {
	StatementID uuid.UUID `json:"statement_id"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
}

// BatchSummary aggregates the outcome of a batch run
type BatchSummary struct {
	Processed      int          `json:"processed"`
	AutoReconciled int          `json:"auto_reconciled"`
	NeedsReview    int          `json:"needs_review"`
	NoCandidate    int          `json:"no_candidate"`
	Failed         int          `json:"failed"`
	Skipped        int          `json:"skipped"`
	Cancelled      bool         `json:"cancelled"`
	Errors         []BatchError `json:"errors,omitempty"`
}

// CandidatesResponse lists scored candidates for one statement, best first
type CandidatesResponse struct {
	Statement  finance.BankStatementEntry `json:"statement"`
	Candidates []finance.ScoredMatch      `json:"candidates"`
	Proposed   *finance.ScoredMatch       `json:"proposed,omitempty"`
}
