package finance

import (
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountDirection distinguishes money owed from money due
type AccountDirection string

const (
	AccountPayable    AccountDirection = "payable"
	AccountReceivable AccountDirection = "receivable"
)

// IsValid checks if the direction is known
func (d AccountDirection) IsValid() bool {
	return d == AccountPayable || d == AccountReceivable
}

// AccountStatus is the settlement status of a financial account
type AccountStatus string

const (
	AccountStatusPending AccountStatus = "pending"
	AccountStatusPaid    AccountStatus = "paid"
	AccountStatusOverdue AccountStatus = "overdue"
)

// IsValid checks if the status is known
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusPending, AccountStatusPaid, AccountStatusOverdue:
		return true
	}
	return false
}

// AccountCategory groups accounts for reporting
type AccountCategory string

const (
	AccountCategoryOperational AccountCategory = "operational"
	AccountCategoryFinancial   AccountCategory = "financial" // interest, fees, yields
	AccountCategoryLivestock   AccountCategory = "livestock"
	AccountCategoryOther       AccountCategory = "other"
)

// PaymentMethodBankTransfer is recorded on accounts settled through reconciliation
const PaymentMethodBankTransfer = "bank_transfer"

// FinancialAccount is an open receivable or payable
type FinancialAccount struct {
	ID            uuid.UUID        `json:"id"`
	Direction     AccountDirection `json:"direction"`
	Description   string           `json:"description"`
	Amount        decimal.Decimal  `json:"amount"`
	DueDate       time.Time        `json:"due_date"`
	Status        AccountStatus    `json:"status"`
	Category      AccountCategory  `json:"category"`
	LotID         *uuid.UUID       `json:"lot_id,omitempty"`
	PaymentDate   *time.Time       `json:"payment_date,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewFinancialAccount creates a pending account
func NewFinancialAccount(direction AccountDirection, description string, amount valueobject.Money, dueDate time.Time) (*FinancialAccount, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Account direction must be payable or receivable")
	}
	if !amount.Amount().IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Account amount must be positive")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Due date is required")
	}
	now := time.Now()
	return &FinancialAccount{
		ID:          uuid.New(),
		Direction:   direction,
		Description: description,
		Amount:      amount.Amount(),
		DueDate:     dueDate,
		Status:      AccountStatusPending,
		Category:    AccountCategoryOperational,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOpen returns true while the account can be matched
func (a *FinancialAccount) IsOpen() bool {
	return a.Status == AccountStatusPending
}

// MarkPaid settles the account
func (a *FinancialAccount) MarkPaid(paidOn time.Time, method string) error {
	if a.Status == AccountStatusPaid {
		return shared.ErrInvalidState.WithMessagef("Account %s is already paid", a.ID)
	}
	a.Status = AccountStatusPaid
	a.PaymentDate = &paidOn
	a.PaymentMethod = method
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Reopen reverts a settlement made by reconciliation
func (a *FinancialAccount) Reopen() {
	a.Status = AccountStatusPending
	a.PaymentDate = nil
	a.PaymentMethod = ""
	a.UpdatedAt = time.Now()
	a.Version++
}
