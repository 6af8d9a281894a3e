package finance

import (
	"strings"
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the cash direction of a bank movement
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// IsValid checks if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Matches returns the account direction a statement direction settles
func (d Direction) Matches() AccountDirection {
	if d == DirectionDebit {
		return AccountPayable
	}
	return AccountReceivable
}

// BankStatementEntry is one imported bank movement. Only Reconciled changes
// after import.
type BankStatementEntry struct {
	ID             uuid.UUID       `json:"id"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"` // signed as imported; debits are usually negative
	Direction      Direction       `json:"direction"`
	BankAccountRef string          `json:"bank_account_ref"`
	Reconciled     bool            `json:"reconciled"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewBankStatementEntry creates an entry from parsed import data. An empty
// direction is inferred from the amount's sign.
func NewBankStatementEntry(date time.Time, description string, amount valueobject.Money, direction Direction, bankAccountRef string) (*BankStatementEntry, error) {
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Statement date is required")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Statement amount cannot be zero")
	}
	if direction == "" {
		direction = DirectionCredit
		if amount.IsNegative() {
			direction = DirectionDebit
		}
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Statement direction must be debit or credit")
	}
	return &BankStatementEntry{
		ID:             uuid.New(),
		Date:           date,
		Description:    strings.TrimSpace(description),
		Amount:         amount.Amount(),
		Direction:      direction,
		BankAccountRef: bankAccountRef,
		CreatedAt:      time.Now(),
	}, nil
}

// AbsAmount returns the unsigned movement amount
func (e *BankStatementEntry) AbsAmount() decimal.Decimal {
	return e.Amount.Abs()
}
