package finance

import (
	"testing"
	"time"

	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var statementDay = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func debitEntry(t *testing.T, amount, description string) *BankStatementEntry {
	t.Helper()
	m, err := valueobject.NewMoneyBRLFromString(amount)
	require.NoError(t, err)
	e, err := NewBankStatementEntry(statementDay, description, m, "", "itau-001")
	require.NoError(t, err)
	return e
}

func payable(t *testing.T, amount, description string, due time.Time) *FinancialAccount {
	t.Helper()
	m, err := valueobject.NewMoneyBRLFromString(amount)
	require.NoError(t, err)
	a, err := NewFinancialAccount(AccountPayable, description, m, due)
	require.NoError(t, err)
	return a
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func zeroMoney() valueobject.Money { return valueobject.ZeroBRL() }

func oneMoney() valueobject.Money { return valueobject.NewMoneyBRL(decimal.NewFromInt(1)) }
