package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_ExactPayableIsAutoAccepted(t *testing.T) {
	entry := debitEntry(t, "-1500.00", "Pagamento Fornecedor XYZ")
	acc := payable(t, "1500.00", "Pagamento Fornecedor XYZ", statementDay)
	m := NewMatcher()

	best := m.Propose(*entry, []FinancialAccount{*acc})
	require.NotNil(t, best)
	assert.Equal(t, 100, best.Score)
	assert.True(t, best.AutoAccept)
	assert.True(t, best.Difference.IsZero())

	record, err := m.Commit(entry, acc, CommitInput{
		Confidence:  best.Score,
		MatchReason: best.MatchReason,
		AutoMatched: true,
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, ReconciliationStatusReconciled, record.Status)
	assert.True(t, record.Difference.IsZero())
	assert.Equal(t, acc.ID.String(), record.AccountID)
	assert.True(t, record.Amount.Equal(dec("-1500")))
	assert.Equal(t, SystemUser, record.CreatedBy)
	assert.Equal(t, "Automatic reconciliation: "+best.MatchReason, record.Notes)
	assert.True(t, entry.Reconciled)
	assert.Equal(t, AccountStatusPaid, acc.Status)
	require.NotNil(t, acc.PaymentDate)
	assert.Equal(t, statementDay, *acc.PaymentDate)
	assert.Equal(t, PaymentMethodBankTransfer, acc.PaymentMethod)
}

func TestMatcher_WeakCandidates(t *testing.T) {
	entry := debitEntry(t, "-1500.00", "Pagamento Fornecedor XYZ")
	m := NewMatcher()

	// 7.1% off scores 20 on value and 10 days scores 10 on date: exactly the
	// minimum, so it is listed but needs confirmation
	borderline := payable(t, "1400.00", "Compra diversa", statementDay.AddDate(0, 0, 10))
	candidates := m.FindCandidates(*entry, []FinancialAccount{*borderline})
	require.Len(t, candidates, 1)
	assert.Equal(t, 30, candidates[0].Score)
	assert.False(t, candidates[0].AutoAccept)

	// 15% off scores 10: total 20 is discarded
	weak := payable(t, "1300.00", "Compra diversa", statementDay.AddDate(0, 0, 10))
	assert.Empty(t, m.FindCandidates(*entry, []FinancialAccount{*weak}))
	assert.Nil(t, m.Propose(*entry, []FinancialAccount{*weak}))
}

func TestMatcher_FindCandidatesFilters(t *testing.T) {
	entry := debitEntry(t, "-500", "Energia")
	receivable := payable(t, "500", "Energia", statementDay)
	receivable.Direction = AccountReceivable
	paid := payable(t, "500", "Energia", statementDay)
	paid.Status = AccountStatusPaid
	overdue := payable(t, "500", "Energia", statementDay)
	overdue.Status = AccountStatusOverdue
	open := payable(t, "500", "Energia eletrica", statementDay)

	candidates := NewMatcher().FindCandidates(*entry, []FinancialAccount{*receivable, *paid, *overdue, *open})
	require.Len(t, candidates, 1)
	assert.Equal(t, open.ID, candidates[0].Account.ID)

	credit := debitEntry(t, "800", "Venda boi")
	assert.Equal(t, DirectionCredit, credit.Direction)
	recv := payable(t, "800", "Venda boi gordo", statementDay)
	recv.Direction = AccountReceivable
	assert.Len(t, NewMatcher().FindCandidates(*credit, []FinancialAccount{*recv, *open}), 1)
}

func TestMatcher_TieBreak(t *testing.T) {
	entry := debitEntry(t, "-1000", "x")
	later := payable(t, "1000", "y", statementDay.AddDate(0, 0, 2))
	earlier := payable(t, "1000", "y", statementDay.AddDate(0, 0, -2))

	candidates := NewMatcher().FindCandidates(*entry, []FinancialAccount{*later, *earlier})
	require.Len(t, candidates, 2)
	assert.Equal(t, candidates[0].Score, candidates[1].Score)
	assert.Equal(t, earlier.ID, candidates[0].Account.ID, "earliest due date wins a tie")

	a := payable(t, "1000", "y", statementDay)
	b := payable(t, "1000", "y", statementDay)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	for i := 0; i < 5; i++ {
		best := NewMatcher().Propose(*entry, []FinancialAccount{*a, *b})
		require.NotNil(t, best)
		assert.Equal(t, b.ID, best.Account.ID, "lowest id wins a full tie")
	}
}

func TestMatcher_Thresholds(t *testing.T) {
	entry := debitEntry(t, "-1000", "x")
	acc := payable(t, "1000", "y", statementDay.AddDate(0, 0, 1)) // 50 + 25

	m := NewMatcher(WithAutoAcceptScore(70), WithMinScore(76))
	assert.Empty(t, m.FindCandidates(*entry, []FinancialAccount{*acc}))

	m = NewMatcher(WithAutoAcceptScore(70))
	best := m.Propose(*entry, []FinancialAccount{*acc})
	require.NotNil(t, best)
	assert.True(t, best.AutoAccept)

	best = NewMatcher().Propose(*entry, []FinancialAccount{*acc})
	require.NotNil(t, best)
	assert.False(t, best.AutoAccept, "75 requires confirmation by default")
}

func TestMatcher_CommitTwiceIsRejected(t *testing.T) {
	entry := debitEntry(t, "-1500.00", "x")
	acc := payable(t, "1500.00", "y", statementDay)
	other := payable(t, "1500.00", "z", statementDay)
	m := NewMatcher()

	_, err := m.Commit(entry, acc, CommitInput{}, time.Now())
	require.NoError(t, err)

	_, err = m.Commit(entry, other, CommitInput{}, time.Now())
	assert.True(t, errors.Is(err, shared.ErrAlreadyReconciled))
	assert.Equal(t, AccountStatusPending, other.Status, "second commit must not change state")

	_, err = m.Commit(entry, nil, CommitInput{}, time.Now())
	assert.True(t, errors.Is(err, shared.ErrAlreadyReconciled))
}

func TestMatcher_CommitDiscrepancy(t *testing.T) {
	entry := debitEntry(t, "-1450.00", "x")
	acc := payable(t, "1500.00", "y", statementDay)

	record, err := NewMatcher().Commit(entry, acc, CommitInput{CreatedBy: "ana"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, ReconciliationStatusDiscrepancy, record.Status)
	assert.True(t, record.Difference.Equal(dec("-50")))
	assert.Equal(t, "ana", record.CreatedBy)
	assert.True(t, entry.Reconciled)
	assert.Equal(t, AccountStatusPaid, acc.Status)

	entry = debitEntry(t, "-1500.005", "x")
	acc = payable(t, "1500.00", "y", statementDay)
	record, err = NewMatcher().Commit(entry, acc, CommitInput{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, ReconciliationStatusReconciled, record.Status, "within epsilon")
}

func TestMatcher_CommitManual(t *testing.T) {
	entry := debitEntry(t, "-99.90", "Tarifa bancaria")

	record, err := NewMatcher().Commit(entry, nil, CommitInput{Notes: "bank fee", CreatedBy: "ana"}, time.Now())
	require.NoError(t, err)
	assert.True(t, record.IsManual())
	assert.Equal(t, ManualAccountID, record.AccountID)
	assert.Equal(t, ReconciliationStatusReconciled, record.Status)
	assert.Equal(t, "bank fee", record.Notes)
	assert.False(t, record.AutoMatched)
	assert.True(t, entry.Reconciled)
}

func TestMatcher_CommitRejectsIncompatibleAccount(t *testing.T) {
	entry := debitEntry(t, "-100", "x")
	recv := payable(t, "100", "y", statementDay)
	recv.Direction = AccountReceivable

	_, err := NewMatcher().Commit(entry, recv, CommitInput{}, time.Now())
	assert.True(t, errors.Is(err, shared.ErrDirectionMismatch))
	assert.False(t, entry.Reconciled)

	paid := payable(t, "100", "y", statementDay)
	paid.Status = AccountStatusPaid
	_, err = NewMatcher().Commit(entry, paid, CommitInput{}, time.Now())
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.False(t, entry.Reconciled)
}

func TestMatcher_Undo(t *testing.T) {
	entry := debitEntry(t, "-100", "x")
	acc := payable(t, "100", "y", statementDay)
	m := NewMatcher()

	record, err := m.Commit(entry, acc, CommitInput{}, time.Now())
	require.NoError(t, err)

	require.NoError(t, m.Undo(entry, acc, record, time.Now()))
	assert.True(t, record.Superseded)
	assert.False(t, entry.Reconciled)
	assert.Equal(t, AccountStatusPending, acc.Status)
	assert.Nil(t, acc.PaymentDate)

	assert.True(t, errors.Is(m.Undo(entry, acc, record, time.Now()), shared.ErrInvalidState))

	again, err := m.Commit(entry, acc, CommitInput{}, time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, record.ID, again.ID)
}

func TestNewBankStatementEntry(t *testing.T) {
	e := debitEntry(t, "-10", "  tarifa  ")
	assert.Equal(t, DirectionDebit, e.Direction)
	assert.Equal(t, "tarifa", e.Description)
	assert.True(t, e.AbsAmount().Equal(dec("10")))

	_, err := NewBankStatementEntry(statementDay, "x", zeroMoney(), "", "")
	assert.Error(t, err)
	_, err = NewBankStatementEntry(time.Time{}, "x", oneMoney(), "", "")
	assert.Error(t, err)
	_, err = NewBankStatementEntry(statementDay, "x", oneMoney(), "sideways", "")
	assert.Error(t, err)
}
