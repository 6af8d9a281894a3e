package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appcosting "github.com/feedlot/backend/internal/application/costing"
	appfinance "github.com/feedlot/backend/internal/application/finance"
	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/report"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/feedlot/backend/internal/infrastructure/lock"
	"github.com/feedlot/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newLot(t *testing.T, code string, heads int, entry time.Time) *livestock.Lot {
	t.Helper()
	lot, err := livestock.NewLot(code, entry, heads, valueobject.MustNewWeight(decimal.NewFromInt(int64(heads*300))), decimal.NewFromFloat(1.4))
	require.NoError(t, err)
	return lot
}

func TestGormLotRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLotRepository(newSQLiteDB(t))

	early := newLot(t, "EARLY", 10, day(2024, 1, 2))
	late := newLot(t, "LATE", 20, day(2024, 2, 1))
	require.NoError(t, early.PostCost(livestock.CostCategoryFeed, decimal.NewFromInt(1500)))
	require.NoError(t, repo.Save(ctx, late))
	require.NoError(t, repo.Save(ctx, early))

	t.Run("find by id restores the ledger", func(t *testing.T) {
		found, err := repo.FindByID(ctx, early.ID)
		require.NoError(t, err)
		assert.Equal(t, "EARLY", found.Code)
		assert.True(t, found.EntryDate.Equal(early.EntryDate))
		assert.True(t, found.Costs.Feed.Equal(decimal.NewFromInt(1500)))
		assert.True(t, found.Costs.Total.Equal(decimal.NewFromInt(1500)))
		assert.True(t, found.EntryWeight.Kg().Equal(decimal.NewFromInt(3000)))
	})

	t.Run("missing lot", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find by ids keeps the requested order", func(t *testing.T) {
		lots, err := repo.FindByIDs(ctx, []uuid.UUID{late.ID, uuid.New(), early.ID, late.ID})
		require.NoError(t, err)
		require.Len(t, lots, 2)
		assert.Equal(t, late.ID, lots[0].ID)
		assert.Equal(t, early.ID, lots[1].ID)
	})

	t.Run("statuses filter and entry date order", func(t *testing.T) {
		require.NoError(t, late.RecordSale(livestock.SaleRecord{
			SaleDate:     day(2024, 3, 20),
			Quantity:     20,
			TotalWeight:  valueobject.MustNewWeight(decimal.NewFromInt(9000)),
			GrossRevenue: decimal.NewFromInt(60000),
		}))
		require.NoError(t, repo.Save(ctx, late))

		all, err := repo.FindByStatuses(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, early.ID, all[0].ID)

		active, err := repo.FindByStatuses(ctx, livestock.LotStatusActive)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, early.ID, active[0].ID)

		sold, err := repo.FindByID(ctx, late.ID)
		require.NoError(t, err)
		require.NotNil(t, sold.Sale)
		assert.True(t, sold.Sale.GrossRevenue.Equal(decimal.NewFromInt(60000)))
		assert.True(t, sold.Sale.SaleDate.Equal(day(2024, 3, 20)))
	})
}

func TestGormLotRepository_RejectsStaleSave(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLotRepository(newSQLiteDB(t))
	lot := newLot(t, "L", 10, day(2024, 1, 2))
	require.NoError(t, repo.Save(ctx, lot))

	first, err := repo.FindByID(ctx, lot.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, lot.ID)
	require.NoError(t, err)

	require.NoError(t, first.PostCost(livestock.CostCategoryFeed, decimal.NewFromInt(700)))
	require.NoError(t, first.PostCost(livestock.CostCategoryHealth, decimal.NewFromInt(300)))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.PostCost(livestock.CostCategoryFeed, decimal.NewFromInt(50)))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Version)
	assert.True(t, stored.Costs.Total.Equal(decimal.NewFromInt(1000)), "got %s", stored.Costs.Total)

	require.NoError(t, first.PostCost(livestock.CostCategoryFeed, decimal.NewFromInt(1)))
	require.NoError(t, repo.Save(ctx, first), "the winning copy keeps saving without a reload")
}

func TestGormPenLotLinkRepository_ActiveLinks(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPenLotLinkRepository(newSQLiteDB(t))
	penID, lotA, lotB := uuid.New(), uuid.New(), uuid.New()

	second, err := livestock.NewPenLotLink(lotB, penID, 5, day(2024, 1, 10))
	require.NoError(t, err)
	first, err := livestock.NewPenLotLink(lotA, penID, 15, day(2024, 1, 5))
	require.NoError(t, err)
	removed, err := livestock.NewPenLotLink(lotA, penID, 3, day(2024, 1, 1))
	require.NoError(t, err)
	require.NoError(t, removed.Remove(day(2024, 1, 4)))
	for _, l := range []*livestock.PenLotLink{second, first, removed} {
		require.NoError(t, repo.Save(ctx, l))
	}

	byPen, err := repo.FindActiveByPen(ctx, penID)
	require.NoError(t, err)
	require.Len(t, byPen, 2)
	assert.Equal(t, first.ID, byPen[0].ID)
	assert.Equal(t, second.ID, byPen[1].ID)

	byLot, err := repo.FindActiveByLot(ctx, lotA)
	require.NoError(t, err)
	require.Len(t, byLot, 1)
	assert.Equal(t, 15, byLot[0].Quantity)

	gone, err := repo.FindByID(ctx, removed.ID)
	require.NoError(t, err)
	assert.Equal(t, livestock.LinkStatusRemoved, gone.Status)
	require.NotNil(t, gone.RemovedAt)
}

func TestGormNonCashLossRepository_PeriodIsInclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewGormNonCashLossRepository(newSQLiteDB(t))
	lot := newLot(t, "L", 100, day(2024, 1, 1))
	require.NoError(t, lot.PostCost(livestock.CostCategoryAcquisition, decimal.NewFromInt(500000)))

	for _, d := range []time.Time{day(2023, 12, 31), day(2024, 1, 1), time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC), day(2024, 4, 1)} {
		loss, err := livestock.NewMortalityLoss(lot, 1, "pneumonia", d)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, loss))
	}

	period, err := valueobject.NewPeriod(day(2024, 1, 1), day(2024, 3, 31))
	require.NoError(t, err)
	losses, err := repo.FindByLotsInPeriod(ctx, []uuid.UUID{lot.ID}, period)
	require.NoError(t, err)
	require.Len(t, losses, 2)
	assert.True(t, losses[0].MonetaryValue.Equal(decimal.NewFromInt(5000)))

	none, err := repo.FindByLotsInPeriod(ctx, nil, period)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormFinancialAccountRepository_OptimisticLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormFinancialAccountRepository(newSQLiteDB(t))

	account, err := finance.NewFinancialAccount(finance.AccountPayable, "Feed supplier",
		valueobject.NewMoneyBRL(decimal.NewFromInt(1000)), day(2024, 2, 10))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, account))

	stale, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	fresh, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)

	require.NoError(t, fresh.MarkPaid(day(2024, 2, 11), finance.PaymentMethodBankTransfer))
	require.NoError(t, repo.Save(ctx, fresh))

	require.NoError(t, stale.MarkPaid(day(2024, 2, 12), finance.PaymentMethodBankTransfer))
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	require.NotNil(t, stored.PaymentDate)
	assert.True(t, stored.PaymentDate.Equal(day(2024, 2, 11)))

	open, err := repo.FindOpen(ctx, finance.AccountPayable)
	require.NoError(t, err)
	assert.Empty(t, open)

	feb, err := valueobject.NewPeriod(day(2024, 2, 1), day(2024, 2, 29))
	require.NoError(t, err)
	paid, err := repo.FindPaidInPeriod(ctx, finance.AccountCategoryOperational, feb)
	require.NoError(t, err)
	assert.Len(t, paid, 1)
}

func TestGormStatementRepository_FindUnreconciled(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStatementRepository(newSQLiteDB(t))

	mk := func(ref string, d time.Time, reconciled bool) *finance.BankStatementEntry {
		e, err := finance.NewBankStatementEntry(d, "PIX", valueobject.NewMoneyBRL(decimal.NewFromInt(-100)), "", ref)
		require.NoError(t, err)
		e.Reconciled = reconciled
		require.NoError(t, repo.Save(ctx, e))
		return e
	}
	later := mk("itau", day(2024, 2, 20), false)
	earlier := mk("itau", day(2024, 2, 1), false)
	mk("itau", day(2024, 2, 5), true)
	mk("bradesco", day(2024, 2, 2), false)

	entries, err := repo.FindUnreconciled(ctx, "itau")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, earlier.ID, entries[0].ID)
	assert.Equal(t, later.ID, entries[1].ID)
	assert.Equal(t, finance.DirectionDebit, entries[0].Direction)

	all, err := repo.FindUnreconciled(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormReconciliationRecordRepository_LiveRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewGormReconciliationRecordRepository(newSQLiteDB(t))
	statementID := uuid.New()

	old := &finance.ReconciliationRecord{ID: uuid.New(), StatementID: statementID, AccountID: finance.ManualAccountID,
		Amount: decimal.NewFromInt(10), Status: finance.ReconciliationStatusReconciled, CreatedBy: "ana", CreatedAt: day(2024, 2, 1)}
	old.Supersede(day(2024, 2, 2))
	live := &finance.ReconciliationRecord{ID: uuid.New(), StatementID: statementID, AccountID: uuid.NewString(),
		Amount: decimal.NewFromInt(10), Status: finance.ReconciliationStatusReconciled, CreatedBy: finance.SystemUser,
		Confidence: 100, AutoMatched: true, CreatedAt: day(2024, 2, 3)}
	require.NoError(t, repo.Save(ctx, old))
	require.NoError(t, repo.Save(ctx, live))

	found, err := repo.FindLiveByStatement(ctx, statementID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, found.ID)
	assert.True(t, found.AutoMatched)

	_, err = repo.FindLiveByStatement(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormIncomeStatementRepository_CreateOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewGormIncomeStatementRepository(newSQLiteDB(t))
	period, err := valueobject.NewPeriod(day(2024, 1, 1), day(2024, 3, 31))
	require.NoError(t, err)
	stmt := &report.IncomeStatement{
		ID:          uuid.New(),
		EntityType:  report.EntityTypeGlobal,
		Period:      period,
		LotIDs:      []uuid.UUID{uuid.New()},
		NetIncome:   decimal.NewFromFloat(1234.5),
		GeneratedAt: day(2024, 4, 1),
	}
	require.NoError(t, repo.Create(ctx, stmt))
	assert.ErrorIs(t, repo.Create(ctx, stmt), shared.ErrAlreadyExists)

	found, err := repo.FindByID(ctx, stmt.ID)
	require.NoError(t, err)
	assert.True(t, found.NetIncome.Equal(stmt.NetIncome))
	assert.Equal(t, stmt.LotIDs, found.LotIDs)
	assert.True(t, found.Period.End.Equal(period.End))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCostingTransactionScope_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	scope := NewGormCostingTransactionScope(db)
	lot := newLot(t, "L", 10, day(2024, 1, 1))
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos appcosting.TransactionalRepositories) error {
		if err := repos.LotRepo().Save(ctx, lot); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormLotRepository(db).FindByID(ctx, lot.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAllocateCost_OnSQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	scope := NewGormCostingTransactionScope(db)
	clock := shared.ClockFunc(func() time.Time { return day(2024, 2, 1) })
	svc := appcosting.NewAllocationService(scope, costing.NewProportionalAllocator(), lock.NewKeyedLocker(), nil, clock,
		appcosting.LossValuation{CarcassYieldPercent: decimal.NewFromInt(50), KgPerArroba: decimal.NewFromInt(15)}, zap.NewNop())

	lotA := newLot(t, "A", 60, day(2024, 1, 2))
	lotB := newLot(t, "B", 40, day(2024, 1, 2))
	pen, err := livestock.NewPen("P-01", 120)
	require.NoError(t, err)
	lots := NewGormLotRepository(db)
	require.NoError(t, lots.Save(ctx, lotA))
	require.NoError(t, lots.Save(ctx, lotB))
	require.NoError(t, NewGormPenRepository(db).Save(ctx, pen))

	for _, l := range []*livestock.Lot{lotA, lotB} {
		_, err := svc.AssignLotToPen(ctx, l.ID, appcosting.AssignLotRequest{PenID: pen.ID, Quantity: l.EntryQuantity})
		require.NoError(t, err)
	}

	resp, err := svc.AllocateCost(ctx, appcosting.AllocateCostRequest{PenID: pen.ID, Amount: decimal.NewFromInt(10000), Category: "health"})
	require.NoError(t, err)
	require.True(t, resp.Posted)
	require.Len(t, resp.Records, 2)

	storedA, err := lots.FindByID(ctx, lotA.ID)
	require.NoError(t, err)
	storedB, err := lots.FindByID(ctx, lotB.ID)
	require.NoError(t, err)
	assert.True(t, storedA.Costs.Health.Equal(decimal.NewFromInt(6000)), "lot A %s", storedA.Costs.Health)
	assert.True(t, storedB.Costs.Health.Equal(decimal.NewFromInt(4000)), "lot B %s", storedB.Costs.Health)

	records, err := NewGormAllocationRecordRepository(db).FindByOrigin(ctx, resp.OriginID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	originID := resp.OriginID
	_, err = svc.AllocateCost(ctx, appcosting.AllocateCostRequest{OriginID: &originID, PenID: pen.ID, Amount: decimal.NewFromInt(10000), Category: "health"})
	assert.ErrorIs(t, err, shared.ErrAlreadyPosted)
}

func TestReconciliationCommit_OnSQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	clock := shared.ClockFunc(func() time.Time { return time.Date(2024, 2, 15, 20, 0, 0, 0, time.UTC) })
	svc := appfinance.NewReconciliationService(NewGormFinanceTransactionScope(db), finance.NewMatcher(),
		lock.NewKeyedLocker(), nil, clock, 2, zap.NewNop())

	account, err := svc.CreateAccount(ctx, appfinance.CreateAccountRequest{
		Direction:   "payable",
		Description: "Pagamento Fornecedor XYZ",
		Amount:      decimal.NewFromInt(1500),
		DueDate:     day(2024, 2, 15),
	})
	require.NoError(t, err)
	entries, err := svc.ImportStatements(ctx, []appfinance.ImportStatementRequest{{
		Date:           day(2024, 2, 15),
		Description:    "Pagamento Fornecedor XYZ",
		Amount:         decimal.NewFromInt(-1500),
		BankAccountRef: "itau-0001",
	}})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	record, err := svc.Commit(ctx, entries[0].ID, appfinance.CommitRequest{AccountID: &account.ID})
	require.NoError(t, err)
	assert.Equal(t, finance.ReconciliationStatusReconciled, record.Status)

	stored, err := NewGormFinancialAccountRepository(db).FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.AccountStatusPaid, stored.Status)
	assert.Equal(t, 2, stored.Version)

	_, err = svc.Commit(ctx, entries[0].ID, appfinance.CommitRequest{AccountID: &account.ID})
	assert.ErrorIs(t, err, shared.ErrAlreadyReconciled)
}

func TestGormEventLog_IgnoresRedelivery(t *testing.T) {
	ctx := context.Background()
	log := NewGormEventLog(newSQLiteDB(t))
	link, err := livestock.NewPenLotLink(uuid.New(), uuid.New(), 10, day(2024, 1, 1))
	require.NoError(t, err)
	event := livestock.NewLotLinkedToPenEvent(link)

	require.NoError(t, log.Handle(ctx, event))
	require.NoError(t, log.Handle(ctx, event))

	count, err := log.CountByAggregate(ctx, event.AggregateType())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Nil(t, log.EventTypes())
}
