package models

import (
	"testing"
	"time"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/report"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "lots", LotModel{}.TableName())
	assert.Equal(t, "pens", PenModel{}.TableName())
	assert.Equal(t, "pen_lot_links", PenLotLinkModel{}.TableName())
	assert.Equal(t, "indirect_cost_allocations", IndirectAllocationModel{}.TableName())
	assert.Equal(t, "financial_accounts", FinancialAccountModel{}.TableName())
	assert.Equal(t, "income_statements", IncomeStatementModel{}.TableName())
	assert.Len(t, All(), 11)
}

func TestLotModel_FlattensLedgerAndSale(t *testing.T) {
	lot, err := livestock.NewLot("L-1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 10,
		valueobject.MustNewWeight(decimal.NewFromInt(3000)), decimal.NewFromFloat(1.2))
	require.NoError(t, err)
	require.NoError(t, lot.PostCost(livestock.CostCategoryFeed, decimal.NewFromInt(700)))
	require.NoError(t, lot.PostCost(livestock.CostCategoryHealth, decimal.NewFromInt(300)))

	model := LotModelFromDomain(lot)
	assert.True(t, model.CostFeed.Equal(decimal.NewFromInt(700)))
	assert.True(t, model.CostTotal.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, model.SaleDate)
	assert.Nil(t, model.ToDomain().Sale)

	require.NoError(t, lot.RecordSale(livestock.SaleRecord{
		SaleDate:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Quantity:     10,
		TotalWeight:  valueobject.MustNewWeight(decimal.NewFromInt(5000)),
		GrossRevenue: decimal.NewFromInt(25000),
	}))
	model.FromDomain(lot)
	require.NotNil(t, model.SaleDate)

	back := model.ToDomain()
	assert.Equal(t, lot.ID, back.ID)
	assert.Equal(t, lot.Version, back.Version)
	assert.Equal(t, livestock.LotStatusSold, back.Status)
	require.NotNil(t, back.Sale)
	assert.True(t, back.Sale.TotalWeight.Kg().Equal(decimal.NewFromInt(5000)))
	assert.True(t, back.Costs.Health.Equal(decimal.NewFromInt(300)))
	assert.Empty(t, back.Events())
}

func TestIndirectLines_Scan(t *testing.T) {
	lotID := uuid.New()
	lines := IndirectLines{{LotID: lotID, LotCode: "A", Heads: 50, AllocatedAmount: decimal.NewFromInt(500)}}
	raw, err := lines.Value()
	require.NoError(t, err)

	var fromBytes IndirectLines
	require.NoError(t, fromBytes.Scan(raw))
	require.Len(t, fromBytes, 1)
	assert.Equal(t, lotID, fromBytes[0].LotID)
	assert.True(t, fromBytes[0].AllocatedAmount.Equal(decimal.NewFromInt(500)))

	var fromString IndirectLines
	require.NoError(t, fromString.Scan(string(raw.([]byte))))
	assert.Len(t, fromString, 1)

	var empty IndirectLines
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)

	nilValue, err := IndirectLines(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)

	assert.Error(t, empty.Scan(42))
}

func TestIndirectAllocationModel_KeepsPeriodAndLines(t *testing.T) {
	approvedAt := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	a := &costing.IndirectCostAllocation{
		Name:        "Q1 admin",
		Period:      valueobject.Period{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		TotalAmount: decimal.NewFromInt(1000),
		CostType:    costing.IndirectCostAdministrative,
		Method:      costing.MethodByHeads,
		Lines:       []costing.IndirectAllocationLine{{LotID: uuid.New(), AllocatedAmount: decimal.NewFromInt(1000)}},
		Status:      costing.AllocationStatusApproved,
		ApprovedBy:  "controller",
		ApprovedAt:  &approvedAt,
	}
	back := IndirectAllocationModelFromDomain(a).ToDomain()
	assert.Equal(t, a.Period, back.Period)
	assert.Equal(t, a.Lines, back.Lines)
	assert.Equal(t, costing.AllocationStatusApproved, back.Status)
	assert.Equal(t, &approvedAt, back.ApprovedAt)
}

func TestStatementPayload_Scan(t *testing.T) {
	stmt := report.IncomeStatement{
		ID:         uuid.New(),
		EntityType: report.EntityTypeGlobal,
		NetIncome:  decimal.NewFromFloat(1234.56),
		LotIDs:     []uuid.UUID{uuid.New()},
	}
	model := IncomeStatementModelFromDomain(&stmt)
	raw, err := model.Payload.Value()
	require.NoError(t, err)

	var scanned StatementPayload
	require.NoError(t, scanned.Scan(raw))
	back := report.IncomeStatement(scanned)
	assert.Equal(t, stmt.ID, back.ID)
	assert.True(t, back.NetIncome.Equal(stmt.NetIncome))
	assert.Equal(t, stmt.LotIDs, back.LotIDs)

	assert.Error(t, scanned.Scan(nil))
}

func TestVersionedRow(t *testing.T) {
	root := shared.NewBaseAggregateRoot()
	root.Bump()

	var row VersionedRow
	row.SetAggregate(root)
	assert.Equal(t, root.ID, row.ID)
	assert.Equal(t, 2, row.Version)

	back := row.Aggregate()
	assert.Equal(t, root.BaseEntity, back.BaseEntity)
	assert.Equal(t, 2, back.Version)
	assert.Equal(t, 2, back.StoredVersion())
	assert.Empty(t, back.Events())
}
