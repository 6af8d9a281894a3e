package costing

import (
	"errors"
	"testing"
	"time"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	entryDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf      = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
)

func testLot(t *testing.T, code string, heads int, weightKg int64) *livestock.Lot {
	t.Helper()
	lot, err := livestock.NewLot(code, entryDate, heads, valueobject.MustNewWeight(decimal.NewFromInt(weightKg)), decimal.NewFromInt(1))
	require.NoError(t, err)
	return lot
}

func testPeriod(t *testing.T) valueobject.Period {
	t.Helper()
	p, err := valueobject.NewPeriod(entryDate, asOf)
	require.NoError(t, err)
	return p
}

func headsParams(t *testing.T) GenerationParams {
	return GenerationParams{
		CostType:    IndirectCostAdministrative,
		Period:      testPeriod(t),
		TotalAmount: decimal.NewFromInt(100000),
		Method:      MethodByHeads,
	}
}

func TestRateioEngine_ByHeads(t *testing.T) {
	lots := []*livestock.Lot{testLot(t, "A", 50, 1), testLot(t, "B", 30, 1), testLot(t, "C", 20, 1)}

	alloc, err := NewRateioEngine().Generate(headsParams(t), lots, asOf)
	require.NoError(t, err)

	assert.Equal(t, AllocationStatusDraft, alloc.Status)
	assert.True(t, alloc.BasisTotal.Equal(decimal.NewFromInt(100)))
	require.Len(t, alloc.Lines, 3)

	want := map[string]int64{"A": 50000, "B": 30000, "C": 20000}
	sum := decimal.Zero
	for _, line := range alloc.Lines {
		assert.True(t, line.AllocatedAmount.Equal(decimal.NewFromInt(want[line.LotCode])), "%s got %s", line.LotCode, line.AllocatedAmount)
		assert.Equal(t, 30, line.Days)
		sum = sum.Add(line.AllocatedAmount)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, "Administrative cost allocation", alloc.Name)
	require.Len(t, alloc.Events(), 1)
}

func TestRateioEngine_Bases(t *testing.T) {
	a := testLot(t, "A", 10, 3000)
	b := testLot(t, "B", 30, 1000)
	require.NoError(t, a.PostCost(livestock.CostCategoryFeed, decimal.NewFromInt(300)))
	require.NoError(t, b.PostCost(livestock.CostCategoryFeed, decimal.NewFromInt(100)))
	require.NoError(t, b.RegisterDeaths(10))

	tests := []struct {
		method AllocationMethod
		wantA  int64
	}{
		{MethodByHeads, 333},  // 10 of 30 live heads
		{MethodByValue, 750},  // 300 of 400
		{MethodByDays, 333},   // 30*10 of 30*10+30*20
		{MethodByWeight, 750}, // 3000 of 4000
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			params := headsParams(t)
			params.Method = tt.method
			params.TotalAmount = decimal.NewFromInt(1000)

			alloc, err := NewRateioEngine(WithRateioRoundingPlaces(0)).Generate(params, []*livestock.Lot{a, b}, asOf)
			require.NoError(t, err)
			line, ok := alloc.LineFor(a.ID)
			require.True(t, ok)
			assert.True(t, line.AllocatedAmount.Equal(decimal.NewFromInt(tt.wantA)), "got %s", line.AllocatedAmount)
		})
	}
}

func TestRateioEngine_Errors(t *testing.T) {
	inactive := testLot(t, "S", 10, 100)
	inactive.Status = livestock.LotStatusSold

	_, err := NewRateioEngine().Generate(headsParams(t), []*livestock.Lot{inactive}, asOf)
	assert.True(t, errors.Is(err, shared.ErrNoCandidatePool))

	params := headsParams(t)
	params.IncludeInactiveLots = true
	alloc, err := NewRateioEngine().Generate(params, []*livestock.Lot{inactive}, asOf)
	require.NoError(t, err)
	assert.Len(t, alloc.Lines, 1)

	params.Method = MethodByValue
	alloc, err = NewRateioEngine().Generate(params, []*livestock.Lot{inactive}, asOf)
	assert.Nil(t, alloc)
	assert.True(t, errors.Is(err, shared.ErrZeroBasis))

	params.Method = "by_color"
	_, err = NewRateioEngine().Generate(params, []*livestock.Lot{inactive}, asOf)
	assert.True(t, shared.IsDomainError(err, "INVALID_METHOD"))

	params = headsParams(t)
	params.TotalAmount = decimal.Zero
	_, err = NewRateioEngine().Generate(params, []*livestock.Lot{inactive}, asOf)
	assert.True(t, shared.IsDomainError(err, "INVALID_AMOUNT"))
}

func TestIndirectCostAllocation_Lifecycle(t *testing.T) {
	lots := []*livestock.Lot{testLot(t, "A", 50, 1), testLot(t, "B", 30, 1), testLot(t, "C", 20, 1)}
	alloc, err := NewRateioEngine().Generate(headsParams(t), lots, asOf)
	require.NoError(t, err)

	err = alloc.ApplyTo(lots, asOf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	for _, l := range lots {
		assert.True(t, l.Costs.Total.IsZero(), "apply before approve must not post")
	}

	assert.True(t, shared.IsDomainError(alloc.Approve("", asOf), "INVALID_APPROVER"))
	require.NoError(t, alloc.Approve("controller", asOf))
	assert.Equal(t, AllocationStatusApproved, alloc.Status)
	require.NotNil(t, alloc.ApprovedAt)
	assert.True(t, errors.Is(alloc.Discard("late", asOf), shared.ErrInvalidTransition))

	require.NoError(t, alloc.ApplyTo(lots, asOf))
	assert.Equal(t, AllocationStatusApplied, alloc.Status)
	assert.True(t, lots[0].Costs.Other.Equal(decimal.NewFromInt(50000)))
	assert.True(t, lots[0].Costs.Total.Equal(decimal.NewFromInt(50000)))

	assert.True(t, errors.Is(alloc.ApplyTo(lots, asOf), shared.ErrInvalidTransition))
	assert.True(t, errors.Is(alloc.Approve("x", asOf), shared.ErrInvalidTransition))
	assert.True(t, lots[0].Costs.Total.Equal(decimal.NewFromInt(50000)))
}

func TestIndirectCostAllocation_ApplyMissingLot(t *testing.T) {
	lots := []*livestock.Lot{testLot(t, "A", 50, 1), testLot(t, "B", 50, 1)}
	params := headsParams(t)
	params.CostType = IndirectCostOperational
	alloc, err := NewRateioEngine().Generate(params, lots, asOf)
	require.NoError(t, err)
	require.NoError(t, alloc.Approve("controller", asOf))

	err = alloc.ApplyTo(lots[:1], asOf)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, lots[0].Costs.Total.IsZero())
	assert.Equal(t, AllocationStatusApproved, alloc.Status)

	require.NoError(t, alloc.ApplyTo(lots, asOf))
	assert.True(t, lots[1].Costs.Operational.Equal(decimal.NewFromInt(50000)))
}

func TestIndirectCostAllocation_Discard(t *testing.T) {
	alloc, err := NewRateioEngine().Generate(headsParams(t), []*livestock.Lot{testLot(t, "A", 1, 1)}, asOf)
	require.NoError(t, err)

	require.NoError(t, alloc.Discard("wrong period", asOf))
	assert.Equal(t, AllocationStatusDiscarded, alloc.Status)
	assert.True(t, alloc.Status.IsTerminal())
	assert.True(t, errors.Is(alloc.Approve("x", asOf), shared.ErrInvalidTransition))
}

func TestIndirectCostType_LedgerCategory(t *testing.T) {
	assert.Equal(t, livestock.CostCategoryOperational, IndirectCostOperational.LedgerCategory())
	for _, ct := range []IndirectCostType{IndirectCostAdministrative, IndirectCostFinancial, IndirectCostMarketing, IndirectCostOther} {
		assert.Equal(t, livestock.CostCategoryOther, ct.LedgerCategory())
	}
}
