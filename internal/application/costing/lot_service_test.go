package costing_test

import (
	"context"
	"testing"
	"time"

	appcosting "github.com/feedlot/backend/internal/application/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/infrastructure/lock"
	"github.com/feedlot/backend/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLotService(store *memory.Store, events *recordingPublisher) *appcosting.LotService {
	return appcosting.NewLotService(store.CostingScope(), lock.NewKeyedLocker(), events, zap.NewNop())
}

func TestLotService_CreateLotAndPen(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newLotService(store, &recordingPublisher{})

	yield := decimal.NewFromInt(52)
	lot, err := svc.CreateLot(ctx, appcosting.CreateLotRequest{
		Code:               "L-2024-01",
		EntryDate:          time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		EntryQuantity:      120,
		EntryWeightKg:      dec(36000),
		EstimatedDailyGain: decimal.NewFromFloat(1.5),
		CarcassYield:       &yield,
		AcquisitionCost:    dec(600000),
	})
	require.NoError(t, err)
	assert.Equal(t, livestock.LotStatusActive, lot.Status)
	assert.True(t, lot.Costs.Acquisition.Equal(dec(600000)))
	assert.True(t, lot.CarcassYield.Equal(yield))

	pen, err := svc.CreatePen(ctx, appcosting.CreatePenRequest{Code: "P-07", Capacity: 150})
	require.NoError(t, err)
	loadedPen, err := svc.GetPen(ctx, pen.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, loadedPen.Capacity)
	assert.Zero(t, loadedPen.Occupancy)

	resp, err := svc.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "L-2024-01", resp.Lot.Code)
	assert.Empty(t, resp.Links)

	active, err := svc.ListLots(ctx, livestock.LotStatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = svc.ListLots(ctx, livestock.LotStatus("grazing"))
	assert.Error(t, err)
}

func TestLotService_CreateLotValidation(t *testing.T) {
	svc := newLotService(memory.NewStore(), &recordingPublisher{})
	over := decimal.NewFromInt(101)

	tests := []struct {
		name string
		req  appcosting.CreateLotRequest
	}{
		{"missing code", appcosting.CreateLotRequest{EntryDate: testNow, EntryQuantity: 1, EntryWeightKg: dec(300)}},
		{"no heads", appcosting.CreateLotRequest{Code: "L", EntryDate: testNow, EntryWeightKg: dec(300)}},
		{"negative weight", appcosting.CreateLotRequest{Code: "L", EntryDate: testNow, EntryQuantity: 1, EntryWeightKg: dec(-1)}},
		{"yield above 100", appcosting.CreateLotRequest{Code: "L", EntryDate: testNow, EntryQuantity: 1, EntryWeightKg: dec(300), CarcassYield: &over}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLot(context.Background(), tt.req)
			assert.Error(t, err)
		})
	}
}

func TestLotService_RecordSaleClosesLinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newLotService(f.store, f.events)
	penA := f.pen(t, "PA", 100)
	penB := f.pen(t, "PB", 100)
	lot := f.lot(t, "A", 30)
	other := f.lot(t, "B", 10)
	f.assign(t, lot, penA, 20)
	f.assign(t, lot, penB, 10)
	f.assign(t, other, penA, 10)

	sold, err := svc.RecordSale(ctx, lot.ID, appcosting.RecordSaleRequest{
		SaleDate:      time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Quantity:      30,
		TotalWeightKg: dec(15000),
		GrossRevenue:  dec(90000),
		Deductions:    dec(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, livestock.LotStatusSold, sold.Status)
	require.NotNil(t, sold.Sale)
	assert.True(t, sold.Sale.GrossRevenue.Equal(dec(90000)))
	assert.Contains(t, f.events.types(), livestock.EventTypeLotSold)

	resp, err := svc.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Links)

	a, err := svc.GetPen(ctx, penA.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, a.Occupancy)
	b, err := svc.GetPen(ctx, penB.ID)
	require.NoError(t, err)
	assert.Zero(t, b.Occupancy)

	alloc, err := f.alloc.AllocateCost(ctx, appcosting.AllocateCostRequest{PenID: penA.ID, Amount: dec(100), Category: "feed"})
	require.NoError(t, err)
	require.Len(t, alloc.Records, 1)
	assert.Equal(t, other.ID, alloc.Records[0].LotID)

	_, err = svc.RecordSale(ctx, lot.ID, appcosting.RecordSaleRequest{SaleDate: testNow, Quantity: 30})
	assert.Error(t, err, "a sold lot cannot be sold again")

	_, err = svc.RecordSale(ctx, uuid.New(), appcosting.RecordSaleRequest{SaleDate: testNow, Quantity: 1})
	assert.Error(t, err)
}
