package livestock

import (
	"testing"
	"time"

	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMortalityLoss(t *testing.T) {
	lot := newTestLot(t, 100)
	require.NoError(t, lot.PostCost(CostCategoryAcquisition, decimal.NewFromInt(500000)))

	loss, err := NewMortalityLoss(lot, 5, "pneumonia", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, LossTypeMortality, loss.Type)
	assert.Equal(t, 5, loss.Quantity)
	assert.True(t, loss.MonetaryValue.Equal(decimal.NewFromInt(25000)), "got %s", loss.MonetaryValue)
	assert.False(t, loss.AffectsCashFlow)

	_, err = NewMortalityLoss(lot, 0, "", time.Now())
	assert.Error(t, err)
}

func TestNewWeightLoss(t *testing.T) {
	lot := newTestLot(t, 10)

	tests := []struct {
		name      string
		expected  int64
		actual    int64
		price     string
		want      string
		wantError bool
	}{
		// 300 kg missing at 300/15 * 50% = 10 per kg
		{"valued at carcass price", 5000, 4700, "300", "3000", false},
		{"no loss", 5000, 5000, "300", "", true},
		{"gain", 5000, 5100, "300", "", true},
		{"negative price", 5000, 4700, "-1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loss, err := NewWeightLoss(lot, WeightLossParams{
				Expected:       valueobject.MustNewWeight(decimal.NewFromInt(tt.expected)),
				Actual:         valueobject.MustNewWeight(decimal.NewFromInt(tt.actual)),
				PricePerArroba: decimal.RequireFromString(tt.price),
				CarcassYield:   decimal.NewFromInt(50),
				Date:           time.Now(),
			})
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, LossTypeWeightLoss, loss.Type)
			assert.True(t, loss.WeightDelta.Equal(decimal.NewFromInt(tt.expected-tt.actual)))
			assert.True(t, loss.MonetaryValue.Equal(decimal.RequireFromString(tt.want)), "got %s", loss.MonetaryValue)
		})
	}
}
