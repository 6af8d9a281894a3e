package livestock

import (
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LossType classifies a non-cash loss
type LossType string

const (
	LossTypeMortality  LossType = "mortality"
	LossTypeWeightLoss LossType = "weight_loss"
)

// IsValid checks if the loss type is known
func (t LossType) IsValid() bool {
	return t == LossTypeMortality || t == LossTypeWeightLoss
}

// NonCashLossEvent is a value reduction without cash movement. It feeds
// the lot's COGS in the income statement and never touches the ledger.
type NonCashLossEvent struct {
	shared.BaseEntity
	LotID           uuid.UUID       `json:"lot_id"`
	Type            LossType        `json:"type"`
	Date            time.Time       `json:"date"`
	Quantity        int             `json:"quantity"`     // heads, for mortality
	WeightDelta     decimal.Decimal `json:"weight_delta"` // kg, for weight loss
	MonetaryValue   decimal.Decimal `json:"monetary_value"`
	Description     string          `json:"description"`
	AffectsCashFlow bool            `json:"affects_cash_flow"`
}

// NewMortalityLoss values dead animals at the lot's accumulated cost per entry head
func NewMortalityLoss(lot *Lot, quantity int, cause string, date time.Time) (*NonCashLossEvent, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Mortality quantity must be positive")
	}
	value := lot.CostPerEntryHead().Mul(decimal.NewFromInt(int64(quantity))).Round(valueobject.CentPlaces)
	return &NonCashLossEvent{
		BaseEntity:    shared.NewBaseEntity(),
		LotID:         lot.ID,
		Type:          LossTypeMortality,
		Date:          date,
		Quantity:      quantity,
		WeightDelta:   decimal.Zero,
		MonetaryValue: value,
		Description:   cause,
	}, nil
}

// WeightLossParams describes a weighing below expectation
type WeightLossParams struct {
	Expected       valueobject.Weight
	Actual         valueobject.Weight
	PricePerArroba decimal.Decimal
	CarcassYield   decimal.Decimal // percent
	KgPerArroba    decimal.Decimal
	Date           time.Time
	Description    string
}

// NewWeightLoss values missing live weight at the carcass price per kg
func NewWeightLoss(lot *Lot, p WeightLossParams) (*NonCashLossEvent, error) {
	loss := p.Expected.Kg().Sub(p.Actual.Kg())
	if !loss.IsPositive() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Actual weight must be below expected weight")
	}
	if p.PricePerArroba.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price per arroba cannot be negative")
	}
	kgPerArroba := p.KgPerArroba
	if !kgPerArroba.IsPositive() {
		kgPerArroba = valueobject.DefaultKgPerArroba
	}
	pricePerKg := p.PricePerArroba.Div(kgPerArroba).Mul(p.CarcassYield).Div(decimal.NewFromInt(100))
	return &NonCashLossEvent{
		BaseEntity:    shared.NewBaseEntity(),
		LotID:         lot.ID,
		Type:          LossTypeWeightLoss,
		Date:          p.Date,
		WeightDelta:   loss,
		MonetaryValue: loss.Mul(pricePerKg).Round(valueobject.CentPlaces),
		Description:   p.Description,
	}, nil
}
