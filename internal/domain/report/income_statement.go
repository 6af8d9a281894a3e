package report

import (
	"time"

	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityType selects the lots an income statement covers
type EntityType string

const (
	EntityTypeLot    EntityType = "lot"
	EntityTypePen    EntityType = "pen"
	EntityTypeGlobal EntityType = "global"
)

// IsValid checks if the entity type is known
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeLot, EntityTypePen, EntityTypeGlobal:
		return true
	}
	return false
}

// String returns the string representation
func (t EntityType) String() string {
	return string(t)
}

// Composition flags whether a line is backed by realized or projected figures
type Composition string

const (
	CompositionRealized  Composition = "realized"
	CompositionProjected Composition = "projected"
	CompositionMixed     Composition = "mixed"
)

// compose combines the realized and projected contributions of a line
func compose(realized, projected bool) Composition {
	switch {
	case realized && projected:
		return CompositionMixed
	case projected:
		return CompositionProjected
	default:
		return CompositionRealized
	}
}

// Revenue is the sales block of the statement
type Revenue struct {
	GrossSales      decimal.Decimal `json:"gross_sales"`
	SalesDeductions decimal.Decimal `json:"sales_deductions"`
	NetSales        decimal.Decimal `json:"net_sales"`
	Composition     Composition     `json:"composition"`
}

// CostOfGoodsSold is the ledger cost of the entity set plus non-cash losses
type CostOfGoodsSold struct {
	AnimalPurchase decimal.Decimal `json:"animal_purchase"`
	Feed           decimal.Decimal `json:"feed"`
	Health         decimal.Decimal `json:"health"`
	Freight        decimal.Decimal `json:"freight"`
	Operational    decimal.Decimal `json:"operational"`
	Other          decimal.Decimal `json:"other"`
	Mortality      decimal.Decimal `json:"mortality"`
	WeightLoss     decimal.Decimal `json:"weight_loss"`
	Total          decimal.Decimal `json:"total"`
	Composition    Composition     `json:"composition"`
}

func (c *CostOfGoodsSold) sum() {
	c.Total = c.AnimalPurchase.Add(c.Feed).Add(c.Health).Add(c.Freight).
		Add(c.Operational).Add(c.Other).Add(c.Mortality).Add(c.WeightLoss)
}

// OperatingExpenses is the overhead derived from COGS by the opex policy
type OperatingExpenses struct {
	Administrative decimal.Decimal `json:"administrative"`
	Sales          decimal.Decimal `json:"sales"`
	Financial      decimal.Decimal `json:"financial"`
	Other          decimal.Decimal `json:"other"`
	Total          decimal.Decimal `json:"total"`
	Composition    Composition     `json:"composition"`
}

// FinancialResult nets financial revenue against financial expenses
type FinancialResult struct {
	FinancialRevenue  decimal.Decimal `json:"financial_revenue"`
	FinancialExpenses decimal.Decimal `json:"financial_expenses"`
	Total             decimal.Decimal `json:"total"`
	Composition       Composition     `json:"composition"`
}

// Taxes on income before tax, zero when there is no profit
type Taxes struct {
	IncomeTax          decimal.Decimal `json:"income_tax"`
	SocialContribution decimal.Decimal `json:"social_contribution"`
	Total              decimal.Decimal `json:"total"`
}

// Metrics are the unit economics derived from the statement
type Metrics struct {
	TotalHeads        int             `json:"total_heads"`
	TotalArrobas      decimal.Decimal `json:"total_arrobas"`
	RevenuePerHead    decimal.Decimal `json:"revenue_per_head"`
	CostPerHead       decimal.Decimal `json:"cost_per_head"`
	ProfitPerHead     decimal.Decimal `json:"profit_per_head"`
	RevenuePerArroba  decimal.Decimal `json:"revenue_per_arroba"`
	CostPerArroba     decimal.Decimal `json:"cost_per_arroba"`
	ProfitPerArroba   decimal.Decimal `json:"profit_per_arroba"`
	AverageDays       decimal.Decimal `json:"average_days"`
	ROI               decimal.Decimal `json:"roi"`
	DailyProfit       decimal.Decimal `json:"daily_profit"`
	ProjectedLotCount int             `json:"projected_lot_count"`
}

// IncomeStatement (DRE) of an entity over a period. Immutable once saved.
type IncomeStatement struct {
	ID                 uuid.UUID          `json:"id"`
	EntityType         EntityType         `json:"entity_type"`
	EntityID           uuid.UUID          `json:"entity_id"`
	Period             valueobject.Period `json:"period"`
	LotIDs             []uuid.UUID        `json:"lot_ids"`
	IncludeProjections bool               `json:"include_projections"`
	PricePerArroba     decimal.Decimal    `json:"price_per_arroba"`

	Revenue         Revenue           `json:"revenue"`
	COGS            CostOfGoodsSold   `json:"cost_of_goods_sold"`
	GrossProfit     decimal.Decimal   `json:"gross_profit"`
	GrossMargin     decimal.Decimal   `json:"gross_margin"`
	Opex            OperatingExpenses `json:"operating_expenses"`
	OperatingIncome decimal.Decimal   `json:"operating_income"`
	OperatingMargin decimal.Decimal   `json:"operating_margin"`
	FinancialResult FinancialResult   `json:"financial_result"`
	IncomeBeforeTax decimal.Decimal   `json:"income_before_tax"`
	Taxes           Taxes             `json:"taxes"`
	NetIncome       decimal.Decimal   `json:"net_income"`
	NetMargin       decimal.Decimal   `json:"net_margin"`
	Metrics         Metrics           `json:"metrics"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Balanced reports whether net income equals net sales less COGS, opex
// and taxes plus the financial result.
func (s *IncomeStatement) Balanced() bool {
	expected := s.Revenue.NetSales.
		Sub(s.COGS.Total).
		Sub(s.Opex.Total).
		Add(s.FinancialResult.Total).
		Sub(s.Taxes.Total)
	return expected.Equal(s.NetIncome)
}

// IsProjected reports whether any revenue comes from a projection
func (s *IncomeStatement) IsProjected() bool {
	return s.Revenue.Composition != CompositionRealized
}
