package livestock

import (
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostCategory classifies a lot's accumulated cost
type CostCategory string

const (
	CostCategoryAcquisition CostCategory = "acquisition"
	CostCategoryHealth      CostCategory = "health"
	CostCategoryFeed        CostCategory = "feed"
	CostCategoryOperational CostCategory = "operational"
	CostCategoryFreight     CostCategory = "freight"
	CostCategoryOther       CostCategory = "other"
)

// IsValid checks if the category is known
func (c CostCategory) IsValid() bool {
	switch c {
	case CostCategoryAcquisition, CostCategoryHealth, CostCategoryFeed,
		CostCategoryOperational, CostCategoryFreight, CostCategoryOther:
		return true
	}
	return false
}

// String returns the string representation
func (c CostCategory) String() string {
	return string(c)
}

// AllCostCategories returns the categories in ledger order
func AllCostCategories() []CostCategory {
	return []CostCategory{
		CostCategoryAcquisition,
		CostCategoryHealth,
		CostCategoryFeed,
		CostCategoryOperational,
		CostCategoryFreight,
		CostCategoryOther,
	}
}

// CostLedger is a lot's accumulated cost per category.
// Total always equals the sum of the six categories.
type CostLedger struct {
	Acquisition decimal.Decimal `json:"acquisition"`
	Health      decimal.Decimal `json:"health"`
	Feed        decimal.Decimal `json:"feed"`
	Operational decimal.Decimal `json:"operational"`
	Freight     decimal.Decimal `json:"freight"`
	Other       decimal.Decimal `json:"other"`
	Total       decimal.Decimal `json:"total"`
}

// Get returns the accumulated amount for a category
func (l CostLedger) Get(category CostCategory) decimal.Decimal {
	switch category {
	case CostCategoryAcquisition:
		return l.Acquisition
	case CostCategoryHealth:
		return l.Health
	case CostCategoryFeed:
		return l.Feed
	case CostCategoryOperational:
		return l.Operational
	case CostCategoryFreight:
		return l.Freight
	case CostCategoryOther:
		return l.Other
	}
	return decimal.Zero
}

// Post adds amount to a category and recomputes the total
func (l *CostLedger) Post(category CostCategory, amount decimal.Decimal) error {
	if !category.IsValid() {
		return shared.Errorf("INVALID_CATEGORY", "Unknown cost category %q", category)
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Posted cost cannot be negative")
	}
	switch category {
	case CostCategoryAcquisition:
		l.Acquisition = l.Acquisition.Add(amount)
	case CostCategoryHealth:
		l.Health = l.Health.Add(amount)
	case CostCategoryFeed:
		l.Feed = l.Feed.Add(amount)
	case CostCategoryOperational:
		l.Operational = l.Operational.Add(amount)
	case CostCategoryFreight:
		l.Freight = l.Freight.Add(amount)
	case CostCategoryOther:
		l.Other = l.Other.Add(amount)
	}
	l.recalculate()
	return nil
}

func (l *CostLedger) recalculate() {
	l.Total = l.Acquisition.Add(l.Health).Add(l.Feed).Add(l.Operational).Add(l.Freight).Add(l.Other)
}
