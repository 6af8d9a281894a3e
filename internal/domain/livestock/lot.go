package livestock

import (
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle status of a lot
type LotStatus string

const (
	LotStatusActive      LotStatus = "active"
	LotStatusSold        LotStatus = "sold"
	LotStatusSlaughtered LotStatus = "slaughtered"
)

// IsValid checks if the status is known
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusSold, LotStatusSlaughtered:
		return true
	}
	return false
}

// String returns the string representation
func (s LotStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the lot has been disposed of
func (s LotStatus) IsTerminal() bool {
	return s == LotStatusSold || s == LotStatusSlaughtered
}

// SaleRecord is the realized disposal of a lot
type SaleRecord struct {
	SaleDate     time.Time          `json:"sale_date"`
	Quantity     int                `json:"quantity"`
	TotalWeight  valueobject.Weight `json:"total_weight"` // live weight at sale
	GrossRevenue decimal.Decimal    `json:"gross_revenue"`
	Deductions   decimal.Decimal    `json:"deductions"` // taxes and commissions withheld
}

// Lot is a cohort of cattle tracked together from intake to sale
type Lot struct {
	shared.BaseAggregateRoot
	Code               string             `json:"code"`
	EntryDate          time.Time          `json:"entry_date"`
	EntryQuantity      int                `json:"entry_quantity"`
	EntryWeight        valueobject.Weight `json:"entry_weight"` // total live weight at intake
	Deaths             int                `json:"deaths"`
	EstimatedDailyGain decimal.Decimal    `json:"estimated_daily_gain"` // kg per head per day
	CarcassYield       decimal.Decimal    `json:"carcass_yield"`        // percent; zero means configured default
	Status             LotStatus          `json:"status"`
	Costs              CostLedger         `json:"costs"`
	Sale               *SaleRecord        `json:"sale,omitempty"`
}

// NewLot creates an active lot from a purchase intake
func NewLot(code string, entryDate time.Time, entryQuantity int, entryWeight valueobject.Weight, dailyGain decimal.Decimal) (*Lot, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_LOT_CODE", "Lot code cannot be empty")
	}
	if entryQuantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Entry quantity must be positive")
	}
	if entryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Entry date is required")
	}
	if dailyGain.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DAILY_GAIN", "Estimated daily gain cannot be negative")
	}

	lot := &Lot{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Code:               code,
		EntryDate:          entryDate,
		EntryQuantity:      entryQuantity,
		EntryWeight:        entryWeight,
		EstimatedDailyGain: dailyGain,
		Status:             LotStatusActive,
	}
	return lot, nil
}

// LiveHeads returns entry quantity minus recorded deaths
func (l *Lot) LiveHeads() int {
	return l.EntryQuantity - l.Deaths
}

// IsActive returns true while the lot is in confinement
func (l *Lot) IsActive() bool {
	return l.Status == LotStatusActive
}

// PostCost posts an allocated amount into the lot's cost ledger
func (l *Lot) PostCost(category CostCategory, amount decimal.Decimal) error {
	if err := l.Costs.Post(category, amount); err != nil {
		return err
	}
	l.Bump()
	return nil
}

// RegisterDeaths increments the death count
func (l *Lot) RegisterDeaths(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Death count must be positive")
	}
	if quantity > l.LiveHeads() {
		return shared.Errorf("INVALID_QUANTITY", "Cannot record %d deaths on a lot with %d live heads", quantity, l.LiveHeads())
	}
	l.Deaths += quantity
	l.Bump()
	return nil
}

// RecordSale closes the lot with a realized sale
func (l *Lot) RecordSale(sale SaleRecord) error {
	if l.Status.IsTerminal() {
		return shared.ErrInvalidState.WithMessagef("Cannot sell lot in %s status", l.Status)
	}
	if sale.SaleDate.IsZero() || sale.SaleDate.Before(l.EntryDate) {
		return shared.NewDomainError("INVALID_DATE", "Sale date must not precede entry date")
	}
	if sale.GrossRevenue.IsNegative() || sale.Deductions.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Sale amounts cannot be negative")
	}
	l.Sale = &sale
	l.Status = LotStatusSold
	l.Bump()
	l.Raise(NewLotSoldEvent(l))
	return nil
}

// ConfinementEnd returns the sale date for sold lots, otherwise asOf
func (l *Lot) ConfinementEnd(asOf time.Time) time.Time {
	if l.Status == LotStatusSold && l.Sale != nil {
		return l.Sale.SaleDate
	}
	return asOf
}

// DaysInConfinement returns whole days from entry until asOf (or sale)
func (l *Lot) DaysInConfinement(asOf time.Time) int {
	d := valueobject.DaysBetween(l.EntryDate, l.ConfinementEnd(asOf))
	if d < 0 {
		return 0
	}
	return d
}

// CarcassYieldOr returns the lot's carcass yield or fallback when unset
func (l *Lot) CarcassYieldOr(fallback decimal.Decimal) decimal.Decimal {
	if l.CarcassYield.IsPositive() {
		return l.CarcassYield
	}
	return fallback
}

// CostPerEntryHead returns ledger total over entry quantity
func (l *Lot) CostPerEntryHead() decimal.Decimal {
	if l.EntryQuantity <= 0 {
		return decimal.Zero
	}
	return l.Costs.Total.Div(decimal.NewFromInt(int64(l.EntryQuantity)))
}
