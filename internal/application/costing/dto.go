package costing

import (
	"time"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocateCostRequest represents a cost origin arriving from intake
type AllocateCostRequest struct {
	OriginID    *uuid.UUID      `json:"origin_id"`
	PenID       uuid.UUID       `json:"pen_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	Category    string          `json:"category" binding:"required,oneof=acquisition health feed operational freight other"`
	Date        *time.Time      `json:"date"`
	Description string          `json:"description" binding:"max=500"`
}

// AllocationResponse is the outcome of allocating one origin. Posted is
// false when the pen had no animals; the origin stays unposted for retry.
type AllocationResponse struct {
	OriginID uuid.UUID                     `json:"origin_id"`
	PenID    uuid.UUID                     `json:"pen_id"`
	Posted   bool                          `json:"posted"`
	Reason   string                        `json:"reason,omitempty"`
	Records  []costing.CostAllocationRecord `json:"records"`
}

// AssignLotRequest places part of a lot in a pen
type AssignLotRequest struct {
	PenID    uuid.UUID  `json:"pen_id" binding:"required"`
	Quantity int        `json:"quantity" binding:"required,gt=0"`
	At       *time.Time `json:"at"`
}

// AssignLotResponse carries the new link and any soft occupancy violations
type AssignLotResponse struct {
	Link     livestock.PenLotLink         `json:"link"`
	Warnings []livestock.OccupancyWarning `json:"warnings,omitempty"`
}

// RecordMortalityRequest registers dead animals of a lot
type RecordMortalityRequest struct {
	Quantity int        `json:"quantity" binding:"required,gt=0"`
	Cause    string     `json:"cause" binding:"max=200"`
	Date     *time.Time `json:"date"`
}

// RecordWeightLossRequest registers weight below the expected weight
type RecordWeightLossRequest struct {
	ExpectedKg     decimal.Decimal  `json:"expected_kg"`
	ActualKg       decimal.Decimal  `json:"actual_kg"`
	PricePerArroba decimal.Decimal  `json:"price_per_arroba"`
	CarcassYield   *decimal.Decimal `json:"carcass_yield"`
	Date           *time.Time       `json:"date"`
	Description    string           `json:"description" binding:"max=500"`
}

// LossResponse is a recorded non-cash loss with any occupancy warning it caused
type LossResponse struct {
	Loss    livestock.NonCashLossEvent  `json:"loss"`
	Warning *livestock.OccupancyWarning `json:"warning,omitempty"`
}

// GenerateIndirectRequest requests a draft indirect cost allocation
type GenerateIndirectRequest struct {
	CostType            string          `json:"cost_type" binding:"required,oneof=administrative financial marketing operational other"`
	PeriodStart         time.Time       `json:"period_start" binding:"required"`
	PeriodEnd           time.Time       `json:"period_end" binding:"required"`
	TotalAmount         decimal.Decimal `json:"total_amount" binding:"gt=0"`
	Method              string          `json:"method" binding:"required,oneof=by_heads by_value by_days by_weight"`
	IncludeInactiveLots bool            `json:"include_inactive_lots"`
	Description         string          `json:"description" binding:"max=500"`
}

// ApproveIndirectRequest approves a draft allocation
type ApproveIndirectRequest struct {
	ApprovedBy string `json:"approved_by" binding:"required,max=100"`
}

// DiscardIndirectRequest rejects a draft allocation
type DiscardIndirectRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// IndirectSummaryRequest selects the applied allocations to total.
// No lot ids means every lot.
type IndirectSummaryRequest struct {
	PeriodStart time.Time   `form:"period_start" json:"period_start" binding:"required" time_format:"2006-01-02"`
	PeriodEnd   time.Time   `form:"period_end" json:"period_end" binding:"required" time_format:"2006-01-02"`
	LotIDs      []uuid.UUID `form:"-" json:"lot_ids"`
}

// CreateLotRequest registers a purchased lot
type CreateLotRequest struct {
	Code               string           `json:"code" binding:"required,max=50"`
	EntryDate          time.Time        `json:"entry_date" binding:"required"`
	EntryQuantity      int              `json:"entry_quantity" binding:"required,gt=0"`
	EntryWeightKg      decimal.Decimal  `json:"entry_weight_kg"`
	EstimatedDailyGain decimal.Decimal  `json:"estimated_daily_gain"`
	CarcassYield       *decimal.Decimal `json:"carcass_yield"`
	AcquisitionCost    decimal.Decimal  `json:"acquisition_cost"`
}

// CreatePenRequest registers a pen
type CreatePenRequest struct {
	Code     string `json:"code" binding:"required,max=50"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
}

// RecordSaleRequest closes a lot with its realized sale
type RecordSaleRequest struct {
	SaleDate      time.Time       `json:"sale_date" binding:"required"`
	Quantity      int             `json:"quantity" binding:"required,gt=0"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	Deductions    decimal.Decimal `json:"deductions"`
}

// LotResponse is a lot with its active pen links
type LotResponse struct {
	Lot   livestock.Lot          `json:"lot"`
	Links []livestock.PenLotLink `json:"links"`
}
