package models

import (
	"time"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotModel is the persistence model for the Lot aggregate root.
// The cost ledger is flattened into one column per category.
type LotModel struct {
	VersionedRow
	Code               string          `gorm:"type:varchar(50);not null;index"`
	EntryDate          time.Time       `gorm:"not null;index"`
	EntryQuantity      int             `gorm:"not null"`
	EntryWeightKg      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Deaths             int             `gorm:"not null;default:0"`
	EstimatedDailyGain decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CarcassYield       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status             string          `gorm:"type:varchar(20);not null;default:'active';index"`

	CostAcquisition decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostHealth      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostFeed        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostOperational decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostFreight     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostOther       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// Sale columns are set once the lot is sold; SaleDate is nil before that
	SaleDate         *time.Time
	SaleQuantity     int             `gorm:"not null;default:0"`
	SaleWeightKg     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SaleGrossRevenue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SaleDeductions   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LotModel) TableName() string {
	return "lots"
}

// ToDomain converts the persistence model to a domain Lot
func (m *LotModel) ToDomain() *livestock.Lot {
	lot := &livestock.Lot{
		BaseAggregateRoot:  m.Aggregate(),
		Code:               m.Code,
		EntryDate:          m.EntryDate,
		EntryQuantity:      m.EntryQuantity,
		EntryWeight:        valueobject.MustNewWeight(m.EntryWeightKg),
		Deaths:             m.Deaths,
		EstimatedDailyGain: m.EstimatedDailyGain,
		CarcassYield:       m.CarcassYield,
		Status:             livestock.LotStatus(m.Status),
		Costs: livestock.CostLedger{
			Acquisition: m.CostAcquisition,
			Health:      m.CostHealth,
			Feed:        m.CostFeed,
			Operational: m.CostOperational,
			Freight:     m.CostFreight,
			Other:       m.CostOther,
			Total:       m.CostTotal,
		},
	}
	if m.SaleDate != nil {
		lot.Sale = &livestock.SaleRecord{
			SaleDate:     *m.SaleDate,
			Quantity:     m.SaleQuantity,
			TotalWeight:  valueobject.MustNewWeight(m.SaleWeightKg),
			GrossRevenue: m.SaleGrossRevenue,
			Deductions:   m.SaleDeductions,
		}
	}
	return lot
}

// FromDomain populates the persistence model from a domain Lot
func (m *LotModel) FromDomain(l *livestock.Lot) {
	m.SetAggregate(l.BaseAggregateRoot)
	m.Code = l.Code
	m.EntryDate = l.EntryDate
	m.EntryQuantity = l.EntryQuantity
	m.EntryWeightKg = l.EntryWeight.Kg()
	m.Deaths = l.Deaths
	m.EstimatedDailyGain = l.EstimatedDailyGain
	m.CarcassYield = l.CarcassYield
	m.Status = string(l.Status)
	m.CostAcquisition = l.Costs.Acquisition
	m.CostHealth = l.Costs.Health
	m.CostFeed = l.Costs.Feed
	m.CostOperational = l.Costs.Operational
	m.CostFreight = l.Costs.Freight
	m.CostOther = l.Costs.Other
	m.CostTotal = l.Costs.Total
	m.SaleDate = nil
	m.SaleQuantity = 0
	m.SaleWeightKg = decimal.Zero
	m.SaleGrossRevenue = decimal.Zero
	m.SaleDeductions = decimal.Zero
	if l.Sale != nil {
		saleDate := l.Sale.SaleDate
		m.SaleDate = &saleDate
		m.SaleQuantity = l.Sale.Quantity
		m.SaleWeightKg = l.Sale.TotalWeight.Kg()
		m.SaleGrossRevenue = l.Sale.GrossRevenue
		m.SaleDeductions = l.Sale.Deductions
	}
}

// LotModelFromDomain creates a new persistence model from a domain Lot
func LotModelFromDomain(l *livestock.Lot) *LotModel {
	m := &LotModel{}
	m.FromDomain(l)
	return m
}

// PenModel is the persistence model for the Pen aggregate root
type PenModel struct {
	VersionedRow
	Code      string `gorm:"type:varchar(50);not null;index"`
	Capacity  int    `gorm:"not null"`
	Occupancy int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PenModel) TableName() string {
	return "pens"
}

// ToDomain converts the persistence model to a domain Pen
func (m *PenModel) ToDomain() *livestock.Pen {
	return &livestock.Pen{
		BaseAggregateRoot: m.Aggregate(),
		Code:              m.Code,
		Capacity:          m.Capacity,
		Occupancy:         m.Occupancy,
	}
}

// FromDomain populates the persistence model from a domain Pen
func (m *PenModel) FromDomain(p *livestock.Pen) {
	m.SetAggregate(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Capacity = p.Capacity
	m.Occupancy = p.Occupancy
}

// PenModelFromDomain creates a new persistence model from a domain Pen
func PenModelFromDomain(p *livestock.Pen) *PenModel {
	m := &PenModel{}
	m.FromDomain(p)
	return m
}

// PenLotLinkModel is the persistence model for a pen-lot link
type PenLotLinkModel struct {
	EntityRow
	LotID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_pen_lot_links_lot_status,priority:1"`
	PenID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_pen_lot_links_pen_status,priority:1"`
	Quantity     int             `gorm:"not null"`
	PercentOfLot decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	PercentOfPen decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	Status       string          `gorm:"type:varchar(20);not null;default:'active';index:idx_pen_lot_links_lot_status,priority:2;index:idx_pen_lot_links_pen_status,priority:2"`
	AllocatedAt  time.Time       `gorm:"not null"`
	RemovedAt    *time.Time
}

// TableName returns the table name for GORM
func (PenLotLinkModel) TableName() string {
	return "pen_lot_links"
}

// ToDomain converts the persistence model to a domain PenLotLink
func (m *PenLotLinkModel) ToDomain() *livestock.PenLotLink {
	return &livestock.PenLotLink{
		BaseEntity:   m.Entity(),
		LotID:        m.LotID,
		PenID:        m.PenID,
		Quantity:     m.Quantity,
		PercentOfLot: m.PercentOfLot,
		PercentOfPen: m.PercentOfPen,
		Status:       livestock.LinkStatus(m.Status),
		AllocatedAt:  m.AllocatedAt,
		RemovedAt:    m.RemovedAt,
	}
}

// FromDomain populates the persistence model from a domain PenLotLink
func (m *PenLotLinkModel) FromDomain(l *livestock.PenLotLink) {
	m.SetEntity(l.BaseEntity)
	m.LotID = l.LotID
	m.PenID = l.PenID
	m.Quantity = l.Quantity
	m.PercentOfLot = l.PercentOfLot
	m.PercentOfPen = l.PercentOfPen
	m.Status = string(l.Status)
	m.AllocatedAt = l.AllocatedAt
	m.RemovedAt = l.RemovedAt
}

// PenLotLinkModelFromDomain creates a new persistence model from a domain PenLotLink
func PenLotLinkModelFromDomain(l *livestock.PenLotLink) *PenLotLinkModel {
	m := &PenLotLinkModel{}
	m.FromDomain(l)
	return m
}

// NonCashLossModel is the persistence model for a non-cash loss event
type NonCashLossModel struct {
	EntityRow
	LotID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_non_cash_losses_lot_date,priority:1"`
	Type            string          `gorm:"type:varchar(20);not null"`
	Date            time.Time       `gorm:"column:loss_date;not null;index:idx_non_cash_losses_lot_date,priority:2"`
	Quantity        int             `gorm:"not null;default:0"`
	WeightDelta     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MonetaryValue   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description     string          `gorm:"type:text"`
	AffectsCashFlow bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (NonCashLossModel) TableName() string {
	return "non_cash_losses"
}

// ToDomain converts the persistence model to a domain NonCashLossEvent
func (m *NonCashLossModel) ToDomain() livestock.NonCashLossEvent {
	return livestock.NonCashLossEvent{
		BaseEntity:      m.Entity(),
		LotID:           m.LotID,
		Type:            livestock.LossType(m.Type),
		Date:            m.Date,
		Quantity:        m.Quantity,
		WeightDelta:     m.WeightDelta,
		MonetaryValue:   m.MonetaryValue,
		Description:     m.Description,
		AffectsCashFlow: m.AffectsCashFlow,
	}
}

// NonCashLossModelFromDomain creates a new persistence model from a domain NonCashLossEvent
func NonCashLossModelFromDomain(l *livestock.NonCashLossEvent) *NonCashLossModel {
	return &NonCashLossModel{
		EntityRow: EntityRow{
			ID:        l.ID,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.UpdatedAt,
		},
		LotID:           l.LotID,
		Type:            string(l.Type),
		Date:            l.Date,
		Quantity:        l.Quantity,
		WeightDelta:     l.WeightDelta,
		MonetaryValue:   l.MonetaryValue,
		Description:     l.Description,
		AffectsCashFlow: l.AffectsCashFlow,
	}
}
