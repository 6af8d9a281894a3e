package livestock

import (
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeLotSold        = "LotSold"
	EventTypeLossRecorded   = "NonCashLossRecorded"
	EventTypeLotLinkedToPen = "LotLinkedToPen"
)

// LotSoldEvent is raised when a lot is closed by a sale
type LotSoldEvent struct {
	shared.BaseDomainEvent
	LotID        uuid.UUID       `json:"lot_id"`
	SaleDate     time.Time       `json:"sale_date"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
}

// NewLotSoldEvent creates a new LotSoldEvent
func NewLotSoldEvent(lot *Lot) *LotSoldEvent {
	return &LotSoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotSold, shared.AggregateLot, lot.ID),
		LotID:           lot.ID,
		SaleDate:        lot.Sale.SaleDate,
		GrossRevenue:    lot.Sale.GrossRevenue,
	}
}

// NonCashLossRecordedEvent is raised when a mortality or weight loss is valued
type NonCashLossRecordedEvent struct {
	shared.BaseDomainEvent
	LotID         uuid.UUID       `json:"lot_id"`
	LossType      LossType        `json:"loss_type"`
	MonetaryValue decimal.Decimal `json:"monetary_value"`
}

// NewNonCashLossRecordedEvent creates a new NonCashLossRecordedEvent
func NewNonCashLossRecordedEvent(loss *NonCashLossEvent) *NonCashLossRecordedEvent {
	return &NonCashLossRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLossRecorded, shared.AggregateLot, loss.LotID),
		LotID:           loss.LotID,
		LossType:        loss.Type,
		MonetaryValue:   loss.MonetaryValue,
	}
}

// LotLinkedToPenEvent is raised for every new pen-lot link
type LotLinkedToPenEvent struct {
	shared.BaseDomainEvent
	LinkID   uuid.UUID `json:"link_id"`
	LotID    uuid.UUID `json:"lot_id"`
	PenID    uuid.UUID `json:"pen_id"`
	Quantity int       `json:"quantity"`
}

// NewLotLinkedToPenEvent creates a new LotLinkedToPenEvent
func NewLotLinkedToPenEvent(link *PenLotLink) *LotLinkedToPenEvent {
	return &LotLinkedToPenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotLinkedToPen, shared.AggregatePen, link.PenID),
		LinkID:          link.ID,
		LotID:           link.LotID,
		PenID:           link.PenID,
		Quantity:        link.Quantity,
	}
}
