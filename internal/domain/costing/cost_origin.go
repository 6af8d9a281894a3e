package costing

import (
	"time"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostOrigin is a cost event tagged with the pen it was incurred for,
// such as a health treatment or a feed delivery. Immutable once posted.
type CostOrigin struct {
	ID          uuid.UUID              `json:"id"`
	Amount      decimal.Decimal        `json:"amount"`
	Category    livestock.CostCategory `json:"category"`
	PenID       uuid.UUID              `json:"pen_id"`
	Date        time.Time              `json:"date"`
	Description string                 `json:"description"`
}

// NewCostOrigin validates and creates a cost origin. A nil id gets a fresh one.
func NewCostOrigin(id uuid.UUID, amount valueobject.Money, category livestock.CostCategory, penID uuid.UUID, date time.Time, description string) (*CostOrigin, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cost origin amount cannot be negative")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Cost origin category is not valid")
	}
	if penID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PEN", "Cost origin must reference a pen")
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &CostOrigin{
		ID:          id,
		Amount:      amount.Amount(),
		Category:    category,
		PenID:       penID,
		Date:        date,
		Description: description,
	}, nil
}

// CostAllocationRecord is one pen-lot link's share of a cost origin
type CostAllocationRecord struct {
	ID               uuid.UUID              `json:"id"`
	OriginID         uuid.UUID              `json:"origin_id"`
	OriginCategory   livestock.CostCategory `json:"origin_category"`
	PenID            uuid.UUID              `json:"pen_id"`
	LotID            uuid.UUID              `json:"lot_id"`
	LinkID           uuid.UUID              `json:"link_id"`
	Quantity         int                    `json:"quantity"`
	OriginalAmount   decimal.Decimal        `json:"original_amount"`
	AllocatedAmount  decimal.Decimal        `json:"allocated_amount"`
	AllocatedPercent decimal.Decimal        `json:"allocated_percent"`
	AllocationDate   time.Time              `json:"allocation_date"`
}
