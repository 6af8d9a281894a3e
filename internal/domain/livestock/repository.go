package livestock

import (
	"context"

	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// LotRepository defines persistence for lots
type LotRepository interface {
	// FindByID finds a lot, returning shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)
	// FindByIDs returns the lots that exist among ids, in the order given
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Lot, error)
	// FindByStatuses returns lots in any of the statuses, all lots if none given
	FindByStatuses(ctx context.Context, statuses ...LotStatus) ([]*Lot, error)
	// Save creates or updates a lot. An update fails with
	// shared.ErrConcurrencyConflict when the lot changed since it was loaded.
	Save(ctx context.Context, lot *Lot) error
}

// PenRepository defines persistence for pens
type PenRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Pen, error)
	Save(ctx context.Context, pen *Pen) error
}

// PenLotLinkRepository defines persistence for pen-lot links
type PenLotLinkRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PenLotLink, error)
	// FindActiveByPen returns active links of a pen ordered by allocation date
	FindActiveByPen(ctx context.Context, penID uuid.UUID) ([]PenLotLink, error)
	// FindActiveByLot returns active links of a lot
	FindActiveByLot(ctx context.Context, lotID uuid.UUID) ([]PenLotLink, error)
	Save(ctx context.Context, link *PenLotLink) error
}

// NonCashLossRepository defines persistence for non-cash losses
type NonCashLossRepository interface {
	Save(ctx context.Context, loss *NonCashLossEvent) error
	// FindByLotsInPeriod returns losses of the given lots dated within the period
	FindByLotsInPeriod(ctx context.Context, lotIDs []uuid.UUID, period valueobject.Period) ([]NonCashLossEvent, error)
}
