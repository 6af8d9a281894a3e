package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

type lotRepository struct {
	acc accessor
}

func (r *lotRepository) FindByID(_ context.Context, id uuid.UUID) (*livestock.Lot, error) {
	var lot livestock.Lot
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.lots[id]
		if !ok {
			return shared.ErrNotFound
		}
		lot = cloneLot(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*livestock.Lot, error) {
	var lots []*livestock.Lot
	err := r.acc.view(func(d *dataset) error {
		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			stored, ok := d.lots[id]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			lot := cloneLot(stored)
			lots = append(lots, &lot)
		}
		return nil
	})
	return lots, err
}

func (r *lotRepository) FindByStatuses(_ context.Context, statuses ...livestock.LotStatus) ([]*livestock.Lot, error) {
	var lots []*livestock.Lot
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.lots {
			if len(statuses) > 0 && !slices.Contains(statuses, stored.Status) {
				continue
			}
			lot := cloneLot(stored)
			lots = append(lots, &lot)
		}
		return nil
	})
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].EntryDate.Equal(lots[j].EntryDate) {
			return lots[i].EntryDate.Before(lots[j].EntryDate)
		}
		return lots[i].ID.String() < lots[j].ID.String()
	})
	return lots, err
}

// Save rejects a lot whose stored version moved since it was loaded
func (r *lotRepository) Save(_ context.Context, lot *livestock.Lot) error {
	return r.acc.view(func(d *dataset) error {
		if existing, ok := d.lots[lot.ID]; ok && existing.Version != lot.StoredVersion() {
			return shared.ErrConcurrencyConflict
		}
		lot.MarkStored()
		d.lots[lot.ID] = cloneLot(*lot)
		return nil
	})
}

type penRepository struct {
	acc accessor
}

func (r *penRepository) FindByID(_ context.Context, id uuid.UUID) (*livestock.Pen, error) {
	var pen livestock.Pen
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.pens[id]
		if !ok {
			return shared.ErrNotFound
		}
		pen = clonePen(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pen, nil
}

func (r *penRepository) Save(_ context.Context, pen *livestock.Pen) error {
	return r.acc.view(func(d *dataset) error {
		d.pens[pen.ID] = clonePen(*pen)
		return nil
	})
}

type linkRepository struct {
	acc accessor
}

func (r *linkRepository) FindByID(_ context.Context, id uuid.UUID) (*livestock.PenLotLink, error) {
	var link livestock.PenLotLink
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.links[id]
		if !ok {
			return shared.ErrNotFound
		}
		link = cloneLink(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) FindActiveByPen(_ context.Context, penID uuid.UUID) ([]livestock.PenLotLink, error) {
	return r.findActive(func(l livestock.PenLotLink) bool { return l.PenID == penID })
}

func (r *linkRepository) FindActiveByLot(_ context.Context, lotID uuid.UUID) ([]livestock.PenLotLink, error) {
	return r.findActive(func(l livestock.PenLotLink) bool { return l.LotID == lotID })
}

func (r *linkRepository) findActive(match func(livestock.PenLotLink) bool) ([]livestock.PenLotLink, error) {
	var links []livestock.PenLotLink
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.links {
			if stored.IsActive() && match(stored) {
				links = append(links, cloneLink(stored))
			}
		}
		return nil
	})
	sort.Slice(links, func(i, j int) bool {
		if !links[i].AllocatedAt.Equal(links[j].AllocatedAt) {
			return links[i].AllocatedAt.Before(links[j].AllocatedAt)
		}
		return links[i].ID.String() < links[j].ID.String()
	})
	return links, err
}

func (r *linkRepository) Save(_ context.Context, link *livestock.PenLotLink) error {
	return r.acc.view(func(d *dataset) error {
		d.links[link.ID] = cloneLink(*link)
		return nil
	})
}

type lossRepository struct {
	acc accessor
}

func (r *lossRepository) Save(_ context.Context, loss *livestock.NonCashLossEvent) error {
	return r.acc.view(func(d *dataset) error {
		d.losses[loss.ID] = *loss
		return nil
	})
}

func (r *lossRepository) FindByLotsInPeriod(_ context.Context, lotIDs []uuid.UUID, period valueobject.Period) ([]livestock.NonCashLossEvent, error) {
	var losses []livestock.NonCashLossEvent
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.losses {
			if slices.Contains(lotIDs, stored.LotID) && period.Contains(stored.Date) {
				losses = append(losses, stored)
			}
		}
		return nil
	})
	sort.Slice(losses, func(i, j int) bool {
		if !losses[i].Date.Equal(losses[j].Date) {
			return losses[i].Date.Before(losses[j].Date)
		}
		return losses[i].ID.String() < losses[j].ID.String()
	})
	return losses, err
}

var (
	_ livestock.LotRepository         = (*lotRepository)(nil)
	_ livestock.PenRepository         = (*penRepository)(nil)
	_ livestock.PenLotLinkRepository  = (*linkRepository)(nil)
	_ livestock.NonCashLossRepository = (*lossRepository)(nil)
)
