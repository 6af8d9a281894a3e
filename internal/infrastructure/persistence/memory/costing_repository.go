package memory

import (
	"context"
	"sort"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type recordRepository struct {
	acc accessor
}

func (r *recordRepository) SaveAll(_ context.Context, records []costing.CostAllocationRecord) error {
	return r.acc.view(func(d *dataset) error {
		for _, rec := range records {
			d.records[rec.ID] = rec
		}
		return nil
	})
}

func (r *recordRepository) FindByOrigin(_ context.Context, originID uuid.UUID) ([]costing.CostAllocationRecord, error) {
	var records []costing.CostAllocationRecord
	err := r.acc.view(func(d *dataset) error {
		for _, rec := range d.records {
			if rec.OriginID == originID {
				records = append(records, rec)
			}
		}
		return nil
	})
	sort.Slice(records, func(i, j int) bool {
		return records[i].LotID.String() < records[j].LotID.String()
	})
	return records, err
}

func (r *recordRepository) ExistsForOrigin(_ context.Context, originID uuid.UUID) (bool, error) {
	var exists bool
	err := r.acc.view(func(d *dataset) error {
		for _, rec := range d.records {
			if rec.OriginID == originID {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

type indirectRepository struct {
	acc accessor
}

func (r *indirectRepository) FindByID(_ context.Context, id uuid.UUID) (*costing.IndirectCostAllocation, error) {
	var a costing.IndirectCostAllocation
	err := r.acc.view(func(d *dataset) error {
		stored, ok := d.indirect[id]
		if !ok {
			return shared.ErrNotFound
		}
		a = cloneIndirect(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *indirectRepository) FindByStatus(_ context.Context, status costing.AllocationStatus) ([]costing.IndirectCostAllocation, error) {
	var out []costing.IndirectCostAllocation
	err := r.acc.view(func(d *dataset) error {
		for _, stored := range d.indirect {
			if stored.Status == status {
				out = append(out, cloneIndirect(stored))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (r *indirectRepository) Save(_ context.Context, a *costing.IndirectCostAllocation) error {
	return r.acc.view(func(d *dataset) error {
		d.indirect[a.ID] = cloneIndirect(*a)
		return nil
	})
}

var (
	_ costing.AllocationRecordRepository   = (*recordRepository)(nil)
	_ costing.IndirectAllocationRepository = (*indirectRepository)(nil)
)
