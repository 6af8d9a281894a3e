package persistence

import (
	"context"
	"errors"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRecordRepository implements AllocationRecordRepository using GORM
type GormAllocationRecordRepository struct {
	db *gorm.DB
}

// NewGormAllocationRecordRepository creates a new GormAllocationRecordRepository
func NewGormAllocationRecordRepository(db *gorm.DB) *GormAllocationRecordRepository {
	return &GormAllocationRecordRepository{db: db}
}

// SaveAll stores every record of one origin in a single insert
func (r *GormAllocationRecordRepository) SaveAll(ctx context.Context, records []costing.CostAllocationRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]models.CostAllocationRecordModel, len(records))
	for i, rec := range records {
		rows[i] = models.CostAllocationRecordModelFromDomain(rec)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByOrigin returns the records posted for an origin
func (r *GormAllocationRecordRepository) FindByOrigin(ctx context.Context, originID uuid.UUID) ([]costing.CostAllocationRecord, error) {
	var rows []models.CostAllocationRecordModel
	if err := r.db.WithContext(ctx).
		Where("origin_id = ?", originID).
		Order("lot_id ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]costing.CostAllocationRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// ExistsForOrigin reports whether the origin has already been posted
func (r *GormAllocationRecordRepository) ExistsForOrigin(ctx context.Context, originID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CostAllocationRecordModel{}).
		Where("origin_id = ?", originID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormIndirectAllocationRepository implements IndirectAllocationRepository using GORM
type GormIndirectAllocationRepository struct {
	db *gorm.DB
}

// NewGormIndirectAllocationRepository creates a new GormIndirectAllocationRepository
func NewGormIndirectAllocationRepository(db *gorm.DB) *GormIndirectAllocationRepository {
	return &GormIndirectAllocationRepository{db: db}
}

// FindByID finds an allocation by its ID
func (r *GormIndirectAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.IndirectCostAllocation, error) {
	var model models.IndirectAllocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStatus returns allocations in a status, oldest first
func (r *GormIndirectAllocationRepository) FindByStatus(ctx context.Context, status costing.AllocationStatus) ([]costing.IndirectCostAllocation, error) {
	var rows []models.IndirectAllocationModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]costing.IndirectCostAllocation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an allocation
func (r *GormIndirectAllocationRepository) Save(ctx context.Context, a *costing.IndirectCostAllocation) error {
	return r.db.WithContext(ctx).Save(models.IndirectAllocationModelFromDomain(a)).Error
}

// Ensure repositories implement their domain interfaces
var (
	_ costing.AllocationRecordRepository   = (*GormAllocationRecordRepository)(nil)
	_ costing.IndirectAllocationRepository = (*GormIndirectAllocationRepository)(nil)
)
