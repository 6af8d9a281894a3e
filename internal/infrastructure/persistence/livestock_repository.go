package persistence

import (
	"context"
	"errors"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/feedlot/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*livestock.Lot, error) {
	var model models.LotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the lots that exist among ids, in the order given
func (r *GormLotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*livestock.Lot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.LotModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.LotModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	lots := make([]*livestock.Lot, 0, len(rows))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			lots = append(lots, m.ToDomain())
			delete(byID, id)
		}
	}
	return lots, nil
}

// FindByStatuses returns lots in any of the statuses ordered by entry date
func (r *GormLotRepository) FindByStatuses(ctx context.Context, statuses ...livestock.LotStatus) ([]*livestock.Lot, error) {
	query := r.db.WithContext(ctx).Model(&models.LotModel{})
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = query.Where("status IN ?", values)
	}
	var rows []models.LotModel
	if err := query.Order("entry_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lots := make([]*livestock.Lot, len(rows))
	for i := range rows {
		lots[i] = rows[i].ToDomain()
	}
	return lots, nil
}

// Save inserts a lot that was never stored, otherwise updates it only while
// the row still holds the version the lot was loaded at
func (r *GormLotRepository) Save(ctx context.Context, lot *livestock.Lot) error {
	db := r.db.WithContext(ctx)
	model := models.LotModelFromDomain(lot)
	if lot.StoredVersion() == 0 {
		if err := db.Create(model).Error; err != nil {
			return err
		}
		lot.MarkStored()
		return nil
	}

	result := db.Model(model).
		Where("version = ?", lot.StoredVersion()).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	lot.MarkStored()
	return nil
}

// GormPenRepository implements PenRepository using GORM
type GormPenRepository struct {
	db *gorm.DB
}

// NewGormPenRepository creates a new GormPenRepository
func NewGormPenRepository(db *gorm.DB) *GormPenRepository {
	return &GormPenRepository{db: db}
}

// FindByID finds a pen by its ID
func (r *GormPenRepository) FindByID(ctx context.Context, id uuid.UUID) (*livestock.Pen, error) {
	var model models.PenModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a pen
func (r *GormPenRepository) Save(ctx context.Context, pen *livestock.Pen) error {
	return r.db.WithContext(ctx).Save(models.PenModelFromDomain(pen)).Error
}

// GormPenLotLinkRepository implements PenLotLinkRepository using GORM
type GormPenLotLinkRepository struct {
	db *gorm.DB
}

// NewGormPenLotLinkRepository creates a new GormPenLotLinkRepository
func NewGormPenLotLinkRepository(db *gorm.DB) *GormPenLotLinkRepository {
	return &GormPenLotLinkRepository{db: db}
}

// FindByID finds a link by its ID
func (r *GormPenLotLinkRepository) FindByID(ctx context.Context, id uuid.UUID) (*livestock.PenLotLink, error) {
	var model models.PenLotLinkModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByPen returns active links of a pen ordered by allocation date
func (r *GormPenLotLinkRepository) FindActiveByPen(ctx context.Context, penID uuid.UUID) ([]livestock.PenLotLink, error) {
	return r.findActive(ctx, "pen_id = ?", penID)
}

// FindActiveByLot returns active links of a lot ordered by allocation date
func (r *GormPenLotLinkRepository) FindActiveByLot(ctx context.Context, lotID uuid.UUID) ([]livestock.PenLotLink, error) {
	return r.findActive(ctx, "lot_id = ?", lotID)
}

func (r *GormPenLotLinkRepository) findActive(ctx context.Context, cond string, id uuid.UUID) ([]livestock.PenLotLink, error) {
	var rows []models.PenLotLinkModel
	if err := r.db.WithContext(ctx).
		Where(cond, id).
		Where("status = ?", string(livestock.LinkStatusActive)).
		Order("allocated_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	links := make([]livestock.PenLotLink, len(rows))
	for i := range rows {
		links[i] = *rows[i].ToDomain()
	}
	return links, nil
}

// Save creates or updates a link
func (r *GormPenLotLinkRepository) Save(ctx context.Context, link *livestock.PenLotLink) error {
	return r.db.WithContext(ctx).Save(models.PenLotLinkModelFromDomain(link)).Error
}

// GormNonCashLossRepository implements NonCashLossRepository using GORM
type GormNonCashLossRepository struct {
	db *gorm.DB
}

// NewGormNonCashLossRepository creates a new GormNonCashLossRepository
func NewGormNonCashLossRepository(db *gorm.DB) *GormNonCashLossRepository {
	return &GormNonCashLossRepository{db: db}
}

// Save stores a loss event
func (r *GormNonCashLossRepository) Save(ctx context.Context, loss *livestock.NonCashLossEvent) error {
	return r.db.WithContext(ctx).Save(models.NonCashLossModelFromDomain(loss)).Error
}

// FindByLotsInPeriod returns losses of the given lots dated within the period
func (r *GormNonCashLossRepository) FindByLotsInPeriod(ctx context.Context, lotIDs []uuid.UUID, period valueobject.Period) ([]livestock.NonCashLossEvent, error) {
	if len(lotIDs) == 0 {
		return nil, nil
	}
	var rows []models.NonCashLossModel
	if err := r.db.WithContext(ctx).
		Where("lot_id IN ?", lotIDs).
		Where("loss_date >= ? AND loss_date < ?", period.Start, period.End.AddDate(0, 0, 1)).
		Order("loss_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	losses := make([]livestock.NonCashLossEvent, len(rows))
	for i := range rows {
		losses[i] = rows[i].ToDomain()
	}
	return losses, nil
}

// Ensure repositories implement their domain interfaces
var (
	_ livestock.LotRepository         = (*GormLotRepository)(nil)
	_ livestock.PenRepository         = (*GormPenRepository)(nil)
	_ livestock.PenLotLinkRepository  = (*GormPenLotLinkRepository)(nil)
	_ livestock.NonCashLossRepository = (*GormNonCashLossRepository)(nil)
)
