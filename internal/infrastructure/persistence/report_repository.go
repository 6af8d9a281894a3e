package persistence

import (
	"context"
	"errors"

	"github.com/feedlot/backend/internal/domain/report"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormIncomeStatementRepository implements IncomeStatementRepository using GORM
type GormIncomeStatementRepository struct {
	db *gorm.DB
}

// NewGormIncomeStatementRepository creates a new GormIncomeStatementRepository
func NewGormIncomeStatementRepository(db *gorm.DB) *GormIncomeStatementRepository {
	return &GormIncomeStatementRepository{db: db}
}

// FindByID finds a saved statement by its ID
func (r *GormIncomeStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.IncomeStatement, error) {
	var model models.IncomeStatementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create stores a statement once. Saved statements are never updated.
func (r *GormIncomeStatementRepository) Create(ctx context.Context, stmt *report.IncomeStatement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.IncomeStatementModel{}).Where("id = ?", stmt.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrAlreadyExists
		}
		if err := tx.Create(models.IncomeStatementModelFromDomain(stmt)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

var _ report.IncomeStatementRepository = (*GormIncomeStatementRepository)(nil)
