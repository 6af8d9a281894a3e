package persistence

import (
	"context"
	"errors"

	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/feedlot/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStatementRepository implements StatementRepository using GORM
type GormStatementRepository struct {
	db *gorm.DB
}

// NewGormStatementRepository creates a new GormStatementRepository
func NewGormStatementRepository(db *gorm.DB) *GormStatementRepository {
	return &GormStatementRepository{db: db}
}

// FindByID finds a statement entry by its ID
func (r *GormStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BankStatementEntry, error) {
	var model models.BankStatementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnreconciled returns unreconciled entries ordered by date
func (r *GormStatementRepository) FindUnreconciled(ctx context.Context, bankAccountRef string) ([]finance.BankStatementEntry, error) {
	query := r.db.WithContext(ctx).Where("reconciled = ?", false)
	if bankAccountRef != "" {
		query = query.Where("bank_account_ref = ?", bankAccountRef)
	}
	var rows []models.BankStatementModel
	if err := query.Order("statement_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]finance.BankStatementEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// Save creates or updates a statement entry
func (r *GormStatementRepository) Save(ctx context.Context, entry *finance.BankStatementEntry) error {
	return r.db.WithContext(ctx).Save(models.BankStatementModelFromDomain(entry)).Error
}

// GormFinancialAccountRepository implements FinancialAccountRepository using GORM
type GormFinancialAccountRepository struct {
	db *gorm.DB
}

// NewGormFinancialAccountRepository creates a new GormFinancialAccountRepository
func NewGormFinancialAccountRepository(db *gorm.DB) *GormFinancialAccountRepository {
	return &GormFinancialAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormFinancialAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.FinancialAccount, error) {
	var model models.FinancialAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpen returns pending accounts of a direction ordered by due date
func (r *GormFinancialAccountRepository) FindOpen(ctx context.Context, direction finance.AccountDirection) ([]finance.FinancialAccount, error) {
	var rows []models.FinancialAccountModel
	if err := r.db.WithContext(ctx).
		Where("direction = ? AND status = ?", string(direction), string(finance.AccountStatusPending)).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return accountsToDomain(rows), nil
}

// FindPaidInPeriod returns paid accounts of a category whose payment date is in the period
func (r *GormFinancialAccountRepository) FindPaidInPeriod(ctx context.Context, category finance.AccountCategory, period valueobject.Period) ([]finance.FinancialAccount, error) {
	var rows []models.FinancialAccountModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND status = ?", string(category), string(finance.AccountStatusPaid)).
		Where("payment_date >= ? AND payment_date < ?", period.Start, period.End.AddDate(0, 0, 1)).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return accountsToDomain(rows), nil
}

// Save inserts a new account or updates it with optimistic locking.
// An update must carry the stored version + 1.
func (r *GormFinancialAccountRepository) Save(ctx context.Context, account *finance.FinancialAccount) error {
	db := r.db.WithContext(ctx)
	model := models.FinancialAccountModelFromDomain(account)

	result := db.Model(&models.FinancialAccountModel{}).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]interface{}{
			"direction":      model.Direction,
			"description":    model.Description,
			"amount":         model.Amount,
			"due_date":       model.DueDate,
			"status":         model.Status,
			"category":       model.Category,
			"lot_id":         model.LotID,
			"payment_date":   model.PaymentDate,
			"payment_method": model.PaymentMethod,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.FinancialAccountModel{}).Where("id = ?", account.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	return db.Create(model).Error
}

func accountsToDomain(rows []models.FinancialAccountModel) []finance.FinancialAccount {
	accounts := make([]finance.FinancialAccount, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts
}

// GormReconciliationRecordRepository implements ReconciliationRecordRepository using GORM
type GormReconciliationRecordRepository struct {
	db *gorm.DB
}

// NewGormReconciliationRecordRepository creates a new GormReconciliationRecordRepository
func NewGormReconciliationRecordRepository(db *gorm.DB) *GormReconciliationRecordRepository {
	return &GormReconciliationRecordRepository{db: db}
}

// FindByID finds a record by its ID
func (r *GormReconciliationRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ReconciliationRecord, error) {
	var model models.ReconciliationRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLiveByStatement returns the non-superseded record of a statement
func (r *GormReconciliationRecordRepository) FindLiveByStatement(ctx context.Context, statementID uuid.UUID) (*finance.ReconciliationRecord, error) {
	var model models.ReconciliationRecordModel
	if err := r.db.WithContext(ctx).
		Where("statement_id = ? AND superseded = ?", statementID, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a record
func (r *GormReconciliationRecordRepository) Save(ctx context.Context, record *finance.ReconciliationRecord) error {
	return r.db.WithContext(ctx).Save(models.ReconciliationRecordModelFromDomain(record)).Error
}

// Ensure repositories implement their domain interfaces
var (
	_ finance.StatementRepository            = (*GormStatementRepository)(nil)
	_ finance.FinancialAccountRepository     = (*GormFinancialAccountRepository)(nil)
	_ finance.ReconciliationRecordRepository = (*GormReconciliationRecordRepository)(nil)
)
