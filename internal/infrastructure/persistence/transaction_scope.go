package persistence

import (
	"context"

	appcosting "github.com/feedlot/backend/internal/application/costing"
	appfinance "github.com/feedlot/backend/internal/application/finance"
	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/livestock"
	"gorm.io/gorm"
)

// GormCostingTransactionScope implements the costing TransactionScope using GORM transactions.
// Lot ledgers, pen occupancy, links and allocation records commit together.
type GormCostingTransactionScope struct {
	db *gorm.DB
}

// NewGormCostingTransactionScope creates a new GormCostingTransactionScope.
func NewGormCostingTransactionScope(db *gorm.DB) *GormCostingTransactionScope {
	return &GormCostingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormCostingTransactionScope) Execute(ctx context.Context, fn func(repos appcosting.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCostingRepositories{tx: tx})
	})
}

// gormCostingRepositories provides access to the costing repositories within a transaction.
type gormCostingRepositories struct {
	tx *gorm.DB
}

func (r *gormCostingRepositories) LotRepo() livestock.LotRepository {
	return NewGormLotRepository(r.tx)
}

func (r *gormCostingRepositories) PenRepo() livestock.PenRepository {
	return NewGormPenRepository(r.tx)
}

func (r *gormCostingRepositories) LinkRepo() livestock.PenLotLinkRepository {
	return NewGormPenLotLinkRepository(r.tx)
}

func (r *gormCostingRepositories) LossRepo() livestock.NonCashLossRepository {
	return NewGormNonCashLossRepository(r.tx)
}

func (r *gormCostingRepositories) RecordRepo() costing.AllocationRecordRepository {
	return NewGormAllocationRecordRepository(r.tx)
}

func (r *gormCostingRepositories) IndirectRepo() costing.IndirectAllocationRepository {
	return NewGormIndirectAllocationRepository(r.tx)
}

// GormFinanceTransactionScope implements the finance TransactionScope using GORM transactions.
// A reconciliation commit writes the statement, the account and the record together.
type GormFinanceTransactionScope struct {
	db *gorm.DB
}

// NewGormFinanceTransactionScope creates a new GormFinanceTransactionScope.
func NewGormFinanceTransactionScope(db *gorm.DB) *GormFinanceTransactionScope {
	return &GormFinanceTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormFinanceTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormFinanceRepositories{tx: tx})
	})
}

type gormFinanceRepositories struct {
	tx *gorm.DB
}

func (r *gormFinanceRepositories) StatementRepo() finance.StatementRepository {
	return NewGormStatementRepository(r.tx)
}

func (r *gormFinanceRepositories) AccountRepo() finance.FinancialAccountRepository {
	return NewGormFinancialAccountRepository(r.tx)
}

func (r *gormFinanceRepositories) ReconciliationRepo() finance.ReconciliationRecordRepository {
	return NewGormReconciliationRecordRepository(r.tx)
}

// Ensure the scopes implement their application interfaces
var (
	_ appcosting.TransactionScope          = (*GormCostingTransactionScope)(nil)
	_ appcosting.TransactionalRepositories = (*gormCostingRepositories)(nil)
	_ appfinance.TransactionScope          = (*GormFinanceTransactionScope)(nil)
	_ appfinance.TransactionalRepositories = (*gormFinanceRepositories)(nil)
)
