// Package memory keeps every aggregate in process memory. Transactions run
// one at a time against a snapshot that replaces the live data on commit,
// so a failed posting leaves nothing behind.
package memory

import (
	"context"
	"sync"

	appcosting "github.com/feedlot/backend/internal/application/costing"
	appfinance "github.com/feedlot/backend/internal/application/finance"
	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/report"
	"github.com/google/uuid"
)

type dataset struct {
	lots            map[uuid.UUID]livestock.Lot
	pens            map[uuid.UUID]livestock.Pen
	links           map[uuid.UUID]livestock.PenLotLink
	losses          map[uuid.UUID]livestock.NonCashLossEvent
	records         map[uuid.UUID]costing.CostAllocationRecord
	indirect        map[uuid.UUID]costing.IndirectCostAllocation
	statements      map[uuid.UUID]finance.BankStatementEntry
	accounts        map[uuid.UUID]finance.FinancialAccount
	reconciliations map[uuid.UUID]finance.ReconciliationRecord
	incomes         map[uuid.UUID]report.IncomeStatement
}

func newDataset() *dataset {
	return &dataset{
		lots:            make(map[uuid.UUID]livestock.Lot),
		pens:            make(map[uuid.UUID]livestock.Pen),
		links:           make(map[uuid.UUID]livestock.PenLotLink),
		losses:          make(map[uuid.UUID]livestock.NonCashLossEvent),
		records:         make(map[uuid.UUID]costing.CostAllocationRecord),
		indirect:        make(map[uuid.UUID]costing.IndirectCostAllocation),
		statements:      make(map[uuid.UUID]finance.BankStatementEntry),
		accounts:        make(map[uuid.UUID]finance.FinancialAccount),
		reconciliations: make(map[uuid.UUID]finance.ReconciliationRecord),
		incomes:         make(map[uuid.UUID]report.IncomeStatement),
	}
}

// snapshot copies the maps. Stored values are never mutated in place,
// so copying the map headers is enough.
func (d *dataset) snapshot() *dataset {
	return &dataset{
		lots:            copyMap(d.lots),
		pens:            copyMap(d.pens),
		links:           copyMap(d.links),
		losses:          copyMap(d.losses),
		records:         copyMap(d.records),
		indirect:        copyMap(d.indirect),
		statements:      copyMap(d.statements),
		accounts:        copyMap(d.accounts),
		reconciliations: copyMap(d.reconciliations),
		incomes:         copyMap(d.incomes),
	}
}

func copyMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// accessor hands a dataset to a repository operation
type accessor interface {
	view(fn func(d *dataset) error) error
}

// txAccessor is bound to one transaction snapshot; the store mutex is
// already held by Execute.
type txAccessor struct {
	d *dataset
}

func (a txAccessor) view(fn func(d *dataset) error) error {
	return fn(a.d)
}

// storeAccessor serves the non-transactional repositories
type storeAccessor struct {
	s *Store
}

func (a storeAccessor) view(fn func(d *dataset) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.data)
}

// Store is the in-memory persistence backend. Non-transactional
// repositories must not be used from inside Execute.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) execute(ctx context.Context, fn func(tx *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.snapshot()
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx
	return nil
}

// CostingScope returns the transaction scope of the costing services
func (s *Store) CostingScope() appcosting.TransactionScope {
	return costingScope{s: s}
}

// FinanceScope returns the transaction scope of the reconciliation service
func (s *Store) FinanceScope() appfinance.TransactionScope {
	return financeScope{s: s}
}

// Lots returns a non-transactional lot repository
func (s *Store) Lots() livestock.LotRepository { return &lotRepository{acc: storeAccessor{s}} }

// Pens returns a non-transactional pen repository
func (s *Store) Pens() livestock.PenRepository { return &penRepository{acc: storeAccessor{s}} }

// Links returns a non-transactional pen-lot link repository
func (s *Store) Links() livestock.PenLotLinkRepository { return &linkRepository{acc: storeAccessor{s}} }

// Losses returns a non-transactional non-cash loss repository
func (s *Store) Losses() livestock.NonCashLossRepository {
	return &lossRepository{acc: storeAccessor{s}}
}

// Accounts returns a non-transactional financial account repository
func (s *Store) Accounts() finance.FinancialAccountRepository {
	return &accountRepository{acc: storeAccessor{s}}
}

// IncomeStatements returns the income statement repository
func (s *Store) IncomeStatements() report.IncomeStatementRepository {
	return &incomeStatementRepository{acc: storeAccessor{s}}
}

type costingScope struct {
	s *Store
}

func (c costingScope) Execute(ctx context.Context, fn func(repos appcosting.TransactionalRepositories) error) error {
	return c.s.execute(ctx, func(tx *dataset) error {
		return fn(costingRepos{acc: txAccessor{tx}})
	})
}

type costingRepos struct {
	acc accessor
}

func (r costingRepos) LotRepo() livestock.LotRepository { return &lotRepository{acc: r.acc} }
func (r costingRepos) PenRepo() livestock.PenRepository { return &penRepository{acc: r.acc} }
func (r costingRepos) LinkRepo() livestock.PenLotLinkRepository { return &linkRepository{acc: r.acc} }
func (r costingRepos) LossRepo() livestock.NonCashLossRepository { return &lossRepository{acc: r.acc} }
func (r costingRepos) RecordRepo() costing.AllocationRecordRepository {
	return &recordRepository{acc: r.acc}
}
func (r costingRepos) IndirectRepo() costing.IndirectAllocationRepository {
	return &indirectRepository{acc: r.acc}
}

type financeScope struct {
	s *Store
}

func (f financeScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return f.s.execute(ctx, func(tx *dataset) error {
		return fn(financeRepos{acc: txAccessor{tx}})
	})
}

type financeRepos struct {
	acc accessor
}

func (r financeRepos) StatementRepo() finance.StatementRepository {
	return &statementRepository{acc: r.acc}
}
func (r financeRepos) AccountRepo() finance.FinancialAccountRepository {
	return &accountRepository{acc: r.acc}
}
func (r financeRepos) ReconciliationRepo() finance.ReconciliationRecordRepository {
	return &reconciliationRepository{acc: r.acc}
}

var (
	_ appcosting.TransactionScope          = costingScope{}
	_ appcosting.TransactionalRepositories = costingRepos{}
	_ appfinance.TransactionScope          = financeScope{}
	_ appfinance.TransactionalRepositories = financeRepos{}
)
