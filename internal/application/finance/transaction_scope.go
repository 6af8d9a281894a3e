package finance

import (
	"context"

	"github.com/feedlot/backend/internal/domain/finance"
)

// TransactionScope provides transactional access to finance repositories
type TransactionScope interface {
	// Execute runs fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories scoped to one transaction.
// A commit writes the entry, the account and the record together.
type TransactionalRepositories interface {
	StatementRepo() finance.StatementRepository
	AccountRepo() finance.FinancialAccountRepository
	ReconciliationRepo() finance.ReconciliationRecordRepository
}
