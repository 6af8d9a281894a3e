package costing

import (
	"context"
	"errors"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
)

// conflictAttempts bounds how often a unit of work runs when another
// transaction keeps winning the write of a shared lot
const conflictAttempts = 3

// TransactionScope provides transactional access to costing repositories.
// All repository operations inside fn commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories scoped to one transaction.
//
// Lots are the only aggregate whose cost ledger is mutated here; records
// and indirect allocations are written alongside so a failed posting
// leaves no partial state behind.
type TransactionalRepositories interface {
	LotRepo() livestock.LotRepository
	PenRepo() livestock.PenRepository
	LinkRepo() livestock.PenLotLinkRepository
	LossRepo() livestock.NonCashLossRepository
	RecordRepo() costing.AllocationRecordRepository
	IndirectRepo() costing.IndirectAllocationRepository
}

// executeRetrying runs fn in scope and reruns it from a fresh read while it
// fails with a concurrency conflict. fn must reset whatever it captures.
func executeRetrying(ctx context.Context, scope TransactionScope, fn func(repos TransactionalRepositories) error) error {
	var err error
	for attempt := 0; attempt < conflictAttempts; attempt++ {
		err = scope.Execute(ctx, fn)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}
