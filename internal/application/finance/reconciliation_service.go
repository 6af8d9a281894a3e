package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatementLockKey is the locker key serializing commits on one statement
func StatementLockKey(id uuid.UUID) string {
	return "statement:" + id.String()
}

// AccountLockKey is the locker key serializing settlement of one account.
// It is always taken after the statement key.
func AccountLockKey(id uuid.UUID) string {
	return "account:" + id.String()
}

const manualMatchReason = "Manual reconciliation"

// DefaultBatchConcurrency bounds the statements a batch run reconciles at once
const DefaultBatchConcurrency = 4

// ReconciliationService matches bank statement entries to open accounts
type ReconciliationService struct {
	scope       TransactionScope
	matcher     *finance.Matcher
	locker      shared.Locker
	publisher   shared.EventPublisher
	clock       shared.Clock
	concurrency int
	logger      *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService. A
// non-positive batchConcurrency uses DefaultBatchConcurrency.
func NewReconciliationService(
	scope TransactionScope,
	matcher *finance.Matcher,
	locker shared.Locker,
	publisher shared.EventPublisher,
	clock shared.Clock,
	batchConcurrency int,
	logger *zap.Logger,
) *ReconciliationService {
	if batchConcurrency <= 0 {
		batchConcurrency = DefaultBatchConcurrency
	}
	return &ReconciliationService{
		scope:       scope,
		matcher:     matcher,
		locker:      locker,
		publisher:   publisher,
		clock:       clock,
		concurrency: batchConcurrency,
		logger:      logger.Named("reconciliation"),
	}
}

// ImportStatements stores parsed bank movements as unreconciled entries
func (s *ReconciliationService) ImportStatements(ctx context.Context, reqs []ImportStatementRequest) ([]finance.BankStatementEntry, error) {
	entries := make([]finance.BankStatementEntry, 0, len(reqs))
	for i, req := range reqs {
		e, err := finance.NewBankStatementEntry(req.Date, req.Description,
			valueobject.NewMoneyBRL(req.Amount), finance.Direction(req.Direction), req.BankAccountRef)
		if err != nil {
			return nil, shared.ErrInvalidInput.WithMessagef("entry %d: %s", i, err.Error())
		}
		entries = append(entries, *e)
	}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for i := range entries {
			if err := repos.StatementRepo().Save(ctx, &entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Statements imported", zap.Int("count", len(entries)))
	return entries, nil
}

// CreateAccount registers a pending receivable or payable
func (s *ReconciliationService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*finance.FinancialAccount, error) {
	account, err := finance.NewFinancialAccount(finance.AccountDirection(req.Direction), req.Description,
		valueobject.NewMoneyBRL(req.Amount), req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.Category != "" {
		account.Category = finance.AccountCategory(req.Category)
	}
	account.LotID = req.LotID
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.AccountRepo().Save(ctx, account)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("Financial account created",
		zap.String("account_id", account.ID.String()),
		zap.String("direction", string(account.Direction)),
		zap.String("amount", account.Amount.String()))
	return account, nil
}

// FindCandidates scores the open accounts a statement entry could settle
func (s *ReconciliationService) FindCandidates(ctx context.Context, statementID uuid.UUID) (*CandidatesResponse, error) {
	var resp *CandidatesResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.StatementRepo().FindByID(ctx, statementID)
		if err != nil {
			return err
		}
		if entry.Reconciled {
			return shared.ErrAlreadyReconciled
		}
		accounts, err := repos.AccountRepo().FindOpen(ctx, entry.Direction.Matches())
		if err != nil {
			return err
		}
		resp = &CandidatesResponse{
			Statement:  *entry,
			Candidates: s.matcher.FindCandidates(*entry, accounts),
		}
		if len(resp.Candidates) > 0 {
			resp.Proposed = &resp.Candidates[0]
		}
		return nil
	})
	return resp, err
}

// Commit reconciles a statement against a user-confirmed account, or
// manually when no account is given
func (s *ReconciliationService) Commit(ctx context.Context, statementID uuid.UUID, req CommitRequest) (*finance.ReconciliationRecord, error) {
	unlock, err := s.locker.Lock(ctx, StatementLockKey(statementID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock statement: %w", err)
	}
	defer unlock()

	record, err := s.commitLocked(ctx, statementID, req.AccountID,
		func(entry *finance.BankStatementEntry, account *finance.FinancialAccount) finance.CommitInput {
			in := finance.CommitInput{Notes: req.Notes, CreatedBy: req.CreatedBy}
			if account == nil {
				in.MatchReason = manualMatchReason
				return in
			}
			b := s.matcher.Scorer().Score(*entry, *account)
			in.Confidence = b.Total
			in.MatchReason = b.Reason()
			return in
		})
	if err != nil {
		s.logger.Warn("Reconciliation rejected",
			zap.String("statement_id", statementID.String()),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

// commitLocked runs one commit; the caller holds the statement lock
func (s *ReconciliationService) commitLocked(
	ctx context.Context,
	statementID uuid.UUID,
	accountID *uuid.UUID,
	input func(*finance.BankStatementEntry, *finance.FinancialAccount) finance.CommitInput,
) (*finance.ReconciliationRecord, error) {
	if accountID != nil {
		unlock, err := s.locker.Lock(ctx, AccountLockKey(*accountID))
		if err != nil {
			return nil, fmt.Errorf("failed to lock account: %w", err)
		}
		defer unlock()
	}

	var record *finance.ReconciliationRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.StatementRepo().FindByID(ctx, statementID)
		if err != nil {
			return err
		}
		var account *finance.FinancialAccount
		if accountID != nil {
			account, err = repos.AccountRepo().FindByID(ctx, *accountID)
			if err != nil {
				return err
			}
		}
		record, err = s.matcher.Commit(entry, account, input(entry, account), s.clock.Now())
		if err != nil {
			return err
		}
		if err := repos.StatementRepo().Save(ctx, entry); err != nil {
			return err
		}
		if account != nil {
			if err := repos.AccountRepo().Save(ctx, account); err != nil {
				return err
			}
		}
		return repos.ReconciliationRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Statement reconciled",
		zap.String("statement_id", statementID.String()),
		zap.String("account_id", record.AccountID),
		zap.String("status", string(record.Status)),
		zap.String("difference", record.Difference.String()),
		zap.Int("confidence", record.Confidence),
		zap.Bool("auto_matched", record.AutoMatched))
	s.publish(ctx, finance.NewStatementReconciledEvent(record))
	return record, nil
}

// Undo supersedes a live record and reopens both sides
func (s *ReconciliationService) Undo(ctx context.Context, recordID uuid.UUID) (*finance.ReconciliationRecord, error) {
	var found *finance.ReconciliationRecord
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		found, err = repos.ReconciliationRepo().FindByID(ctx, recordID)
		return err
	}); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, StatementLockKey(found.StatementID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock statement: %w", err)
	}
	defer unlock()

	var accountID *uuid.UUID
	if !found.IsManual() {
		id, err := uuid.Parse(found.AccountID)
		if err != nil {
			return nil, fmt.Errorf("record %s has a malformed account id: %w", found.ID, err)
		}
		accountID = &id
		unlockAccount, err := s.locker.Lock(ctx, AccountLockKey(id))
		if err != nil {
			return nil, fmt.Errorf("failed to lock account: %w", err)
		}
		defer unlockAccount()
	}

	var record *finance.ReconciliationRecord
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.ReconciliationRepo().FindByID(ctx, recordID)
		if err != nil {
			return err
		}
		entry, err := repos.StatementRepo().FindByID(ctx, record.StatementID)
		if err != nil {
			return err
		}
		var account *finance.FinancialAccount
		if accountID != nil {
			account, err = repos.AccountRepo().FindByID(ctx, *accountID)
			if err != nil {
				return err
			}
		}
		if err := s.matcher.Undo(entry, account, record, s.clock.Now()); err != nil {
			return err
		}
		if err := repos.StatementRepo().Save(ctx, entry); err != nil {
			return err
		}
		if account != nil {
			if err := repos.AccountRepo().Save(ctx, account); err != nil {
				return err
			}
		}
		return repos.ReconciliationRepo().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reconciliation undone",
		zap.String("record_id", record.ID.String()),
		zap.String("statement_id", record.StatementID.String()))
	s.publish(ctx, finance.NewReconciliationUndoneEvent(record))
	return record, nil
}

type batchOutcome int

const (
	outcomeAutoReconciled batchOutcome = iota
	outcomeNeedsReview
	outcomeNoCandidate
)

// RunBatch proposes a match for every unreconciled statement and commits
// those above the auto-accept score. A failing statement never stops the
// run. Cancelling ctx stops scheduling new statements; those already
// started run to completion.
func (s *ReconciliationService) RunBatch(ctx context.Context, req BatchRequest) (*BatchSummary, error) {
	var entries []finance.BankStatementEntry
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entries, err = repos.StatementRepo().FindUnreconciled(ctx, req.BankAccountRef)
		return err
	}); err != nil {
		return nil, err
	}

	summary := &BatchSummary{}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	work := context.WithoutCancel(ctx)

	for i := range entries {
		if ctx.Err() != nil {
			mu.Lock()
			summary.Skipped += len(entries) - i
			summary.Cancelled = true
			mu.Unlock()
			break
		}
		id := entries[i].ID
		g.Go(func() error {
			outcome, err := s.reconcileOne(work, id)

			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			if err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, batchError(id, err))
				return nil
			}
			switch outcome {
			case outcomeAutoReconciled:
				summary.AutoReconciled++
			case outcomeNeedsReview:
				summary.NeedsReview++
			case outcomeNoCandidate:
				summary.NoCandidate++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Batch reconciliation finished",
		zap.String("bank_account_ref", req.BankAccountRef),
		zap.Int("processed", summary.Processed),
		zap.Int("auto_reconciled", summary.AutoReconciled),
		zap.Int("needs_review", summary.NeedsReview),
		zap.Int("no_candidate", summary.NoCandidate),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("cancelled", summary.Cancelled))
	return summary, nil
}

// reconcileOne proposes and auto-commits one statement. When another
// statement takes the proposed account first, the match is proposed again
// once; losing that second race leaves the statement for review.
func (s *ReconciliationService) reconcileOne(ctx context.Context, statementID uuid.UUID) (batchOutcome, error) {
	unlock, err := s.locker.Lock(ctx, StatementLockKey(statementID))
	if err != nil {
		return 0, fmt.Errorf("failed to lock statement: %w", err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		best, err := s.propose(ctx, statementID)
		if err != nil {
			return 0, err
		}
		if best == nil {
			return outcomeNoCandidate, nil
		}
		if !best.AutoAccept {
			return outcomeNeedsReview, nil
		}

		err = s.autoCommit(ctx, statementID, best)
		switch {
		case err == nil:
			return outcomeAutoReconciled, nil
		case !accountTaken(err):
			return 0, err
		case attempt > 1:
			s.logger.Info("Proposed accounts were taken by other statements, leaving for review",
				zap.String("statement_id", statementID.String()),
				zap.String("account_id", best.Account.ID.String()))
			return outcomeNeedsReview, nil
		}
	}
}

// propose returns the best open match of a statement, nil when none scores
func (s *ReconciliationService) propose(ctx context.Context, statementID uuid.UUID) (*finance.ScoredMatch, error) {
	var best *finance.ScoredMatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.StatementRepo().FindByID(ctx, statementID)
		if err != nil {
			return err
		}
		if entry.Reconciled {
			return shared.ErrAlreadyReconciled
		}
		accounts, err := repos.AccountRepo().FindOpen(ctx, entry.Direction.Matches())
		if err != nil {
			return err
		}
		best = s.matcher.Propose(*entry, accounts)
		return nil
	})
	return best, err
}

func (s *ReconciliationService) autoCommit(ctx context.Context, statementID uuid.UUID, best *finance.ScoredMatch) error {
	accountID := best.Account.ID
	_, err := s.commitLocked(ctx, statementID, &accountID,
		func(*finance.BankStatementEntry, *finance.FinancialAccount) finance.CommitInput {
			return finance.CommitInput{
				Confidence:  best.Score,
				MatchReason: best.MatchReason,
				CreatedBy:   finance.SystemUser,
				AutoMatched: true,
			}
		})
	return err
}

// accountTaken reports whether a commit lost its account to another commit
// between proposal and commit
func accountTaken(err error) bool {
	return errors.Is(err, shared.ErrInvalidState) || errors.Is(err, shared.ErrConcurrencyConflict)
}

func batchError(id uuid.UUID, err error) BatchError {
	be := BatchError{StatementID: id, Code: "INTERNAL_ERROR", Message: err.Error()}
	var de *shared.DomainError
	if errors.As(err, &de) {
		be.Code = de.Code
	}
	return be
}

func (s *ReconciliationService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish events", zap.Error(err))
	}
}
