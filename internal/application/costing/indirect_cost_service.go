package costing

import (
	"context"
	"fmt"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IndirectLockKey is the locker key serializing transitions of one allocation
func IndirectLockKey(id uuid.UUID) string {
	return "indirect:" + id.String()
}

// IndirectCostService runs the draft, approve, apply lifecycle of indirect
// cost allocations
type IndirectCostService struct {
	scope     TransactionScope
	engine    *costing.RateioEngine
	locker    shared.Locker
	publisher shared.EventPublisher
	clock     shared.Clock
	logger    *zap.Logger
}

// NewIndirectCostService creates a new IndirectCostService
func NewIndirectCostService(
	scope TransactionScope,
	engine *costing.RateioEngine,
	locker shared.Locker,
	publisher shared.EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *IndirectCostService {
	return &IndirectCostService{
		scope:     scope,
		engine:    engine,
		locker:    locker,
		publisher: publisher,
		clock:     clock,
		logger:    logger.Named("indirect_cost"),
	}
}

// Generate computes and stores a draft allocation. Nothing is stored when
// no lot qualifies or the basis totals zero.
func (s *IndirectCostService) Generate(ctx context.Context, req GenerateIndirectRequest) (*costing.IndirectCostAllocation, error) {
	period, err := valueobject.NewPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}
	params := costing.GenerationParams{
		CostType:            costing.IndirectCostType(req.CostType),
		Period:              period,
		TotalAmount:         req.TotalAmount,
		Method:              costing.AllocationMethod(req.Method),
		IncludeInactiveLots: req.IncludeInactiveLots,
		Description:         req.Description,
	}

	var allocation *costing.IndirectCostAllocation
	err = executeRetrying(ctx, s.scope, func(repos TransactionalRepositories) error {
		lots, err := repos.LotRepo().FindByStatuses(ctx)
		if err != nil {
			return err
		}
		allocation, err = s.engine.Generate(params, lots, s.clock.Now())
		if err != nil {
			return err
		}
		return repos.IndirectRepo().Save(ctx, allocation)
	})
	if err != nil {
		s.logger.Warn("Indirect allocation not generated",
			zap.String("cost_type", req.CostType),
			zap.String("method", req.Method),
			zap.String("amount", req.TotalAmount.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Indirect allocation generated",
		zap.String("allocation_id", allocation.ID.String()),
		zap.String("cost_type", req.CostType),
		zap.String("method", req.Method),
		zap.String("amount", allocation.TotalAmount.String()),
		zap.Int("lots", len(allocation.Lines)))
	s.publishPending(ctx, allocation)
	return allocation, nil
}

// Get returns an allocation by id
func (s *IndirectCostService) Get(ctx context.Context, id uuid.UUID) (*costing.IndirectCostAllocation, error) {
	var allocation *costing.IndirectCostAllocation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		allocation, err = repos.IndirectRepo().FindByID(ctx, id)
		return err
	})
	return allocation, err
}

// ListByStatus returns allocations in a status
func (s *IndirectCostService) ListByStatus(ctx context.Context, status costing.AllocationStatus) ([]costing.IndirectCostAllocation, error) {
	if !status.IsValid() {
		return nil, shared.Errorf("INVALID_STATUS", "Unknown allocation status %q", status)
	}
	var out []costing.IndirectCostAllocation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		out, err = repos.IndirectRepo().FindByStatus(ctx, status)
		return err
	})
	return out, err
}

// Approve moves a draft to approved
func (s *IndirectCostService) Approve(ctx context.Context, id uuid.UUID, req ApproveIndirectRequest) (*costing.IndirectCostAllocation, error) {
	return s.transition(ctx, id, "approve", func(repos TransactionalRepositories, a *costing.IndirectCostAllocation) error {
		return a.Approve(req.ApprovedBy, s.clock.Now())
	})
}

// Apply posts an approved allocation into the lot ledgers. Every line
// posts or none does.
func (s *IndirectCostService) Apply(ctx context.Context, id uuid.UUID) (*costing.IndirectCostAllocation, error) {
	return s.transition(ctx, id, "apply", func(repos TransactionalRepositories, a *costing.IndirectCostAllocation) error {
		if !a.Status.CanApply() {
			// fail before loading lots
			return a.ApplyTo(nil, s.clock.Now())
		}
		lots, err := repos.LotRepo().FindByIDs(ctx, a.LotIDs())
		if err != nil {
			return err
		}
		if err := a.ApplyTo(lots, s.clock.Now()); err != nil {
			return err
		}
		for _, lot := range lots {
			if err := repos.LotRepo().Save(ctx, lot); err != nil {
				return err
			}
		}
		return nil
	})
}

// Discard rejects a draft
func (s *IndirectCostService) Discard(ctx context.Context, id uuid.UUID, req DiscardIndirectRequest) (*costing.IndirectCostAllocation, error) {
	return s.transition(ctx, id, "discard", func(repos TransactionalRepositories, a *costing.IndirectCostAllocation) error {
		return a.Discard(req.Reason, s.clock.Now())
	})
}

func (s *IndirectCostService) transition(
	ctx context.Context,
	id uuid.UUID,
	action string,
	fn func(repos TransactionalRepositories, a *costing.IndirectCostAllocation) error,
) (*costing.IndirectCostAllocation, error) {
	unlock, err := s.locker.Lock(ctx, IndirectLockKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock allocation: %w", err)
	}
	defer unlock()

	var allocation *costing.IndirectCostAllocation
	err = executeRetrying(ctx, s.scope, func(repos TransactionalRepositories) error {
		var err error
		allocation, err = repos.IndirectRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, allocation); err != nil {
			return err
		}
		return repos.IndirectRepo().Save(ctx, allocation)
	})
	if err != nil {
		s.logger.Warn("Indirect allocation transition rejected",
			zap.String("allocation_id", id.String()),
			zap.String("action", action),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Indirect allocation transitioned",
		zap.String("allocation_id", id.String()),
		zap.String("action", action),
		zap.String("status", allocation.Status.String()))
	s.publishPending(ctx, allocation)
	return allocation, nil
}

// Summary totals the applied allocations of a period, for the given lots
// or for every lot
func (s *IndirectCostService) Summary(ctx context.Context, req IndirectSummaryRequest) (*costing.IndirectCostSummary, error) {
	period, err := valueobject.NewPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	var summary *costing.IndirectCostSummary
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		applied, err := repos.IndirectRepo().FindByStatus(ctx, costing.AllocationStatusApplied)
		if err != nil {
			return err
		}

		var lots []*livestock.Lot
		if len(req.LotIDs) > 0 {
			lots, err = repos.LotRepo().FindByIDs(ctx, req.LotIDs)
		} else {
			lots, err = repos.LotRepo().FindByStatuses(ctx, livestock.LotStatusActive)
		}
		if err != nil {
			return err
		}
		heads := 0
		for _, l := range lots {
			heads += l.LiveHeads()
		}

		var lotIDs []uuid.UUID
		if len(req.LotIDs) > 0 {
			lotIDs = req.LotIDs
		}
		var ok bool
		summary, ok = costing.Summarize(applied, lotIDs, period, heads)
		if !ok {
			return shared.NewDomainError(shared.ErrNotFound.Code, "No applied indirect costs in the period")
		}
		return nil
	})
	return summary, err
}

func (s *IndirectCostService) publishPending(ctx context.Context, a *costing.IndirectCostAllocation) {
	events := a.PullEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish events", zap.Error(err))
	}
}
