package costing

import (
	"context"
	"errors"
	"fmt"

	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PenLockKey is the locker key serializing work on one pen
func PenLockKey(penID uuid.UUID) string {
	return "pen:" + penID.String()
}

// LossValuation holds the defaults used to value weight losses
type LossValuation struct {
	CarcassYieldPercent decimal.Decimal
	KgPerArroba         decimal.Decimal
}

// AllocationService posts pen cost origins into lot ledgers and manages
// the pen-lot links and non-cash losses those allocations depend on
type AllocationService struct {
	scope     TransactionScope
	allocator *costing.ProportionalAllocator
	locker    shared.Locker
	publisher shared.EventPublisher
	clock     shared.Clock
	valuation LossValuation
	logger    *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	scope TransactionScope,
	allocator *costing.ProportionalAllocator,
	locker shared.Locker,
	publisher shared.EventPublisher,
	clock shared.Clock,
	valuation LossValuation,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		scope:     scope,
		allocator: allocator,
		locker:    locker,
		publisher: publisher,
		clock:     clock,
		valuation: valuation,
		logger:    logger.Named("allocation"),
	}
}

// AllocateCost splits an origin across the active links of its pen and
// posts every share, or nothing. A pen without animals is not an error:
// the origin is returned unposted so it can be retried.
func (s *AllocationService) AllocateCost(ctx context.Context, req AllocateCostRequest) (*AllocationResponse, error) {
	originID := uuid.Nil
	if req.OriginID != nil {
		originID = *req.OriginID
	}
	date := s.clock.Now()
	if req.Date != nil {
		date = *req.Date
	}
	origin, err := costing.NewCostOrigin(originID, valueobject.NewMoneyBRL(req.Amount),
		livestock.CostCategory(req.Category), req.PenID, date, req.Description)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, PenLockKey(origin.PenID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock pen: %w", err)
	}
	defer unlock()

	var records []costing.CostAllocationRecord
	var lots []*livestock.Lot
	err = executeRetrying(ctx, s.scope, func(repos TransactionalRepositories) error {
		if _, err := repos.PenRepo().FindByID(ctx, origin.PenID); err != nil {
			return err
		}
		posted, err := repos.RecordRepo().ExistsForOrigin(ctx, origin.ID)
		if err != nil {
			return err
		}
		if posted {
			return shared.ErrAlreadyPosted
		}

		links, err := repos.LinkRepo().FindActiveByPen(ctx, origin.PenID)
		if err != nil {
			return err
		}
		records, err = s.allocator.Allocate(*origin, links)
		if err != nil {
			return err
		}

		order, totals := costing.TotalsByLot(records)
		lots, err = repos.LotRepo().FindByIDs(ctx, order)
		if err != nil {
			return err
		}
		if len(lots) != len(order) {
			return shared.NewDomainError(shared.ErrNotFound.Code, "A lot linked to the pen no longer exists")
		}
		for _, lot := range lots {
			if err := lot.PostCost(origin.Category, totals[lot.ID]); err != nil {
				return err
			}
			if err := repos.LotRepo().Save(ctx, lot); err != nil {
				return err
			}
		}
		return repos.RecordRepo().SaveAll(ctx, records)
	})

	resp := &AllocationResponse{OriginID: origin.ID, PenID: origin.PenID}
	if errors.Is(err, shared.ErrNoCandidatePool) {
		s.logger.Warn("Cost origin left unposted, pen has no animals",
			zap.String("origin_id", origin.ID.String()),
			zap.String("pen_id", origin.PenID.String()),
			zap.String("amount", origin.Amount.String()))
		resp.Reason = shared.ErrNoCandidatePool.Code
		return resp, nil
	}
	if err != nil {
		s.logger.Warn("Cost allocation failed",
			zap.String("origin_id", origin.ID.String()),
			zap.String("pen_id", origin.PenID.String()),
			zap.Error(err))
		return nil, err
	}

	resp.Posted = true
	resp.Records = records
	s.logger.Info("Cost origin allocated",
		zap.String("origin_id", origin.ID.String()),
		zap.String("pen_id", origin.PenID.String()),
		zap.String("category", string(origin.Category)),
		zap.String("amount", origin.Amount.String()),
		zap.Int("records", len(records)))

	events := []shared.DomainEvent{costing.NewCostAllocatedEvent(*origin, len(records))}
	for _, lot := range lots {
		events = append(events, lot.PullEvents()...)
	}
	s.publish(ctx, events...)
	return resp, nil
}

// GetAllocation returns the records posted for an origin
func (s *AllocationService) GetAllocation(ctx context.Context, originID uuid.UUID) ([]costing.CostAllocationRecord, error) {
	var records []costing.CostAllocationRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		records, err = repos.RecordRepo().FindByOrigin(ctx, originID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, shared.ErrNotFound
	}
	return records, nil
}

// AssignLotToPen links part of a lot to a pen. Over-assignment of the lot
// or the pen is allowed and reported as warnings.
func (s *AllocationService) AssignLotToPen(ctx context.Context, lotID uuid.UUID, req AssignLotRequest) (*AssignLotResponse, error) {
	at := s.clock.Now()
	if req.At != nil {
		at = *req.At
	}

	unlock, err := s.locker.Lock(ctx, PenLockKey(req.PenID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock pen: %w", err)
	}
	defer unlock()

	resp := &AssignLotResponse{}
	var link *livestock.PenLotLink
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		if !lot.IsActive() {
			return shared.ErrInvalidState.WithMessagef("Lot %s is %s and cannot be placed in a pen", lot.Code, lot.Status)
		}
		pen, err := repos.PenRepo().FindByID(ctx, req.PenID)
		if err != nil {
			return err
		}

		link, err = livestock.NewPenLotLink(lot.ID, pen.ID, req.Quantity, at)
		if err != nil {
			return err
		}
		pen.AddAnimals(link.Quantity)
		link.SetShares(lot.LiveHeads(), pen.Occupancy)

		penLinks, err := repos.LinkRepo().FindActiveByPen(ctx, pen.ID)
		if err != nil {
			return err
		}
		lotLinks, err := repos.LinkRepo().FindActiveByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		if w := livestock.CheckLotAssignment(lot, append(lotLinks, *link)); w != nil {
			resp.Warnings = append(resp.Warnings, *w)
		}
		if w := livestock.CheckPenCapacity(pen, append(penLinks, *link)); w != nil {
			resp.Warnings = append(resp.Warnings, *w)
		}

		if err := repos.LinkRepo().Save(ctx, link); err != nil {
			return err
		}
		return repos.PenRepo().Save(ctx, pen)
	})
	if err != nil {
		return nil, err
	}

	resp.Link = *link
	for _, w := range resp.Warnings {
		s.logger.Warn("Occupancy limit exceeded",
			zap.String("kind", string(w.Kind)),
			zap.String("entity_id", w.EntityID.String()),
			zap.Int("limit", w.Limit),
			zap.Int("assigned", w.Assigned))
	}
	s.logger.Info("Lot assigned to pen",
		zap.String("link_id", link.ID.String()),
		zap.String("lot_id", lotID.String()),
		zap.String("pen_id", req.PenID.String()),
		zap.Int("quantity", req.Quantity))
	s.publish(ctx, livestock.NewLotLinkedToPenEvent(link))
	return resp, nil
}

// RemoveLink takes a link out of its pen; later allocations of the pen
// no longer reach the lot
func (s *AllocationService) RemoveLink(ctx context.Context, linkID uuid.UUID) (*livestock.PenLotLink, error) {
	var found *livestock.PenLotLink
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		found, err = repos.LinkRepo().FindByID(ctx, linkID)
		return err
	}); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, PenLockKey(found.PenID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock pen: %w", err)
	}
	defer unlock()

	var link *livestock.PenLotLink
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		link, err = repos.LinkRepo().FindByID(ctx, linkID)
		if err != nil {
			return err
		}
		if err := link.Remove(s.clock.Now()); err != nil {
			return err
		}
		pen, err := repos.PenRepo().FindByID(ctx, link.PenID)
		if err != nil {
			return err
		}
		pen.RemoveAnimals(link.Quantity)
		if err := repos.LinkRepo().Save(ctx, link); err != nil {
			return err
		}
		return repos.PenRepo().Save(ctx, pen)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Pen link removed",
		zap.String("link_id", link.ID.String()),
		zap.String("lot_id", link.LotID.String()),
		zap.String("pen_id", link.PenID.String()))
	return link, nil
}

// RecordMortality values dead animals at the lot's cost per entry head and
// registers the deaths. The loss reaches the income statement as COGS.
func (s *AllocationService) RecordMortality(ctx context.Context, lotID uuid.UUID, req RecordMortalityRequest) (*LossResponse, error) {
	date := s.clock.Now()
	if req.Date != nil {
		date = *req.Date
	}

	resp := &LossResponse{}
	var loss *livestock.NonCashLossEvent
	err := executeRetrying(ctx, s.scope, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		loss, err = livestock.NewMortalityLoss(lot, req.Quantity, req.Cause, date)
		if err != nil {
			return err
		}
		if err := lot.RegisterDeaths(req.Quantity); err != nil {
			return err
		}

		links, err := repos.LinkRepo().FindActiveByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		resp.Warning = livestock.CheckLotAssignment(lot, links)

		if err := repos.LotRepo().Save(ctx, lot); err != nil {
			return err
		}
		return repos.LossRepo().Save(ctx, loss)
	})
	if err != nil {
		return nil, err
	}

	resp.Loss = *loss
	s.logger.Info("Mortality recorded",
		zap.String("lot_id", lotID.String()),
		zap.Int("quantity", req.Quantity),
		zap.String("value", loss.MonetaryValue.String()))
	s.publish(ctx, livestock.NewNonCashLossRecordedEvent(loss))
	return resp, nil
}

// RecordWeightLoss values the weight shortfall of a lot at carcass price
func (s *AllocationService) RecordWeightLoss(ctx context.Context, lotID uuid.UUID, req RecordWeightLossRequest) (*LossResponse, error) {
	date := s.clock.Now()
	if req.Date != nil {
		date = *req.Date
	}
	expected, err := valueobject.NewWeight(req.ExpectedKg)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}
	actual, err := valueobject.NewWeight(req.ActualKg)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}

	var loss *livestock.NonCashLossEvent
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		yield := lot.CarcassYieldOr(s.valuation.CarcassYieldPercent)
		if req.CarcassYield != nil {
			yield = *req.CarcassYield
		}
		loss, err = livestock.NewWeightLoss(lot, livestock.WeightLossParams{
			Expected:       expected,
			Actual:         actual,
			PricePerArroba: req.PricePerArroba,
			CarcassYield:   yield,
			KgPerArroba:    s.valuation.KgPerArroba,
			Date:           date,
			Description:    req.Description,
		})
		if err != nil {
			return err
		}
		return repos.LossRepo().Save(ctx, loss)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Weight loss recorded",
		zap.String("lot_id", lotID.String()),
		zap.String("weight_delta", loss.WeightDelta.String()),
		zap.String("value", loss.MonetaryValue.String()))
	s.publish(ctx, livestock.NewNonCashLossRecordedEvent(loss))
	return &LossResponse{Loss: *loss}, nil
}

func (s *AllocationService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish events", zap.Error(err))
	}
}
