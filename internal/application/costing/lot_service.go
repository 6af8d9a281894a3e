package costing

import (
	"context"
	"fmt"
	"sort"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LotService registers lots and pens and closes lots on sale
type LotService struct {
	scope     TransactionScope
	locker    shared.Locker
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewLotService creates a new LotService
func NewLotService(scope TransactionScope, locker shared.Locker, publisher shared.EventPublisher, logger *zap.Logger) *LotService {
	return &LotService{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		logger:    logger.Named("lot"),
	}
}

// CreateLot registers an active lot. A positive acquisition cost is posted
// straight to the lot's ledger.
func (s *LotService) CreateLot(ctx context.Context, req CreateLotRequest) (*livestock.Lot, error) {
	weight, err := valueobject.NewWeight(req.EntryWeightKg)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}
	lot, err := livestock.NewLot(req.Code, req.EntryDate, req.EntryQuantity, weight, req.EstimatedDailyGain)
	if err != nil {
		return nil, err
	}
	if req.CarcassYield != nil {
		if req.CarcassYield.IsNegative() || req.CarcassYield.GreaterThan(decimal.NewFromInt(100)) {
			return nil, shared.NewDomainError("INVALID_CARCASS_YIELD", "Carcass yield must be between 0 and 100")
		}
		lot.CarcassYield = *req.CarcassYield
	}
	if req.AcquisitionCost.IsPositive() {
		if err := lot.PostCost(livestock.CostCategoryAcquisition, req.AcquisitionCost); err != nil {
			return nil, err
		}
	}

	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.LotRepo().Save(ctx, lot)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Lot created",
		zap.String("lot_id", lot.ID.String()),
		zap.String("code", lot.Code),
		zap.Int("heads", lot.EntryQuantity),
		zap.String("acquisition", lot.Costs.Acquisition.String()))
	return lot, nil
}

// GetLot returns a lot with its active pen links
func (s *LotService) GetLot(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	var resp *LotResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		links, err := repos.LinkRepo().FindActiveByLot(ctx, id)
		if err != nil {
			return err
		}
		resp = &LotResponse{Lot: *lot, Links: links}
		return nil
	})
	return resp, err
}

// ListLots returns lots in the given statuses, every lot when none is given
func (s *LotService) ListLots(ctx context.Context, statuses ...livestock.LotStatus) ([]*livestock.Lot, error) {
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, shared.Errorf("INVALID_STATUS", "Unknown lot status %q", st)
		}
	}
	var lots []*livestock.Lot
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lots, err = repos.LotRepo().FindByStatuses(ctx, statuses...)
		return err
	})
	return lots, err
}

// CreatePen registers an empty pen
func (s *LotService) CreatePen(ctx context.Context, req CreatePenRequest) (*livestock.Pen, error) {
	pen, err := livestock.NewPen(req.Code, req.Capacity)
	if err != nil {
		return nil, err
	}
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.PenRepo().Save(ctx, pen)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("Pen created",
		zap.String("pen_id", pen.ID.String()),
		zap.String("code", pen.Code),
		zap.Int("capacity", pen.Capacity))
	return pen, nil
}

// GetPen returns a pen by id
func (s *LotService) GetPen(ctx context.Context, id uuid.UUID) (*livestock.Pen, error) {
	var pen *livestock.Pen
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pen, err = repos.PenRepo().FindByID(ctx, id)
		return err
	})
	return pen, err
}

// RecordSale closes a lot and takes its animals out of every pen. Later
// allocations of those pens no longer reach the lot.
func (s *LotService) RecordSale(ctx context.Context, lotID uuid.UUID, req RecordSaleRequest) (*livestock.Lot, error) {
	totalWeight, err := valueobject.NewWeight(req.TotalWeightKg)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}

	var current []livestock.PenLotLink
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.LotRepo().FindByID(ctx, lotID); err != nil {
			return err
		}
		var err error
		current, err = repos.LinkRepo().FindActiveByLot(ctx, lotID)
		return err
	}); err != nil {
		return nil, err
	}

	unlock, err := s.lockPens(ctx, current)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var lot *livestock.Lot
	closed := 0
	err = executeRetrying(ctx, s.scope, func(repos TransactionalRepositories) error {
		closed = 0
		var err error
		lot, err = repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		if err := lot.RecordSale(livestock.SaleRecord{
			SaleDate:     req.SaleDate,
			Quantity:     req.Quantity,
			TotalWeight:  totalWeight,
			GrossRevenue: req.GrossRevenue,
			Deductions:   req.Deductions,
		}); err != nil {
			return err
		}

		links, err := repos.LinkRepo().FindActiveByLot(ctx, lotID)
		if err != nil {
			return err
		}
		for i := range links {
			link := &links[i]
			if err := link.Remove(req.SaleDate); err != nil {
				return err
			}
			pen, err := repos.PenRepo().FindByID(ctx, link.PenID)
			if err != nil {
				return err
			}
			pen.RemoveAnimals(link.Quantity)
			if err := repos.PenRepo().Save(ctx, pen); err != nil {
				return err
			}
			if err := repos.LinkRepo().Save(ctx, link); err != nil {
				return err
			}
			closed++
		}
		return repos.LotRepo().Save(ctx, lot)
	})
	if err != nil {
		s.logger.Warn("Lot sale rejected",
			zap.String("lot_id", lotID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Lot sold",
		zap.String("lot_id", lot.ID.String()),
		zap.String("gross_revenue", req.GrossRevenue.String()),
		zap.Int("links_closed", closed))
	events := lot.PullEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Error("Failed to publish events", zap.Error(err))
		}
	}
	return lot, nil
}

// lockPens takes the pen locks of links in key order
func (s *LotService) lockPens(ctx context.Context, links []livestock.PenLotLink) (func(), error) {
	keys := make([]string, 0, len(links))
	seen := make(map[uuid.UUID]struct{}, len(links))
	for _, l := range links {
		if _, ok := seen[l.PenID]; ok {
			continue
		}
		seen[l.PenID] = struct{}{}
		keys = append(keys, PenLockKey(l.PenID))
	}
	sort.Strings(keys)

	unlocks := make([]func(), 0, len(keys))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, key := range keys {
		unlock, err := s.locker.Lock(ctx, key)
		if err != nil {
			release()
			return nil, fmt.Errorf("failed to lock pen: %w", err)
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}
