package report

import (
	"context"
	"errors"
	"time"

	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/report"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GenerateRequest selects the entity and period of an income statement
type GenerateRequest struct {
	EntityType         string          `json:"entity_type" binding:"required,oneof=lot pen global"`
	EntityID           *uuid.UUID      `json:"entity_id"`
	PeriodStart        time.Time       `json:"period_start" binding:"required"`
	PeriodEnd          time.Time       `json:"period_end" binding:"required"`
	IncludeProjections bool            `json:"include_projections"`
	PricePerArroba     decimal.Decimal `json:"price_per_arroba"`
	AsOf               *time.Time      `json:"as_of"`
	Persist            bool            `json:"persist"`
}

// CompareRequest generates one statement per entity and ranks them
type CompareRequest struct {
	EntityType         string          `json:"entity_type" binding:"required,oneof=lot pen"`
	EntityIDs          []uuid.UUID     `json:"entity_ids" binding:"required,min=2,dive,required"`
	PeriodStart        time.Time       `json:"period_start" binding:"required"`
	PeriodEnd          time.Time       `json:"period_end" binding:"required"`
	IncludeProjections bool            `json:"include_projections"`
	PricePerArroba     decimal.Decimal `json:"price_per_arroba"`
}

// CompareResponse carries the generated statements and their ranking
type CompareResponse struct {
	Statements []*report.IncomeStatement `json:"statements"`
	Comparison *report.Comparison        `json:"comparison"`
	// Entities without qualifying lots in the period
	Skipped []uuid.UUID `json:"skipped,omitempty"`
}

// IncomeStatementService generates, persists and compares income statements
type IncomeStatementService struct {
	lotRepo       livestock.LotRepository
	linkRepo      livestock.PenLotLinkRepository
	lossRepo      livestock.NonCashLossRepository
	accountRepo   finance.FinancialAccountRepository
	statementRepo report.IncomeStatementRepository
	generator     *report.Generator
	logger        *zap.Logger
}

// NewIncomeStatementService creates a new IncomeStatementService
func NewIncomeStatementService(
	lotRepo livestock.LotRepository,
	linkRepo livestock.PenLotLinkRepository,
	lossRepo livestock.NonCashLossRepository,
	accountRepo finance.FinancialAccountRepository,
	statementRepo report.IncomeStatementRepository,
	generator *report.Generator,
	logger *zap.Logger,
) *IncomeStatementService {
	return &IncomeStatementService{
		lotRepo:       lotRepo,
		linkRepo:      linkRepo,
		lossRepo:      lossRepo,
		accountRepo:   accountRepo,
		statementRepo: statementRepo,
		generator:     generator,
		logger:        logger.Named("income_statement"),
	}
}

// Generate builds an income statement and optionally persists it
func (s *IncomeStatementService) Generate(ctx context.Context, req GenerateRequest) (*report.IncomeStatement, error) {
	params, err := toParams(req)
	if err != nil {
		return nil, err
	}
	stmt, err := s.generate(ctx, params)
	if err != nil {
		return nil, err
	}
	if req.Persist {
		if err := s.Save(ctx, stmt); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func toParams(req GenerateRequest) (report.Params, error) {
	period, err := valueobject.NewPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return report.Params{}, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}
	params := report.Params{
		EntityType:         report.EntityType(req.EntityType),
		Period:             period,
		IncludeProjections: req.IncludeProjections,
		PricePerArroba:     req.PricePerArroba,
	}
	if req.EntityID != nil {
		params.EntityID = *req.EntityID
	}
	if req.AsOf != nil {
		params.AsOf = *req.AsOf
	}
	return params, params.Validate()
}

func (s *IncomeStatementService) generate(ctx context.Context, params report.Params) (*report.IncomeStatement, error) {
	lots, err := s.resolveLots(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(lots))
	for i, l := range lots {
		ids[i] = l.ID
	}
	var losses []livestock.NonCashLossEvent
	if len(ids) > 0 {
		losses, err = s.lossRepo.FindByLotsInPeriod(ctx, ids, params.Period)
		if err != nil {
			return nil, err
		}
	}
	paid, err := s.accountRepo.FindPaidInPeriod(ctx, finance.AccountCategoryFinancial, params.Period)
	if err != nil {
		return nil, err
	}
	accounts := make([]*finance.FinancialAccount, len(paid))
	for i := range paid {
		accounts[i] = &paid[i]
	}

	stmt, err := s.generator.Generate(params, report.Input{Lots: lots, Losses: losses, Accounts: accounts})
	if err != nil {
		if errors.Is(err, shared.ErrEmptyEntitySet) {
			s.logger.Info("No qualifying lots for income statement",
				zap.String("entity_type", params.EntityType.String()),
				zap.String("entity_id", params.EntityID.String()))
		}
		return nil, err
	}

	s.logger.Info("Income statement generated",
		zap.String("statement_id", stmt.ID.String()),
		zap.String("entity_type", stmt.EntityType.String()),
		zap.String("entity_id", stmt.EntityID.String()),
		zap.Int("lots", len(stmt.LotIDs)),
		zap.String("net_income", stmt.NetIncome.String()),
		zap.String("composition", string(stmt.Revenue.Composition)))
	return stmt, nil
}

func (s *IncomeStatementService) resolveLots(ctx context.Context, params report.Params) ([]*livestock.Lot, error) {
	var (
		candidates []*livestock.Lot
		links      []livestock.PenLotLink
		err        error
	)
	switch params.EntityType {
	case report.EntityTypeLot:
		lot, err := s.lotRepo.FindByID(ctx, params.EntityID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		candidates = []*livestock.Lot{lot}
	case report.EntityTypePen:
		links, err = s.linkRepo.FindActiveByPen(ctx, params.EntityID)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.LotID)
		}
		if len(ids) > 0 {
			candidates, err = s.lotRepo.FindByIDs(ctx, ids)
		}
	case report.EntityTypeGlobal:
		candidates, err = s.lotRepo.FindByStatuses(ctx, livestock.LotStatusActive, livestock.LotStatusSold)
	}
	if err != nil {
		return nil, err
	}
	return report.ResolveEntitySet(params.EntityType, params.EntityID, candidates, links), nil
}

// Save persists a generated statement. Statements are immutable: saving
// the same statement twice returns shared.ErrAlreadyExists.
func (s *IncomeStatementService) Save(ctx context.Context, stmt *report.IncomeStatement) error {
	if err := s.statementRepo.Create(ctx, stmt); err != nil {
		return err
	}
	s.logger.Info("Income statement saved", zap.String("statement_id", stmt.ID.String()))
	return nil
}

// Get returns a persisted statement
func (s *IncomeStatementService) Get(ctx context.Context, id uuid.UUID) (*report.IncomeStatement, error) {
	return s.statementRepo.FindByID(ctx, id)
}

// Compare generates a statement per entity and ranks them by net income.
// Entities without qualifying lots are skipped.
func (s *IncomeStatementService) Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	resp := &CompareResponse{}
	for _, id := range req.EntityIDs {
		entityID := id
		params, err := toParams(GenerateRequest{
			EntityType:         req.EntityType,
			EntityID:           &entityID,
			PeriodStart:        req.PeriodStart,
			PeriodEnd:          req.PeriodEnd,
			IncludeProjections: req.IncludeProjections,
			PricePerArroba:     req.PricePerArroba,
		})
		if err != nil {
			return nil, err
		}
		stmt, err := s.generate(ctx, params)
		if errors.Is(err, shared.ErrEmptyEntitySet) {
			resp.Skipped = append(resp.Skipped, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		resp.Statements = append(resp.Statements, stmt)
	}

	cmp, err := report.Compare(resp.Statements)
	if err != nil {
		return nil, err
	}
	resp.Comparison = cmp
	return resp, nil
}
