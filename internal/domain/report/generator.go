package report

import (
	"time"

	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Params selects the entity, period and projection mode of a statement
type Params struct {
	EntityType         EntityType
	EntityID           uuid.UUID // ignored for the global entity
	Period             valueobject.Period
	IncludeProjections bool
	PricePerArroba     decimal.Decimal // values projected weight
	AsOf               time.Time       // projection reference; zero means now
}

// Validate checks the params
func (p Params) Validate() error {
	if !p.EntityType.IsValid() {
		return shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity type must be lot, pen or global")
	}
	if p.EntityType != EntityTypeGlobal && p.EntityID == uuid.Nil {
		return shared.NewDomainError("INVALID_ENTITY_ID", "Entity id is required")
	}
	if p.Period.Start.IsZero() || p.Period.End.Before(p.Period.Start) {
		return shared.NewDomainError("INVALID_PERIOD", "Period start and end are required")
	}
	if p.PricePerArroba.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price per arroba cannot be negative")
	}
	return nil
}

// Input is the snapshot the generator aggregates. Lots must already be
// resolved for the entity (see ResolveEntitySet).
type Input struct {
	Lots     []*livestock.Lot
	Losses   []livestock.NonCashLossEvent
	Accounts []*finance.FinancialAccount
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithPolicy replaces the default policy
func WithPolicy(p Policy) GeneratorOption {
	return func(g *Generator) {
		g.policy = p
	}
}

// WithClock sets the time source for GeneratedAt and the default AsOf
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// Generator aggregates lots, losses and financial accounts into an income statement
type Generator struct {
	policy Policy
	now    func() time.Time
}

// NewGenerator creates a generator with the default policy
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		policy: DefaultPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the active policy
func (g *Generator) Policy() Policy {
	return g.policy
}

// lotFigures is the contribution of one lot before rounding
type lotFigures struct {
	grossSales decimal.Decimal
	deductions decimal.Decimal
	arrobas    decimal.Decimal
	realized   bool
	projected  bool
	days       int
}

// Generate builds the statement. Lots that do not overlap the period are
// ignored; ErrEmptyEntitySet is returned when none remain.
func (g *Generator) Generate(params Params, in Input) (*IncomeStatement, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	asOf := params.AsOf
	if asOf.IsZero() {
		asOf = g.now()
	}
	ref := asOf
	if ref.After(params.Period.End) {
		ref = params.Period.End
	}

	var lots []*livestock.Lot
	for _, l := range in.Lots {
		if overlaps(l, params.Period) {
			lots = append(lots, l)
		}
	}
	if len(lots) == 0 {
		return nil, shared.ErrEmptyEntitySet
	}

	r := func(d decimal.Decimal) decimal.Decimal {
		return d.Round(g.policy.RoundingPlaces)
	}

	stmt := &IncomeStatement{
		ID:                 uuid.New(),
		EntityType:         params.EntityType,
		EntityID:           params.EntityID,
		Period:             params.Period,
		IncludeProjections: params.IncludeProjections,
		PricePerArroba:     params.PricePerArroba,
		GeneratedAt:        g.now(),
	}
	if params.EntityType == EntityTypeGlobal {
		stmt.EntityID = uuid.Nil
	}

	lotSet := make(map[uuid.UUID]struct{}, len(lots))
	var (
		gross, deductions, arrobas decimal.Decimal
		costs                      livestock.CostLedger
		realized, projected        bool
		heads, headDays            int
	)
	for _, l := range lots {
		lotSet[l.ID] = struct{}{}
		stmt.LotIDs = append(stmt.LotIDs, l.ID)

		f := g.lotRevenue(l, params, ref)
		gross = gross.Add(f.grossSales)
		deductions = deductions.Add(f.deductions)
		arrobas = arrobas.Add(f.arrobas)
		realized = realized || f.realized
		projected = projected || f.projected
		if f.projected {
			stmt.Metrics.ProjectedLotCount++
		}

		for _, c := range livestock.AllCostCategories() {
			_ = costs.Post(c, l.Costs.Get(c))
		}
		heads += l.EntryQuantity
		headDays += f.days * l.EntryQuantity
	}

	// Revenue
	stmt.Revenue = Revenue{
		GrossSales:      r(gross),
		SalesDeductions: r(deductions),
		Composition:     compose(realized, projected),
	}
	stmt.Revenue.NetSales = stmt.Revenue.GrossSales.Sub(stmt.Revenue.SalesDeductions)

	// Cost of goods sold
	cogs := CostOfGoodsSold{
		AnimalPurchase: r(costs.Acquisition),
		Feed:           r(costs.Feed),
		Health:         r(costs.Health),
		Freight:        r(costs.Freight),
		Operational:    r(costs.Operational),
		Other:          r(costs.Other),
		Composition:    CompositionRealized,
	}
	mortality, weightLoss := decimal.Zero, decimal.Zero
	for _, loss := range in.Losses {
		if _, ok := lotSet[loss.LotID]; !ok || !params.Period.Contains(loss.Date) {
			continue
		}
		switch loss.Type {
		case livestock.LossTypeMortality:
			mortality = mortality.Add(loss.MonetaryValue)
		case livestock.LossTypeWeightLoss:
			weightLoss = weightLoss.Add(loss.MonetaryValue)
		}
	}
	cogs.Mortality = r(mortality)
	cogs.WeightLoss = r(weightLoss)
	cogs.sum()
	stmt.COGS = cogs

	stmt.GrossProfit = stmt.Revenue.NetSales.Sub(cogs.Total)
	stmt.GrossMargin = g.margin(stmt.GrossProfit, stmt.Revenue.NetSales)

	// Operating expenses
	stmt.Opex = g.opex(cogs.Total)
	stmt.OperatingIncome = stmt.GrossProfit.Sub(stmt.Opex.Total)
	stmt.OperatingMargin = g.margin(stmt.OperatingIncome, stmt.Revenue.NetSales)

	// Financial result
	stmt.FinancialResult = g.financialResult(in.Accounts, params, lotSet)
	stmt.IncomeBeforeTax = stmt.OperatingIncome.Add(stmt.FinancialResult.Total)

	// Taxes
	if stmt.IncomeBeforeTax.IsPositive() {
		stmt.Taxes.IncomeTax = r(stmt.IncomeBeforeTax.Mul(g.policy.Tax.IncomeTaxRate))
		stmt.Taxes.SocialContribution = r(stmt.IncomeBeforeTax.Mul(g.policy.Tax.SocialContributionRate))
	}
	stmt.Taxes.Total = stmt.Taxes.IncomeTax.Add(stmt.Taxes.SocialContribution)

	stmt.NetIncome = stmt.IncomeBeforeTax.Sub(stmt.Taxes.Total)
	stmt.NetMargin = g.margin(stmt.NetIncome, stmt.Revenue.NetSales)

	stmt.Metrics = g.metrics(stmt, heads, arrobas, headDays)
	return stmt, nil
}

func overlaps(l *livestock.Lot, p valueobject.Period) bool {
	var end time.Time
	if l.Sale != nil {
		end = l.Sale.SaleDate
	}
	return p.Overlaps(l.EntryDate, end)
}

// lotRevenue returns realized revenue when the lot was sold within the
// period, otherwise the projected value of active lots when requested.
func (g *Generator) lotRevenue(l *livestock.Lot, params Params, ref time.Time) lotFigures {
	yield := l.CarcassYieldOr(g.policy.CarcassYieldPercent)
	f := lotFigures{days: l.DaysInConfinement(ref)}

	if l.Sale != nil && params.Period.Contains(l.Sale.SaleDate) {
		f.grossSales = l.Sale.GrossRevenue
		f.deductions = l.Sale.Deductions
		f.arrobas = l.Sale.TotalWeight.Carcass(yield).Arrobas(g.policy.KgPerArroba)
		f.realized = true
		return f
	}
	if !params.IncludeProjections || !l.IsActive() {
		return f
	}

	gain := l.EstimatedDailyGain.
		Mul(decimal.NewFromInt(int64(f.days))).
		Mul(decimal.NewFromInt(int64(l.LiveHeads())))
	current := l.EntryWeight.Add(valueobject.MustNewWeight(gain))
	f.arrobas = current.Carcass(yield).Arrobas(g.policy.KgPerArroba)
	f.grossSales = f.arrobas.Mul(params.PricePerArroba)
	f.projected = true
	return f
}

func (g *Generator) opex(cogsTotal decimal.Decimal) OperatingExpenses {
	p := g.policy.Opex
	base := cogsTotal.Mul(p.OverheadRate)
	r := func(share decimal.Decimal) decimal.Decimal {
		return base.Mul(share).Round(g.policy.RoundingPlaces)
	}
	o := OperatingExpenses{
		Administrative: r(p.AdministrativeShare),
		Sales:          r(p.SalesShare),
		Financial:      r(p.FinancialShare),
		Other:          r(p.OtherShare),
		Composition:    CompositionProjected,
	}
	o.Total = o.Administrative.Add(o.Sales).Add(o.Financial).Add(o.Other)
	return o
}

// financialResult sums paid financial-category accounts settled within the
// period. Outside the global entity, only accounts tied to a covered lot count.
func (g *Generator) financialResult(accounts []*finance.FinancialAccount, params Params, lotSet map[uuid.UUID]struct{}) FinancialResult {
	revenue, expenses := decimal.Zero, decimal.Zero
	for _, a := range accounts {
		if a.Category != finance.AccountCategoryFinancial || a.Status != finance.AccountStatusPaid {
			continue
		}
		if a.PaymentDate == nil || !params.Period.Contains(*a.PaymentDate) {
			continue
		}
		if params.EntityType != EntityTypeGlobal {
			if a.LotID == nil {
				continue
			}
			if _, ok := lotSet[*a.LotID]; !ok {
				continue
			}
		}
		switch a.Direction {
		case finance.AccountReceivable:
			revenue = revenue.Add(a.Amount)
		case finance.AccountPayable:
			expenses = expenses.Add(a.Amount)
		}
	}
	fr := FinancialResult{
		FinancialRevenue:  revenue.Round(g.policy.RoundingPlaces),
		FinancialExpenses: expenses.Round(g.policy.RoundingPlaces),
		Composition:       CompositionRealized,
	}
	fr.Total = fr.FinancialRevenue.Sub(fr.FinancialExpenses)
	return fr
}

// metrics derives the per-head and per-arroba figures. AverageDays is
// weighted by entry heads; DailyProfit spreads net income over the period.
func (g *Generator) metrics(s *IncomeStatement, heads int, arrobas decimal.Decimal, headDays int) Metrics {
	m := s.Metrics
	m.TotalHeads = heads
	m.TotalArrobas = arrobas.Round(g.policy.RoundingPlaces)

	h := decimal.NewFromInt(int64(heads))
	m.RevenuePerHead = g.ratio(s.Revenue.NetSales, h)
	m.CostPerHead = g.ratio(s.COGS.Total, h)
	m.ProfitPerHead = g.ratio(s.NetIncome, h)

	m.RevenuePerArroba = g.ratio(s.Revenue.NetSales, arrobas)
	m.CostPerArroba = g.ratio(s.COGS.Total, arrobas)
	m.ProfitPerArroba = g.ratio(s.NetIncome, arrobas)

	if heads > 0 {
		m.AverageDays = decimal.NewFromInt(int64(headDays)).Div(h).Round(2)
	}
	m.ROI = g.margin(s.NetIncome, s.COGS.Total)
	periodDays := valueobject.DaysBetween(s.Period.Start, s.Period.End)
	if periodDays > 0 {
		m.DailyProfit = g.ratio(s.NetIncome, decimal.NewFromInt(int64(periodDays)))
	}
	return m
}

// ratio divides and rounds, returning zero when the divisor is zero
func (g *Generator) ratio(x, by decimal.Decimal) decimal.Decimal {
	if by.IsZero() {
		return decimal.Zero
	}
	return x.Div(by).Round(g.policy.RoundingPlaces)
}

// margin returns x as a percentage of base, zero when base is zero
func (g *Generator) margin(x, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return x.Div(base).Mul(hundred).Round(g.policy.RoundingPlaces)
}
