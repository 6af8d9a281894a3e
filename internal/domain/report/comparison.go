package report

import (
	"fmt"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Thresholds that trigger comparison insights
var (
	LowMarginThreshold       = decimal.NewFromInt(10)
	LowROIThreshold          = decimal.NewFromInt(15)
	MarginVariationThreshold = decimal.NewFromInt(10)
)

// Performer identifies one statement in a comparison
type Performer struct {
	StatementID uuid.UUID       `json:"statement_id"`
	EntityType  EntityType      `json:"entity_type"`
	EntityID    uuid.UUID       `json:"entity_id"`
	NetIncome   decimal.Decimal `json:"net_income"`
	NetMargin   decimal.Decimal `json:"net_margin"`
}

// Comparison ranks income statements against each other
type Comparison struct {
	Statements     []uuid.UUID     `json:"statements"`
	Best           Performer       `json:"best"`
	Worst          Performer       `json:"worst"`
	AverageMargin  decimal.Decimal `json:"average_margin"`
	AverageROI     decimal.Decimal `json:"average_roi"`
	TotalNetIncome decimal.Decimal `json:"total_net_income"`
	Insights       []string        `json:"insights"`
}

func performer(s *IncomeStatement) Performer {
	return Performer{
		StatementID: s.ID,
		EntityType:  s.EntityType,
		EntityID:    s.EntityID,
		NetIncome:   s.NetIncome,
		NetMargin:   s.NetMargin,
	}
}

// Compare ranks statements by net income. Ties keep the first statement.
func Compare(statements []*IncomeStatement) (*Comparison, error) {
	if len(statements) < 2 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least two statements are required for a comparison")
	}

	best, worst := statements[0], statements[0]
	minMargin, maxMargin := statements[0].NetMargin, statements[0].NetMargin
	marginSum, roiSum, total := decimal.Zero, decimal.Zero, decimal.Zero
	ids := make([]uuid.UUID, 0, len(statements))

	for _, s := range statements {
		ids = append(ids, s.ID)
		if s.NetIncome.GreaterThan(best.NetIncome) {
			best = s
		}
		if s.NetIncome.LessThan(worst.NetIncome) {
			worst = s
		}
		minMargin = decimal.Min(minMargin, s.NetMargin)
		maxMargin = decimal.Max(maxMargin, s.NetMargin)
		marginSum = marginSum.Add(s.NetMargin)
		roiSum = roiSum.Add(s.Metrics.ROI)
		total = total.Add(s.NetIncome)
	}

	n := decimal.NewFromInt(int64(len(statements)))
	c := &Comparison{
		Statements:     ids,
		Best:           performer(best),
		Worst:          performer(worst),
		AverageMargin:  marginSum.Div(n).Round(2),
		AverageROI:     roiSum.Div(n).Round(2),
		TotalNetIncome: total,
	}

	if c.AverageMargin.LessThan(LowMarginThreshold) {
		c.Insights = append(c.Insights, fmt.Sprintf("Average net margin of %s%% is below %s%%; review feed and acquisition costs", c.AverageMargin.StringFixed(2), LowMarginThreshold))
	}
	if c.AverageROI.LessThan(LowROIThreshold) {
		c.Insights = append(c.Insights, fmt.Sprintf("Average ROI of %s%% is below %s%%", c.AverageROI.StringFixed(2), LowROIThreshold))
	}
	if spread := maxMargin.Sub(minMargin); spread.GreaterThan(MarginVariationThreshold) {
		c.Insights = append(c.Insights, fmt.Sprintf("Net margin varies by %s points across the compared entities", spread.StringFixed(2)))
	}
	return c, nil
}
