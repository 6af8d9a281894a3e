package finance

import (
	"fmt"
	"strings"

	"github.com/feedlot/backend/internal/domain/shared/strategy"
	"github.com/feedlot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ValueThreshold awards Points when the relative amount difference is below Below
type ValueThreshold struct {
	Below  decimal.Decimal
	Points int
	Reason string
}

// DayThreshold awards Points when the due date is at most AtMost days away
type DayThreshold struct {
	AtMost int
	Points int
	Reason string
}

// DescriptionRule scores keyword overlap between account and statement
type DescriptionRule struct {
	MinTokenLength  int // tokens must be longer than this
	PointsPerToken  int
	FullMatchAbove  int // more matched tokens than this earns FullMatchPoints
	FullMatchPoints int
}

// ScoringTables holds the ordered threshold lists for each factor.
// Lists are evaluated top-down and the first hit wins.
type ScoringTables struct {
	Value       []ValueThreshold
	Date        []DayThreshold
	Description DescriptionRule
}

// DefaultScoringTables returns the standard 50/30/20 weighting
func DefaultScoringTables() ScoringTables {
	return ScoringTables{
		Value: []ValueThreshold{
			{Below: decimal.RequireFromString("0.001"), Points: 50, Reason: "Identical amount."},
			{Below: decimal.RequireFromString("0.01"), Points: 40, Reason: "Very close amount."},
			{Below: decimal.RequireFromString("0.05"), Points: 30, Reason: "Close amount."},
			{Below: decimal.RequireFromString("0.1"), Points: 20, Reason: "Small amount difference."},
			{Below: decimal.RequireFromString("0.2"), Points: 10, Reason: "Significant amount difference."},
		},
		Date: []DayThreshold{
			{AtMost: 0, Points: 30, Reason: "Same date."},
			{AtMost: 1, Points: 25, Reason: "Dates one day apart."},
			{AtMost: 3, Points: 20, Reason: "Dates within 3 days."},
			{AtMost: 7, Points: 15, Reason: "Dates within a week."},
			{AtMost: 14, Points: 10, Reason: "Dates within two weeks."},
			{AtMost: 30, Points: 5, Reason: "Dates within a month."},
		},
		Description: DescriptionRule{
			MinTokenLength:  3,
			PointsPerToken:  10,
			FullMatchAbove:  2,
			FullMatchPoints: 20,
		},
	}
}

// ScoreBreakdown is the per-factor result of scoring one candidate
type ScoreBreakdown struct {
	Value       int      `json:"value"`
	Date        int      `json:"date"`
	Description int      `json:"description"`
	Total       int      `json:"total"`
	Reasons     []string `json:"reasons"`
}

// Reason joins the factor reasons into one phrase
func (b ScoreBreakdown) Reason() string {
	return strings.Join(b.Reasons, " ")
}

// MatchScorer scores a statement entry against an account. Scoring is a
// pure function of the pair.
type MatchScorer struct {
	strategy.Base
	tables ScoringTables
}

// NewMatchScorer creates a scorer over the given tables
func NewMatchScorer(tables ScoringTables) *MatchScorer {
	return &MatchScorer{
		Base:   strategy.NewBase("weighted_match", strategy.TypeMatchScoring,
			"Additive value, date and description proximity score"),
		tables: tables,
	}
}

// Score computes the 0-100 confidence of the pair
func (s *MatchScorer) Score(entry BankStatementEntry, account FinancialAccount) ScoreBreakdown {
	var b ScoreBreakdown

	ratio := decimal.NewFromInt(1)
	if account.Amount.IsPositive() {
		ratio = entry.AbsAmount().Sub(account.Amount).Abs().Div(account.Amount)
	}
	for _, th := range s.tables.Value {
		if ratio.LessThan(th.Below) {
			b.Value = th.Points
			b.Reasons = append(b.Reasons, th.Reason)
			break
		}
	}

	days := valueobject.AbsDaysBetween(account.DueDate, entry.Date)
	for _, th := range s.tables.Date {
		if days <= th.AtMost {
			b.Date = th.Points
			b.Reasons = append(b.Reasons, th.Reason)
			break
		}
	}

	rule := s.tables.Description
	haystack := NormalizeDescription(entry.Description)
	matches := 0
	for _, kw := range keywords(NormalizeDescription(account.Description), rule.MinTokenLength) {
		if strings.Contains(haystack, kw) {
			matches++
		}
	}
	switch {
	case matches > rule.FullMatchAbove:
		b.Description = rule.FullMatchPoints
		b.Reasons = append(b.Reasons, "Multiple keywords in common.")
	case matches > 0:
		b.Description = rule.PointsPerToken * matches
		b.Reasons = append(b.Reasons, fmt.Sprintf("%d keyword(s) in common.", matches))
	}

	b.Total = b.Value + b.Date + b.Description
	return b
}
