package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default matcher thresholds
const (
	DefaultMinScore        = 30
	DefaultAutoAcceptScore = 80
)

// DefaultEpsilon is the largest difference still treated as an exact match
var DefaultEpsilon = decimal.RequireFromString("0.01")

// ScoredMatch is a candidate account for a statement entry
type ScoredMatch struct {
	StatementID uuid.UUID        `json:"statement_id"`
	Account     FinancialAccount `json:"account"`
	Score       int              `json:"score"`
	Breakdown   ScoreBreakdown   `json:"breakdown"`
	Difference  decimal.Decimal  `json:"difference"` // |entry| - account.amount
	MatchReason string           `json:"match_reason"`
	AutoAccept  bool             `json:"auto_accept"`
}

// Matcher proposes and commits reconciliations
type Matcher struct {
	scorer          *MatchScorer
	minScore        int
	autoAcceptScore int
	epsilon         decimal.Decimal
}

// MatcherOption configures a Matcher
type MatcherOption func(*Matcher)

// WithScoringTables replaces the default threshold tables
func WithScoringTables(tables ScoringTables) MatcherOption {
	return func(m *Matcher) {
		m.scorer = NewMatchScorer(tables)
	}
}

// WithMinScore sets the score below which candidates are discarded
func WithMinScore(score int) MatcherOption {
	return func(m *Matcher) {
		if score >= 0 {
			m.minScore = score
		}
	}
}

// WithAutoAcceptScore sets the score above which a match is pre-selected
func WithAutoAcceptScore(score int) MatcherOption {
	return func(m *Matcher) {
		if score >= 0 {
			m.autoAcceptScore = score
		}
	}
}

// WithEpsilon sets the tolerance between reconciled and discrepancy
func WithEpsilon(eps decimal.Decimal) MatcherOption {
	return func(m *Matcher) {
		if eps.IsPositive() {
			m.epsilon = eps
		}
	}
}

// NewMatcher creates a matcher with the default tables and thresholds
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		scorer:          NewMatchScorer(DefaultScoringTables()),
		minScore:        DefaultMinScore,
		autoAcceptScore: DefaultAutoAcceptScore,
		epsilon:         DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Scorer returns the matcher's scorer
func (m *Matcher) Scorer() *MatchScorer {
	return m.scorer
}

// FindCandidates scores every direction-compatible pending account and
// returns those at or above the minimum score, best first. Ties are broken
// by earliest due date, then smallest absolute difference, then lowest id.
func (m *Matcher) FindCandidates(entry BankStatementEntry, accounts []FinancialAccount) []ScoredMatch {
	want := entry.Direction.Matches()
	out := make([]ScoredMatch, 0)
	for _, acc := range accounts {
		if acc.Direction != want || !acc.IsOpen() {
			continue
		}
		b := m.scorer.Score(entry, acc)
		if b.Total < m.minScore {
			continue
		}
		out = append(out, ScoredMatch{
			StatementID: entry.ID,
			Account:     acc,
			Score:       b.Total,
			Breakdown:   b,
			Difference:  entry.AbsAmount().Sub(acc.Amount),
			MatchReason: b.Reason(),
			AutoAccept:  b.Total > m.autoAcceptScore,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return candidateLess(out[i], out[j])
	})
	return out
}

func candidateLess(a, b ScoredMatch) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Account.DueDate.Equal(b.Account.DueDate) {
		return a.Account.DueDate.Before(b.Account.DueDate)
	}
	if c := a.Difference.Abs().Cmp(b.Difference.Abs()); c != 0 {
		return c < 0
	}
	return a.Account.ID.String() < b.Account.ID.String()
}

// Propose returns the best candidate, or nil if none scores high enough
func (m *Matcher) Propose(entry BankStatementEntry, accounts []FinancialAccount) *ScoredMatch {
	candidates := m.FindCandidates(entry, accounts)
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// CommitInput carries the reviewer context of a commit
type CommitInput struct {
	Confidence  int
	MatchReason string
	Notes       string
	CreatedBy   string
	AutoMatched bool
}

// Commit reconciles entry against account, or manually when account is nil.
// It marks the entry reconciled and the account paid. A difference beyond
// epsilon still commits, as a discrepancy.
func (m *Matcher) Commit(entry *BankStatementEntry, account *FinancialAccount, in CommitInput, at time.Time) (*ReconciliationRecord, error) {
	if entry.Reconciled {
		return nil, shared.ErrAlreadyReconciled
	}
	if account != nil {
		if account.Direction != entry.Direction.Matches() {
			return nil, shared.ErrDirectionMismatch
		}
		if !account.IsOpen() {
			return nil, shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("Account %s is %s and cannot be reconciled", account.ID, account.Status))
		}
	}

	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = SystemUser
	}
	record := &ReconciliationRecord{
		ID:             uuid.New(),
		StatementID:    entry.ID,
		AccountID:      ManualAccountID,
		BankAccountRef: entry.BankAccountRef,
		Amount:         entry.Amount,
		Difference:     decimal.Zero,
		Status:         ReconciliationStatusReconciled,
		Confidence:     in.Confidence,
		MatchReason:    in.MatchReason,
		Notes:          in.Notes,
		CreatedBy:      createdBy,
		AutoMatched:    in.AutoMatched,
		CreatedAt:      at,
	}
	if in.AutoMatched && record.Notes == "" {
		record.Notes = "Automatic reconciliation: " + in.MatchReason
	}

	if account != nil {
		record.AccountID = account.ID.String()
		record.Difference = entry.AbsAmount().Sub(account.Amount)
		if record.Difference.Abs().GreaterThanOrEqual(m.epsilon) {
			record.Status = ReconciliationStatusDiscrepancy
		}
		if err := account.MarkPaid(entry.Date, PaymentMethodBankTransfer); err != nil {
			return nil, err
		}
	}
	entry.Reconciled = true
	return record, nil
}

// Undo supersedes a live record, reopening both sides
func (m *Matcher) Undo(entry *BankStatementEntry, account *FinancialAccount, record *ReconciliationRecord, at time.Time) error {
	if record.Superseded {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Reconciliation record is already superseded")
	}
	if record.StatementID != entry.ID {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Record does not belong to the statement entry")
	}
	if account != nil && record.AccountID != account.ID.String() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Record does not belong to the account")
	}
	record.Supersede(at)
	entry.Reconciled = false
	if account != nil {
		account.Reopen()
	}
	return nil
}
