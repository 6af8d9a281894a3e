package report

import (
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OpexPolicy derives operating expenses as a share of COGS.
// Shares are fractions of the overhead and must sum to 1.
type OpexPolicy struct {
	OverheadRate        decimal.Decimal `json:"overhead_rate"`
	AdministrativeShare decimal.Decimal `json:"administrative_share"`
	SalesShare          decimal.Decimal `json:"sales_share"`
	FinancialShare      decimal.Decimal `json:"financial_share"`
	OtherShare          decimal.Decimal `json:"other_share"`
}

// Validate checks the policy
func (p OpexPolicy) Validate() error {
	if p.OverheadRate.IsNegative() {
		return shared.NewDomainError("INVALID_POLICY", "Overhead rate cannot be negative")
	}
	shares := []decimal.Decimal{p.AdministrativeShare, p.SalesShare, p.FinancialShare, p.OtherShare}
	sum := decimal.Zero
	for _, s := range shares {
		if s.IsNegative() {
			return shared.NewDomainError("INVALID_POLICY", "Opex shares cannot be negative")
		}
		sum = sum.Add(s)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_POLICY", "Opex shares must sum to 1")
	}
	return nil
}

// TaxPolicy holds the rates applied to positive income before tax
type TaxPolicy struct {
	IncomeTaxRate          decimal.Decimal `json:"income_tax_rate"`
	SocialContributionRate decimal.Decimal `json:"social_contribution_rate"`
}

// Validate checks the policy
func (p TaxPolicy) Validate() error {
	if p.IncomeTaxRate.IsNegative() || p.SocialContributionRate.IsNegative() {
		return shared.NewDomainError("INVALID_POLICY", "Tax rates cannot be negative")
	}
	return nil
}

// Policy groups every tunable of the generator
type Policy struct {
	Opex                OpexPolicy
	Tax                 TaxPolicy
	CarcassYieldPercent decimal.Decimal // used for lots without their own yield
	KgPerArroba         decimal.Decimal
	RoundingPlaces      int32
}

// DefaultPolicy returns a 5% overhead split 40/20/20/20, 15% income tax
// and 9% social contribution, 50% carcass yield and 15 kg arrobas.
func DefaultPolicy() Policy {
	return Policy{
		Opex: OpexPolicy{
			OverheadRate:        decimal.NewFromFloat(0.05),
			AdministrativeShare: decimal.NewFromFloat(0.4),
			SalesShare:          decimal.NewFromFloat(0.2),
			FinancialShare:      decimal.NewFromFloat(0.2),
			OtherShare:          decimal.NewFromFloat(0.2),
		},
		Tax: TaxPolicy{
			IncomeTaxRate:          decimal.NewFromFloat(0.15),
			SocialContributionRate: decimal.NewFromFloat(0.09),
		},
		CarcassYieldPercent: decimal.NewFromInt(50),
		KgPerArroba:         decimal.NewFromInt(15),
		RoundingPlaces:      2,
	}
}

// Validate checks the whole policy
func (p Policy) Validate() error {
	if err := p.Opex.Validate(); err != nil {
		return err
	}
	if err := p.Tax.Validate(); err != nil {
		return err
	}
	if !p.CarcassYieldPercent.IsPositive() || p.CarcassYieldPercent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_POLICY", "Carcass yield must be within (0, 100]")
	}
	if !p.KgPerArroba.IsPositive() {
		return shared.NewDomainError("INVALID_POLICY", "Kg per arroba must be positive")
	}
	if p.RoundingPlaces < 0 {
		return shared.NewDomainError("INVALID_POLICY", "Rounding places cannot be negative")
	}
	return nil
}
