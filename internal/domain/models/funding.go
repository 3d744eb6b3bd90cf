package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FundingType string

const (
	FundingDonation FundingType = "donation"
	FundingReward   FundingType = "reward"
	FundingEquity   FundingType = "equity"
	FundingDebt     FundingType = "debt"
)

var ValidFundingTypes = map[FundingType]struct{}{
	FundingDonation: {},
	FundingReward:   {},
	FundingEquity:   {},
	FundingDebt:     {},
}

func (t FundingType) Valid() bool {
	_, ok := ValidFundingTypes[t]
	return ok
}

// RewardTier is a pledge level on a reward campaign. Tiers are immutable once
// the campaign is created.
type RewardTier struct {
	ID           string          `json:"id" db:"id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Title        string          `json:"title" db:"title"`
	Description  string          `json:"description" db:"description"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty" db:"delivery_date"`
}

// EquityTerms are required on equity campaigns. Amounts are major units.
type EquityTerms struct {
	Valuation         decimal.Decimal `json:"valuation" db:"valuation"`
	EquityOffered     decimal.Decimal `json:"equity_offered" db:"equity_offered"`
	MinimumInvestment decimal.Decimal `json:"minimum_investment" db:"minimum_investment"`
}

// DebtTerms are required on debt campaigns.
type DebtTerms struct {
	InterestRate      decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	LoanTermMonths    int             `json:"loan_term_months" db:"loan_term_months"`
	RepaymentSchedule string          `json:"repayment_schedule" db:"repayment_schedule"`
}

// FundingDetails is the per-funding-type variant a campaign carries. Exactly
// the branch matching Type is populated; the policy switches on Type
// exhaustively instead of probing optional fields.
type FundingDetails struct {
	Type    FundingType  `json:"type"`
	Rewards []RewardTier `json:"rewards,omitempty"`
	Equity  *EquityTerms `json:"equity,omitempty"`
	Debt    *DebtTerms   `json:"debt,omitempty"`
}
