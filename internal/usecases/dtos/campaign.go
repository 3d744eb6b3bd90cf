package dtos

import (
	"time"

	"github.com/shopspring/decimal"
)

type RewardTierDTO struct {
	Amount       decimal.Decimal `json:"amount"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	DeliveryDate *time.Time      `json:"deliveryDate,omitempty"`
}

type EquityTermsDTO struct {
	Valuation         decimal.Decimal `json:"valuation"`
	EquityOffered     decimal.Decimal `json:"equityOffered"`
	MinimumInvestment decimal.Decimal `json:"minimumInvestment"`
}

type DebtTermsDTO struct {
	InterestRate      decimal.Decimal `json:"interestRate"`
	LoanTermMonths    int             `json:"loanTermMonths"`
	RepaymentSchedule string          `json:"repaymentSchedule"`
}

type MediaDTO struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type CreateCampaignDTO struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	TypeOfCampaign string          `json:"typeOfCampaign"`
	FundingType    string          `json:"fundingType"`
	GoalAmount     decimal.Decimal `json:"goalAmount"`
	Location       string          `json:"location"`
	Deadline       *time.Time      `json:"deadline,omitempty"`
	Rewards        []RewardTierDTO `json:"rewards,omitempty"`
	Equity         *EquityTermsDTO `json:"equity,omitempty"`
	Debt           *DebtTermsDTO   `json:"debt,omitempty"`
	Media          []MediaDTO      `json:"media,omitempty"`
}

// UpdateCampaignDTO carries only the fields a creator may change. Money
// aggregates have no corresponding fields here on purpose.
type UpdateCampaignDTO struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	GoalAmount  *decimal.Decimal `json:"goalAmount,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

type ListCampaignsDTO struct {
	Category       string
	Status         string
	TypeOfCampaign string
	Search         string
	Page           int
	Limit          int
	SortBy         string
	SortOrder      string
}

type AddCommentDTO struct {
	Comment string `json:"comment"`
}
