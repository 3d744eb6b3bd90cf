// Package funding validates contribution amounts against the campaign's
// funding model. The policy runs before an order is created and again before
// settlement, so a campaign whose terms changed in between cannot be credited
// under stale rules.
package funding

import (
	"fmt"

	"github.com/fundlane/fundlane/internal/domain/models"
	apperrors "github.com/fundlane/fundlane/internal/errors"
	"github.com/shopspring/decimal"
)

const minorUnitsPerMajor = 100

var (
	// DonationMinimum is ten times the smallest payable amount.
	DonationMinimum = decimal.NewFromInt(10)
	// DebtMinimum matches the platform's fixed loan participation floor.
	DebtMinimum = decimal.NewFromInt(5000)
)

// MajorAmount converts minor-unit order amounts to the major units used by
// the ledger and campaign aggregates.
func MajorAmount(amountMinor int64) decimal.Decimal {
	return decimal.NewFromInt(amountMinor).Div(decimal.NewFromInt(minorUnitsPerMajor))
}

// Validate checks a contribution of amountMinor against the campaign's
// funding details. A nil return means the contribution is acceptable.
func Validate(fundingType models.FundingType, amountMinor int64, details models.FundingDetails) error {
	if !fundingType.Valid() {
		return apperrors.NewUnsupportedFundingTypeError(string(fundingType))
	}
	if amountMinor <= 0 {
		return apperrors.NewValidationError("amount must be greater than zero")
	}
	if details.Type != fundingType {
		return apperrors.NewValidationError(fmt.Sprintf("campaign does not accept %s contributions", fundingType))
	}

	amount := MajorAmount(amountMinor)

	switch fundingType {
	case models.FundingDonation:
		if amount.LessThan(DonationMinimum) {
			return apperrors.NewValidationError(fmt.Sprintf("donation must be at least %s", DonationMinimum))
		}
	case models.FundingReward:
		minTier := minRewardTier(details.Rewards)
		if minTier == nil {
			if amount.LessThan(DonationMinimum) {
				return apperrors.NewValidationError(fmt.Sprintf("contribution must be at least %s", DonationMinimum))
			}
			return nil
		}
		if amount.LessThan(minTier.Amount) {
			return apperrors.NewValidationError(fmt.Sprintf("contribution below minimum reward tier %s", minTier.Amount))
		}
	case models.FundingEquity:
		eq := details.Equity
		if eq == nil || eq.Valuation.LessThanOrEqual(decimal.Zero) || eq.EquityOffered.LessThanOrEqual(decimal.Zero) {
			return apperrors.NewValidationError("campaign is missing equity terms")
		}
		if amount.LessThan(eq.MinimumInvestment) {
			return apperrors.NewValidationError(fmt.Sprintf("investment below minimum of %s", eq.MinimumInvestment))
		}
	case models.FundingDebt:
		dt := details.Debt
		if dt == nil || dt.InterestRate.LessThanOrEqual(decimal.Zero) || dt.LoanTermMonths <= 0 {
			return apperrors.NewValidationError("campaign is missing loan terms")
		}
		if amount.LessThan(DebtMinimum) {
			return apperrors.NewValidationError(fmt.Sprintf("loan participation must be at least %s", DebtMinimum))
		}
	}

	return nil
}

func minRewardTier(tiers []models.RewardTier) *models.RewardTier {
	var min *models.RewardTier
	for i := range tiers {
		if min == nil || tiers[i].Amount.LessThan(min.Amount) {
			min = &tiers[i]
		}
	}
	return min
}
