package interactor

import (
	"context"
	"strings"

	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	apperrors "github.com/fundlane/fundlane/internal/errors"
	"github.com/fundlane/fundlane/internal/usecases/dtos"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CampaignInteractor struct {
	campaignRepository repositories.CampaignRepository
	logger             *zerolog.Logger
}

func NewCampaignInteractor(campaignRepository repositories.CampaignRepository) *CampaignInteractor {
	l := log.GetLogger()
	return &CampaignInteractor{
		campaignRepository: campaignRepository,
		logger:             &l,
	}
}

func (i *CampaignInteractor) GetCampaign(id string) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	campaign, err := i.campaignRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NewNotFoundError("campaign")
	}
	return campaign, nil
}

func (i *CampaignInteractor) ListCampaigns(dto *dtos.ListCampaignsDTO) ([]models.Campaign, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	limit := dto.Limit
	if limit <= 0 {
		limit = 12
	}
	page := dto.Page
	if page < 1 {
		page = 1
	}

	return i.campaignRepository.List(ctx, repositories.CampaignFilters{
		Category:       dto.Category,
		Status:         dto.Status,
		TypeOfCampaign: dto.TypeOfCampaign,
		Search:         dto.Search,
		Limit:          limit,
		Offset:         (page - 1) * limit,
		SortBy:         dto.SortBy,
		SortOrder:      dto.SortOrder,
	})
}

// ListTrending returns the most liked active campaigns.
func (i *CampaignInteractor) ListTrending(limit int) ([]models.Campaign, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 6
	}
	return i.campaignRepository.List(ctx, repositories.CampaignFilters{
		Status:    string(models.CampaignStatusActive),
		Limit:     limit,
		SortBy:    "total_likes",
		SortOrder: "desc",
	})
}

func (i *CampaignInteractor) CreateCampaign(creatorID string, dto *dtos.CreateCampaignDTO) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if strings.TrimSpace(dto.Title) == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if !dto.GoalAmount.IsPositive() {
		return nil, apperrors.NewValidationError("goalAmount must be greater than zero")
	}
	fundingType := models.FundingType(dto.FundingType)
	if !fundingType.Valid() {
		return nil, apperrors.NewUnsupportedFundingTypeError(dto.FundingType)
	}

	details, err := buildFundingDetails(fundingType, dto)
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		CreatorID:      creatorID,
		Title:          dto.Title,
		Description:    dto.Description,
		Category:       dto.Category,
		TypeOfCampaign: dto.TypeOfCampaign,
		GoalAmount:     dto.GoalAmount,
		Status:         models.CampaignStatusActive,
		Location:       dto.Location,
		Deadline:       dto.Deadline,
		Funding:        details,
		Media:          mediaFromDTO(dto.Media),
	}
	if err = i.campaignRepository.Create(ctx, campaign); err != nil {
		return nil, err
	}

	i.logger.Info().
		Str("campaign_id", campaign.ID).
		Str("funding_type", string(fundingType)).
		Msg("campaign created")
	return campaign, nil
}

func (i *CampaignInteractor) UpdateCampaign(userID, id string, dto *dtos.UpdateCampaignDTO) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	existing, err := i.campaignRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("campaign")
	}
	if existing.CreatorID != userID {
		return nil, apperrors.NewUnauthorizedError("only the creator may update a campaign")
	}

	update := repositories.CampaignUpdate{
		Title:       dto.Title,
		Description: dto.Description,
		GoalAmount:  dto.GoalAmount,
		Location:    dto.Location,
	}
	if dto.GoalAmount != nil && !dto.GoalAmount.IsPositive() {
		return nil, apperrors.NewValidationError("goalAmount must be greater than zero")
	}
	if dto.Status != nil {
		status := models.CampaignStatus(*dto.Status)
		if _, ok := models.ValidCampaignStatuses[status]; !ok {
			return nil, apperrors.NewValidationError("unknown campaign status")
		}
		update.Status = &status
	}

	return i.campaignRepository.Update(ctx, id, update)
}

// DeleteCampaign removes the campaign with its rewards, likes, comments,
// media, orders and ledger entries.
func (i *CampaignInteractor) DeleteCampaign(userID, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	existing, err := i.campaignRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("campaign")
	}
	if existing.CreatorID != userID {
		return apperrors.NewUnauthorizedError("only the creator may delete a campaign")
	}

	if err = i.campaignRepository.Delete(ctx, id); err != nil {
		return err
	}
	i.logger.Info().Str("campaign_id", id).Msg("campaign deleted")
	return nil
}

func (i *CampaignInteractor) ToggleLike(userID, campaignID string) (liked bool, totalLikes int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	existing, err := i.campaignRepository.GetByID(ctx, campaignID)
	if err != nil {
		return false, 0, err
	}
	if existing == nil {
		return false, 0, apperrors.NewNotFoundError("campaign")
	}

	return i.campaignRepository.ToggleLike(ctx, campaignID, userID)
}

func (i *CampaignInteractor) AddComment(userID, campaignID string, dto *dtos.AddCommentDTO) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if strings.TrimSpace(dto.Comment) == "" {
		return nil, apperrors.NewValidationError("comment is required")
	}

	existing, err := i.campaignRepository.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("campaign")
	}

	return i.campaignRepository.AddComment(ctx, campaignID, userID, dto.Comment)
}

func (i *CampaignInteractor) ListComments(campaignID string, limit, offset int) ([]models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}
	return i.campaignRepository.ListComments(ctx, campaignID, limit, offset)
}

func buildFundingDetails(fundingType models.FundingType, dto *dtos.CreateCampaignDTO) (models.FundingDetails, error) {
	details := models.FundingDetails{Type: fundingType}

	switch fundingType {
	case models.FundingReward:
		if len(dto.Rewards) == 0 {
			return details, apperrors.NewValidationError("reward campaigns need at least one reward tier")
		}
		for _, tier := range dto.Rewards {
			if !tier.Amount.IsPositive() {
				return details, apperrors.NewValidationError("reward tier amounts must be greater than zero")
			}
			details.Rewards = append(details.Rewards, models.RewardTier{
				Amount:       tier.Amount,
				Title:        tier.Title,
				Description:  tier.Description,
				DeliveryDate: tier.DeliveryDate,
			})
		}
	case models.FundingEquity:
		if dto.Equity == nil {
			return details, apperrors.NewValidationError("equity campaigns need equity terms")
		}
		if !dto.Equity.Valuation.IsPositive() || !dto.Equity.EquityOffered.IsPositive() {
			return details, apperrors.NewValidationError("valuation and equityOffered must be greater than zero")
		}
		minimum := dto.Equity.MinimumInvestment
		if minimum.IsZero() {
			minimum = decimal.NewFromInt(10000)
		}
		details.Equity = &models.EquityTerms{
			Valuation:         dto.Equity.Valuation,
			EquityOffered:     dto.Equity.EquityOffered,
			MinimumInvestment: minimum,
		}
	case models.FundingDebt:
		if dto.Debt == nil {
			return details, apperrors.NewValidationError("debt campaigns need debt terms")
		}
		if !dto.Debt.InterestRate.IsPositive() || dto.Debt.LoanTermMonths <= 0 {
			return details, apperrors.NewValidationError("interestRate and loanTermMonths must be greater than zero")
		}
		details.Debt = &models.DebtTerms{
			InterestRate:      dto.Debt.InterestRate,
			LoanTermMonths:    dto.Debt.LoanTermMonths,
			RepaymentSchedule: dto.Debt.RepaymentSchedule,
		}
	}

	return details, nil
}

func mediaFromDTO(media []dtos.MediaDTO) []models.CampaignMedia {
	if len(media) == 0 {
		return nil
	}
	out := make([]models.CampaignMedia, 0, len(media))
	for _, m := range media {
		out = append(out, models.CampaignMedia{Kind: m.Kind, URL: m.URL})
	}
	return out
}
