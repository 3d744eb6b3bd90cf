package repositories

import (
	"context"

	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/shopspring/decimal"
)

type CampaignFilters struct {
	Category       string
	Status         string
	TypeOfCampaign string
	Search         string
	Limit          int
	Offset         int
	SortBy         string
	SortOrder      string
}

// CampaignUpdate holds the allow-listed mutable fields. Money aggregates are
// deliberately absent: raised_amount and backers_count are only written by
// settlement and reconciliation.
type CampaignUpdate struct {
	Title       *string
	Description *string
	GoalAmount  *decimal.Decimal
	Location    *string
	Status      *models.CampaignStatus
}

// ReconcileRow reports one campaign whose live aggregate drifted from the
// ledger, after the aggregate was overwritten from the ledger totals.
type ReconcileRow struct {
	CampaignID    string
	LiveRaised    decimal.Decimal
	LiveBackers   int
	LedgerRaised  decimal.Decimal
	LedgerBackers int
}

type CampaignRepository interface {
	// GetByID returns (nil, nil) when the campaign does not exist.
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context, filters CampaignFilters) ([]models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Update(ctx context.Context, id string, update CampaignUpdate) (*models.Campaign, error)
	// Delete removes the campaign and all dependent rows (rewards, likes,
	// comments, media, orders, ledger entries) in one transaction.
	Delete(ctx context.Context, id string) error
	// ToggleLike relies on the unique (campaign_id, user_id) constraint, not
	// check-then-insert.
	ToggleLike(ctx context.Context, campaignID, userID string) (liked bool, totalLikes int, err error)
	AddComment(ctx context.Context, campaignID, userID, comment string) (*models.Comment, error)
	ListComments(ctx context.Context, campaignID string, limit, offset int) ([]models.Comment, error)
	// ReconcileAggregates overwrites every drifted campaign aggregate with
	// totals recomputed from the ledger and reports what drifted.
	ReconcileAggregates(ctx context.Context) ([]ReconcileRow, error)
}
