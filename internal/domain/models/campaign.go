package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusFunded    CampaignStatus = "funded"
	CampaignStatusExpired   CampaignStatus = "expired"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

var ValidCampaignStatuses = map[CampaignStatus]struct{}{
	CampaignStatusActive:    {},
	CampaignStatusFunded:    {},
	CampaignStatusExpired:   {},
	CampaignStatusCancelled: {},
}

// CampaignMedia is an externally hosted image or video attached to a campaign.
type CampaignMedia struct {
	ID   string `json:"id" db:"id"`
	Kind string `json:"kind" db:"kind"` // "image" or "video"
	URL  string `json:"url" db:"url"`
}

// Campaign is the unit of accounting. RaisedAmount and BackersCount are
// projections over the transactions ledger; they are mutated only by
// settlement and by reconciliation, never through Update.
type Campaign struct {
	ID             string          `json:"id" db:"id"`
	CreatorID      string          `json:"creator_id" db:"creator_id"`
	Title          string          `json:"title" db:"title"`
	Description    string          `json:"description" db:"description"`
	Category       string          `json:"category" db:"category"`
	TypeOfCampaign string          `json:"type_of_campaign" db:"type_of_campaign"` // "donation" or "investment"
	GoalAmount     decimal.Decimal `json:"goal_amount" db:"goal_amount"`
	RaisedAmount   decimal.Decimal `json:"raised_amount" db:"raised_amount"`
	BackersCount   int             `json:"backers_count" db:"backers_count"`
	Status         CampaignStatus  `json:"status" db:"status"`
	Location       string          `json:"location" db:"location"`
	Deadline       *time.Time      `json:"deadline,omitempty" db:"deadline"`
	Funding        FundingDetails  `json:"funding"`
	Media          []CampaignMedia `json:"media,omitempty"`
	TotalLikes     int             `json:"total_likes"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Comment is a discussion entry on a campaign page.
type Comment struct {
	ID         string    `json:"id" db:"id"`
	CampaignID string    `json:"campaign_id" db:"campaign_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
