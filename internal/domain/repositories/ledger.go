package repositories

import (
	"context"

	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/shopspring/decimal"
)

// SettleParams carries everything the atomic settlement needs: the order
// transition, the ledger append and the aggregate increment happen in one
// database transaction or not at all.
type SettleParams struct {
	OrderID     string
	PaymentID   string
	UserID      string
	CampaignID  string
	Amount      decimal.Decimal
	FundingType models.FundingType
}

type SettleRow struct {
	Transaction     models.Transaction
	CampaignRaised  decimal.Decimal
	CampaignBackers int
	CampaignStatus  models.CampaignStatus
}

// CampaignTransactionRow is a ledger entry joined with backer identity for
// the campaign transaction listing.
type CampaignTransactionRow struct {
	models.Transaction
	BackerFirstName string `json:"backer_first_name"`
	BackerLastName  string `json:"backer_last_name"`
	BackerEmail     string `json:"backer_email"`
}

// UserTransactionRow is a ledger entry joined with campaign metadata for a
// user's payment history.
type UserTransactionRow struct {
	models.Transaction
	CampaignTitle    string `json:"campaign_title"`
	CampaignCategory string `json:"campaign_category"`
	CampaignType     string `json:"campaign_type"`
}

type LedgerTotals struct {
	TotalRaised  decimal.Decimal
	TotalBackers int
}

type LedgerRepository interface {
	// Settle marks the order paid, appends the ledger entry and bumps the
	// campaign aggregate atomically. A unique violation on the order id maps
	// to DuplicateOrderError; the order not being in created state maps to
	// AlreadySettledError.
	Settle(ctx context.Context, params SettleParams) (SettleRow, error)
	// GetByOrderID returns (nil, nil) when the order has no ledger entry yet.
	GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]CampaignTransactionRow, error)
	ListByUser(ctx context.Context, userID string) ([]UserTransactionRow, error)
	// SumByCampaign recomputes totals from the ledger. This is the source of
	// truth the live aggregate is reconciled against.
	SumByCampaign(ctx context.Context, campaignID string) (LedgerTotals, error)
}
