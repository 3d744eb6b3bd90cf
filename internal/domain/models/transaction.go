package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const TransactionStatusCompleted = "completed"

// Transaction is one immutable ledger entry for a settled contribution.
// Amount is in major currency units. The unique order_id constraint is what
// makes replayed settlement callbacks safe.
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	OrderID     string          `json:"order_id" db:"order_id"`
	PaymentID   string          `json:"payment_id" db:"payment_id"`
	UserID      string          `json:"user_id" db:"user_id"`
	CampaignID  string          `json:"campaign_id" db:"campaign_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	FundingType FundingType     `json:"funding_type" db:"funding_type"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
