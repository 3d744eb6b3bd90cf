package models

import "time"

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// Order is a payment intent. The order id is issued by the payment provider
// and is the idempotence key shared with the transactions ledger. Orders are
// never deleted; created→paid and created→failed are the only transitions.
type Order struct {
	OrderID     string      `db:"order_id"`
	UserID      string      `db:"user_id"`
	CampaignID  string      `db:"campaign_id"`
	AmountMinor int64       `db:"amount"`
	Currency    string      `db:"currency"`
	FundingType FundingType `db:"funding_type"`
	Status      OrderStatus `db:"status"`
	PaymentID   *string     `db:"payment_id"`
	VerifiedAt  *time.Time  `db:"verified_at"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}
