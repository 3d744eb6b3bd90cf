package dtos

import (
	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	"github.com/shopspring/decimal"
)

// CreateOrderDTO is the inbound payment-intent request. Amount is in minor
// currency units.
type CreateOrderDTO struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	CampaignID  string `json:"campaignId"`
	FundingType string `json:"fundingType"`
}

// OrderCreatedDTO echoes the provider order back to the client, which hands
// it to the provider's checkout flow.
type OrderCreatedDTO struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyPaymentDTO is the signed settlement callback.
type VerifyPaymentDTO struct {
	OrderID     string `json:"orderId"`
	PaymentID   string `json:"paymentId"`
	Signature   string `json:"signature"`
	CampaignID  string `json:"campaignId"`
	FundingType string `json:"fundingType"`
	Amount      int64  `json:"amount"`
}

// VerifyPaymentResultDTO reports the settled (or previously settled)
// transaction. AlreadySettled distinguishes a replayed callback from the
// first settlement; both are success to the caller.
type VerifyPaymentResultDTO struct {
	Success        bool                `json:"success"`
	AlreadySettled bool                `json:"alreadySettled"`
	Transaction    *models.Transaction `json:"transaction"`
}

type PaymentHistoryDTO struct {
	Transactions []repositories.UserTransactionRow `json:"transactions"`
	Total        int                               `json:"total"`
}

type CampaignTransactionsDTO struct {
	Transactions []repositories.CampaignTransactionRow `json:"transactions"`
	Summary      CampaignTransactionsSummary           `json:"summary"`
}

type CampaignTransactionsSummary struct {
	TotalRaised  decimal.Decimal `json:"totalRaised"`
	TotalBackers int             `json:"totalBackers"`
}
