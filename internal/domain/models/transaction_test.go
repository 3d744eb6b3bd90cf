package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionJSONFieldNames(t *testing.T) {
	transaction := Transaction{
		ID:          "txn_1",
		OrderID:     "order_1",
		PaymentID:   "pay_1",
		UserID:      "user_1",
		CampaignID:  "camp_1",
		Amount:      decimal.NewFromInt(50),
		FundingType: FundingDonation,
		Status:      TransactionStatusCompleted,
		CreatedAt:   time.Now(),
	}

	body, err := json.Marshal(transaction)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &fields))

	for _, key := range []string{"id", "order_id", "payment_id", "user_id", "campaign_id", "amount", "funding_type", "status", "created_at"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "OrderID")
}
