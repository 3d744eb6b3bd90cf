package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fundlane/fundlane/internal/config"
	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	apperr "github.com/fundlane/fundlane/internal/errors"
	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	backerID  = "f60ae2e1-ee72-4a6a-bef2-7cde5c83782f"
	creatorID = "8bd85576-8d8c-47b8-bfa8-6e9d2fc4d267"
	db        *pgxpool.Pool
)

func TestSettle(t *testing.T) {
	setupDB()
	defer db.Close()

	require.NoError(t, truncateFundingTables(db))
	require.NoError(t, seedBacker(db))

	ledgerRepo := NewLedgerRepositoryImpl(db)

	t.Run("settles and credits the aggregate once", func(t *testing.T) {
		campaignID := seedCampaign(t, decimal.NewFromInt(1000))
		order := seedOrder(t, campaignID, 5000)

		row, err := ledgerRepo.Settle(context.Background(), settleParams(order, decimal.NewFromInt(50)))
		require.NoError(t, err)

		assert.Equal(t, order.OrderID, row.Transaction.OrderID)
		assert.Equal(t, models.TransactionStatusCompleted, row.Transaction.Status)
		assert.True(t, row.CampaignRaised.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, row.CampaignBackers)
		assert.Equal(t, models.CampaignStatusActive, row.CampaignStatus)

		raised, backers, status := campaignAggregate(t, campaignID)
		assert.True(t, raised.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, backers)
		assert.Equal(t, "active", status)
	})

	t.Run("replayed settle of a paid order yields AlreadySettledError", func(t *testing.T) {
		campaignID := seedCampaign(t, decimal.NewFromInt(1000))
		order := seedOrder(t, campaignID, 5000)

		_, err := ledgerRepo.Settle(context.Background(), settleParams(order, decimal.NewFromInt(50)))
		require.NoError(t, err)

		_, err = ledgerRepo.Settle(context.Background(), settleParams(order, decimal.NewFromInt(50)))
		var settledErr *apperr.AlreadySettledError
		require.ErrorAs(t, err, &settledErr)

		raised, backers, _ := campaignAggregate(t, campaignID)
		assert.True(t, raised.Equal(decimal.NewFromInt(50)), "replay must not credit twice")
		assert.Equal(t, 1, backers)
	})

	t.Run("duplicate order id maps the unique violation with no second credit", func(t *testing.T) {
		campaignID := seedCampaign(t, decimal.NewFromInt(1000))
		order := seedOrder(t, campaignID, 5000)

		_, err := ledgerRepo.Settle(context.Background(), settleParams(order, decimal.NewFromInt(50)))
		require.NoError(t, err)

		// force the order back to created so the settle statement reaches the
		// ledger insert and trips the unique order_id constraint
		_, err = db.Exec(context.Background(),
			"UPDATE payment_orders SET status = 'created', payment_id = NULL, verified_at = NULL WHERE order_id = $1",
			order.OrderID)
		require.NoError(t, err)

		_, err = ledgerRepo.Settle(context.Background(), settleParams(order, decimal.NewFromInt(50)))
		var duplicateErr *apperr.DuplicateOrderError
		require.ErrorAs(t, err, &duplicateErr)

		raised, backers, _ := campaignAggregate(t, campaignID)
		assert.True(t, raised.Equal(decimal.NewFromInt(50)), "failed settle must roll back entirely")
		assert.Equal(t, 1, backers)

		var ledgerEntries int
		err = db.QueryRow(context.Background(),
			"SELECT COUNT(*) FROM transactions WHERE order_id = $1", order.OrderID).Scan(&ledgerEntries)
		require.NoError(t, err)
		assert.Equal(t, 1, ledgerEntries)
	})

	t.Run("crossing the goal marks the campaign funded, and funded stays funded", func(t *testing.T) {
		campaignID := seedCampaign(t, decimal.NewFromInt(100))

		first := seedOrder(t, campaignID, 6000)
		row, err := ledgerRepo.Settle(context.Background(), settleParams(first, decimal.NewFromInt(60)))
		require.NoError(t, err)
		assert.Equal(t, models.CampaignStatusActive, row.CampaignStatus)

		second := seedOrder(t, campaignID, 5000)
		row, err = ledgerRepo.Settle(context.Background(), settleParams(second, decimal.NewFromInt(50)))
		require.NoError(t, err)
		assert.Equal(t, models.CampaignStatusFunded, row.CampaignStatus)

		third := seedOrder(t, campaignID, 1000)
		row, err = ledgerRepo.Settle(context.Background(), settleParams(third, decimal.NewFromInt(10)))
		require.NoError(t, err)
		assert.Equal(t, models.CampaignStatusFunded, row.CampaignStatus, "funded is terminal for the CASE advancement")
		assert.True(t, row.CampaignRaised.Equal(decimal.NewFromInt(120)), "contributions keep accruing past the goal")
	})

	t.Run("concurrent callbacks for one order credit exactly once", func(t *testing.T) {
		campaignID := seedCampaign(t, decimal.NewFromInt(1000))
		order := seedOrder(t, campaignID, 5000)

		n := 8
		results := make(chan error, n)
		var wg sync.WaitGroup
		wg.Add(n)

		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				_, err := ledgerRepo.Settle(context.Background(), settleParams(order, decimal.NewFromInt(50)))
				results <- err
			}()
		}

		wg.Wait()
		close(results)

		successCount := 0
		for err := range results {
			if err == nil {
				successCount++
				continue
			}
			var settledErr *apperr.AlreadySettledError
			var duplicateErr *apperr.DuplicateOrderError
			assert.True(t, errors.As(err, &settledErr) || errors.As(err, &duplicateErr),
				"losers must surface a conflict, got: %v", err)
		}
		assert.Equal(t, 1, successCount, "exactly one callback settles")

		raised, backers, _ := campaignAggregate(t, campaignID)
		assert.True(t, raised.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, backers)
	})
}

func TestReconcileAggregates(t *testing.T) {
	setupDB()
	defer db.Close()

	require.NoError(t, truncateFundingTables(db))
	require.NoError(t, seedBacker(db))

	ledgerRepo := NewLedgerRepositoryImpl(db)
	campaignRepo := NewCampaignRepositoryImpl(db)

	campaignID := seedCampaign(t, decimal.NewFromInt(1000))
	order := seedOrder(t, campaignID, 5000)
	_, err := ledgerRepo.Settle(context.Background(), settleParams(order, decimal.NewFromInt(50)))
	require.NoError(t, err)

	t.Run("drifted aggregate is overwritten from the ledger", func(t *testing.T) {
		_, err := db.Exec(context.Background(),
			"UPDATE campaigns SET raised_amount = 999, backers_count = 7 WHERE id = $1", campaignID)
		require.NoError(t, err)

		drifted, err := campaignRepo.ReconcileAggregates(context.Background())
		require.NoError(t, err)

		require.Len(t, drifted, 1)
		assert.Equal(t, campaignID, drifted[0].CampaignID)
		assert.True(t, drifted[0].LiveRaised.Equal(decimal.NewFromInt(999)))
		assert.Equal(t, 7, drifted[0].LiveBackers)
		assert.True(t, drifted[0].LedgerRaised.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, drifted[0].LedgerBackers)

		raised, backers, _ := campaignAggregate(t, campaignID)
		assert.True(t, raised.Equal(decimal.NewFromInt(50)), "the ledger wins")
		assert.Equal(t, 1, backers)
	})

	t.Run("consistent aggregates report nothing", func(t *testing.T) {
		drifted, err := campaignRepo.ReconcileAggregates(context.Background())
		require.NoError(t, err)
		assert.Empty(t, drifted)
	})
}

// Test helpers and setup functions
// =================================
// Setup DB
func setupDB() {
	cnf := config.Load()

	poolConfig, err := pgxpool.ParseConfig(cnf.DSN())
	if err != nil {
		panic(err)
	}

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	db, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		panic(err)
	}
}

func truncateFundingTables(db *pgxpool.Pool) error {
	_, err := db.Exec(context.Background(),
		"TRUNCATE TABLE transactions, payment_orders, campaign_rewards, campaign_likes, campaign_comments, campaign_media, campaigns")
	return err
}

func seedBacker(db *pgxpool.Pool) error {
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (id, first_name, last_name, email)
		 VALUES ($1, 'Ada', 'Patel', 'ada@example.com')
		 ON CONFLICT (id) DO NOTHING`,
		backerID)
	return err
}

func seedCampaign(t *testing.T, goal decimal.Decimal) string {
	t.Helper()
	campaign := &models.Campaign{
		CreatorID:   creatorID,
		Title:       "Community garden",
		Description: "Raised beds for the block",
		Category:    "community",
		GoalAmount:  goal,
		Funding:     models.FundingDetails{Type: models.FundingDonation},
	}
	require.NoError(t, NewCampaignRepositoryImpl(db).Create(context.Background(), campaign))
	return campaign.ID
}

func seedOrder(t *testing.T, campaignID string, amountMinor int64) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderID:     "order_" + uuid.New().String(),
		UserID:      backerID,
		CampaignID:  campaignID,
		AmountMinor: amountMinor,
		Currency:    "INR",
		FundingType: models.FundingDonation,
	}
	require.NoError(t, NewOrderRepositoryImpl(db).Create(context.Background(), order))
	return order
}

func settleParams(order *models.Order, amount decimal.Decimal) repositories.SettleParams {
	return repositories.SettleParams{
		OrderID:     order.OrderID,
		PaymentID:   "pay_" + uuid.New().String(),
		UserID:      order.UserID,
		CampaignID:  order.CampaignID,
		Amount:      amount,
		FundingType: order.FundingType,
	}
}

func campaignAggregate(t *testing.T, campaignID string) (decimal.Decimal, int, string) {
	t.Helper()
	var raised decimal.Decimal
	var backers int
	var status string
	err := db.QueryRow(context.Background(),
		"SELECT raised_amount, backers_count, status FROM campaigns WHERE id = $1", campaignID).
		Scan(&raised, &backers, &status)
	require.NoError(t, err)
	return raised, backers, status
}
