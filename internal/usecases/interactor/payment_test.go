package interactor

import (
	"context"
	"testing"
	"time"

	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	apperrors "github.com/fundlane/fundlane/internal/errors"
	"github.com/fundlane/fundlane/internal/usecases/dtos"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/fundlane/fundlane/pkg/providerclient"
	"github.com/fundlane/fundlane/pkg/rabbitmq"
	"github.com/fundlane/fundlane/pkg/signature"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_provider_secret"

func init() {
	log.Init("fundlane-test")
}

type stubOrderRepository struct {
	repositories.OrderRepository
	orders      map[string]*models.Order
	createCalls int
	createErr   error
}

func newStubOrderRepository() *stubOrderRepository {
	return &stubOrderRepository{orders: map[string]*models.Order{}}
}

func (s *stubOrderRepository) Create(_ context.Context, order *models.Order) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.orders[order.OrderID]; exists {
		return apperrors.NewDuplicateOrderError(order.OrderID)
	}
	order.Status = models.OrderStatusCreated
	order.CreatedAt = time.Now()
	s.orders[order.OrderID] = order
	return nil
}

func (s *stubOrderRepository) GetByOrderID(_ context.Context, orderID string) (*models.Order, error) {
	return s.orders[orderID], nil
}

type stubLedgerRepository struct {
	repositories.LedgerRepository
	transactions map[string]*models.Transaction
	settleCalls  int
	settleErr    error
	onSettle     func()
	totals       repositories.LedgerTotals
	userRows     []repositories.UserTransactionRow
	campaignRows []repositories.CampaignTransactionRow
}

func newStubLedgerRepository() *stubLedgerRepository {
	return &stubLedgerRepository{transactions: map[string]*models.Transaction{}}
}

func (s *stubLedgerRepository) Settle(_ context.Context, params repositories.SettleParams) (repositories.SettleRow, error) {
	s.settleCalls++
	if s.onSettle != nil {
		s.onSettle()
	}
	if s.settleErr != nil {
		return repositories.SettleRow{}, s.settleErr
	}
	if _, exists := s.transactions[params.OrderID]; exists {
		return repositories.SettleRow{}, apperrors.NewDuplicateOrderError(params.OrderID)
	}
	transaction := models.Transaction{
		ID:          "txn_" + params.OrderID,
		OrderID:     params.OrderID,
		PaymentID:   params.PaymentID,
		UserID:      params.UserID,
		CampaignID:  params.CampaignID,
		Amount:      params.Amount,
		FundingType: params.FundingType,
		Status:      models.TransactionStatusCompleted,
		CreatedAt:   time.Now(),
	}
	s.transactions[params.OrderID] = &transaction
	return repositories.SettleRow{
		Transaction:     transaction,
		CampaignRaised:  params.Amount,
		CampaignBackers: 1,
		CampaignStatus:  models.CampaignStatusActive,
	}, nil
}

func (s *stubLedgerRepository) GetByOrderID(_ context.Context, orderID string) (*models.Transaction, error) {
	return s.transactions[orderID], nil
}

func (s *stubLedgerRepository) ListByUser(_ context.Context, _ string) ([]repositories.UserTransactionRow, error) {
	return s.userRows, nil
}

func (s *stubLedgerRepository) ListByCampaign(_ context.Context, _ string) ([]repositories.CampaignTransactionRow, error) {
	return s.campaignRows, nil
}

func (s *stubLedgerRepository) SumByCampaign(_ context.Context, _ string) (repositories.LedgerTotals, error) {
	return s.totals, nil
}

type stubCampaignRepository struct {
	repositories.CampaignRepository
	campaigns map[string]*models.Campaign
}

func newStubCampaignRepository(campaigns ...*models.Campaign) *stubCampaignRepository {
	s := &stubCampaignRepository{campaigns: map[string]*models.Campaign{}}
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return s
}

func (s *stubCampaignRepository) GetByID(_ context.Context, id string) (*models.Campaign, error) {
	return s.campaigns[id], nil
}

type stubUserRepository struct {
	repositories.UserRepository
	users map[string]*models.User
}

func newStubUserRepository(users ...*models.User) *stubUserRepository {
	s := &stubUserRepository{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

type stubProvider struct {
	calls   int
	err     error
	orderID string
}

func (s *stubProvider) CreateOrder(_ context.Context, req providerclient.CreateOrderRequest) (*providerclient.ProviderOrder, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &providerclient.ProviderOrder{
		ID:       s.orderID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

type stubPublisher struct {
	events []rabbitmq.ContributionSettledEvent
	err    error
}

func (s *stubPublisher) PublishContributionSettled(_ context.Context, event rabbitmq.ContributionSettledEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubPublisher) Close() {}

func activeDonationCampaign(id string) *models.Campaign {
	return &models.Campaign{
		ID:         id,
		CreatorID:  "creator-1",
		Title:      "Community garden",
		GoalAmount: decimal.NewFromInt(50000),
		Status:     models.CampaignStatusActive,
		Funding:    models.FundingDetails{Type: models.FundingDonation},
	}
}

type paymentFixture struct {
	interactor *PaymentInteractor
	orders     *stubOrderRepository
	ledger     *stubLedgerRepository
	campaigns  *stubCampaignRepository
	users      *stubUserRepository
	provider   *stubProvider
	publisher  *stubPublisher
}

func newPaymentFixture(campaign *models.Campaign) *paymentFixture {
	f := &paymentFixture{
		orders:    newStubOrderRepository(),
		ledger:    newStubLedgerRepository(),
		campaigns: newStubCampaignRepository(campaign),
		users:     newStubUserRepository(&models.User{ID: "user-1", FirstName: "Ada", LastName: "Patel", Email: "ada@example.com"}),
		provider:  &stubProvider{orderID: "order_abc123"},
		publisher: &stubPublisher{},
	}
	f.interactor = NewPaymentInteractor(f.orders, f.ledger, f.campaigns, f.users, f.provider, f.publisher, testSecret)
	return f
}

func (f *paymentFixture) createdOrder(t *testing.T) *dtos.OrderCreatedDTO {
	t.Helper()
	created, err := f.interactor.CreateOrder("user-1", &dtos.CreateOrderDTO{
		Amount:      5000,
		Currency:    "INR",
		CampaignID:  "camp-1",
		FundingType: "donation",
	})
	require.NoError(t, err)
	return created
}

func TestPaymentInteractor_CreateOrder(t *testing.T) {
	t.Run("creates an order for a valid donation", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))

		created := f.createdOrder(t)

		assert.Equal(t, "order_abc123", created.OrderID)
		assert.Equal(t, int64(5000), created.Amount)
		assert.Equal(t, "INR", created.Currency)
		require.Contains(t, f.orders.orders, "order_abc123")
		assert.Equal(t, models.OrderStatusCreated, f.orders.orders["order_abc123"].Status)
	})

	t.Run("rejects below-minimum donation before calling the provider", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))

		_, err := f.interactor.CreateOrder("user-1", &dtos.CreateOrderDTO{
			Amount:      999, // 9.99 major units, donation minimum is 10
			CampaignID:  "camp-1",
			FundingType: "donation",
		})

		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Zero(t, f.provider.calls)
		assert.Zero(t, f.orders.createCalls)
	})

	t.Run("rejects unknown funding type", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))

		_, err := f.interactor.CreateOrder("user-1", &dtos.CreateOrderDTO{
			Amount:      5000,
			CampaignID:  "camp-1",
			FundingType: "lottery",
		})

		var unsupportedErr *apperrors.UnsupportedFundingTypeError
		require.ErrorAs(t, err, &unsupportedErr)
		assert.Equal(t, "lottery", unsupportedErr.FundingType)
	})

	t.Run("rejects contribution to a non-active campaign", func(t *testing.T) {
		campaign := activeDonationCampaign("camp-1")
		campaign.Status = models.CampaignStatusCancelled
		f := newPaymentFixture(campaign)

		_, err := f.interactor.CreateOrder("user-1", &dtos.CreateOrderDTO{
			Amount:      5000,
			CampaignID:  "camp-1",
			FundingType: "donation",
		})

		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Zero(t, f.provider.calls)
	})

	t.Run("missing campaign", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))

		_, err := f.interactor.CreateOrder("user-1", &dtos.CreateOrderDTO{
			Amount:      5000,
			CampaignID:  "camp-missing",
			FundingType: "donation",
		})

		var notFoundErr *apperrors.NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "campaign", notFoundErr.Resource)
	})

	t.Run("provider outage maps to provider unavailable and creates nothing", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		f.provider.err = assert.AnError

		_, err := f.interactor.CreateOrder("user-1", &dtos.CreateOrderDTO{
			Amount:      5000,
			CampaignID:  "camp-1",
			FundingType: "donation",
		})

		var providerErr *apperrors.ProviderUnavailableError
		require.ErrorAs(t, err, &providerErr)
		assert.Zero(t, f.orders.createCalls)
	})

	t.Run("equity contribution below minimum investment", func(t *testing.T) {
		campaign := activeDonationCampaign("camp-1")
		campaign.Funding = models.FundingDetails{
			Type: models.FundingEquity,
			Equity: &models.EquityTerms{
				Valuation:         decimal.NewFromInt(1000000),
				EquityOffered:     decimal.NewFromInt(10),
				MinimumInvestment: decimal.NewFromInt(10000),
			},
		}
		f := newPaymentFixture(campaign)

		_, err := f.interactor.CreateOrder("user-1", &dtos.CreateOrderDTO{
			Amount:      999999, // 9999.99, just under the 10000 minimum
			CampaignID:  "camp-1",
			FundingType: "equity",
		})

		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestPaymentInteractor_VerifyPayment(t *testing.T) {
	verifyDTO := func(orderID, paymentID string) *dtos.VerifyPaymentDTO {
		return &dtos.VerifyPaymentDTO{
			OrderID:   orderID,
			PaymentID: paymentID,
			Signature: signature.Compute(orderID, paymentID, testSecret),
		}
	}

	t.Run("settles a correctly signed callback", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)

		result, err := f.interactor.VerifyPayment("user-1", verifyDTO(created.OrderID, "pay_1"))

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.AlreadySettled)
		require.NotNil(t, result.Transaction)
		assert.Equal(t, created.OrderID, result.Transaction.OrderID)
		assert.True(t, result.Transaction.Amount.Equal(decimal.NewFromInt(50)))
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, created.OrderID, f.publisher.events[0].OrderID)
	})

	t.Run("rejects a tampered signature without touching the ledger", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)

		dto := verifyDTO(created.OrderID, "pay_1")
		dto.Signature = signature.Compute(created.OrderID, "pay_other", testSecret)

		_, err := f.interactor.VerifyPayment("user-1", dto)

		var unauthorizedErr *apperrors.UnauthorizedError
		require.ErrorAs(t, err, &unauthorizedErr)
		assert.Zero(t, f.ledger.settleCalls)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("rejects settlement of another user's order", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)

		_, err := f.interactor.VerifyPayment("user-2", verifyDTO(created.OrderID, "pay_1"))

		var unauthorizedErr *apperrors.UnauthorizedError
		require.ErrorAs(t, err, &unauthorizedErr)
		assert.Zero(t, f.ledger.settleCalls)
	})

	t.Run("replayed callback is an idempotent success", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)

		first, err := f.interactor.VerifyPayment("user-1", verifyDTO(created.OrderID, "pay_1"))
		require.NoError(t, err)

		// mirror the database transition before the replay
		f.orders.orders[created.OrderID].Status = models.OrderStatusPaid

		second, err := f.interactor.VerifyPayment("user-1", verifyDTO(created.OrderID, "pay_1"))
		require.NoError(t, err)

		assert.True(t, second.Success)
		assert.True(t, second.AlreadySettled)
		assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
		assert.Equal(t, 1, f.ledger.settleCalls)
		assert.Len(t, f.publisher.events, 1)
	})

	t.Run("losing a settlement race answers like a replay", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)

		// a concurrent callback already appended the ledger entry
		f.ledger.transactions[created.OrderID] = &models.Transaction{
			ID:      "txn_existing",
			OrderID: created.OrderID,
			Amount:  decimal.NewFromInt(50),
		}
		f.ledger.settleErr = apperrors.NewAlreadySettledError(created.OrderID)

		result, err := f.interactor.VerifyPayment("user-1", verifyDTO(created.OrderID, "pay_1"))

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.AlreadySettled)
		assert.Equal(t, "txn_existing", result.Transaction.ID)
	})

	t.Run("order expired mid-settlement rejects instead of replaying", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)

		// the expiry sweep fails the order between the status read and the
		// settlement write
		f.ledger.settleErr = apperrors.NewAlreadySettledError(created.OrderID)
		f.ledger.onSettle = func() {
			f.orders.orders[created.OrderID].Status = models.OrderStatusFailed
		}

		_, err := f.interactor.VerifyPayment("user-1", verifyDTO(created.OrderID, "pay_1"))

		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("expired order cannot settle", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)
		f.orders.orders[created.OrderID].Status = models.OrderStatusFailed

		_, err := f.interactor.VerifyPayment("user-1", verifyDTO(created.OrderID, "pay_1"))

		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Zero(t, f.ledger.settleCalls)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))

		_, err := f.interactor.VerifyPayment("user-1", verifyDTO("order_missing", "pay_1"))

		var notFoundErr *apperrors.NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))

		_, err := f.interactor.VerifyPayment("user-1", &dtos.VerifyPaymentDTO{OrderID: "order_abc123"})

		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("publish failure does not fail the settlement", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		created := f.createdOrder(t)
		f.publisher.err = assert.AnError

		result, err := f.interactor.VerifyPayment("user-1", verifyDTO(created.OrderID, "pay_1"))

		require.NoError(t, err)
		assert.True(t, result.Success)
	})
}

func TestPaymentInteractor_GetPaymentHistory(t *testing.T) {
	t.Run("returns own history", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))
		f.ledger.userRows = []repositories.UserTransactionRow{
			{Transaction: models.Transaction{ID: "txn_1", UserID: "user-1"}, CampaignTitle: "Community garden"},
		}

		history, err := f.interactor.GetPaymentHistory("user-1", "user-1")

		require.NoError(t, err)
		assert.Equal(t, 1, history.Total)
		assert.Equal(t, "txn_1", history.Transactions[0].ID)
	})

	t.Run("another user's history is forbidden", func(t *testing.T) {
		f := newPaymentFixture(activeDonationCampaign("camp-1"))

		_, err := f.interactor.GetPaymentHistory("user-1", "user-2")

		var unauthorizedErr *apperrors.UnauthorizedError
		require.ErrorAs(t, err, &unauthorizedErr)
	})
}

func TestPaymentInteractor_GetCampaignTransactions(t *testing.T) {
	f := newPaymentFixture(activeDonationCampaign("camp-1"))
	f.ledger.campaignRows = []repositories.CampaignTransactionRow{
		{Transaction: models.Transaction{ID: "txn_1", CampaignID: "camp-1"}, BackerFirstName: "Ada"},
	}
	f.ledger.totals = repositories.LedgerTotals{TotalRaised: decimal.NewFromInt(50), TotalBackers: 1}

	result, err := f.interactor.GetCampaignTransactions("camp-1")

	require.NoError(t, err)
	assert.Len(t, result.Transactions, 1)
	assert.True(t, result.Summary.TotalRaised.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, result.Summary.TotalBackers)
}
