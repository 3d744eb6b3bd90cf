package interactor

import (
	"context"
	"fmt"
	"time"

	"github.com/fundlane/fundlane/internal/domain/funding"
	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	apperrors "github.com/fundlane/fundlane/internal/errors"
	"github.com/fundlane/fundlane/internal/usecases/dtos"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/fundlane/fundlane/pkg/providerclient"
	"github.com/fundlane/fundlane/pkg/rabbitmq"
	"github.com/fundlane/fundlane/pkg/signature"
	"github.com/rs/zerolog"
)

const opTimeout = 5 * time.Second

// ProviderOrderCreator is the narrow slice of the provider client the
// interactor needs.
type ProviderOrderCreator interface {
	CreateOrder(ctx context.Context, req providerclient.CreateOrderRequest) (*providerclient.ProviderOrder, error)
}

type PaymentInteractor struct {
	orderRepository    repositories.OrderRepository
	ledgerRepository   repositories.LedgerRepository
	campaignRepository repositories.CampaignRepository
	userRepository     repositories.UserRepository
	provider           ProviderOrderCreator
	publisher          rabbitmq.Publisher
	providerSecret     string
	logger             *zerolog.Logger
}

func NewPaymentInteractor(
	orderRepository repositories.OrderRepository,
	ledgerRepository repositories.LedgerRepository,
	campaignRepository repositories.CampaignRepository,
	userRepository repositories.UserRepository,
	provider ProviderOrderCreator,
	publisher rabbitmq.Publisher,
	providerSecret string,
) *PaymentInteractor {
	l := log.GetLogger()
	return &PaymentInteractor{
		orderRepository:    orderRepository,
		ledgerRepository:   ledgerRepository,
		campaignRepository: campaignRepository,
		userRepository:     userRepository,
		provider:           provider,
		publisher:          publisher,
		providerSecret:     providerSecret,
		logger:             &l,
	}
}

// CreateOrder validates the contribution against the campaign's funding model
// and registers a payment intent with the provider. Nothing is credited here.
func (i *PaymentInteractor) CreateOrder(userID string, dto *dtos.CreateOrderDTO) (*dtos.OrderCreatedDTO, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if dto.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be greater than zero")
	}
	if dto.CampaignID == "" || dto.FundingType == "" {
		return nil, apperrors.NewValidationError("campaignId and fundingType are required")
	}
	currency := dto.Currency
	if currency == "" {
		currency = "INR"
	}

	user, err := i.userRepository.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user")
	}

	campaign, err := i.campaignRepository.GetByID(ctx, dto.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NewNotFoundError("campaign")
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, apperrors.NewValidationError(fmt.Sprintf("campaign is %s and not accepting contributions", campaign.Status))
	}

	if err = funding.Validate(models.FundingType(dto.FundingType), dto.Amount, campaign.Funding); err != nil {
		return nil, err
	}

	providerOrder, err := i.provider.CreateOrder(ctx, providerclient.CreateOrderRequest{
		Amount:   dto.Amount,
		Currency: currency,
		Receipt:  fmt.Sprintf("receipt_%s_%d", dto.CampaignID, time.Now().UnixMilli()),
		Notes: map[string]string{
			"campaign_id":  dto.CampaignID,
			"user_id":      userID,
			"funding_type": dto.FundingType,
		},
	})
	if err != nil {
		i.logger.Error().Err(err).Str("campaign_id", dto.CampaignID).Msg("provider order creation failed")
		return nil, apperrors.NewProviderUnavailableError(err)
	}

	order := &models.Order{
		OrderID:     providerOrder.ID,
		UserID:      userID,
		CampaignID:  dto.CampaignID,
		AmountMinor: dto.Amount,
		Currency:    currency,
		FundingType: models.FundingType(dto.FundingType),
	}
	if err = i.orderRepository.Create(ctx, order); err != nil {
		return nil, err
	}

	return &dtos.OrderCreatedDTO{
		OrderID:  order.OrderID,
		Amount:   order.AmountMinor,
		Currency: order.Currency,
	}, nil
}

// VerifyPayment settles a signed provider callback. Replays of an already
// settled order return the existing transaction instead of an error; a bad
// signature rejects with no state change.
func (i *PaymentInteractor) VerifyPayment(userID string, dto *dtos.VerifyPaymentDTO) (*dtos.VerifyPaymentResultDTO, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if dto.OrderID == "" || dto.PaymentID == "" || dto.Signature == "" {
		return nil, apperrors.NewValidationError("orderId, paymentId and signature are required")
	}

	order, err := i.orderRepository.GetByOrderID(ctx, dto.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewNotFoundError("order")
	}
	if order.UserID != userID {
		i.logger.Warn().
			Str("order_id", dto.OrderID).
			Str("user_id", userID).
			Msg("settlement attempt against another user's order")
		return nil, apperrors.NewUnauthorizedError("order belongs to another user")
	}

	switch order.Status {
	case models.OrderStatusPaid:
		return i.replaySettled(ctx, order)
	case models.OrderStatusFailed:
		return nil, apperrors.NewValidationError("order has expired, create a new one")
	}

	if !signature.Verify(dto.OrderID, dto.PaymentID, dto.Signature, i.providerSecret) {
		i.logger.Warn().
			Str("order_id", dto.OrderID).
			Str("user_id", userID).
			Msg("rejected settlement callback with invalid signature")
		return nil, apperrors.NewUnauthorizedError("invalid payment signature")
	}

	campaign, err := i.campaignRepository.GetByID(ctx, order.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NewNotFoundError("campaign")
	}
	// re-check the funding model: the campaign's terms may have changed
	// between order creation and settlement
	if err = funding.Validate(order.FundingType, order.AmountMinor, campaign.Funding); err != nil {
		return nil, err
	}

	row, err := i.ledgerRepository.Settle(ctx, repositories.SettleParams{
		OrderID:     order.OrderID,
		PaymentID:   dto.PaymentID,
		UserID:      order.UserID,
		CampaignID:  order.CampaignID,
		Amount:      funding.MajorAmount(order.AmountMinor),
		FundingType: order.FundingType,
	})
	if err != nil {
		switch err.(type) {
		case *apperrors.AlreadySettledError, *apperrors.DuplicateOrderError:
			return i.resolveSettleRace(ctx, order.OrderID)
		}
		return nil, err
	}

	i.logger.Info().
		Str("order_id", order.OrderID).
		Str("campaign_id", order.CampaignID).
		Str("raised", row.CampaignRaised.String()).
		Int("backers", row.CampaignBackers).
		Msg("contribution settled")

	event := rabbitmq.ContributionSettledEvent{
		TransactionID: row.Transaction.ID,
		OrderID:       row.Transaction.OrderID,
		UserID:        row.Transaction.UserID,
		CampaignID:    row.Transaction.CampaignID,
		Amount:        row.Transaction.Amount,
		FundingType:   string(row.Transaction.FundingType),
		SettledAt:     row.Transaction.CreatedAt,
	}
	if err = i.publisher.PublishContributionSettled(ctx, event); err != nil {
		// settlement already committed; event delivery is best effort
		i.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to publish settlement event")
	}

	return &dtos.VerifyPaymentResultDTO{
		Success:     true,
		Transaction: &row.Transaction,
	}, nil
}

// resolveSettleRace classifies a settlement that found no created order row.
// The row left created under our feet: either a concurrent callback settled
// it, or the expiry sweep failed it. Re-read the status to tell them apart.
func (i *PaymentInteractor) resolveSettleRace(ctx context.Context, orderID string) (*dtos.VerifyPaymentResultDTO, error) {
	order, err := i.orderRepository.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewNotFoundError("order")
	}
	if order.Status == models.OrderStatusFailed {
		return nil, apperrors.NewValidationError("order has expired, create a new one")
	}

	return i.replaySettled(ctx, order)
}

// replaySettled answers a duplicate callback with the transaction that
// already exists for the order.
func (i *PaymentInteractor) replaySettled(ctx context.Context, order *models.Order) (*dtos.VerifyPaymentResultDTO, error) {
	transaction, err := i.ledgerRepository.GetByOrderID(ctx, order.OrderID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		// a paid order with no ledger entry breaks the settlement invariant
		return nil, fmt.Errorf("order %s is paid but has no ledger entry", order.OrderID)
	}

	return &dtos.VerifyPaymentResultDTO{
		Success:        true,
		AlreadySettled: true,
		Transaction:    transaction,
	}, nil
}

// GetPaymentHistory is scoped to the requesting identity.
func (i *PaymentInteractor) GetPaymentHistory(requestingUserID, userID string) (*dtos.PaymentHistoryDTO, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if requestingUserID != userID {
		return nil, apperrors.NewUnauthorizedError("payment history is private")
	}

	rows, err := i.ledgerRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dtos.PaymentHistoryDTO{Transactions: rows, Total: len(rows)}, nil
}

func (i *PaymentInteractor) GetCampaignTransactions(campaignID string) (*dtos.CampaignTransactionsDTO, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := i.ledgerRepository.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	totals, err := i.ledgerRepository.SumByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return &dtos.CampaignTransactionsDTO{
		Transactions: rows,
		Summary: dtos.CampaignTransactionsSummary{
			TotalRaised:  totals.TotalRaised,
			TotalBackers: totals.TotalBackers,
		},
	}, nil
}
