package di

import (
	"strconv"
	"time"

	"github.com/fundlane/fundlane/internal/config"
	"github.com/fundlane/fundlane/internal/infrastructure/api/handlers"
	"github.com/fundlane/fundlane/internal/infrastructure/database/repositories"
	"github.com/fundlane/fundlane/internal/usecases/interactor"
	"github.com/fundlane/fundlane/pkg/providerclient"
	"github.com/fundlane/fundlane/pkg/rabbitmq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	Config          *config.Config
	PaymentHandler  *handlers.PaymentHandler
	CampaignHandler *handlers.CampaignHandler
	ExpireOrders    *interactor.ExpireOrdersInteractor
	Reconcile       *interactor.ReconcileInteractor
	Publisher       rabbitmq.Publisher
}

// NewContainer wires repositories, interactors and handlers together.
func NewContainer(db *pgxpool.Pool, cfg *config.Config, publisher rabbitmq.Publisher) *Container {
	orderRepository := repositories.NewOrderRepositoryImpl(db)
	ledgerRepository := repositories.NewLedgerRepositoryImpl(db)
	campaignRepository := repositories.NewCampaignRepositoryImpl(db)
	userRepository := repositories.NewUserRepositoryImpl(db)

	provider := providerclient.NewClient(cfg.Payment.ProviderBaseURL, cfg.Payment.ProviderKeyID, cfg.Payment.ProviderSecret)

	paymentInteractor := interactor.NewPaymentInteractor(
		orderRepository,
		ledgerRepository,
		campaignRepository,
		userRepository,
		provider,
		publisher,
		cfg.Payment.ProviderSecret,
	)
	paymentHandler := handlers.NewPaymentHandler(paymentInteractor)

	campaignInteractor := interactor.NewCampaignInteractor(campaignRepository)
	campaignHandler := handlers.NewCampaignHandler(campaignInteractor)

	ttlMinutes, err := strconv.Atoi(cfg.Payment.OrderTTLMinutes)
	if err != nil || ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	expireOrders := interactor.NewExpireOrdersInteractor(orderRepository, time.Duration(ttlMinutes)*time.Minute)
	reconcile := interactor.NewReconcileInteractor(campaignRepository)

	return &Container{
		Config:          cfg,
		PaymentHandler:  paymentHandler,
		CampaignHandler: campaignHandler,
		ExpireOrders:    expireOrders,
		Reconcile:       reconcile,
		Publisher:       publisher,
	}
}
