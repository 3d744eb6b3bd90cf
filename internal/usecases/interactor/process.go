package interactor

import (
	"context"
	"time"

	"github.com/fundlane/fundlane/internal/domain/repositories"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/rs/zerolog"
)

// ExpireOrdersInteractor sweeps stale created orders. An order the provider
// never confirmed stays in created forever otherwise.
type ExpireOrdersInteractor struct {
	orderRepository repositories.OrderRepository
	ttl             time.Duration
	logger          *zerolog.Logger
}

func NewExpireOrdersInteractor(orderRepository repositories.OrderRepository, ttl time.Duration) *ExpireOrdersInteractor {
	l := log.GetLogger()
	return &ExpireOrdersInteractor{
		orderRepository: orderRepository,
		ttl:             ttl,
		logger:          &l,
	}
}

func (i *ExpireOrdersInteractor) Execute(ctx context.Context) error {
	swept, err := i.orderRepository.ExpireStale(ctx, i.ttl)
	if err != nil {
		return err
	}
	if swept > 0 {
		i.logger.Info().Int64("orders", swept).Msg("expired stale payment orders")
	}
	return nil
}

// ReconcileInteractor recomputes campaign aggregates from the ledger and
// overwrites any live aggregate that drifted. The ledger always wins.
type ReconcileInteractor struct {
	campaignRepository repositories.CampaignRepository
	logger             *zerolog.Logger
}

func NewReconcileInteractor(campaignRepository repositories.CampaignRepository) *ReconcileInteractor {
	l := log.GetLogger()
	return &ReconcileInteractor{
		campaignRepository: campaignRepository,
		logger:             &l,
	}
}

func (i *ReconcileInteractor) Execute(ctx context.Context) error {
	drifted, err := i.campaignRepository.ReconcileAggregates(ctx)
	if err != nil {
		return err
	}
	for _, row := range drifted {
		i.logger.Warn().
			Str("campaign_id", row.CampaignID).
			Str("live_raised", row.LiveRaised.String()).
			Str("ledger_raised", row.LedgerRaised.String()).
			Int("live_backers", row.LiveBackers).
			Int("ledger_backers", row.LedgerBackers).
			Msg("campaign aggregate drifted from ledger, corrected")
	}
	if len(drifted) == 0 {
		i.logger.Debug().Msg("campaign aggregates consistent with ledger")
	}
	return nil
}
