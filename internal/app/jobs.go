package app

import (
	"context"
	"time"

	"github.com/fundlane/fundlane/internal/config"
	"github.com/fundlane/fundlane/internal/errors"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// JobHandler is a background task invoked on a cron schedule.
type JobHandler interface {
	Execute(ctx context.Context) error
}

const jobTimeout = 30 * time.Second

// JobRunner schedules the order-expiry sweep and the ledger reconciliation.
type JobRunner struct {
	cron      *cron.Cron
	config    config.Process
	expire    JobHandler
	reconcile JobHandler
	logger    *zerolog.Logger
}

func NewJobRunner(cfg config.Process, expire, reconcile JobHandler) *JobRunner {
	l := log.GetLogger()
	return &JobRunner{
		cron:      cron.New(),
		config:    cfg,
		expire:    expire,
		reconcile: reconcile,
		logger:    &l,
	}
}

// Start registers the jobs and runs the scheduler until ctx is cancelled.
func (r *JobRunner) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.config.ExpireSchedule, func() {
		r.run(ctx, "expire-orders", r.expire, errors.ErrFailedExpireOrders)
	})
	if err != nil {
		return err
	}

	_, err = r.cron.AddFunc(r.config.ReconcileSchedule, func() {
		r.run(ctx, "reconcile-campaigns", r.reconcile, errors.ErrFailedReconcileCampaigns)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info().
		Str("expire_schedule", r.config.ExpireSchedule).
		Str("reconcile_schedule", r.config.ReconcileSchedule).
		Msg("background jobs scheduled")

	go func() {
		<-ctx.Done()
		stopCtx := r.cron.Stop()
		<-stopCtx.Done()
	}()

	return nil
}

func (r *JobRunner) run(ctx context.Context, name string, handler JobHandler, failMsg string) {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if err := handler.Execute(jobCtx); err != nil {
		r.logger.Error().Err(err).Str("job", name).Msg(failMsg)
	}
}
