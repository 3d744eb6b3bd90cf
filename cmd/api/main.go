package main

import (
	"context"

	"github.com/fundlane/fundlane/internal/app"
	"github.com/fundlane/fundlane/internal/config"
	"github.com/fundlane/fundlane/internal/di"
	"github.com/fundlane/fundlane/internal/errors"
	"github.com/fundlane/fundlane/internal/infrastructure/api/routers"
	"github.com/fundlane/fundlane/internal/infrastructure/database/db_client"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/fundlane/fundlane/pkg/rabbitmq"
)

const (
	appName = "fundlane"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	log.Init(appName, log.WithConsoleLogger())
	logger := log.GetLogger()

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}

	publisher := rabbitmq.Connect(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()

	container := di.NewContainer(db, cfg, publisher)

	jobs := app.NewJobRunner(cfg.Process, container.ExpireOrders, container.Reconcile)
	if err := jobs.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule background jobs")
	}

	router := routers.NewRouter(container)
	service := app.NewService(cfg)
	service.Run(ctx, router)
}
