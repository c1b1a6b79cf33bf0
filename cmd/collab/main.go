package main

import (
	"github.com/BenZehavi423/smart-dashboard/internal/auth"
	"github.com/BenZehavi423/smart-dashboard/internal/businesses/repository"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/audit"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/dispatcher"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/handler"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/locktable"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/registry"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/service"
	"github.com/BenZehavi423/smart-dashboard/pkg/app"
	"github.com/BenZehavi423/smart-dashboard/pkg/config"
)

const ServiceName = "collab"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting collaborative edit-lock coordinator")

	businessRepo := repository.NewMongoBusinessRepository(cfg)
	resolver := auth.NewRedisResolver(cfg.Client.Redis, cfg.SessionPrefix)
	auditPublisher := audit.NewPublisher(cfg.KafkaBrokers, cfg.KafkaLockTopic, cfg.Log)

	connRegistry := registry.New()
	lockTable := locktable.New()
	eventDispatcher := dispatcher.New(connRegistry, cfg.Log)

	coordinator := service.NewCoordinator(
		connRegistry,
		lockTable,
		eventDispatcher,
		businessRepo,
		auditPublisher,
		cfg.Log,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewSocketHandler(coordinator, resolver, cfg),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Client.Redis, cfg.Log),
	)

	// Closing every live socket drives the normal disconnect path, so all
	// held locks are reconciled before the process exits.
	serverApp.OnShutdown(eventDispatcher.CloseAll)
	serverApp.OnShutdown(func() {
		if err := auditPublisher.Close(); err != nil {
			cfg.Log.Error("Failed to close audit publisher", "error", err)
		}
	})

	serverApp.Run()
}
