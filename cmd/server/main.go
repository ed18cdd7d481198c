package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	reconcontrollers "github.com/fieldops/salesrecon/modules/recon/presentation/controllers"
	reconservices "github.com/fieldops/salesrecon/modules/recon/services"
	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
	rosterpersistence "github.com/fieldops/salesrecon/modules/roster/infrastructure/persistence"
	rosterservices "github.com/fieldops/salesrecon/modules/roster/services"
	"github.com/fieldops/salesrecon/pkg/application"
	"github.com/fieldops/salesrecon/pkg/composables"
	"github.com/fieldops/salesrecon/pkg/configuration"
	"github.com/fieldops/salesrecon/pkg/eventbus"
	"github.com/fieldops/salesrecon/pkg/metrics"
	"github.com/fieldops/salesrecon/pkg/middleware"
	"github.com/fieldops/salesrecon/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	publisher := eventbus.NewEventPublisher(logger)
	publisher.Subscribe(func(ev *staff.TransferredEvent) {
		logger.Infof("roster: %s %s transferred from %q to %q (month %d)",
			ev.New.Role, ev.New.Name, ev.Old.ParentName, ev.New.ParentName, ev.New.EffectiveMonth)
	})
	publisher.Subscribe(func(ev *staff.CreatedEvent) {
		logger.Infof("roster: %s %s added under %q (month %d)",
			ev.Record.Role, ev.Record.Name, ev.Record.ParentName, ev.Record.EffectiveMonth)
	})

	store := rosterservices.NewRosterStore(rosterpersistence.NewStaffRepository(), publisher, logger)
	loadCtx := composables.WithPool(context.Background(), pool)
	store.SetPersistContext(loadCtx)
	if err := store.Load(loadCtx); err != nil {
		logger.WithError(err).Fatal("failed to load roster")
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: publisher,
		Logger:   logger,
	})
	app.RegisterMiddleware(middleware.RequestLogger(logger))
	app.RegisterControllers(
		reconcontrollers.NewReconAPIController(app, reconservices.NewReconService(store, publisher, logger)),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	srv := server.New(app)

	logger.Infof("listening on %s", conf.SocketAddress)
	if err := srv.Start(conf.SocketAddress); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
