package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon_booking_backend/internal/adapters"
	"salon_booking_backend/internal/appointments"
	"salon_booking_backend/internal/catalog"
	"salon_booking_backend/internal/events"
	"salon_booking_backend/internal/leads"
	"salon_booking_backend/internal/scheduler"
	"salon_booking_backend/platform/config"
	"salon_booking_backend/platform/db"
	"salon_booking_backend/platform/logger"
	"salon_booking_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := db.Retry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	policy, err := appointments.PolicyFromConfig(cfg)
	if err != nil {
		log.Error("invalid booking policy", "error", err)
		panic("invalid booking policy: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	// Worker-side module wiring (no HTTP handlers required).
	val := validator.New()
	catalogModule := catalog.NewModule(pool, log)
	appointmentsModule := appointments.NewModule(pool, catalogModule.Repository(), eventBus, policy, val, log)
	appointmentsModule.Service.SetReminderScheduler(client, cfg.GetReminderLeadTime())
	leadsModule := leads.NewModule(pool, eventBus, val, log)
	adapters.NewBookingLeadBridge(leadsModule.ManagementService(), log).Register(eventBus)

	backfill := scheduler.NewReminderBackfill(appointmentsModule.Service, log, cfg.GetReminderBackfillInterval())
	go backfill.Run(ctx)

	stageSweep, err := scheduler.NewStageSweepCron(cfg.GetStageSweepCron(), policy.Location, client, log)
	if err != nil {
		log.Error("failed to schedule lead stage sweep", "error", err)
		panic("failed to schedule lead stage sweep: " + err.Error())
	}
	go stageSweep.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	worker.SetReminderDeliverer(appointmentsModule.Service)
	worker.SetStageSweeper(leadsModule.ScoringService())

	worker.Run(ctx)
}
