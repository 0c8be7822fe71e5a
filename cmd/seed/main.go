package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"salon_booking_backend/internal/appointments"
	appointmentsrepo "salon_booking_backend/internal/appointments/repository"
	catalogrepo "salon_booking_backend/internal/catalog/repository"
	"salon_booking_backend/internal/seed"
	"salon_booking_backend/migrations"
	"salon_booking_backend/platform/config"
	"salon_booking_backend/platform/db"
	"salon_booking_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	path := flag.String("file", cfg.ScheduleSeedPath, "schedule seed file")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	flag.Parse()

	log := logger.New(cfg.Env)
	log.Info("starting schedule seed", "file", *path, "dryRun", *dryRun)

	plan, err := seed.Load(*path)
	if err != nil {
		log.Error("invalid seed file", "error", err)
		os.Exit(1)
	}
	if *dryRun {
		log.Info("seed file valid",
			"services", len(plan.Services),
			"workingDays", len(plan.WorkingDays),
			"blockedDates", len(plan.BlockedDates),
		)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	policy, err := appointments.PolicyFromConfig(cfg)
	if err != nil {
		log.Error("invalid booking policy", "error", err)
		panic("invalid booking policy: " + err.Error())
	}

	services := catalogrepo.New(pool)
	schedule := appointmentsrepo.New(pool, policy.Location)

	if _, err := seed.Apply(ctx, plan, services, schedule, log); err != nil {
		log.Error("seed failed", "error", err)
		panic("seed failed: " + err.Error())
	}
}
