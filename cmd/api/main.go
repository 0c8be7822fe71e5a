package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon_booking_backend/internal/adapters"
	"salon_booking_backend/internal/appointments"
	"salon_booking_backend/internal/catalog"
	"salon_booking_backend/internal/events"
	apphttp "salon_booking_backend/internal/http"
	"salon_booking_backend/internal/http/router"
	"salon_booking_backend/internal/leads"
	"salon_booking_backend/internal/scheduler"
	"salon_booking_backend/migrations"
	"salon_booking_backend/platform/config"
	"salon_booking_backend/platform/db"
	"salon_booking_backend/platform/lock"
	"salon_booking_backend/platform/logger"
	"salon_booking_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if cfg.MigrationsDisabled {
		log.Warn("database migrations disabled")
	} else {
		if err := db.Retry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	policy, err := appointments.PolicyFromConfig(cfg)
	if err != nil {
		log.Error("invalid booking policy", "error", err)
		panic("invalid booking policy: " + err.Error())
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	slotLock, closeLock := initSlotLock(ctx, cfg, log)
	if closeLock != nil {
		defer closeLock()
	}

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, log)
	appointmentsModule := appointments.NewModule(pool, catalogModule.Repository(), eventBus, policy, val, log)
	appointmentsModule.Service.SetLocker(slotLock, cfg.GetSlotLockTTL())
	if reminderScheduler != nil {
		appointmentsModule.Service.SetReminderScheduler(reminderScheduler, cfg.GetReminderLeadTime())
	}

	leadsModule := leads.NewModule(pool, eventBus, val, log)

	// Bookings feed lead scoring: appointments -> leads
	adapters.NewBookingLeadBridge(leadsModule.ManagementService(), log).Register(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewReadiness(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			appointmentsModule,
			leadsModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initSlotLock connects the Redis slot lock. Without Redis the database
// guard alone prevents double booking.
func initSlotLock(ctx context.Context, cfg config.LockConfig, log *logger.Logger) (lock.Locker, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; slot lock disabled")
		return lock.Noop{}, nil
	}

	redisLock, err := lock.NewRedisLock(ctx, cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to initialize slot lock", "error", err)
		return lock.Noop{}, nil
	}

	return redisLock, func() {
		_ = redisLock.Close()
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; appointment reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}
