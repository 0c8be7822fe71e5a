package scheduler

import (
	"context"
	"fmt"
	"time"

	"salon_booking_backend/platform/config"
	"salon_booking_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ReminderDeliverer sends the reminder for one booking.
type ReminderDeliverer interface {
	DeliverReminder(ctx context.Context, bookingID uuid.UUID, startsAt time.Time) error
}

// StageSweeper moves leads between pipeline stages on a schedule.
type StageSweeper interface {
	SweepStages(ctx context.Context) (int, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	reminders ReminderDeliverer
	sweeper   StageSweeper
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
	w.mux.HandleFunc(TaskBookingReminder, w.handleBookingReminder)
	w.mux.HandleFunc(TaskLeadStageSweep, w.handleLeadStageSweep)

	return w, nil
}

// SetReminderDeliverer injects the booking reminder handler.
func (w *Worker) SetReminderDeliverer(d ReminderDeliverer) {
	w.reminders = d
}

// SetStageSweeper injects the lead stage sweep handler.
func (w *Worker) SetStageSweeper(s StageSweeper) {
	w.sweeper = s
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleBookingReminder(ctx context.Context, task *asynq.Task) error {
	if w.reminders == nil {
		return nil
	}

	payload, err := ParseBookingReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	return w.reminders.DeliverReminder(ctx, uuid.MustParse(payload.BookingID), payload.StartsAt)
}

func (w *Worker) handleLeadStageSweep(ctx context.Context, task *asynq.Task) error {
	if w.sweeper == nil {
		return nil
	}

	payload, err := ParseLeadStageSweepPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	moved, err := w.sweeper.SweepStages(ctx)
	if err != nil {
		return err
	}
	w.log.Info("lead stage sweep finished", "moved", moved, "requestedAt", payload.RequestedAt)
	return nil
}
