package scheduler

import (
	"context"
	"time"

	"salon_booking_backend/platform/logger"
)

const defaultReminderBackfillInterval = 15 * time.Minute

// DueReminderEnqueuer queues reminders that should already be on the queue.
type DueReminderEnqueuer interface {
	EnqueueDueReminders(ctx context.Context) (int, error)
}

// ReminderBackfill periodically re-queues reminders for bookings whose task
// was lost, e.g. because Redis was down when the booking was made.
type ReminderBackfill struct {
	enqueuer DueReminderEnqueuer
	log      *logger.Logger
	interval time.Duration
}

func NewReminderBackfill(enqueuer DueReminderEnqueuer, log *logger.Logger, interval time.Duration) *ReminderBackfill {
	if interval <= 0 {
		interval = defaultReminderBackfillInterval
	}
	return &ReminderBackfill{
		enqueuer: enqueuer,
		log:      log,
		interval: interval,
	}
}

func (b *ReminderBackfill) Run(ctx context.Context) {
	if b == nil || b.enqueuer == nil {
		return
	}

	b.backfill(ctx)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.backfill(ctx)
		}
	}
}

func (b *ReminderBackfill) backfill(ctx context.Context) {
	queued, err := b.enqueuer.EnqueueDueReminders(ctx)
	if err != nil {
		b.log.Warn("reminder backfill failed", "error", err)
		return
	}

	if queued > 0 {
		b.log.Info("reminder backfill queued reminders", "queued", queued)
	}
}
