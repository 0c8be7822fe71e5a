package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salon_booking_backend/internal/appointments/domain"
	"salon_booking_backend/internal/events"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/besteffort"
)

const reminderBackfillBatch = 100

// scheduleReminder queues the reminder for b. A failure here never fails
// the booking.
func (s *Service) scheduleReminder(ctx context.Context, b domain.Booking) {
	if s.reminders == nil {
		return
	}

	startsAt := b.StartsAt(s.policy.Location)
	runAt := startsAt.Add(-s.reminderLead)
	if now := s.now(); runAt.Before(now) {
		runAt = now
	}

	besteffort.Run(ctx, s.log, "schedule_booking_reminder", func(ctx context.Context) error {
		return s.reminders.ScheduleBookingReminder(ctx, b.ID, startsAt, runAt)
	}, "bookingId", b.ID)
}

// DeliverReminder publishes BookingReminderDue for a booking and marks it
// sent. Tasks for cancelled, finished or since-rescheduled bookings are
// dropped.
func (s *Service) DeliverReminder(ctx context.Context, bookingID uuid.UUID, startsAt time.Time) error {
	log := s.log.WithContext(ctx)

	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			log.Warn("reminder for unknown booking dropped", "bookingId", bookingID)
			return nil
		}
		return err
	}

	actual := b.StartsAt(s.policy.Location)
	if b.ReminderSent || !isLive(b.Status) || !actual.Equal(startsAt) {
		log.Debug("reminder skipped", "bookingId", bookingID, "status", b.Status, "reminderSent", b.ReminderSent)
		return nil
	}

	if err := s.bus.PublishSync(ctx, events.BookingReminderDue{
		BaseEvent:        events.NewBaseEvent(),
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		StartsAt:         actual,
		LocationName:     b.LocationName,
		ClientName:       b.Client.FirstName + " " + b.Client.LastName,
		ClientEmail:      b.Client.Email,
		ClientPhone:      b.Client.Phone,
	}); err != nil {
		return err
	}

	if err := s.repo.MarkReminderSent(ctx, b.ID); err != nil {
		return err
	}
	log.Info("booking reminder delivered", "bookingId", b.ID)
	return nil
}

// EnqueueDueReminders queues reminders for live bookings inside the reminder
// window that were never sent, e.g. because the queue was unavailable when
// they were booked. Returns how many were queued.
func (s *Service) EnqueueDueReminders(ctx context.Context) (int, error) {
	if s.reminders == nil {
		return 0, nil
	}

	now := s.now()
	due, err := s.repo.ListDueReminders(ctx, now, now.Add(s.reminderLead), reminderBackfillBatch)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, b := range due {
		if err := s.reminders.ScheduleBookingReminder(ctx, b.ID, b.StartsAt(s.policy.Location), now); err != nil {
			s.log.Warn("failed to queue due reminder", "bookingId", b.ID, "error", err)
			continue
		}
		queued++
	}
	return queued, nil
}

func isLive(status domain.BookingStatus) bool {
	switch status {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusRescheduled:
		return true
	default:
		return false
	}
}
