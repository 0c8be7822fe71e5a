package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskBookingReminder = "appointments.booking_reminder"

const TaskLeadStageSweep = "leads.stage_sweep"

// BookingReminderPayload identifies the booking and the start time the
// reminder was scheduled for. A reschedule makes older tasks stale.
type BookingReminderPayload struct {
	BookingID string    `json:"bookingId"`
	StartsAt  time.Time `json:"startsAt"`
}

type LeadStageSweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewBookingReminderTask(payload BookingReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingReminder, data), nil
}

func ParseBookingReminderPayload(task *asynq.Task) (BookingReminderPayload, error) {
	var payload BookingReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BookingReminderPayload{}, err
	}
	if _, err := uuid.Parse(payload.BookingID); err != nil {
		return BookingReminderPayload{}, fmt.Errorf("invalid booking id %q: %w", payload.BookingID, err)
	}
	return payload, nil
}

// bookingReminderTaskID dedupes reminders per booking and start time.
func bookingReminderTaskID(bookingID uuid.UUID, startsAt time.Time) string {
	return fmt.Sprintf("reminder:%s:%d", bookingID, startsAt.Unix())
}

func NewLeadStageSweepTask(payload LeadStageSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadStageSweep, data), nil
}

func ParseLeadStageSweepPayload(task *asynq.Task) (LeadStageSweepPayload, error) {
	var payload LeadStageSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadStageSweepPayload{}, err
	}
	return payload, nil
}
