// Package events holds the domain events exchanged by the booking and lead
// modules. The bus itself lives in platform/events.
package events

import (
	"time"

	"salon_booking_backend/platform/events"
	"salon_booking_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus builds the process-local bus shared by all modules.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Appointment Domain Events
// =============================================================================

// BookingCreated is published after a booking has been committed.
type BookingCreated struct {
	BaseEvent
	BookingID        uuid.UUID `json:"bookingId"`
	ConfirmationCode string    `json:"confirmationCode"`
	ServiceID        uuid.UUID `json:"serviceId"`
	ServiceName      string    `json:"serviceName"`
	LocationID       string    `json:"locationId"`
	StartsAt         time.Time `json:"startsAt"`
	ClientName       string    `json:"clientName"`
	ClientEmail      string    `json:"clientEmail"`
	ClientPhone      string    `json:"clientPhone"`
	DepositRequired  bool      `json:"depositRequired"`
}

func (e BookingCreated) EventName() string { return "appointments.booking.created" }

// BookingCancelled is published when a booking is cancelled by the client or an admin.
type BookingCancelled struct {
	BaseEvent
	BookingID   uuid.UUID `json:"bookingId"`
	ClientEmail string    `json:"clientEmail"`
	PenaltyFree bool      `json:"penaltyFree"`
	CancelledBy string    `json:"cancelledBy"`
}

func (e BookingCancelled) EventName() string { return "appointments.booking.cancelled" }

// BookingStatusChanged is published when an admin moves a booking through its lifecycle.
type BookingStatusChanged struct {
	BaseEvent
	BookingID uuid.UUID `json:"bookingId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedBy string    `json:"changedBy"`
}

func (e BookingStatusChanged) EventName() string { return "appointments.booking.status_changed" }

// BookingRescheduled is published when a booking moves to a new slot.
type BookingRescheduled struct {
	BaseEvent
	BookingID   uuid.UUID `json:"bookingId"`
	PreviousAt  time.Time `json:"previousAt"`
	StartsAt    time.Time `json:"startsAt"`
	ClientEmail string    `json:"clientEmail"`
}

func (e BookingRescheduled) EventName() string { return "appointments.booking.rescheduled" }

// BookingReminderDue is published by the worker when a reminder should go out.
type BookingReminderDue struct {
	BaseEvent
	BookingID        uuid.UUID `json:"bookingId"`
	ConfirmationCode string    `json:"confirmationCode"`
	StartsAt         time.Time `json:"startsAt"`
	LocationName     string    `json:"locationName"`
	ClientName       string    `json:"clientName"`
	ClientEmail      string    `json:"clientEmail"`
	ClientPhone      string    `json:"clientPhone"`
}

func (e BookingReminderDue) EventName() string { return "appointments.booking.reminder_due" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new enquiry is captured.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	LeadType string    `json:"leadType"`
	Source   string    `json:"source,omitempty"`
	Email    string    `json:"email"`
	Score    int       `json:"score"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published whenever a lead's pipeline stage moves.
type LeadStageChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStage  string    `json:"oldStage"`
	NewStage  string    `json:"newStage"`
	Automated bool      `json:"automated"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }
