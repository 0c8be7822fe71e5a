package transport

import (
	"time"

	"github.com/google/uuid"
)

// AvailableLocationsRequest asks which locations open on a date.
type AvailableLocationsRequest struct {
	Date string `form:"date" validate:"required,isodate"`
}

// OpenLocation is one location open on the requested date.
type OpenLocation struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OpensAt  string `json:"opensAt"`
	ClosesAt string `json:"closesAt"`
}

// AvailableLocationsResponse lists the locations open on a date.
type AvailableLocationsResponse struct {
	Date      string         `json:"date"`
	Regime    string         `json:"regime"`
	Locations []OpenLocation `json:"locations"`
}

// AvailableDatesRequest asks for calendar openness over a date range.
type AvailableDatesRequest struct {
	LocationID string `form:"locationId" validate:"required,oneof=reading london oxford"`
	From       string `form:"from" validate:"required,isodate"`
	To         string `form:"to" validate:"required,isodate"`
}

// DateAvailabilityResponse is one calendar cell.
type DateAvailabilityResponse struct {
	Date string `json:"date"`
	Open bool   `json:"open"`
}

// AvailableDatesResponse is the calendar for one location.
type AvailableDatesResponse struct {
	LocationID string                     `json:"locationId"`
	Dates      []DateAvailabilityResponse `json:"dates"`
}

// SlotsRequest asks for the time slots of a service on a date.
type SlotsRequest struct {
	Date       string `form:"date" validate:"required,isodate"`
	LocationID string `form:"locationId" validate:"required,oneof=reading london oxford"`
	ServiceID  string `form:"serviceId" validate:"required,uuid"`
}

// SlotResponse is one candidate start time.
type SlotResponse struct {
	Time      string `json:"time"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// SlotsResponse lists every candidate start time for a day.
type SlotsResponse struct {
	Date       string         `json:"date"`
	LocationID string         `json:"locationId"`
	ServiceID  uuid.UUID      `json:"serviceId"`
	Open       bool           `json:"open"`
	Slots      []SlotResponse `json:"slots"`
}

// RecurrenceRequest asks for a repeating appointment.
type RecurrenceRequest struct {
	Frequency   string `json:"frequency" validate:"required,oneof=weekly fortnightly monthly"`
	Occurrences int    `json:"occurrences" validate:"required,min=2,max=12"`
}

// CreateBookingRequest is the public booking form.
type CreateBookingRequest struct {
	ServiceID  uuid.UUID          `json:"serviceId" validate:"required"`
	LocationID string             `json:"locationId" validate:"required,oneof=reading london oxford"`
	Date       string             `json:"date" validate:"required,isodate"`
	Time       string             `json:"time" validate:"required,hhmm"`
	FirstName  string             `json:"firstName" validate:"required,min=1,max=100"`
	LastName   string             `json:"lastName" validate:"required,min=1,max=100"`
	Email      string             `json:"email" validate:"required,email,max=254"`
	Phone      string             `json:"phone" validate:"required,min=6,max=32"`
	Notes      string             `json:"notes,omitempty" validate:"max=1000"`
	Recurrence *RecurrenceRequest `json:"recurrence,omitempty" validate:"omitempty"`
}

// ClientResponse is the client snapshot on a booking.
type ClientResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes,omitempty"`
}

// RecurrenceResponse echoes a stored recurrence request.
type RecurrenceResponse struct {
	Frequency   string `json:"frequency"`
	Occurrences int    `json:"occurrences"`
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID               uuid.UUID           `json:"id"`
	ConfirmationCode string              `json:"confirmationCode"`
	ServiceID        uuid.UUID           `json:"serviceId"`
	ServiceName      string              `json:"serviceName"`
	DurationMinutes  int                 `json:"durationMinutes"`
	LocationID       string              `json:"locationId"`
	LocationName     string              `json:"locationName"`
	Date             string              `json:"date"`
	StartTime        string              `json:"startTime"`
	EndTime          string              `json:"endTime"`
	StartsAt         time.Time           `json:"startsAt"`
	Client           ClientResponse      `json:"client"`
	DepositRequired  bool                `json:"depositRequired"`
	DepositAmount    string              `json:"depositAmount"`
	DepositPaid      bool                `json:"depositPaid"`
	TotalPrice       string              `json:"totalPrice"`
	Recurrence       *RecurrenceResponse `json:"recurrence,omitempty"`
	Status           string              `json:"status"`
	ReminderSent     bool                `json:"reminderSent"`
	CancelledAt      *time.Time          `json:"cancelledAt,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// BookingListResponse is a page of bookings.
type BookingListResponse struct {
	Items    []BookingResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ListBookingsRequest filters the admin booking list.
type ListBookingsRequest struct {
	LocationID string `form:"locationId" validate:"omitempty,oneof=reading london oxford"`
	Date       string `form:"date" validate:"omitempty,isodate"`
	Status     string `form:"status" validate:"omitempty,oneof=pending confirmed completed cancelled rescheduled"`
	Email      string `form:"email" validate:"omitempty,email"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ClientVerification proves a public caller owns the booking.
type ClientVerification struct {
	Email string `json:"email" validate:"required,email"`
}

// CancelBookingRequest cancels a booking from the public site.
type CancelBookingRequest struct {
	ClientVerification
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// CancelBookingResponse reports the outcome of a cancellation.
type CancelBookingResponse struct {
	Booking           BookingResponse `json:"booking"`
	PenaltyFree       bool            `json:"penaltyFree"`
	DepositRefundable bool            `json:"depositRefundable"`
}

// RescheduleBookingRequest moves a booking to a new slot.
type RescheduleBookingRequest struct {
	Date  string `json:"date" validate:"required,isodate"`
	Time  string `json:"time" validate:"required,hhmm"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateStatusRequest is the admin status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled rescheduled"`
}

// TimeRangeRequest is a partial-day block.
type TimeRangeRequest struct {
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

// CreateBlockedDateRequest closes a date for one or all locations.
type CreateBlockedDateRequest struct {
	Date       string             `json:"date" validate:"required,isodate"`
	LocationID string             `json:"locationId,omitempty" validate:"omitempty,oneof=reading london oxford"`
	Reason     string             `json:"reason" validate:"required,max=200"`
	Slots      []TimeRangeRequest `json:"slots,omitempty" validate:"omitempty,dive"`
}

// BlockedDateResponse represents a closure.
type BlockedDateResponse struct {
	ID         uuid.UUID          `json:"id"`
	Date       string             `json:"date"`
	LocationID string             `json:"locationId,omitempty"`
	Reason     string             `json:"reason"`
	AllDay     bool               `json:"allDay"`
	Slots      []TimeRangeRequest `json:"slots,omitempty"`
}
