package domain

import (
	"crypto/rand"
	"io"
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "salon_booking_backend/internal/catalog/domain"
)

// BookingStatus is the booking lifecycle state. Bookings are never deleted;
// cancelling moves them to StatusCancelled.
type BookingStatus string

const (
	StatusPending     BookingStatus = "pending"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCompleted   BookingStatus = "completed"
	StatusCancelled   BookingStatus = "cancelled"
	StatusRescheduled BookingStatus = "rescheduled"
)

var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:     {StatusConfirmed, StatusCancelled, StatusRescheduled},
	StatusConfirmed:   {StatusCompleted, StatusCancelled, StatusRescheduled},
	StatusRescheduled: {StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsKnownStatus reports whether s is a valid booking status.
func IsKnownStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// ClientDetails is the snapshot of the person who booked.
type ClientDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     string
}

// Recurrence describes a repeating appointment request.
type Recurrence struct {
	Frequency   string `json:"frequency"`
	Occurrences int    `json:"occurrences"`
}

// Booking is a committed appointment. End is always Start plus the
// service duration.
type Booking struct {
	ID               uuid.UUID
	ConfirmationCode string
	ServiceID        uuid.UUID
	ServiceName      string
	DurationMinutes  int
	LocationID       catalog.LocationID
	LocationName     string
	Date             civil.Date
	Start            TimeOfDay
	End              TimeOfDay
	Client           ClientDetails
	DepositRequired  bool
	DepositAmount    decimal.Decimal
	DepositPaid      bool
	TotalPrice       decimal.Decimal
	Recurrence       *Recurrence
	Status           BookingStatus
	ReminderSent     bool
	CancelledAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Span returns the booking's [Start, End) range.
func (b Booking) Span() TimeRange {
	return TimeRange{Start: b.Start, End: b.End}
}

// StartsAt returns the booking start instant in loc.
func (b Booking) StartsAt(loc *time.Location) time.Time {
	return b.Start.On(b.Date, loc)
}

// EndsAt returns the booking end instant in loc.
func (b Booking) EndsAt(loc *time.Location) time.Time {
	return b.End.On(b.Date, loc)
}

// NewBooking snapshots service and location into a pending booking and
// derives end time, deposit and price.
func NewBooking(service catalog.Service, location catalog.Location, date civil.Date, start TimeOfDay, client ClientDetails, code string, now time.Time) Booking {
	deposit := CalculateDeposit(service)
	return Booking{
		ID:               uuid.New(),
		ConfirmationCode: code,
		ServiceID:        service.ID,
		ServiceName:      service.Name,
		DurationMinutes:  service.DurationMinutes,
		LocationID:       location.ID,
		LocationName:     location.Name,
		Date:             date,
		Start:            start,
		End:              start.Add(service.DurationMinutes),
		Client:           client,
		DepositRequired:  service.RequiresDeposit,
		DepositAmount:    deposit,
		TotalPrice:       service.Price,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Reschedule moves the booking, recomputing End from the stored duration.
func (b *Booking) Reschedule(date civil.Date, start TimeOfDay, now time.Time) {
	b.Date = date
	b.Start = start
	b.End = start.Add(b.DurationMinutes)
	b.Status = StatusRescheduled
	b.ReminderSent = false
	b.UpdatedAt = now
}

// ConfirmationAlphabet omits 0, O, 1, I and L.
const ConfirmationAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ConfirmationCodeLength is the number of characters in a confirmation code.
const ConfirmationCodeLength = 8

// NewConfirmationCode draws a code from crypto/rand.
func NewConfirmationCode() (string, error) {
	return newConfirmationCode(rand.Reader)
}

func newConfirmationCode(r io.Reader) (string, error) {
	size := big.NewInt(int64(len(ConfirmationAlphabet)))
	code := make([]byte, ConfirmationCodeLength)
	for i := range code {
		n, err := rand.Int(r, size)
		if err != nil {
			return "", err
		}
		code[i] = ConfirmationAlphabet[n.Int64()]
	}
	return string(code), nil
}
