package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"salon_booking_backend/internal/appointments/domain"
	catalog "salon_booking_backend/internal/catalog/domain"
)

// ErrDuplicateConfirmationCode is returned when a freshly drawn confirmation
// code collides with an existing booking. Callers draw a new code and retry.
var ErrDuplicateConfirmationCode = errors.New("confirmation code already in use")

// ListParams filters the admin booking list.
type ListParams struct {
	LocationID *catalog.LocationID
	Date       *civil.Date
	Status     *domain.BookingStatus
	Email      string
	Offset     int
	Limit      int
}

// ScheduleReader loads the opening rules the availability resolver works from.
type ScheduleReader interface {
	ListWorkingDays(ctx context.Context) ([]domain.WorkingDay, error)
	ListBlockedDates(ctx context.Context, from, to civil.Date) ([]domain.BlockedDate, error)
}

// ScheduleWriter maintains blocked dates and working-day rules.
type ScheduleWriter interface {
	CreateBlockedDate(ctx context.Context, blocked domain.BlockedDate) error
	DeleteBlockedDate(ctx context.Context, id uuid.UUID) error
	UpsertWorkingDay(ctx context.Context, wd domain.WorkingDay) error
}

// BookingReader provides read operations for bookings.
type BookingReader interface {
	GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (domain.Booking, error)
	ListBookingsForDay(ctx context.Context, location catalog.LocationID, date civil.Date) ([]domain.Booking, error)
	ListBookings(ctx context.Context, params ListParams) ([]domain.Booking, int, error)
	ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]domain.Booking, error)
}

// BookingWriter provides write operations for bookings. InsertBooking and
// RescheduleBooking serialise on the location and date and re-check
// overlap inside the transaction.
type BookingWriter interface {
	InsertBooking(ctx context.Context, booking domain.Booking) error
	RescheduleBooking(ctx context.Context, booking domain.Booking) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, at time.Time) error
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// Repository combines all appointment repository operations.
type Repository interface {
	ScheduleReader
	ScheduleWriter
	BookingReader
	BookingWriter
}
