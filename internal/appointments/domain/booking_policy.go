package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/platform/apperr"
)

// MeetsMinimumNotice reports whether the slot starts at least MinNotice after now.
func (p BookingPolicy) MeetsMinimumNotice(date civil.Date, start TimeOfDay, now time.Time) bool {
	return start.On(date, p.location()).Sub(now) >= p.MinNotice
}

// WithinBookingWindow reports whether today <= date <= today + MaxAdvanceWeeks*7,
// comparing dates only in the salon's timezone.
func (p BookingPolicy) WithinBookingWindow(date civil.Date, now time.Time) bool {
	today := civil.DateOf(now.In(p.location()))
	if date.Before(today) {
		return false
	}
	return !date.After(today.AddDays(p.MaxAdvanceWeeks * 7))
}

// CanCancel reports whether cancelling now is penalty-free.
func (p BookingPolicy) CanCancel(date civil.Date, start TimeOfDay, now time.Time) bool {
	return start.On(date, p.location()).Sub(now) >= p.CancellationNotice
}

// CalculateDeposit returns the service's deposit when one is required, else zero.
func CalculateDeposit(service catalog.Service) decimal.Decimal {
	if !service.RequiresDeposit {
		return decimal.Zero
	}
	return service.DepositAmount
}

// CheckSlotTiming applies the notice and window rules. Both depend on the
// wall clock, so failures are returned as retryable validation errors.
func (p BookingPolicy) CheckSlotTiming(date civil.Date, start TimeOfDay, now time.Time) error {
	if !p.WithinBookingWindow(date, now) {
		return apperr.Validation("date is outside the booking window").
			AsRetryable().
			WithDetails(map[string]any{"maxAdvanceWeeks": p.MaxAdvanceWeeks})
	}
	if !p.MeetsMinimumNotice(date, start, now) {
		return apperr.Validation("slot does not meet the minimum notice period").
			AsRetryable().
			WithDetails(map[string]any{"minNoticeHours": int(p.MinNotice.Hours())})
	}
	return nil
}

func (p BookingPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
