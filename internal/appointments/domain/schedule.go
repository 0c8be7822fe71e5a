package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	catalog "salon_booking_backend/internal/catalog/domain"
)

// Regime selects which set of working-day rules applies on a date.
type Regime string

const (
	RegimeStandard Regime = "standard"
	RegimeWeek4    Regime = "week4"
)

// Week4Policy switches the schedule into the week-4 regime for a fixed
// day-of-month range. During that range only Location may open.
//
// Days after LastDay (29-31) fall back to the standard regime.
type Week4Policy struct {
	FirstDay int
	LastDay  int
	Location catalog.LocationID
}

// DefaultWeek4Policy is the salon's standing rule: days 22-28 belong to Reading.
var DefaultWeek4Policy = Week4Policy{
	FirstDay: 22,
	LastDay:  28,
	Location: catalog.LocationReading,
}

// RegimeFor returns the regime active on date.
func (p Week4Policy) RegimeFor(date civil.Date) Regime {
	if date.Day >= p.FirstDay && date.Day <= p.LastDay {
		return RegimeWeek4
	}
	return RegimeStandard
}

// WorkingDay is a recurring weekly opening rule for one location.
type WorkingDay struct {
	ID         uuid.UUID
	LocationID catalog.LocationID
	Weekday    time.Weekday
	Regime     Regime
	Hours      TimeRange
	Lunch      *TimeRange
}

// BlockedDate closes a date, for one location or (LocationID nil) for all.
// When AllDay is false only Slots are blocked.
type BlockedDate struct {
	ID         uuid.UUID
	Date       civil.Date
	LocationID *catalog.LocationID
	Reason     string
	AllDay     bool
	Slots      []TimeRange
}

// AppliesTo reports whether the block covers location on date.
func (b BlockedDate) AppliesTo(date civil.Date, location catalog.LocationID) bool {
	if b.Date != date {
		return false
	}
	return b.LocationID == nil || *b.LocationID == location
}

// Schedule is the full availability configuration the resolver works from.
type Schedule struct {
	Locations    []catalog.Location
	WorkingDays  []WorkingDay
	BlockedDates []BlockedDate
	Week4        Week4Policy
}

// BookingPolicy holds the global booking constants.
type BookingPolicy struct {
	MinNotice           time.Duration
	CancellationNotice  time.Duration
	MaxAdvanceWeeks     int
	SlotIntervalMinutes int
	ApplyLunchBreak     bool
	Location            *time.Location
}

// DefaultBookingPolicy returns 24h notice both ways, a 12-week window and 15-minute slots.
func DefaultBookingPolicy(loc *time.Location) BookingPolicy {
	return BookingPolicy{
		MinNotice:           24 * time.Hour,
		CancellationNotice:  24 * time.Hour,
		MaxAdvanceWeeks:     12,
		SlotIntervalMinutes: 15,
		ApplyLunchBreak:     true,
		Location:            loc,
	}
}
