package domain

import (
	"time"

	"cloud.google.com/go/civil"

	catalog "salon_booking_backend/internal/catalog/domain"
)

// Resolver answers which locations operate on a date and with which hours.
type Resolver struct {
	schedule Schedule
	loc      *time.Location
	now      func() time.Time
}

// NewResolver builds a resolver. now is read on every call so that "today"
// follows the wall clock; loc is the salon's timezone.
func NewResolver(schedule Schedule, loc *time.Location, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{schedule: schedule, loc: loc, now: now}
}

// Today returns the current date in the salon's timezone.
func (r *Resolver) Today() civil.Date {
	return civil.DateOf(r.now().In(r.loc))
}

// Regime returns the regime active on date.
func (r *Resolver) Regime(date civil.Date) Regime {
	return r.schedule.Week4.RegimeFor(date)
}

// IsLocationOpen reports whether location operates on date.
func (r *Resolver) IsLocationOpen(date civil.Date, location catalog.LocationID) bool {
	_, ok := r.WorkingDayFor(date, location)
	return ok
}

// WorkingDayFor returns the rule that governs location on date, or false
// when the location is closed: the date is past, fully blocked, or no rule
// of the active regime matches.
func (r *Resolver) WorkingDayFor(date civil.Date, location catalog.LocationID) (WorkingDay, bool) {
	if date.Before(r.Today()) {
		return WorkingDay{}, false
	}
	if r.isBlockedAllDay(date, location) {
		return WorkingDay{}, false
	}

	regime := r.Regime(date)
	if regime == RegimeWeek4 && location != r.schedule.Week4.Location {
		return WorkingDay{}, false
	}

	weekday := date.Weekday()
	for _, wd := range r.schedule.WorkingDays {
		if wd.LocationID == location && wd.Weekday == weekday && wd.Regime == regime {
			return wd, true
		}
	}
	return WorkingDay{}, false
}

// AvailableLocationsFor lists the locations open on date, in schedule order.
func (r *Resolver) AvailableLocationsFor(date civil.Date) []catalog.Location {
	open := make([]catalog.Location, 0, 1)
	for _, location := range r.schedule.Locations {
		if r.IsLocationOpen(date, location.ID) {
			open = append(open, location)
		}
	}
	return open
}

// DateAvailability is one calendar cell.
type DateAvailability struct {
	Date civil.Date
	Open bool
}

// AvailableDates reports openness for every date in [from, to].
func (r *Resolver) AvailableDates(location catalog.LocationID, from, to civil.Date) []DateAvailability {
	if to.Before(from) {
		return nil
	}
	days := make([]DateAvailability, 0, to.DaysSince(from)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, DateAvailability{Date: d, Open: r.IsLocationOpen(d, location)})
	}
	return days
}

// BlockedSlots returns the partial blocks covering location on date.
func (r *Resolver) BlockedSlots(date civil.Date, location catalog.LocationID) []TimeRange {
	var ranges []TimeRange
	for _, b := range r.schedule.BlockedDates {
		if !b.AllDay && b.AppliesTo(date, location) {
			ranges = append(ranges, b.Slots...)
		}
	}
	return ranges
}

func (r *Resolver) isBlockedAllDay(date civil.Date, location catalog.LocationID) bool {
	for _, b := range r.schedule.BlockedDates {
		if b.AllDay && b.AppliesTo(date, location) {
			return true
		}
	}
	return false
}
