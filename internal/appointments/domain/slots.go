package domain

import (
	"cloud.google.com/go/civil"

	catalog "salon_booking_backend/internal/catalog/domain"
)

// SlotReason explains why a slot is unavailable.
type SlotReason string

const (
	ReasonBooked  SlotReason = "Booked"
	ReasonBlocked SlotReason = "Blocked"
	ReasonLunch   SlotReason = "Lunch break"
)

// TimeSlot is a candidate start time. It is derived per request and never stored.
type TimeSlot struct {
	Start     TimeOfDay
	End       TimeOfDay
	Available bool
	Reason    SlotReason
}

const defaultSlotIntervalMinutes = 15

// SlotGenerator produces the candidate start times for a service on a date.
type SlotGenerator struct {
	resolver *Resolver
	policy   BookingPolicy
}

// NewSlotGenerator builds a generator over resolver's schedule.
func NewSlotGenerator(resolver *Resolver, policy BookingPolicy) *SlotGenerator {
	return &SlotGenerator{resolver: resolver, policy: policy}
}

// GenerateSlots returns every start time from opening to closing minus the
// service duration, stepping by the slot interval, in ascending order.
// Unavailable slots are included and flagged. A date without a matching
// working-day rule yields an empty list, which is not an error.
func (g *SlotGenerator) GenerateSlots(date civil.Date, service catalog.Service, location catalog.LocationID, existing []Booking) []TimeSlot {
	if service.DurationMinutes <= 0 {
		return []TimeSlot{}
	}

	wd, ok := g.resolver.WorkingDayFor(date, location)
	if !ok {
		return []TimeSlot{}
	}

	step := g.policy.SlotIntervalMinutes
	if step <= 0 {
		step = defaultSlotIntervalMinutes
	}

	blocked := g.resolver.BlockedSlots(date, location)
	lastStart := wd.Hours.End.Add(-service.DurationMinutes)

	slots := make([]TimeSlot, 0)
	for start := wd.Hours.Start; start <= lastStart; start = start.Add(step) {
		span := TimeRange{Start: start, End: start.Add(service.DurationMinutes)}
		slot := TimeSlot{Start: span.Start, End: span.End, Available: true}

		switch {
		case FindConflict(location, date, span, existing, nil) != nil:
			slot.Available, slot.Reason = false, ReasonBooked
		case overlapsAny(span, blocked):
			slot.Available, slot.Reason = false, ReasonBlocked
		case g.policy.ApplyLunchBreak && wd.Lunch != nil && span.Overlaps(*wd.Lunch):
			slot.Available, slot.Reason = false, ReasonLunch
		}

		slots = append(slots, slot)
	}
	return slots
}

// IsSlotAvailable regenerates the day and reports whether start is an
// available slot for service.
func (g *SlotGenerator) IsSlotAvailable(date civil.Date, service catalog.Service, location catalog.LocationID, start TimeOfDay, existing []Booking) (TimeSlot, bool) {
	for _, slot := range g.GenerateSlots(date, service, location, existing) {
		if slot.Start == start {
			return slot, slot.Available
		}
	}
	return TimeSlot{}, false
}

func overlapsAny(span TimeRange, ranges []TimeRange) bool {
	for _, r := range ranges {
		if span.Overlaps(r) {
			return true
		}
	}
	return false
}
