package domain

import (
	"cloud.google.com/go/civil"

	catalog "salon_booking_backend/internal/catalog/domain"
)

// Overlaps is the half-open interval test: [aStart, aEnd) and [bStart, bEnd)
// intersect iff aStart < bEnd and aEnd > bStart. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && aEnd > bStart
}

// FindConflict returns the first non-cancelled booking at location on date
// whose interval overlaps span. exclude skips one booking by ID, used
// when rescheduling a booking onto a range that overlaps its old one.
func FindConflict(location catalog.LocationID, date civil.Date, span TimeRange, bookings []Booking, exclude *Booking) *Booking {
	for i := range bookings {
		b := &bookings[i]
		if b.Status == StatusCancelled {
			continue
		}
		if b.LocationID != location || b.Date != date {
			continue
		}
		if exclude != nil && b.ID == exclude.ID {
			continue
		}
		if Overlaps(span.Start, span.End, b.Start, b.End) {
			return b
		}
	}
	return nil
}
