package domain

import (
	"testing"
	"time"

	catalog "salon_booking_backend/internal/catalog/domain"
)

func TestOverlaps_Symmetric(t *testing.T) {
	points := []TimeOfDay{540, 555, 570, 600, 615, 660, 720}
	for _, aStart := range points {
		for _, aEnd := range points {
			if aEnd <= aStart {
				continue
			}
			for _, bStart := range points {
				for _, bEnd := range points {
					if bEnd <= bStart {
						continue
					}
					if Overlaps(aStart, aEnd, bStart, bEnd) != Overlaps(bStart, bEnd, aStart, aEnd) {
						t.Fatalf("asymmetric result for [%s,%s) vs [%s,%s)", aStart, aEnd, bStart, bEnd)
					}
				}
			}
		}
	}
}

func TestOverlaps_HalfOpenEdges(t *testing.T) {
	nine, ten, eleven := MustTimeOfDay("09:00"), MustTimeOfDay("10:00"), MustTimeOfDay("11:00")

	if Overlaps(nine, ten, ten, eleven) {
		t.Fatalf("expected touching intervals not to overlap")
	}
	if !Overlaps(nine, ten.Add(1), ten, eleven) {
		t.Fatalf("expected one-minute overlap to count")
	}
	if !Overlaps(nine, eleven, ten, ten.Add(15)) {
		t.Fatalf("expected containment to overlap")
	}
}

func TestFindConflict_SkipsCancelledAndExcluded(t *testing.T) {
	d := date(2026, time.March, 3)
	cancelled := booked(catalog.LocationLondon, d, "10:00", "11:00", StatusCancelled)
	live := booked(catalog.LocationLondon, d, "10:30", "11:30", StatusConfirmed)
	span := TimeRange{Start: MustTimeOfDay("10:00"), End: MustTimeOfDay("11:00")}

	if got := FindConflict(catalog.LocationLondon, d, span, []Booking{cancelled}, nil); got != nil {
		t.Fatalf("expected cancelled booking to free its slot")
	}
	if got := FindConflict(catalog.LocationLondon, d, span, []Booking{cancelled, live}, nil); got == nil || got.ID != live.ID {
		t.Fatalf("expected live booking to conflict")
	}
	if got := FindConflict(catalog.LocationLondon, d, span, []Booking{live}, &live); got != nil {
		t.Fatalf("expected excluded booking to be skipped")
	}
}
