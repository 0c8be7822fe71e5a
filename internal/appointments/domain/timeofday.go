// Package domain contains the scheduling engine: availability resolution,
// slot generation, conflict detection and booking policy. It performs no I/O.
package domain

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (seconds, if present, are ignored).
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", value)
}

// MustTimeOfDay is ParseTimeOfDay for literals.
func MustTimeOfDay(value string) TimeOfDay {
	t, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return t
}

// Add returns t shifted by minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// String renders "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On returns the instant of t on date in loc.
func (t TimeOfDay) On(date civil.Date, loc *time.Location) time.Time {
	return time.Date(date.Year, date.Month, date.Day, int(t)/60, int(t)%60, 0, 0, loc)
}

// TimeRange is a half-open [Start, End) interval within one day.
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Overlaps reports whether r and other share any minute.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}
