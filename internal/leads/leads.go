// Package leads provides lead capture, scoring and pipeline management.
// This file defines the public API of the leads bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"

	"salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/internal/leads/management"
)

// ActivityRecorder feeds activity from other domains into lead scoring.
// Other domains identify a lead by the email address they hold.
type ActivityRecorder interface {
	// RecordActivityByEmail logs the activity and rescores the lead. It
	// reports false when no lead has that address.
	RecordActivityByEmail(ctx context.Context, email string, activityType domain.ActivityType, payload map[string]any, automated bool) (bool, error)
}

var _ ActivityRecorder = (*management.Service)(nil)
