package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType is drawn from a fixed vocabulary. Unknown types are stored
// but carry no score impact.
type ActivityType string

const (
	ActivityPageVisit        ActivityType = "page_visit"
	ActivityFormSubmit       ActivityType = "form_submit"
	ActivityBookingAttempted ActivityType = "booking_attempted"
	ActivityBookingCompleted ActivityType = "booking_completed"
	ActivityChatStarted      ActivityType = "chat_started"
	ActivityChatMessage      ActivityType = "chat_message"
	ActivityContentViewed    ActivityType = "content_viewed"
	ActivityContentEngaged   ActivityType = "content_engaged"
	ActivityEmailSent        ActivityType = "email_sent"
	ActivityEmailOpened      ActivityType = "email_opened"
	ActivityEmailClicked     ActivityType = "email_clicked"
	ActivityEmailReplied     ActivityType = "email_replied"
	ActivitySMSReplied       ActivityType = "sms_replied"
)

var knownActivityTypes = map[ActivityType]struct{}{
	ActivityPageVisit:        {},
	ActivityFormSubmit:       {},
	ActivityBookingAttempted: {},
	ActivityBookingCompleted: {},
	ActivityChatStarted:      {},
	ActivityChatMessage:      {},
	ActivityContentViewed:    {},
	ActivityContentEngaged:   {},
	ActivityEmailSent:        {},
	ActivityEmailOpened:      {},
	ActivityEmailClicked:     {},
	ActivityEmailReplied:     {},
	ActivitySMSReplied:       {},
}

func IsKnownActivityType(t string) bool {
	_, ok := knownActivityTypes[ActivityType(t)]
	return ok
}

// IsContact reports whether the activity is a two-way exchange with the
// lead. Contact activities reset the lost-lead clock.
func (t ActivityType) IsContact() bool {
	switch t {
	case ActivityEmailReplied, ActivitySMSReplied, ActivityChatMessage:
		return true
	default:
		return false
	}
}

// Activity is one immutable entry in a lead's activity log.
type Activity struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Type        ActivityType
	Payload     map[string]any
	Automated   bool
	ScoreImpact int
	OccurredAt  time.Time
}

// PayloadString returns a string field of the payload, or "".
func (a Activity) PayloadString(key string) string {
	if a.Payload == nil {
		return ""
	}
	s, _ := a.Payload[key].(string)
	return s
}
