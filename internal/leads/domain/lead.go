package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective client or institution tracked through the pipeline.
type Lead struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	CourseInterest string
	Source         string
	Score          ScoreBreakdown
	Stage          Stage
	Profile        Profile
	Tags           []string
	LastContactAt  *time.Time
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EmailDomain returns the lower-cased part after '@', or "".
func (l Lead) EmailDomain() string {
	at := strings.LastIndex(l.Email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(l.Email[at+1:]))
}

// Kind returns the profile kind, defaulting to general.
func (l Lead) Kind() LeadKind {
	if l.Profile == nil {
		return KindGeneral
	}
	return l.Profile.Kind()
}

// LastContactOrCreated is the reference time for staleness checks.
func (l Lead) LastContactOrCreated() time.Time {
	if l.LastContactAt != nil {
		return *l.LastContactAt
	}
	return l.CreatedAt
}

// ScoreBreakdown is a lead score and the sub-scores it was summed from.
type ScoreBreakdown struct {
	Total      int
	Behavioral int
	Engagement int
	Profile    int
}

// ScoreHistory is an append-only audit row written when the score changes.
type ScoreHistory struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	PreviousScore int
	NewScore      int
	Delta         int
	Reason        string
	Breakdown     ScoreBreakdown
	CreatedAt     time.Time
}
