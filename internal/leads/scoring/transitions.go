package scoring

import (
	"time"

	"github.com/google/uuid"

	"salon_booking_backend/internal/leads/domain"
)

const (
	newLeadGracePeriod = 24 * time.Hour
	lostAfter          = 90 * 24 * time.Hour
)

// Transition is one stage move proposed by the sweep.
type Transition struct {
	LeadID uuid.UUID
	From   domain.Stage
	To     domain.Stage
}

// StageTransitions groups the moves proposed by a sweep. A lead appears in
// at most one bucket.
type StageTransitions struct {
	ToContacted []Transition
	ToQualified []Transition
	ToNurturing []Transition
	ToLost      []Transition
}

// Len returns the number of proposed moves.
func (t StageTransitions) Len() int {
	return len(t.ToContacted) + len(t.ToQualified) + len(t.ToNurturing) + len(t.ToLost)
}

// All returns every proposed move, lost moves first.
func (t StageTransitions) All() []Transition {
	out := make([]Transition, 0, t.Len())
	out = append(out, t.ToLost...)
	out = append(out, t.ToContacted...)
	out = append(out, t.ToQualified...)
	return append(out, t.ToNurturing...)
}

// ClassifyTransitions proposes stage moves for leads using stored scores.
// It never mutates anything. Staleness beats score: a lead with no contact
// for over 90 days is proposed as lost whatever its stage.
func ClassifyTransitions(leads []domain.Lead, now time.Time) StageTransitions {
	var out StageTransitions
	for _, l := range leads {
		if l.Stage.IsClosed() {
			continue
		}

		if now.Sub(l.LastContactOrCreated()) > lostAfter {
			out.ToLost = append(out.ToLost, Transition{LeadID: l.ID, From: l.Stage, To: domain.StageLost})
			continue
		}

		switch l.Stage {
		case domain.StageNew:
			if l.Score.Total >= domain.HotThreshold || now.Sub(l.CreatedAt) >= newLeadGracePeriod {
				out.ToContacted = append(out.ToContacted, Transition{LeadID: l.ID, From: l.Stage, To: domain.StageContacted})
			}
		case domain.StageContacted:
			if l.Score.Total >= domain.WarmThreshold {
				out.ToQualified = append(out.ToQualified, Transition{LeadID: l.ID, From: l.Stage, To: domain.StageQualified})
			}
		case domain.StageQualified:
			out.ToNurturing = append(out.ToNurturing, Transition{LeadID: l.ID, From: l.Stage, To: domain.StageNurturing})
		}
	}
	return out
}
