package management

import (
	"salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/internal/leads/transport"
)

func toLeadResponse(l domain.Lead) transport.LeadResponse {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.LeadResponse{
		ID:             l.ID,
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		Email:          l.Email,
		Phone:          l.Phone,
		CourseInterest: l.CourseInterest,
		Source:         l.Source,
		LeadType:       string(l.Kind()),
		Stage:          string(l.Stage),
		Score:          toScoreResponse(l.Score),
		Temperature:    string(domain.TemperatureFor(l.Score.Total)),
		CustomFields:   domain.EncodeProfile(l.Profile),
		Tags:           tags,
		LastContactAt:  l.LastContactAt,
		LastActivityAt: l.LastActivityAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func toScoreResponse(b domain.ScoreBreakdown) transport.ScoreResponse {
	return transport.ScoreResponse{
		Total:      b.Total,
		Behavioral: b.Behavioral,
		Engagement: b.Engagement,
		Profile:    b.Profile,
	}
}

func toActivityResponse(a domain.Activity) transport.ActivityResponse {
	payload := a.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return transport.ActivityResponse{
		ID:          a.ID,
		Type:        string(a.Type),
		Payload:     payload,
		Automated:   a.Automated,
		ScoreImpact: a.ScoreImpact,
		OccurredAt:  a.OccurredAt,
	}
}

func toScoreHistoryResponse(h domain.ScoreHistory) transport.ScoreHistoryResponse {
	return transport.ScoreHistoryResponse{
		ID:            h.ID,
		PreviousScore: h.PreviousScore,
		NewScore:      h.NewScore,
		Delta:         h.Delta,
		Reason:        h.Reason,
		Breakdown:     toScoreResponse(h.Breakdown),
		CreatedAt:     h.CreatedAt,
	}
}
