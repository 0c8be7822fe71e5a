package scoring

import (
	"context"
	"time"

	"salon_booking_backend/internal/events"
	"salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/internal/leads/repository"
	"salon_booking_backend/platform/besteffort"
	"salon_booking_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository defines the data access the scoring service needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.ActivityStore
	repository.ScoreHistoryStore
}

// Service recomputes and persists lead scores and drives the stage sweep.
type Service struct {
	repo Repository
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new scoring service.
func New(repo Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// UpdateScore recomputes a lead's score over its whole activity log and
// stores it. A history row is appended only when the total changes.
func (s *Service) UpdateScore(ctx context.Context, leadID uuid.UUID, reason string) (domain.ScoreBreakdown, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return domain.ScoreBreakdown{}, err
	}
	activities, err := s.repo.ListActivities(ctx, leadID)
	if err != nil {
		return domain.ScoreBreakdown{}, err
	}

	now := s.now()
	next := CalculateScore(lead, activities, now)
	if err := s.repo.UpdateScore(ctx, leadID, next, now); err != nil {
		return domain.ScoreBreakdown{}, err
	}

	delta := next.Total - lead.Score.Total
	if delta == 0 {
		return next, nil
	}

	if err := s.repo.InsertScoreHistory(ctx, domain.ScoreHistory{
		ID:            uuid.New(),
		LeadID:        leadID,
		PreviousScore: lead.Score.Total,
		NewScore:      next.Total,
		Delta:         delta,
		Reason:        reason,
		Breakdown:     next,
		CreatedAt:     now,
	}); err != nil {
		return next, err
	}

	s.log.WithContext(ctx).Debug("lead score updated",
		"leadId", leadID,
		"previous", lead.Score.Total,
		"score", next.Total,
		"reason", reason,
	)
	return next, nil
}

// LogActivityAndScore appends an activity, then recomputes the score from
// the full log. The impact stored on the activity is informational.
func (s *Service) LogActivityAndScore(ctx context.Context, leadID uuid.UUID, activityType domain.ActivityType, payload map[string]any, automated bool) (domain.ScoreBreakdown, error) {
	activity := domain.Activity{
		ID:         uuid.New(),
		LeadID:     leadID,
		Type:       activityType,
		Payload:    payload,
		Automated:  automated,
		OccurredAt: s.now(),
	}
	activity.ScoreImpact = ActivityImpact(activity)

	if err := s.repo.InsertActivity(ctx, activity); err != nil {
		return domain.ScoreBreakdown{}, err
	}
	return s.UpdateScore(ctx, leadID, "activity: "+string(activityType))
}

// IdentifyStageTransitions proposes stage moves for all open leads without
// applying them.
func (s *Service) IdentifyStageTransitions(ctx context.Context) (StageTransitions, error) {
	leads, err := s.repo.ListOpenLeads(ctx)
	if err != nil {
		return StageTransitions{}, err
	}
	return ClassifyTransitions(leads, s.now()), nil
}

// ApplyStageTransitions performs the proposed moves. A move whose lead has
// changed stage in the meantime is skipped. Returns how many were applied.
func (s *Service) ApplyStageTransitions(ctx context.Context, transitions StageTransitions) int {
	now := s.now()
	applied := 0
	for _, t := range transitions.All() {
		ok := besteffort.Run(ctx, s.log, "apply_stage_transition", func(ctx context.Context) error {
			return s.repo.UpdateStage(ctx, t.LeadID, t.From, t.To, now)
		}, "leadId", t.LeadID, "from", t.From, "to", t.To)
		if !ok {
			continue
		}
		applied++
		s.bus.Publish(ctx, events.LeadStageChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    t.LeadID,
			OldStage:  string(t.From),
			NewStage:  string(t.To),
			Automated: true,
		})
	}
	return applied
}

// SweepStages identifies and applies stage moves in one pass.
func (s *Service) SweepStages(ctx context.Context) (int, error) {
	transitions, err := s.IdentifyStageTransitions(ctx)
	if err != nil {
		return 0, err
	}
	applied := s.ApplyStageTransitions(ctx, transitions)
	s.log.WithContext(ctx).Info("lead stage sweep applied",
		"proposed", transitions.Len(),
		"applied", applied,
		"toContacted", len(transitions.ToContacted),
		"toQualified", len(transitions.ToQualified),
		"toNurturing", len(transitions.ToNurturing),
		"toLost", len(transitions.ToLost),
	)
	return applied, nil
}

// Insights summarises a lead for the admin dashboard from stored scores.
func (s *Service) Insights(ctx context.Context, leadID uuid.UUID) (domain.Lead, domain.Temperature, string, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return domain.Lead{}, "", "", err
	}
	return lead, domain.TemperatureFor(lead.Score.Total), RecommendNextAction(lead, lead.Score), nil
}
