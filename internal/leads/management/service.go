// Package management handles enquiry capture and the back-office lead
// operations: profile edits, manual stage moves, history and insights.
package management

import (
	"context"
	"errors"
	"strings"
	"time"

	"salon_booking_backend/internal/events"
	"salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/internal/leads/repository"
	"salon_booking_backend/internal/leads/transport"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/besteffort"
	"salon_booking_backend/platform/logger"
	"salon_booking_backend/platform/phone"
	"salon_booking_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	historyLimit    = 50
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.ActivityStore
	repository.ScoreHistoryStore
}

// Scorer is the slice of the scoring service management drives.
type Scorer interface {
	UpdateScore(ctx context.Context, leadID uuid.UUID, reason string) (domain.ScoreBreakdown, error)
	LogActivityAndScore(ctx context.Context, leadID uuid.UUID, activityType domain.ActivityType, payload map[string]any, automated bool) (domain.ScoreBreakdown, error)
	Insights(ctx context.Context, leadID uuid.UUID) (domain.Lead, domain.Temperature, string, error)
	SweepStages(ctx context.Context) (int, error)
}

// Service handles lead management operations.
type Service struct {
	repo   Repository
	scorer Scorer
	bus    events.Bus
	log    *logger.Logger
	now    func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, scorer Scorer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		scorer: scorer,
		bus:    bus,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateEnquiry captures a public enquiry. An address that already belongs
// to a lead gets the form submission logged against that lead instead.
func (s *Service) CreateEnquiry(ctx context.Context, req transport.CreateLeadRequest) (transport.EnquiryResponse, error) {
	email := normalizeEmail(req.Email)
	phoneNumber, err := normalizePhone(req.Phone)
	if err != nil {
		return transport.EnquiryResponse{}, err
	}

	source := sanitize.Text(req.Source)
	courseInterest := sanitize.Text(req.CourseInterest)
	message := sanitize.Message(req.Message)

	formPayload := map[string]any{"form": "enquiry"}
	if source != "" {
		formPayload["source"] = source
	}
	if courseInterest != "" {
		formPayload["courseInterest"] = courseInterest
	}
	if message != "" {
		formPayload["message"] = message
	}

	existing, err := s.repo.GetLeadByEmail(ctx, email)
	switch {
	case err == nil:
		s.logBestEffort(ctx, existing.ID, domain.ActivityFormSubmit, formPayload, false)
		return transport.EnquiryResponse{ID: existing.ID, Created: false}, nil
	case !apperr.Is(err, apperr.KindNotFound):
		return transport.EnquiryResponse{}, err
	}

	now := s.now()
	lead := domain.Lead{
		ID:             uuid.New(),
		FirstName:      sanitize.Text(req.FirstName),
		LastName:       sanitize.Text(req.LastName),
		Email:          email,
		Phone:          phoneNumber,
		CourseInterest: courseInterest,
		Source:         source,
		Stage:          domain.StageNew,
		Profile:        domain.DecodeProfile(req.CustomFields),
		Tags:           normalizeTags(req.Tags),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateLead(ctx, lead); err != nil {
		return transport.EnquiryResponse{}, err
	}

	score := s.logBestEffort(ctx, lead.ID, domain.ActivityFormSubmit, formPayload, false)

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		LeadType:  string(lead.Kind()),
		Source:    lead.Source,
		Email:     lead.Email,
		Score:     score.Total,
	})

	s.log.WithContext(ctx).Info("lead created",
		"leadId", lead.ID,
		"leadType", lead.Kind(),
		"score", score.Total,
	)
	return transport.EnquiryResponse{ID: lead.ID, Created: true}, nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// List retrieves a paginated list of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	if req.MinScore != nil && req.MaxScore != nil && *req.MinScore > *req.MaxScore {
		return transport.LeadListResponse{}, apperr.BadRequest("minScore must not exceed maxScore")
	}

	params := repository.ListParams{
		MinScore: req.MinScore,
		MaxScore: req.MaxScore,
		Search:   strings.TrimSpace(req.Search),
		Tag:      strings.TrimSpace(req.Tag),
		Offset:   (req.Page - 1) * req.PageSize,
		Limit:    req.PageSize,
	}
	if req.Stage != "" {
		stage := domain.Stage(req.Stage)
		params.Stage = &stage
	}

	leads, total, err := s.repo.ListLeads(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toLeadResponse(lead)
	}

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: (total + req.PageSize - 1) / req.PageSize,
	}, nil
}

// UpdateProfile replaces the editable fields and rescores the lead.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	phoneNumber, err := normalizePhone(req.Phone)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead.FirstName = sanitize.Text(req.FirstName)
	lead.LastName = sanitize.Text(req.LastName)
	lead.Phone = phoneNumber
	lead.CourseInterest = sanitize.Text(req.CourseInterest)
	lead.Profile = domain.DecodeProfile(req.CustomFields)
	lead.Tags = normalizeTags(req.Tags)
	lead.UpdatedAt = s.now()

	if err := s.repo.UpdateProfile(ctx, lead); err != nil {
		return transport.LeadResponse{}, err
	}

	besteffort.Run(ctx, s.log, "rescore_after_profile_update", func(ctx context.Context) error {
		_, err := s.scorer.UpdateScore(ctx, id, "profile updated")
		return err
	}, "leadId", id)

	return s.GetByID(ctx, id)
}

// UpdateStage moves a lead to any stage by hand. Moving to the current
// stage is a no-op.
func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, req transport.UpdateStageRequest) (transport.LeadResponse, error) {
	if !domain.IsKnownStage(req.Stage) {
		return transport.LeadResponse{}, apperr.Validation("unknown stage")
	}
	to := domain.Stage(req.Stage)

	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if lead.Stage == to {
		return toLeadResponse(lead), nil
	}

	if err := s.repo.UpdateStage(ctx, id, lead.Stage, to, s.now()); err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		OldStage:  string(lead.Stage),
		NewStage:  string(to),
		Automated: false,
	})
	s.log.WithContext(ctx).Info("lead stage changed",
		"leadId", id,
		"from", lead.Stage,
		"to", to,
		"reason", sanitize.Text(req.Reason),
	)

	return s.GetByID(ctx, id)
}

// History returns the activity log and the most recent score changes.
func (s *Service) History(ctx context.Context, id uuid.UUID) (transport.LeadHistoryResponse, error) {
	if _, err := s.repo.GetLead(ctx, id); err != nil {
		return transport.LeadHistoryResponse{}, err
	}

	activities, err := s.repo.ListActivities(ctx, id)
	if err != nil {
		return transport.LeadHistoryResponse{}, err
	}
	scores, err := s.repo.ListScoreHistory(ctx, id, historyLimit)
	if err != nil {
		return transport.LeadHistoryResponse{}, err
	}

	resp := transport.LeadHistoryResponse{
		Activities: make([]transport.ActivityResponse, len(activities)),
		Scores:     make([]transport.ScoreHistoryResponse, len(scores)),
	}
	for i, a := range activities {
		resp.Activities[i] = toActivityResponse(a)
	}
	for i, h := range scores {
		resp.Scores[i] = toScoreHistoryResponse(h)
	}
	return resp, nil
}

// Insights returns temperature and the recommended next action.
func (s *Service) Insights(ctx context.Context, id uuid.UUID) (transport.InsightsResponse, error) {
	lead, temperature, action, err := s.scorer.Insights(ctx, id)
	if err != nil {
		return transport.InsightsResponse{}, err
	}
	return transport.InsightsResponse{
		LeadID:      lead.ID,
		Stage:       string(lead.Stage),
		Score:       toScoreResponse(lead.Score),
		Temperature: string(temperature),
		NextAction:  action,
	}, nil
}

// Recalculate forces a rescore. Unlike automated rescoring, failures surface.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID) (transport.ScoreResponse, error) {
	score, err := s.scorer.UpdateScore(ctx, id, "manual recalculation")
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	return toScoreResponse(score), nil
}

// LogActivity records an activity entered in the back office.
func (s *Service) LogActivity(ctx context.Context, id uuid.UUID, req transport.LogActivityRequest) (transport.ScoreResponse, error) {
	if !domain.IsKnownActivityType(req.Type) {
		return transport.ScoreResponse{}, apperr.Validation("unknown activity type")
	}
	if _, err := s.repo.GetLead(ctx, id); err != nil {
		return transport.ScoreResponse{}, err
	}

	score, err := s.scorer.LogActivityAndScore(ctx, id, domain.ActivityType(req.Type), req.Payload, false)
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	return toScoreResponse(score), nil
}

// Track records a site or email event for a known address. Unknown
// addresses and failures are dropped; the public caller never sees either.
func (s *Service) Track(ctx context.Context, req transport.TrackActivityRequest) {
	besteffort.Run(ctx, s.log, "track_lead_activity", func(ctx context.Context) error {
		_, err := s.RecordActivityByEmail(ctx, req.Email, domain.ActivityType(req.Type), req.Payload, true)
		return err
	}, "type", req.Type)
}

// RecordActivityByEmail logs an activity on the lead owning email and
// rescores it. It reports false when no lead has that address.
func (s *Service) RecordActivityByEmail(ctx context.Context, email string, activityType domain.ActivityType, payload map[string]any, automated bool) (bool, error) {
	lead, err := s.repo.GetLeadByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}

	if _, err := s.scorer.LogActivityAndScore(ctx, lead.ID, activityType, payload, automated); err != nil {
		return true, err
	}
	return true, nil
}

// SweepStages runs the automated stage sweep on demand.
func (s *Service) SweepStages(ctx context.Context) (transport.StageSweepResponse, error) {
	applied, err := s.scorer.SweepStages(ctx)
	if err != nil {
		return transport.StageSweepResponse{}, err
	}
	return transport.StageSweepResponse{Applied: applied}, nil
}

func (s *Service) logBestEffort(ctx context.Context, leadID uuid.UUID, activityType domain.ActivityType, payload map[string]any, automated bool) domain.ScoreBreakdown {
	var score domain.ScoreBreakdown
	besteffort.Run(ctx, s.log, "log_lead_activity", func(ctx context.Context) error {
		var err error
		score, err = s.scorer.LogActivityAndScore(ctx, leadID, activityType, payload, automated)
		return err
	}, "leadId", leadID, "type", activityType)
	return score
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(input string) (string, error) {
	normalized, err := phone.Parse(input)
	switch {
	case errors.Is(err, phone.ErrEmpty):
		return "", nil
	case err != nil:
		return "", apperr.Validation(err.Error())
	}
	return normalized, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
