package management

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"salon_booking_backend/internal/events"
	"salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/internal/leads/repository"
	"salon_booking_backend/internal/leads/transport"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/logger"
)

var testNow = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

type fakeRepo struct {
	leads      map[uuid.UUID]domain.Lead
	activities map[uuid.UUID][]domain.Activity
	history    []domain.ScoreHistory
	listParams repository.ListParams
	stageCalls int
}

func newFakeRepo(leads ...domain.Lead) *fakeRepo {
	r := &fakeRepo{
		leads:      make(map[uuid.UUID]domain.Lead),
		activities: make(map[uuid.UUID][]domain.Activity),
	}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

func (r *fakeRepo) GetLead(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func (r *fakeRepo) GetLeadByEmail(_ context.Context, email string) (domain.Lead, error) {
	for _, l := range r.leads {
		if l.Email == email {
			return l, nil
		}
	}
	return domain.Lead{}, apperr.NotFound("lead not found")
}

func (r *fakeRepo) ListLeads(_ context.Context, params repository.ListParams) ([]domain.Lead, int, error) {
	r.listParams = params
	out := make([]domain.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		out = append(out, l)
	}
	return out, 45, nil
}

func (r *fakeRepo) ListOpenLeads(context.Context) ([]domain.Lead, error) { return nil, nil }

func (r *fakeRepo) CreateLead(_ context.Context, lead domain.Lead) error {
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeRepo) UpdateProfile(_ context.Context, lead domain.Lead) error {
	if _, ok := r.leads[lead.ID]; !ok {
		return apperr.NotFound("lead not found")
	}
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeRepo) UpdateStage(_ context.Context, id uuid.UUID, from, to domain.Stage, at time.Time) error {
	r.stageCalls++
	l := r.leads[id]
	if l.Stage != from {
		return apperr.Conflict("lead stage changed")
	}
	l.Stage = to
	if to == domain.StageContacted {
		l.LastContactAt = &at
	}
	r.leads[id] = l
	return nil
}

func (r *fakeRepo) UpdateScore(_ context.Context, id uuid.UUID, score domain.ScoreBreakdown, _ time.Time) error {
	l := r.leads[id]
	l.Score = score
	r.leads[id] = l
	return nil
}

func (r *fakeRepo) InsertActivity(_ context.Context, a domain.Activity) error {
	r.activities[a.LeadID] = append(r.activities[a.LeadID], a)
	return nil
}

func (r *fakeRepo) ListActivities(_ context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	return r.activities[leadID], nil
}

func (r *fakeRepo) InsertScoreHistory(_ context.Context, h domain.ScoreHistory) error {
	r.history = append(r.history, h)
	return nil
}

func (r *fakeRepo) ListScoreHistory(_ context.Context, leadID uuid.UUID, limit int) ([]domain.ScoreHistory, error) {
	out := make([]domain.ScoreHistory, 0)
	for _, h := range r.history {
		if h.LeadID == leadID && len(out) < limit {
			out = append(out, h)
		}
	}
	return out, nil
}

type loggedActivity struct {
	leadID    uuid.UUID
	kind      domain.ActivityType
	payload   map[string]any
	automated bool
}

type fakeScorer struct {
	logged   []loggedActivity
	rescored []string
	logErr   error
	score    domain.ScoreBreakdown
	swept    int
}

func (f *fakeScorer) UpdateScore(_ context.Context, _ uuid.UUID, reason string) (domain.ScoreBreakdown, error) {
	f.rescored = append(f.rescored, reason)
	return f.score, nil
}

func (f *fakeScorer) LogActivityAndScore(_ context.Context, leadID uuid.UUID, kind domain.ActivityType, payload map[string]any, automated bool) (domain.ScoreBreakdown, error) {
	if f.logErr != nil {
		return domain.ScoreBreakdown{}, f.logErr
	}
	f.logged = append(f.logged, loggedActivity{leadID: leadID, kind: kind, payload: payload, automated: automated})
	return f.score, nil
}

func (f *fakeScorer) Insights(_ context.Context, leadID uuid.UUID) (domain.Lead, domain.Temperature, string, error) {
	return domain.Lead{ID: leadID, Stage: domain.StageQualified, Score: f.score}, domain.TemperatureFor(f.score.Total), "Call within 24 hours to book a consultation", nil
}

func (f *fakeScorer) SweepStages(context.Context) (int, error) { return f.swept, nil }

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

type testEnv struct {
	svc    *Service
	repo   *fakeRepo
	scorer *fakeScorer
	bus    *recordingBus
}

func newTestEnv(leads ...domain.Lead) testEnv {
	repo := newFakeRepo(leads...)
	scorer := &fakeScorer{score: domain.ScoreBreakdown{Total: 22, Behavioral: 15, Profile: 7}}
	bus := &recordingBus{}
	svc := New(repo, scorer, bus, logger.Nop())
	svc.SetClock(func() time.Time { return testNow })
	return testEnv{svc: svc, repo: repo, scorer: scorer, bus: bus}
}

func TestCreateEnquiryCreatesAndScoresLead(t *testing.T) {
	env := newTestEnv()

	resp, err := env.svc.CreateEnquiry(context.Background(), transport.CreateLeadRequest{
		FirstName:      " Priya ",
		LastName:       "Shah",
		Email:          "Priya.Shah@Example.com ",
		Phone:          "020 7946 0958",
		CourseInterest: "Lash lift",
		Source:         "instagram",
		CustomFields: map[string]any{
			"leadType":       "cpd_partnership",
			"institution":    "City College",
			"studentNumbers": "120",
		},
		Tags: []string{"CPD", "cpd", " "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Created {
		t.Fatalf("expected a new lead")
	}

	lead := env.repo.leads[resp.ID]
	if lead.Email != "priya.shah@example.com" {
		t.Fatalf("expected normalised email, got %q", lead.Email)
	}
	if lead.Phone != "+442079460958" {
		t.Fatalf("expected E.164 phone, got %q", lead.Phone)
	}
	if lead.FirstName != "Priya" || lead.Stage != domain.StageNew {
		t.Fatalf("unexpected lead %+v", lead)
	}
	cpd, ok := lead.Profile.(domain.CPDProfile)
	if !ok {
		t.Fatalf("expected CPD profile, got %T", lead.Profile)
	}
	if cpd.Institution != "City College" || cpd.StudentNumbers != 120 {
		t.Fatalf("unexpected CPD profile %+v", cpd)
	}
	if len(lead.Tags) != 1 || lead.Tags[0] != "cpd" {
		t.Fatalf("expected deduplicated tags, got %v", lead.Tags)
	}

	if len(env.scorer.logged) != 1 || env.scorer.logged[0].kind != domain.ActivityFormSubmit {
		t.Fatalf("expected one form_submit logged, got %+v", env.scorer.logged)
	}
	if len(env.bus.published) != 1 {
		t.Fatalf("expected LeadCreated, got %d events", len(env.bus.published))
	}
	created, ok := env.bus.published[0].(events.LeadCreated)
	if !ok || created.Score != 22 || created.LeadType != "cpd_partnership" {
		t.Fatalf("unexpected event %#v", env.bus.published[0])
	}
}

func TestCreateEnquiryRepeatEmailLogsOnExistingLead(t *testing.T) {
	existing := domain.Lead{ID: uuid.New(), Email: "sam@example.com", Stage: domain.StageContacted}
	env := newTestEnv(existing)

	resp, err := env.svc.CreateEnquiry(context.Background(), transport.CreateLeadRequest{
		FirstName: "Sam",
		Email:     "SAM@example.com",
		Message:   "Do you run evening classes?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Created || resp.ID != existing.ID {
		t.Fatalf("expected existing lead returned, got %+v", resp)
	}
	if len(env.repo.leads) != 1 {
		t.Fatalf("expected no new lead, got %d", len(env.repo.leads))
	}
	if len(env.scorer.logged) != 1 || env.scorer.logged[0].payload["message"] != "Do you run evening classes?" {
		t.Fatalf("expected the enquiry logged on the existing lead, got %+v", env.scorer.logged)
	}
	if len(env.bus.published) != 0 {
		t.Fatalf("expected no LeadCreated for a repeat enquiry")
	}
}

func TestCreateEnquirySurvivesScoringFailure(t *testing.T) {
	env := newTestEnv()
	env.scorer.logErr = errors.New("scoring down")

	resp, err := env.svc.CreateEnquiry(context.Background(), transport.CreateLeadRequest{FirstName: "Jo", Email: "jo@example.com"})
	if err != nil {
		t.Fatalf("expected lead creation to succeed, got %v", err)
	}
	if _, ok := env.repo.leads[resp.ID]; !ok {
		t.Fatalf("expected lead stored")
	}
	created := env.bus.published[0].(events.LeadCreated)
	if created.Score != 0 {
		t.Fatalf("expected zero score on event, got %d", created.Score)
	}
}

func TestCreateEnquiryRejectsInvalidPhone(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.CreateEnquiry(context.Background(), transport.CreateLeadRequest{FirstName: "Jo", Email: "jo@example.com", Phone: "12"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListClampsPaging(t *testing.T) {
	env := newTestEnv()

	got, err := env.svc.List(context.Background(), transport.ListLeadsRequest{Page: 3, PageSize: 500, Stage: "qualified"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PageSize != 100 || got.TotalPages != 1 {
		t.Fatalf("unexpected paging %+v", got)
	}
	if env.repo.listParams.Offset != 200 || env.repo.listParams.Limit != 100 {
		t.Fatalf("unexpected params %+v", env.repo.listParams)
	}
	if env.repo.listParams.Stage == nil || *env.repo.listParams.Stage != domain.StageQualified {
		t.Fatalf("expected stage filter")
	}

	got, _ = env.svc.List(context.Background(), transport.ListLeadsRequest{})
	if got.Page != 1 || got.PageSize != 20 || got.TotalPages != 3 {
		t.Fatalf("unexpected defaults %+v", got)
	}

	lo, hi := 60, 10
	if _, err := env.svc.List(context.Background(), transport.ListLeadsRequest{MinScore: &lo, MaxScore: &hi}); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateStagePublishesManualChange(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNew}
	env := newTestEnv(lead)
	ctx := context.Background()

	got, err := env.svc.UpdateStage(ctx, lead.ID, transport.UpdateStageRequest{Stage: "contacted", Reason: "phoned"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Stage != "contacted" || got.LastContactAt == nil {
		t.Fatalf("expected contacted with contact stamp, got %+v", got)
	}
	changed, ok := env.bus.published[0].(events.LeadStageChanged)
	if !ok || changed.Automated || changed.OldStage != "new" {
		t.Fatalf("unexpected event %#v", env.bus.published[0])
	}

	if _, err := env.svc.UpdateStage(ctx, lead.ID, transport.UpdateStageRequest{Stage: "contacted"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.repo.stageCalls != 1 || len(env.bus.published) != 1 {
		t.Fatalf("expected same-stage move to be a no-op")
	}

	if _, err := env.svc.UpdateStage(ctx, lead.ID, transport.UpdateStageRequest{Stage: "archived"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := env.svc.UpdateStage(ctx, uuid.New(), transport.UpdateStageRequest{Stage: "lost"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfileRescores(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), FirstName: "Al", Email: "al@example.com", Stage: domain.StageNew}
	env := newTestEnv(lead)

	got, err := env.svc.UpdateProfile(context.Background(), lead.ID, transport.UpdateLeadRequest{
		FirstName:    "Alex",
		LastName:     "Reid",
		CustomFields: map[string]any{"leadType": "education", "currentQualification": "NVQ 2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FirstName != "Alex" || got.LeadType != "education" {
		t.Fatalf("unexpected response %+v", got)
	}
	if got.Email != "al@example.com" {
		t.Fatalf("expected email unchanged, got %q", got.Email)
	}
	if len(env.scorer.rescored) != 1 || env.scorer.rescored[0] != "profile updated" {
		t.Fatalf("expected a rescore, got %v", env.scorer.rescored)
	}
}

func TestLogActivityValidatesType(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNew}
	env := newTestEnv(lead)
	ctx := context.Background()

	if _, err := env.svc.LogActivity(ctx, lead.ID, transport.LogActivityRequest{Type: "webinar_joined"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := env.svc.LogActivity(ctx, uuid.New(), transport.LogActivityRequest{Type: "email_replied"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	got, err := env.svc.LogActivity(ctx, lead.ID, transport.LogActivityRequest{Type: "email_replied"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 22 {
		t.Fatalf("expected score 22, got %+v", got)
	}
	if env.scorer.logged[0].automated {
		t.Fatalf("expected back-office activity to be manual")
	}
}

func TestRecordActivityByEmail(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Email: "kim@example.com", Stage: domain.StageNew}
	env := newTestEnv(lead)
	ctx := context.Background()

	found, err := env.svc.RecordActivityByEmail(ctx, "Kim@Example.com", domain.ActivityBookingCompleted, nil, true)
	if err != nil || !found {
		t.Fatalf("expected activity recorded, got found=%v err=%v", found, err)
	}
	if env.scorer.logged[0].leadID != lead.ID || !env.scorer.logged[0].automated {
		t.Fatalf("unexpected activity %+v", env.scorer.logged[0])
	}

	found, err = env.svc.RecordActivityByEmail(ctx, "nobody@example.com", domain.ActivityBookingCompleted, nil, true)
	if err != nil || found {
		t.Fatalf("expected unknown address to be skipped, got found=%v err=%v", found, err)
	}
}

func TestTrackSwallowsFailures(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Email: "kim@example.com", Stage: domain.StageNew}
	env := newTestEnv(lead)
	env.scorer.logErr = errors.New("db down")

	env.svc.Track(context.Background(), transport.TrackActivityRequest{Email: "kim@example.com", Type: "page_visit"})
	if len(env.scorer.logged) != 0 {
		t.Fatalf("expected nothing logged")
	}
}

func TestHistoryAndInsights(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageQualified}
	env := newTestEnv(lead)
	env.repo.activities[lead.ID] = []domain.Activity{{ID: uuid.New(), LeadID: lead.ID, Type: domain.ActivityFormSubmit, ScoreImpact: 10}}
	env.repo.history = []domain.ScoreHistory{{ID: uuid.New(), LeadID: lead.ID, NewScore: 10, Delta: 10, Reason: "activity: form_submit"}}
	ctx := context.Background()

	history, err := env.svc.History(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history.Activities) != 1 || history.Activities[0].Payload == nil {
		t.Fatalf("unexpected activities %+v", history.Activities)
	}
	if len(history.Scores) != 1 || history.Scores[0].Delta != 10 {
		t.Fatalf("unexpected scores %+v", history.Scores)
	}

	if _, err := env.svc.History(ctx, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	insights, err := env.svc.Insights(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights.Temperature != "cold" || insights.NextAction == "" {
		t.Fatalf("unexpected insights %+v", insights)
	}
}
