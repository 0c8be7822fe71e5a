package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"salon_booking_backend/internal/events"
	"salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/internal/leads/repository"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/logger"
)

type fakeLeadsRepo struct {
	leads       map[uuid.UUID]domain.Lead
	activities  map[uuid.UUID][]domain.Activity
	history     []domain.ScoreHistory
	scoreWrites int
	stageErr    map[uuid.UUID]error
	activityErr error
}

func newFakeLeadsRepo(leads ...domain.Lead) *fakeLeadsRepo {
	r := &fakeLeadsRepo{
		leads:      make(map[uuid.UUID]domain.Lead),
		activities: make(map[uuid.UUID][]domain.Activity),
		stageErr:   make(map[uuid.UUID]error),
	}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

func (r *fakeLeadsRepo) GetLead(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func (r *fakeLeadsRepo) GetLeadByEmail(_ context.Context, email string) (domain.Lead, error) {
	for _, l := range r.leads {
		if l.Email == email {
			return l, nil
		}
	}
	return domain.Lead{}, apperr.NotFound("lead not found")
}

func (r *fakeLeadsRepo) ListLeads(context.Context, repository.ListParams) ([]domain.Lead, int, error) {
	out := make([]domain.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (r *fakeLeadsRepo) ListOpenLeads(context.Context) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if !l.Stage.IsClosed() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLeadsRepo) CreateLead(_ context.Context, lead domain.Lead) error {
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeLeadsRepo) UpdateProfile(_ context.Context, lead domain.Lead) error {
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeLeadsRepo) UpdateStage(_ context.Context, id uuid.UUID, from, to domain.Stage, at time.Time) error {
	if err := r.stageErr[id]; err != nil {
		return err
	}
	l, ok := r.leads[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
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

func (r *fakeLeadsRepo) UpdateScore(_ context.Context, id uuid.UUID, score domain.ScoreBreakdown, _ time.Time) error {
	l, ok := r.leads[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	r.scoreWrites++
	l.Score = score
	r.leads[id] = l
	return nil
}

func (r *fakeLeadsRepo) InsertActivity(_ context.Context, a domain.Activity) error {
	if r.activityErr != nil {
		return r.activityErr
	}
	if _, ok := r.leads[a.LeadID]; !ok {
		return apperr.NotFound("lead not found")
	}
	r.activities[a.LeadID] = append(r.activities[a.LeadID], a)
	return nil
}

func (r *fakeLeadsRepo) ListActivities(_ context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	return r.activities[leadID], nil
}

func (r *fakeLeadsRepo) InsertScoreHistory(_ context.Context, h domain.ScoreHistory) error {
	r.history = append(r.history, h)
	return nil
}

func (r *fakeLeadsRepo) ListScoreHistory(_ context.Context, leadID uuid.UUID, _ int) ([]domain.ScoreHistory, error) {
	out := make([]domain.ScoreHistory, 0)
	for _, h := range r.history {
		if h.LeadID == leadID {
			out = append(out, h)
		}
	}
	return out, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func newScoringService(repo *fakeLeadsRepo) (*Service, *recordingBus) {
	bus := &recordingBus{}
	svc := New(repo, bus, logger.Nop())
	svc.SetClock(func() time.Time { return scoringNow })
	return svc, bus
}

func TestUpdateScoreWritesHistoryOnlyOnChange(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), FirstName: "Ama", LastName: "Mensah", Email: "ama@gmail.com", Stage: domain.StageNew}
	repo := newFakeLeadsRepo(lead)
	svc, _ := newScoringService(repo)
	ctx := context.Background()

	got, err := svc.UpdateScore(ctx, lead.ID, "profile updated")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 3 {
		t.Fatalf("expected score 3, got %+v", got)
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected one history row, got %d", len(repo.history))
	}
	h := repo.history[0]
	if h.PreviousScore != 0 || h.NewScore != 3 || h.Delta != 3 || h.Reason != "profile updated" {
		t.Fatalf("unexpected history row %+v", h)
	}

	if _, err := svc.UpdateScore(ctx, lead.ID, "no change"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.history) != 1 {
		t.Fatalf("expected no history row for zero delta, got %d", len(repo.history))
	}
	if repo.scoreWrites != 2 {
		t.Fatalf("expected score persisted on every recompute, got %d writes", repo.scoreWrites)
	}
}

func TestUpdateScoreUnknownLead(t *testing.T) {
	svc, _ := newScoringService(newFakeLeadsRepo())
	if _, err := svc.UpdateScore(context.Background(), uuid.New(), "x"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLogActivityAndScoreRecomputesFromFullLog(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Email: "ama@gmail.com", Stage: domain.StageNew}
	repo := newFakeLeadsRepo(lead)
	svc, _ := newScoringService(repo)
	ctx := context.Background()

	got, err := svc.LogActivityAndScore(ctx, lead.ID, domain.ActivityFormSubmit, map[string]any{"form": "enquiry"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10 for the form plus the recency bonus.
	if got.Behavioral != 15 || got.Total != 15 {
		t.Fatalf("expected 15, got %+v", got)
	}

	got, err = svc.LogActivityAndScore(ctx, lead.ID, domain.ActivityType("webinar_joined"), nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 15 {
		t.Fatalf("expected unknown type to leave score at 15, got %+v", got)
	}

	logged := repo.activities[lead.ID]
	if len(logged) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(logged))
	}
	if logged[0].ScoreImpact != 10 || logged[1].ScoreImpact != 0 {
		t.Fatalf("unexpected impacts %d, %d", logged[0].ScoreImpact, logged[1].ScoreImpact)
	}
	if !logged[1].Automated {
		t.Fatalf("expected automated flag stored")
	}
	if len(repo.history) != 1 || repo.history[0].Reason != "activity: form_submit" {
		t.Fatalf("expected a single history row for the form, got %+v", repo.history)
	}
}

func TestLogActivityAndScorePropagatesWriteFailure(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageNew}
	repo := newFakeLeadsRepo(lead)
	repo.activityErr = errors.New("db down")
	svc, _ := newScoringService(repo)

	if _, err := svc.LogActivityAndScore(context.Background(), lead.ID, domain.ActivityFormSubmit, nil, false); err == nil {
		t.Fatalf("expected error")
	}
	if repo.scoreWrites != 0 {
		t.Fatalf("expected no score write after failed append")
	}
}

func TestSweepStagesAppliesAndSkipsConflicts(t *testing.T) {
	hour := time.Hour
	stale := scoringNow.Add(-100 * 24 * hour)
	advance := domain.Lead{ID: uuid.New(), Stage: domain.StageNew, CreatedAt: scoringNow.Add(-48 * hour)}
	qualify := domain.Lead{ID: uuid.New(), Stage: domain.StageContacted, Score: domain.ScoreBreakdown{Total: 55}, CreatedAt: scoringNow.Add(-48 * hour)}
	gone := domain.Lead{ID: uuid.New(), Stage: domain.StageNurturing, CreatedAt: stale, LastContactAt: &stale}
	raced := domain.Lead{ID: uuid.New(), Stage: domain.StageQualified, CreatedAt: scoringNow.Add(-48 * hour)}

	repo := newFakeLeadsRepo(advance, qualify, gone, raced)
	repo.stageErr[raced.ID] = apperr.Conflict("lead stage changed")
	svc, bus := newScoringService(repo)

	applied, err := svc.SweepStages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 3 {
		t.Fatalf("expected 3 applied, got %d", applied)
	}

	if repo.leads[advance.ID].Stage != domain.StageContacted {
		t.Fatalf("expected contacted, got %s", repo.leads[advance.ID].Stage)
	}
	if repo.leads[advance.ID].LastContactAt == nil {
		t.Fatalf("expected last contact stamped")
	}
	if repo.leads[qualify.ID].Stage != domain.StageQualified {
		t.Fatalf("expected qualified, got %s", repo.leads[qualify.ID].Stage)
	}
	if repo.leads[gone.ID].Stage != domain.StageLost {
		t.Fatalf("expected lost, got %s", repo.leads[gone.ID].Stage)
	}
	if repo.leads[raced.ID].Stage != domain.StageQualified {
		t.Fatalf("expected raced lead untouched, got %s", repo.leads[raced.ID].Stage)
	}

	if len(bus.published) != 3 {
		t.Fatalf("expected 3 stage events, got %d", len(bus.published))
	}
	for _, e := range bus.published {
		changed, ok := e.(events.LeadStageChanged)
		if !ok || !changed.Automated {
			t.Fatalf("expected automated stage change event, got %#v", e)
		}
	}
}

func TestIdentifyStageTransitionsDoesNotMutate(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Stage: domain.StageQualified, CreatedAt: scoringNow.Add(-48 * time.Hour)}
	repo := newFakeLeadsRepo(lead)
	svc, bus := newScoringService(repo)

	got, err := svc.IdentifyStageTransitions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.ToNurturing) != 1 {
		t.Fatalf("expected 1 nurturing move, got %+v", got)
	}
	if repo.leads[lead.ID].Stage != domain.StageQualified || len(bus.published) != 0 {
		t.Fatalf("expected no side effects")
	}
}
