package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salon_booking_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeDeliverer struct {
	bookingID uuid.UUID
	startsAt  time.Time
	calls     int
}

func (f *fakeDeliverer) DeliverReminder(_ context.Context, bookingID uuid.UUID, startsAt time.Time) error {
	f.calls++
	f.bookingID = bookingID
	f.startsAt = startsAt
	return nil
}

type fakeSweeper struct {
	moved int
	err   error
	calls int
}

func (f *fakeSweeper) SweepStages(context.Context) (int, error) {
	f.calls++
	return f.moved, f.err
}

func newTestWorker() *Worker {
	w := &Worker{mux: asynq.NewServeMux(), log: logger.Nop()}
	w.mux.HandleFunc(TaskBookingReminder, w.handleBookingReminder)
	w.mux.HandleFunc(TaskLeadStageSweep, w.handleLeadStageSweep)
	return w
}

func TestBookingReminderPayloadRoundTrip(t *testing.T) {
	id := uuid.New()
	startsAt := time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC)

	task, err := NewBookingReminderTask(BookingReminderPayload{BookingID: id.String(), StartsAt: startsAt})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskBookingReminder {
		t.Fatalf("expected %s, got %s", TaskBookingReminder, task.Type())
	}

	payload, err := ParseBookingReminderPayload(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.BookingID != id.String() || !payload.StartsAt.Equal(startsAt) {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestParseBookingReminderPayloadRejectsBadID(t *testing.T) {
	task := asynq.NewTask(TaskBookingReminder, []byte(`{"bookingId":"nope"}`))
	if _, err := ParseBookingReminderPayload(task); err == nil {
		t.Fatalf("expected error for invalid booking id")
	}
}

func TestBookingReminderTaskIDChangesWithStartTime(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC)

	if bookingReminderTaskID(id, at) == bookingReminderTaskID(id, at.Add(30*time.Minute)) {
		t.Fatalf("expected a rescheduled booking to get a new task id")
	}
	if bookingReminderTaskID(id, at) != bookingReminderTaskID(id, at.In(time.FixedZone("BST", 3600))) {
		t.Fatalf("expected task id to ignore the zone of the same instant")
	}
}

func TestWorkerDispatchesBookingReminder(t *testing.T) {
	w := newTestWorker()
	deliverer := &fakeDeliverer{}
	w.SetReminderDeliverer(deliverer)

	id := uuid.New()
	startsAt := time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC)
	task, _ := NewBookingReminderTask(BookingReminderPayload{BookingID: id.String(), StartsAt: startsAt})

	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deliverer.calls != 1 || deliverer.bookingID != id || !deliverer.startsAt.Equal(startsAt) {
		t.Fatalf("unexpected delivery %+v", deliverer)
	}
}

func TestWorkerSkipsRetryOnMalformedReminder(t *testing.T) {
	w := newTestWorker()
	w.SetReminderDeliverer(&fakeDeliverer{})

	err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskBookingReminder, []byte(`{`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestWorkerRunsStageSweep(t *testing.T) {
	w := newTestWorker()
	sweeper := &fakeSweeper{moved: 3}
	w.SetStageSweeper(sweeper)

	task, _ := NewLeadStageSweepTask(LeadStageSweepPayload{RequestedAt: time.Now()})
	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected sweep to run once, got %d", sweeper.calls)
	}

	sweeper.err = errors.New("db down")
	if err := w.mux.ProcessTask(context.Background(), task); err == nil {
		t.Fatalf("expected sweep error to surface for retry")
	}
}

func TestWorkerWithoutHandlersIgnoresTasks(t *testing.T) {
	w := newTestWorker()
	task, _ := NewLeadStageSweepTask(LeadStageSweepPayload{})
	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

type countingEnqueuer struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (e *countingEnqueuer) EnqueueDueReminders(context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.calls == 2 {
		close(e.done)
	}
	return 1, nil
}

func TestReminderBackfillRunsUntilCancelled(t *testing.T) {
	enqueuer := &countingEnqueuer{done: make(chan struct{})}
	backfill := NewReminderBackfill(enqueuer, logger.Nop(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		backfill.Run(ctx)
		close(finished)
	}()

	select {
	case <-enqueuer.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected backfill to tick")
	}
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected backfill to stop after cancel")
	}
}

type recordingSweepEnqueuer struct {
	calls []time.Time
	err   error
}

func (e *recordingSweepEnqueuer) EnqueueStageSweep(_ context.Context, requestedAt time.Time) error {
	e.calls = append(e.calls, requestedAt)
	return e.err
}

func TestNewStageSweepCronRejectsBadSpec(t *testing.T) {
	if _, err := NewStageSweepCron("every morning", time.UTC, &recordingSweepEnqueuer{}, logger.Nop()); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestStageSweepCronEnqueuesWithRequestTime(t *testing.T) {
	enqueuer := &recordingSweepEnqueuer{}
	sweep, err := NewStageSweepCron("0 6 * * *", time.UTC, enqueuer, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fixed := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	sweep.now = func() time.Time { return fixed }

	sweep.enqueue()
	enqueuer.err = errors.New("redis down")
	sweep.enqueue()

	if len(enqueuer.calls) != 2 || !enqueuer.calls[0].Equal(fixed) {
		t.Fatalf("unexpected enqueue calls %v", enqueuer.calls)
	}
	if entries := sweep.cron.Entries(); len(entries) != 1 {
		t.Fatalf("expected one cron entry, got %d", len(entries))
	}
}

func TestStageSweepCronStopsOnCancel(t *testing.T) {
	sweep, err := NewStageSweepCron("0 6 * * *", time.UTC, &recordingSweepEnqueuer{}, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		sweep.Run(ctx)
		close(finished)
	}()
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected cron to stop after cancel")
	}
}
