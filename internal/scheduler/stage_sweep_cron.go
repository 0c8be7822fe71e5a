package scheduler

import (
	"context"
	"fmt"
	"time"

	"salon_booking_backend/platform/logger"

	"github.com/robfig/cron/v3"
)

// StageSweepEnqueuer queues a lead stage sweep for a worker.
type StageSweepEnqueuer interface {
	EnqueueStageSweep(ctx context.Context, requestedAt time.Time) error
}

// StageSweepCron enqueues the lead stage sweep on a cron schedule. The sweep
// itself runs in the worker so only one process ever applies it.
type StageSweepCron struct {
	cron     *cron.Cron
	enqueuer StageSweepEnqueuer
	log      *logger.Logger
	now      func() time.Time
}

// NewStageSweepCron parses spec (standard five-field cron) in loc.
func NewStageSweepCron(spec string, loc *time.Location, enqueuer StageSweepEnqueuer, log *logger.Logger) (*StageSweepCron, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &StageSweepCron{
		cron:     cron.New(cron.WithLocation(loc)),
		enqueuer: enqueuer,
		log:      log,
		now:      time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.enqueue); err != nil {
		return nil, fmt.Errorf("invalid stage sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is done.
func (s *StageSweepCron) Run(ctx context.Context) {
	s.cron.Start()
	s.log.Info("lead stage sweep scheduled", "entries", len(s.cron.Entries()))

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
}

func (s *StageSweepCron) enqueue() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.enqueuer.EnqueueStageSweep(ctx, s.now().UTC()); err != nil {
		s.log.Error("failed to enqueue lead stage sweep", "error", err)
		return
	}
	s.log.Info("lead stage sweep enqueued")
}
