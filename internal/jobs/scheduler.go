package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a unit of recurring work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type JobRecorder interface {
	JobRun(job string, err error)
}

// Scheduler runs jobs on cron schedules. A job still running when its next tick fires is skipped.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	log     *logrus.Logger
	metrics JobRecorder
	started bool
}

func NewScheduler(log *logrus.Logger, metrics JobRecorder) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
		metrics: metrics,
	}
}

func (s *Scheduler) Add(schedule string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(schedule, func() { s.RunNow(s.ctx, job) })
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}
	s.log.WithFields(logrus.Fields{
		"job":      job.Name(),
		"schedule": schedule,
	}).Info("job scheduled")
	return id, nil
}

// RunNow executes the job once on the calling goroutine.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	entry := s.log.WithField("job", job.Name())
	entry.Info("job started")

	err := job.Run(ctx)
	if s.metrics != nil {
		s.metrics.JobRun(job.Name(), err)
	}
	if err != nil {
		entry.WithError(err).Error("job failed")
		return err
	}
	entry.Info("job finished")
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	s.cancel()
	if !started {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
