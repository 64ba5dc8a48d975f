package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSummaryCron snapshots the month that just ended, shortly after
// midnight on the first.
const DefaultSummaryCron = "5 0 1 * *"

// Job is a scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs the monthly summary job on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    Job
	logger *zap.Logger
}

// NewScheduler creates a scheduler running job at spec (standard 5-field
// cron). An empty spec uses DefaultSummaryCron; "off" disables the job.
func NewScheduler(spec string, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = DefaultSummaryCron
	}

	s := &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		job:    job,
		logger: logger,
	}
	if spec == "off" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("scheduling summary job %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("spec", s.spec))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns when the job runs next, or the zero time when disabled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now())
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.job(ctx); err != nil {
		s.logger.Error("summary job failed", zap.Error(err))
	}
}
