// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	base    context.Context
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]Job
}

// NewScheduler creates a new job scheduler. Each run gets its own context,
// derived from ctx and bounded by timeout, so cancelling ctx also cancels
// running jobs.
func NewScheduler(ctx context.Context, logger *slog.Logger, timeout time.Duration) *Scheduler {
	// Standard 5-field format, plus descriptors such as @daily and @every 1h.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		cron:    c,
		logger:  logger,
		base:    ctx,
		timeout: timeout,
		jobs:    make(map[string]Job),
	}
}

// ValidateSchedule reports whether schedule is accepted by the scheduler.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return nil
}

// Add registers job under name to run on schedule.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	s.mu.Lock()
	if _, ok := s.jobs[name]; ok {
		s.mu.Unlock()
		return fmt.Errorf("job %q already registered", name)
	}
	s.jobs[name] = job
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(schedule, func() { _ = s.run(name, job) }); err != nil {
		s.mu.Lock()
		delete(s.jobs, name)
		s.mu.Unlock()
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return nil
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
}

// Stop gracefully stops all scheduled jobs. The returned context is done when
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow runs a registered job synchronously, outside the schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.run(name, job)
}

// Next returns the next scheduled activation, or the zero time when nothing
// is scheduled.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(s.base, s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("job started", slog.String("job", name))

	if err := job(ctx); err != nil {
		s.logger.Error("job failed",
			slog.String("job", name),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return err
	}

	s.logger.Info("job completed",
		slog.String("job", name),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
