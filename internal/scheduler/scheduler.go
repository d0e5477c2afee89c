// Package scheduler runs the periodic background jobs of the foreground
// runner: the midnight rollover check and a catch-up pass over running
// timers.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/model"
)

// DefaultPollSpec polls every minute on second 0.
const DefaultPollSpec = "0 * * * * *"

// Scheduler manages scheduled tasks using cron.
type Scheduler struct {
	cron      *cron.Cron
	registry  Registry
	rollover  *RolloverChecker
	clock     clockwork.Clock
	pollSpec  string
	lastCheck time.Time
	mu        sync.Mutex
}

// NewScheduler creates a scheduler polling registry on pollSpec, a
// six-field cron expression with seconds.
func NewScheduler(registry Registry, clock clockwork.Clock, pollSpec string, window time.Duration) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if pollSpec == "" {
		pollSpec = DefaultPollSpec
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		registry: registry,
		rollover: NewRolloverChecker(registry, clock, window),
		clock:    clock,
		pollSpec: pollSpec,
	}
}

// Start registers the poll job and starts the cron scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.lastCheck = s.clock.Now()
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if _, err := s.cron.AddFunc(s.pollSpec, func() {
		s.Poll(ctx)
	}); err != nil {
		return fmt.Errorf("failed to add poll job %q: %w", s.pollSpec, err)
	}

	s.cron.Start()
	logging.FromContext(ctx).Debug("scheduler started", "spec", s.pollSpec, "next", s.NextRun())
	return nil
}

// Stop stops the scheduler and waits for a running poll to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logging.DebugLog("scheduler stopped")
}

// Poll runs one round of checks: the rollover first, then a pass that
// completes timers whose ticks were missed, e.g. across a system sleep.
func (s *Scheduler) Poll(ctx context.Context) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	now := s.clock.Now()
	elapsed := now.Sub(s.lastCheck)
	s.lastCheck = now
	s.mu.Unlock()

	if elapsed > time.Hour {
		log.Info("resuming after a long gap", "gap", elapsed.Round(time.Second))
	}

	ran, err := s.rollover.Check(ctx)
	if err != nil {
		log.Warn("rollover check failed", logging.KeyError, err)
	} else if ran {
		log.Debug("rollover ran", logging.KeyDate, now.Local().Format(model.DateLayout))
	}

	if _, err := s.registry.Pass(ctx); err != nil {
		log.Warn("catch-up pass failed", logging.KeyError, err)
	}
}

// PollSpec returns the cron spec of the poll job.
func (s *Scheduler) PollSpec() string {
	return s.pollSpec
}

// AddJob adds a custom job to the scheduler.
func (s *Scheduler) AddJob(spec string, job func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, job)
}

// RemoveJob removes a job from the scheduler.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.cron.Remove(id)
}

// Entries returns all scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns the next scheduled run time for any job.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
