package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
)

// DefaultSchedule runs at 15:45 on weekdays, after the NSE close
const DefaultSchedule = "0 45 15 * * 1-5"

// DefaultRunTimeout bounds a single scheduled pass
const DefaultRunTimeout = 45 * time.Minute

// RunFunc is one report pass
type RunFunc func(ctx context.Context) error

// Scheduler triggers report passes on a cron schedule. Passes never overlap:
// a tick that fires while a pass is running is skipped.
type Scheduler struct {
	run     RunFunc
	cron    *cron.Cron
	logger  arbor.ILogger
	timeout time.Duration
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler evaluating cron expressions (with seconds) in loc
func NewScheduler(run RunFunc, loc *time.Location, logger arbor.ILogger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		run:     run,
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		logger:  logger,
		timeout: DefaultRunTimeout,
	}
}

// Start registers the schedule and starts the cron loop
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	id, err := s.cron.AddFunc(schedule, func() {
		s.trigger()
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.cron.Start()

	entry := s.cron.Entry(id)
	s.logger.Info().
		Str("schedule", schedule).
		Str("next_run", entry.Next.Format(time.RFC3339)).
		Msg("Report scheduler started")

	return nil
}

// Stop stops the cron loop and waits for a running pass to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info().Msg("Report scheduler stopped")
}

// RunNow triggers an immediate pass in the background
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate report run")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.trigger()
	}()
}

// trigger runs one pass unless another is in progress and reports whether it ran
func (s *Scheduler) trigger() bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Previous report run still in progress, skipping")
		return false
	}
	defer s.running.Store(false)
	defer common.RecoverAndLog(s.logger, "scheduled_run")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("Starting scheduled report run")

	if err := s.run(ctx); err != nil {
		s.logger.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Scheduled report run failed")
		return true
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("Scheduled report run completed")
	return true
}
