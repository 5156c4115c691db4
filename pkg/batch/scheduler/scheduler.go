// Package scheduler triggers job launches at a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// DefaultInterval is the trigger interval used when the config does not set one.
const DefaultInterval = 60 * time.Second

// Config holds the tunables of the fixed-rate scheduler.
type Config struct {
	// Interval between trigger firings. Non-positive values fall back to
	// DefaultInterval.
	Interval time.Duration
}

// ParametersFactory builds a fresh set of JobParameters for each firing.
type ParametersFactory func(now time.Time) model.JobParameters

// FixedRateScheduler launches a job at a fixed interval. The first firing
// happens immediately on Start. Launch and run errors are logged and
// swallowed so one failed run never stops the schedule.
type FixedRateScheduler struct {
	launcher      port.JobLauncher
	job           port.Job
	paramsFactory ParametersFactory
	interval      time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewFixedRateScheduler creates a new FixedRateScheduler.
func NewFixedRateScheduler(cfg Config, launcher port.JobLauncher, job port.Job, paramsFactory ParametersFactory) *FixedRateScheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &FixedRateScheduler{
		launcher:      launcher,
		job:           job,
		paramsFactory: paramsFactory,
		interval:      interval,
	}
}

// Start begins firing the trigger. It returns immediately; firings run on a
// background goroutine until Stop is called or ctx is cancelled.
func (s *FixedRateScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		logger.Warnf("Scheduler for job '%s' already started.", s.job.JobName())
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		logger.Infof("Scheduler started for job '%s' (interval: %s).", s.job.JobName(), s.interval)
		s.fire(runCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				logger.Infof("Scheduler stopped for job '%s'.", s.job.JobName())
				return
			case <-ticker.C:
				s.fire(runCtx)
			}
		}
	}()
}

// Stop cancels the schedule and waits for an in-flight run to finish.
func (s *FixedRateScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

// fire builds fresh parameters and launches the job once. All errors are
// logged and swallowed; the schedule keeps firing.
func (s *FixedRateScheduler) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	now := time.Now()
	params := s.paramsFactory(now)
	logger.Infof("Scheduler firing job '%s'. Parameters: %s", s.job.JobName(), params.String())

	execution, err := s.launcher.Launch(ctx, s.job, params)
	if err != nil {
		wrapped := exception.NewBatchError(exception.ModuleScheduler, "scheduled job run failed", err)
		logger.Errorf("%v", wrapped)
		return
	}
	logger.Infof("Scheduled run of job '%s' finished. Status: %s", s.job.JobName(), execution.Status)
}
