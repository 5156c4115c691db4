// Package scheduler_test provides unit tests for the fixed-rate scheduler.
package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/scheduler"
)

// countingLauncher records every launch and optionally fails them all.
type countingLauncher struct {
	mu        sync.Mutex
	launches  []model.JobParameters
	launchErr error
}

func (l *countingLauncher) Launch(ctx context.Context, job port.Job, params model.JobParameters) (*model.JobExecution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, params)
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	je := model.NewJobExecution(model.NewID(), job.JobName(), params)
	je.MarkAsStarted()
	je.MarkAsCompleted()
	return je, nil
}

func (l *countingLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.launches)
}

// noopJob is the minimal port.Job for scheduler tests; the stub launcher
// never calls Run.
type noopJob struct{ name string }

func (j *noopJob) JobName() string { return j.name }
func (j *noopJob) Run(ctx context.Context, je *model.JobExecution, params model.JobParameters) error {
	return nil
}
func (j *noopJob) ValidateParameters(params model.JobParameters) error { return nil }

func staticParamsFactory(now time.Time) model.JobParameters {
	params := model.NewJobParameters()
	params.Put("endDate", now.Format("2006-01-02"))
	return params
}

func waitForLaunches(t *testing.T, l *countingLauncher, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if l.count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected at least %d launches, got %d", want, l.count())
}

func TestFixedRateScheduler_FiresImmediatelyAndThenOnInterval(t *testing.T) {
	l := &countingLauncher{}
	s := scheduler.NewFixedRateScheduler(scheduler.Config{Interval: 20 * time.Millisecond}, l, &noopJob{name: "testJob"}, staticParamsFactory)

	s.Start(context.Background())
	defer s.Stop()

	waitForLaunches(t, l, 3)
}

func TestFixedRateScheduler_KeepsFiringAfterFailures(t *testing.T) {
	l := &countingLauncher{launchErr: errors.New("launch rejected")}
	s := scheduler.NewFixedRateScheduler(scheduler.Config{Interval: 20 * time.Millisecond}, l, &noopJob{name: "testJob"}, staticParamsFactory)

	s.Start(context.Background())
	defer s.Stop()

	// Every firing fails, yet the schedule keeps going.
	waitForLaunches(t, l, 3)
}

func TestFixedRateScheduler_StopHaltsFiring(t *testing.T) {
	l := &countingLauncher{}
	s := scheduler.NewFixedRateScheduler(scheduler.Config{Interval: 20 * time.Millisecond}, l, &noopJob{name: "testJob"}, staticParamsFactory)

	s.Start(context.Background())
	waitForLaunches(t, l, 1)
	s.Stop()

	after := l.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, l.count())
}

func TestFixedRateScheduler_ContextCancellationHaltsFiring(t *testing.T) {
	l := &countingLauncher{}
	s := scheduler.NewFixedRateScheduler(scheduler.Config{Interval: 20 * time.Millisecond}, l, &noopJob{name: "testJob"}, staticParamsFactory)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	waitForLaunches(t, l, 1)
	cancel()
	s.Stop()

	after := l.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, l.count())
}

func TestFixedRateScheduler_BuildsFreshParametersPerRun(t *testing.T) {
	l := &countingLauncher{}
	s := scheduler.NewFixedRateScheduler(scheduler.Config{Interval: 20 * time.Millisecond}, l, &noopJob{name: "testJob"}, staticParamsFactory)

	s.Start(context.Background())
	defer s.Stop()
	waitForLaunches(t, l, 2)

	l.mu.Lock()
	defer l.mu.Unlock()
	require.GreaterOrEqual(t, len(l.launches), 2)
	for _, params := range l.launches {
		_, ok := params.GetString("endDate")
		assert.True(t, ok)
	}
}

func TestFixedRateScheduler_DoubleStartIsIgnored(t *testing.T) {
	l := &countingLauncher{}
	s := scheduler.NewFixedRateScheduler(scheduler.Config{Interval: time.Hour}, l, &noopJob{name: "testJob"}, staticParamsFactory)

	s.Start(context.Background())
	s.Start(context.Background())
	defer s.Stop()

	// Only the first Start spawns a firing loop: one immediate launch.
	waitForLaunches(t, l, 1)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, l.count())
}

func TestNewFixedRateScheduler_DefaultsInterval(t *testing.T) {
	l := &countingLauncher{}
	s := scheduler.NewFixedRateScheduler(scheduler.Config{}, l, &noopJob{name: "testJob"}, staticParamsFactory)
	require.NotNil(t, s)
}
