package ingest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobOnStart(t *testing.T) {
	var count atomic.Int32

	s := NewScheduler()
	s.Add(Job{
		Name:     "test-job",
		Interval: time.Hour,
		Timeout:  time.Second,
		Fn: func(ctx context.Context) error {
			count.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Shutdown()

	if got := count.Load(); got < 1 {
		t.Errorf("expected job to run at least once, ran %d times", got)
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	var count atomic.Int32

	s := NewScheduler()
	s.Add(Job{
		Name:     "stop-test",
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
		Fn: func(ctx context.Context) error {
			count.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Shutdown()

	after := count.Load()
	time.Sleep(30 * time.Millisecond)
	if count.Load() != after {
		t.Error("job kept running after shutdown")
	}
}

func TestScheduler_TimeoutApplied(t *testing.T) {
	var timedOut atomic.Bool

	s := NewScheduler()
	s.Add(Job{
		Name:     "timeout-test",
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				timedOut.Store(true)
			case <-time.After(time.Second):
			}
			return ctx.Err()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()
	s.Shutdown()

	if !timedOut.Load() {
		t.Error("job context was not cancelled by its timeout")
	}
}

func TestScheduler_ZeroTimeoutRunsUnbounded(t *testing.T) {
	var bounded atomic.Bool
	done := make(chan struct{})

	s := NewScheduler()
	s.Add(Job{
		Name:     "no-timeout",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			bounded.Store(hasDeadline || ctx.Err() != nil)
			close(done)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
	cancel()
	s.Shutdown()

	if bounded.Load() {
		t.Error("job with zero timeout got a deadline")
	}
}

func TestScheduler_AddValidates(t *testing.T) {
	s := NewScheduler()
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.Add(Job{Name: "nothing", Fn: noop}))
	assert.Error(t, s.Add(Job{Name: "bad-cron", Schedule: "every day", Fn: noop}))
	require.NoError(t, s.Add(Job{Name: "cron", Schedule: "0 6 * * *", Timeout: time.Second, Fn: noop}))
	require.NoError(t, s.Add(Job{Name: "interval", Interval: time.Hour, Timeout: time.Second, Fn: noop}))
	assert.Len(t, s.jobs, 2)
}

func TestScheduler_CronJobStopsWithContext(t *testing.T) {
	var count atomic.Int32
	s := NewScheduler()
	require.NoError(t, s.Add(Job{
		Name:     "cron-job",
		Schedule: "0 0 1 1 *",
		Timeout:  time.Second,
		Fn: func(context.Context) error {
			count.Add(1)
			return nil
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Len(t, s.cron.Entries(), 1)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Zero(t, count.Load())
}
