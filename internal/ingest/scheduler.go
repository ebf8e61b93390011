package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a periodic background task. A non-empty Schedule (standard
// five-field cron, UTC) takes precedence over Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Schedule string
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs jobs until its context is cancelled.
type Scheduler struct {
	jobs []Job
	wg   sync.WaitGroup
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithLocation(time.UTC))}
}

// Add registers j. It rejects an unparseable Schedule or a job with neither
// Schedule nor a positive Interval.
func (s *Scheduler) Add(j Job) error {
	switch {
	case j.Schedule != "":
		if _, err := cron.ParseStandard(j.Schedule); err != nil {
			return fmt.Errorf("job %s: schedule %q: %w", j.Name, j.Schedule, err)
		}
	case j.Interval <= 0:
		return fmt.Errorf("job %s: no interval or schedule", j.Name)
	}
	s.jobs = append(s.jobs, j)
	return nil
}

// Start launches every job. Interval jobs run once immediately, then on
// their interval; cron jobs wait for their first slot.
func (s *Scheduler) Start(ctx context.Context) {
	cronJobs := 0
	for _, j := range s.jobs {
		if j.Schedule != "" {
			if _, err := s.cron.AddFunc(j.Schedule, func() { s.execute(ctx, j) }); err != nil {
				log.Errorf("job %s: %v", j.Name, err)
				continue
			}
			cronJobs++
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	if cronJobs == 0 {
		return
	}
	s.cron.Start()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	defer s.wg.Done()
	s.execute(ctx, j)

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Infof("job %s stopping", j.Name)
			return
		case <-ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j Job) {
	if ctx.Err() != nil {
		return
	}
	jobCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	if err := j.Fn(jobCtx); err != nil {
		log.Errorf("job %s failed: %v", j.Name, err)
	}
}

// Shutdown waits for running jobs to return.
func (s *Scheduler) Shutdown() { s.wg.Wait() }

// DailyJob wraps RunToday as a scheduler job. schedule may be empty.
func (s *Service) DailyJob(interval time.Duration, schedule string, timeout time.Duration) Job {
	return Job{
		Name:     "daily-ingest",
		Interval: interval,
		Schedule: schedule,
		Timeout:  timeout,
		Fn: func(ctx context.Context) error {
			_, err := s.RunToday(ctx, "schedule")
			if errors.Is(err, ErrInProgress) {
				return nil
			}
			return err
		},
	}
}
