// Package scheduler runs background jobs: the recurring-rule pass on a fixed
// interval and the balance repair sweep at configured times of day.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ScheduleTime represents a specific time of day when the scheduler should run.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// String returns the time in HH:MM format.
func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses a time string in HH:MM format.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}

	if hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid hour: %d (must be 0-23)", hour)
	}
	if minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid minute: %d (must be 0-59)", minute)
	}

	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// Config holds configuration for the scheduler.
type Config struct {
	// ScheduleTimes are HH:MM times of day at which JobProvider runs.
	ScheduleTimes []string
	JobProvider   func(context.Context) ([]Job, error)

	// IntervalJob is submitted every Interval. Nil disables it.
	IntervalJob Job
	Interval    time.Duration

	WorkerCount  int
	JobDelay     time.Duration
	QueueSize    int
	RunOnStartup bool
}

// Scheduler submits jobs to a worker pool on a clock.
type Scheduler struct {
	workerPool    *WorkerPool
	scheduleTimes []ScheduleTime
	jobProvider   func(context.Context) ([]Job, error)
	intervalJob   Job
	interval      time.Duration
	runOnStartup  bool
	tick          time.Duration
	log           zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun string
}

// NewScheduler validates the configuration and builds the worker pool.
func NewScheduler(cfg Config, log zerolog.Logger) (*Scheduler, error) {
	scheduleTimes := make([]ScheduleTime, 0, len(cfg.ScheduleTimes))
	for _, timeStr := range cfg.ScheduleTimes {
		st, err := ParseScheduleTime(timeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule time %q: %w", timeStr, err)
		}
		scheduleTimes = append(scheduleTimes, st)
	}
	if len(scheduleTimes) > 0 && cfg.JobProvider == nil {
		return nil, fmt.Errorf("schedule times require a job provider")
	}
	if cfg.IntervalJob != nil && cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("at least one worker is required")
	}

	log = log.With().Str("component", "scheduler").Logger()
	ctx, cancel := context.WithCancel(context.Background())

	log.Info().
		Strs("times", cfg.ScheduleTimes).
		Dur("interval", cfg.Interval).
		Int("workers", cfg.WorkerCount).
		Dur("job_delay", cfg.JobDelay).
		Msg("scheduler initialized")

	return &Scheduler{
		workerPool:    NewWorkerPool(cfg.WorkerCount, cfg.JobDelay, cfg.QueueSize, log),
		scheduleTimes: scheduleTimes,
		jobProvider:   cfg.JobProvider,
		intervalJob:   cfg.IntervalJob,
		interval:      cfg.Interval,
		runOnStartup:  cfg.RunOnStartup,
		tick:          time.Minute,
		log:           log,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start launches the worker pool and the scheduling loops.
func (s *Scheduler) Start() {
	s.workerPool.Start()

	if s.runOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.submitInterval()
			s.runJobs()
		}()
	}

	if len(s.scheduleTimes) > 0 {
		s.wg.Add(1)
		go s.scheduleLoop()
	}
	if s.intervalJob != nil {
		s.wg.Add(1)
		go s.intervalLoop()
	}

	s.log.Info().Time("next_sweep", s.NextScheduledTime(time.Now())).Msg("scheduler started")
}

func (s *Scheduler) scheduleLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.log.Info().Str("at", now.Format("15:04")).Msg("scheduled sweep triggered")
				s.runJobs()
			}
		}
	}
}

func (s *Scheduler) intervalLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.submitInterval()
		}
	}
}

// shouldRun reports whether now matches a schedule time not yet run this minute.
func (s *Scheduler) shouldRun(now time.Time) bool {
	key := now.Format("2006-01-02 15:04")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRun == key {
		return false
	}
	for _, st := range s.scheduleTimes {
		if now.Hour() == st.Hour && now.Minute() == st.Minute {
			s.lastRun = key
			return true
		}
	}
	return false
}

func (s *Scheduler) submitInterval() {
	if s.intervalJob == nil {
		return
	}
	if err := s.workerPool.Submit(s.intervalJob); err != nil {
		s.log.Warn().Err(err).Str("job", s.intervalJob.Description()).Msg("failed to submit interval job")
	}
}

// runJobs asks the job provider for work and submits it to the pool.
func (s *Scheduler) runJobs() {
	if s.jobProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	jobs, err := s.jobProvider(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch jobs")
		return
	}
	if len(jobs) == 0 {
		s.log.Debug().Msg("no jobs to process")
		return
	}
	s.workerPool.SubmitBatch(jobs)
}

// TriggerNow runs the job provider immediately.
func (s *Scheduler) TriggerNow() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runJobs()
	}()
}

// Shutdown stops the loops, then drains the worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		s.log.Warn().Msg("timeout waiting for scheduler loops to stop")
	}

	s.workerPool.ShutdownWithTimeout(timeout)
	s.log.Info().Msg("scheduler stopped")
}

// NextScheduledTime returns the next sweep time after now, or the zero time
// when no schedule times are configured.
func (s *Scheduler) NextScheduledTime(now time.Time) time.Time {
	var next time.Time
	for _, st := range s.scheduleTimes {
		t := time.Date(now.Year(), now.Month(), now.Day(), st.Hour, st.Minute, 0, 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}
