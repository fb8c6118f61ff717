package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// JobStatus reports the last completed run of a job.
type JobStatus struct {
	Name     string
	Interval time.Duration
	LastRun  time.Time
	Duration time.Duration
	Err      error
}

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc

	// run serialises executions; ticks and Trigger never overlap.
	run    sync.Mutex
	status JobStatus
}

// Scheduler runs each registered job on its own ticker, once at start and
// then every interval.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []*job
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddJob registers fn under name. Jobs added after Start are not scheduled
// but can still be triggered.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &job{
		name:     name,
		interval: interval,
		fn:       fn,
		status:   JobStatus{Name: name, Interval: interval},
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels the scheduler context and waits for in-flight runs.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		s.execute(s.ctx, j)
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	j.run.Lock()
	defer j.run.Unlock()

	start := time.Now()
	err := j.fn(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	j.status.LastRun = start
	j.status.Duration = elapsed
	j.status.Err = err
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed", "name", j.name, "error", err, "duration", elapsed)
	} else {
		slog.Debug("Cron job completed", "name", j.name, "duration", elapsed)
	}
	return err
}

func (s *Scheduler) snapshot() []*job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*job(nil), s.jobs...)
}

// Trigger runs the named job once, synchronously, on the caller's context.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	for _, j := range s.snapshot() {
		if j.name == name {
			return s.execute(ctx, j)
		}
	}
	return fmt.Errorf("cron job %q is not registered", name)
}

// RunOnce runs every job once in registration order and returns the first
// error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var first error
	for _, j := range s.snapshot() {
		if err := s.execute(ctx, j); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Status lists the jobs with the outcome of their latest run.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = j.status
	}
	return out
}
