package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/metrics"
)

// Job is polled every Interval. Jobs decide for themselves whether the
// current tick is the one they act on.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Jobs returns the names of the registered jobs in registration order.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0)
	for _, job := range s.snapshot() {
		names = append(names, job.Name)
	}
	return names
}

// Start launches one goroutine per job. Each job also runs once right away
// so a restart inside an action window does not miss it.
func (s *Scheduler) Start() {
	jobs := s.snapshot()
	for _, job := range jobs {
		s.wg.Add(1)
		go s.loop(job)
	}
	slog.Info("Cron scheduler started", "job_count", len(jobs))
}

// Stop cancels every job and waits for running executions to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// Run executes the named job once and returns its error.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	for _, job := range s.snapshot() {
		if job.Name == name {
			return s.execute(ctx, job)
		}
	}
	return fmt.Errorf("cron job %q is not registered", name)
}

// RunOnce executes every job once, in registration order, ignoring errors.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, job := range s.snapshot() {
		_ = s.execute(ctx, job)
	}
}

func (s *Scheduler) snapshot() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	_ = s.execute(s.ctx, job)
	for {
		select {
		case <-s.ctx.Done():
			slog.Debug("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			_ = s.execute(s.ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Fn(ctx)
	if err != nil {
		metrics.CronRuns.WithLabelValues(job.Name, metrics.OutcomeFailed).Inc()
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return err
	}
	metrics.CronRuns.WithLabelValues(job.Name, metrics.OutcomeSuccess).Inc()
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	return nil
}
