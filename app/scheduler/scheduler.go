// Package scheduler runs the daily batch jobs (overdue sweep,
// return-deadline notifications) at a fixed local hour.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	hour int
	jobs []Job
	log  *slog.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(hour int, log *slog.Logger) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = 9
	}
	return &Scheduler{
		hour:     hour,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

func (s *Scheduler) Add(name string, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, Job{Name: name, Run: run})
}

// Start launches the scheduler loop. Jobs run sequentially at each firing;
// a failing job is logged and does not stop the others or the loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
	s.log.Info("scheduler started", "hour", s.hour, "jobs", len(s.jobs))
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		timer := time.NewTimer(time.Until(NextRun(time.Now(), s.hour)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.runJobs(ctx)
		}
	}
}

func (s *Scheduler) runJobs(ctx context.Context) {
	for _, job := range s.jobs {
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.log.Error("scheduled job failed", "job", job.Name, "err", err)
			continue
		}
		s.log.Info("scheduled job done", "job", job.Name, "took_ms", time.Since(start).Milliseconds())
	}
}

// NextRun is the next occurrence of hour:00 strictly after now.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
