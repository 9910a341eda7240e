// Package scheduler runs the periodic maintenance jobs: catalog refresh
// and audit log retention. Jobs are enqueued on the task queue rather than
// executed inline so a slow catalog never stalls the scheduler.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
)

// Enqueuer is the slice of the task client the scheduler needs.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// Job pairs a cron schedule with the task it enqueues.
type Job struct {
	Name     string
	Schedule string
	Task     backlite.Task
}

// Scheduler enqueues maintenance tasks on cron schedules.
type Scheduler struct {
	queue Enqueuer
	jobs  []Job

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func New(queue Enqueuer, jobs []Job) *Scheduler {
	return &Scheduler{
		queue: queue,
		jobs:  jobs,
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start registers all jobs and begins the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if len(s.jobs) == 0 {
		log.Printf("Scheduler: no jobs configured")
		return nil
	}

	for _, job := range s.jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Schedule, func() {
			s.enqueue(job)
		}); err != nil {
			return fmt.Errorf("schedule job %s (%q): %w", job.Name, job.Schedule, err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	for _, job := range s.jobs {
		log.Printf("Scheduler: job %s registered with schedule %q", job.Name, job.Schedule)
	}

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) enqueue(job Job) {
	if _, err := s.queue.Add(job.Task).Save(); err != nil {
		log.Printf("Scheduler: enqueue %s failed: %v", job.Name, err)
		return
	}
	log.Printf("Scheduler: enqueued %s", job.Name)
}

// Stop halts the cron loop and waits for in-flight job callbacks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Scheduler: stopped")
}

// RunNow enqueues the named job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			go s.enqueue(job)
			return nil
		}
	}
	return fmt.Errorf("unknown job: %s", name)
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTimes returns the next fire time for each registered job, keyed
// by position in the jobs slice.
func (s *Scheduler) NextRunTimes() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entries := s.cron.Entries()
	times := make([]time.Time, len(entries))
	for i, e := range entries {
		times[i] = e.Next
	}
	return times
}

// ValidateSchedule checks a 5-field cron expression.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}
