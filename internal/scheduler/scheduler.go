// Package scheduler runs jobs on cron schedules.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs. A run that is still in progress when
// its next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New creates a new scheduler.
func New(logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: logger,
	}
}

// Every returns the cron descriptor for a fixed interval.
func Every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}

// AddJob registers job under schedule, e.g. "@every 1m0s" or "0 */5 * * *".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug("job_running", "job", job.Name())
		if err := job.Run(); err != nil {
			s.log.Error("job_failed", "job", job.Name(), "error", err)
			return
		}
		s.log.Debug("job_completed", "job", job.Name())
	})
	if err != nil {
		return fmt.Errorf("add job %s: %w", job.Name(), err)
	}

	s.log.Info("job_registered", "job", job.Name(), "schedule", schedule)
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info("job_run_now", "job", job.Name())
	return job.Run()
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler_started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler_stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
