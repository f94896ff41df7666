// Package scheduler runs the pipeline on a cron cadence.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/b3flow/ibovscan/internal/logger"
)

// Job represents a scheduled job.
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// New creates a scheduler.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.WithComponent("scheduler"),
	}
}

// Start begins dispatching jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// AddJob registers a job with a six-field cron schedule.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debugf("Running job %s", job.Name())

		if err := job.Run(); err != nil {
			s.log.WithError(err).Errorf("Job %s failed", job.Name())
		} else {
			s.log.Debugf("Job %s completed", job.Name())
		}
	})
	if err != nil {
		return err
	}

	s.log.Infof("Job %s registered with schedule %q", job.Name(), schedule)
	return nil
}

// AddWeekdayJob registers a job for Monday through Friday at the given
// "HH:MM" local time, the cadence the exchange publishes new data on.
func (s *Scheduler) AddWeekdayJob(at string, job Job) error {
	spec, err := WeekdaySpec(at)
	if err != nil {
		return err
	}
	return s.AddJob(spec, job)
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Infof("Running job %s immediately", job.Name())
	return job.Run()
}

// WeekdaySpec converts "HH:MM" into a six-field cron expression firing on
// weekdays only.
func WeekdaySpec(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("schedule time must be HH:MM, got %q", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("0 %d %d * * MON-FRI", minute, hour), nil
}
