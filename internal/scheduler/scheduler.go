package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Trigger starts a valuation run if none is in flight
type Trigger interface {
	Trigger(ctx context.Context) bool
}

// Scheduler kicks off recurring valuation runs on a cron spec
type Scheduler struct {
	cron   *cron.Cron
	runner Trigger
	spec   string
	log    *logrus.Logger
}

// New creates a scheduler. The spec is a standard 5-field cron
// expression, e.g. "0 18 * * 1-5" for 18:00 on weekdays.
func New(runner Trigger, spec string, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
		log:    log,
	}
}

// Start registers the recurring run and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if s.runner.Trigger(ctx) {
			s.log.WithField("spec", s.spec).Info("Scheduled valuation run started")
		} else {
			s.log.Warn("Scheduled run skipped, previous run still in progress")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.WithField("spec", s.spec).Info("Scheduler started")
	return nil
}

// Stop halts the cron loop; running jobs are not interrupted
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
