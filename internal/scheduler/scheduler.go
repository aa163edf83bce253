// Package scheduler posts cleanup jobs to the worker mailbox on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/mailbox"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/worker"
)

// Scheduler triggers cleanup passes. Schedules are evaluated in UTC.
type Scheduler struct {
	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID
	spec  string
	mb    *mailbox.Mailbox[worker.Job]
	log   logging.Logger
	now   func() time.Time
}

// New parses spec (standard five-field cron or a descriptor such as
// "@daily" or "@every 6h") and prepares the schedule. Call Start to run it.
func New(spec string, mb *mailbox.Mailbox[worker.Job], log logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cronLogger{log})),
		mb:   mb,
		log:  log,
		now:  time.Now,
	}
	if err := s.Reschedule(spec); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info("scheduler: started", "schedule", s.Spec())
	s.cron.Start()
}

// Stop halts the schedule and returns a context done once running jobs end.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Spec returns the active schedule.
func (s *Scheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Reschedule replaces the schedule. The old entry stays active if spec
// does not parse.
func (s *Scheduler) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec == s.spec && s.entry != 0 {
		return nil
	}

	id, err := s.cron.AddFunc(spec, func() { s.Trigger("schedule") })
	if err != nil {
		return fmt.Errorf("parsing cleanup schedule %q: %w", spec, err)
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	s.entry = id
	s.spec = spec
	return nil
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entry
	s.mu.Unlock()
	return s.cron.Entry(id).Next
}

// Trigger posts a cleanup job. A job still waiting in the mailbox is
// replaced, so bursts collapse into one pass.
func (s *Scheduler) Trigger(reason string) {
	if s.mb.Put(worker.Job{Trigger: reason, At: s.now()}) {
		s.log.Debug("scheduler: pending cleanup superseded", "trigger", reason)
	}
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	log logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
