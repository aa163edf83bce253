// Package worker runs cleanup passes requested through the mailbox, one at
// a time.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/mailbox"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/retention"
)

// Worker drains cleanup jobs. Jobs posted while a pass is running collapse
// into a single follow-up pass.
type Worker struct {
	mu      sync.RWMutex
	cleaner Cleaner
	log     logging.Logger
	mb      *mailbox.Mailbox[Job]
}

// New creates a worker reading jobs from mb.
func New(c Cleaner, log logging.Logger, mb *mailbox.Mailbox[Job]) *Worker {
	log.Debug("creating worker")
	return &Worker{
		cleaner: c,
		log:     log,
		mb:      mb,
	}
}

// Start runs the worker loop until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")
	for {
		job, ok := w.mb.Take(ctx)
		if !ok {
			w.log.Info("worker stopped")
			return
		}
		if _, err := w.Handle(ctx, job); err != nil {
			w.log.Error("worker: cleanup failed", "trigger", job.Trigger, "error", err)
		}
		if w.mb.HasJob() {
			w.log.Info("worker: cleanup requested during pass, running again")
		}
	}
}

// Handle runs one cleanup pass with the current cleaner.
func (w *Worker) Handle(ctx context.Context, job Job) (retention.Report, error) {
	w.mu.RLock()
	c := w.cleaner
	w.mu.RUnlock()

	started := time.Now()
	w.log.Debug("worker: running cleanup", "trigger", job.Trigger, "queued", started.Sub(job.At))

	rep, err := c.Apply(ctx)
	w.log.Info("worker: cleanup pass done", "trigger", job.Trigger, "took", time.Since(started), "deleted", rep.Deleted, "failed", rep.Failed)
	return rep, err
}

// UpdateCleaner swaps in a cleaner built from reloaded config. A pass that
// is already running finishes with the old one.
func (w *Worker) UpdateCleaner(c Cleaner) {
	w.log.Debug("entering Worker.UpdateCleaner()")
	w.mu.Lock()
	w.cleaner = c
	w.mu.Unlock()
}
