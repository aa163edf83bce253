// Package watcher notices changes to the config file and asks for a reload.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/fsprobe"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
)

// Watcher observes one file and calls onChange when its mod time advances.
type Watcher struct {
	mu sync.RWMutex

	path     string
	mode     string
	interval time.Duration
	debounce time.Duration

	log logging.Logger

	lastModTime time.Time
	onChange    func()
}

// New creates a watcher for path using the reload settings.
func New(path string, cfg config.ReloadConfig, log logging.Logger, onChange func()) *Watcher {
	w := &Watcher{
		path:     path,
		mode:     cfg.Method,
		interval: cfg.PollInterval,
		debounce: cfg.DebounceWindow,
		log:      log,
		onChange: onChange,
	}
	if info, err := os.Stat(path); err == nil {
		w.lastModTime = info.ModTime()
	}
	return w
}

// Start chooses the watching strategy and blocks until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	switch w.mode {
	case "fsnotify":
		return w.StartFsNotify(ctx)

	case "poll":
		w.StartPolling(ctx)
		return nil

	case "auto", "":
		res := fsprobe.Probe(filepath.Dir(w.path), 0)
		if res.FsnotifySupported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, polling config", "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown reload method %q", w.mode)
	}
}

// detect calls onChange if the file's mod time moved forward.
func (w *Watcher) detect() {
	w.mu.RLock()
	path := w.path
	last := w.lastModTime
	w.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		w.log.Debug("watcher: stat failed", "path", path, "error", err)
		return
	}

	mod := info.ModTime()
	if !mod.After(last) {
		return
	}

	w.mu.Lock()
	w.lastModTime = mod
	w.mu.Unlock()

	w.log.Info("config file changed", "path", path)
	w.onChange()
}
