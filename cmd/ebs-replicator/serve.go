package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/cloud"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/mailbox"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/scheduler"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/watcher"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/worker"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run cleanup on a cron schedule",
		Long: `serve runs the cleanup pass on the configured cron schedule until stopped.

SIGHUP (or a change to the --config file, when configReload is enabled)
reloads the configuration. SIGUSR1 requests an immediate cleanup pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(config.RoleServe); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := cloud.NewProvider(ctx)
	if err != nil {
		return err
	}

	// Mailbox for cleanup jobs
	mb := mailbox.New[worker.Job]()

	w := worker.New(newEngine(p, a.cfg, a.log), a.log, mb)

	sched, err := scheduler.New(a.cfg.Schedule.Cleanup, mb, a.log)
	if err != nil {
		return err
	}

	go w.Start(ctx)
	sched.Start()
	defer func() {
		<-sched.Stop().Done()
	}()

	if a.cfg.Schedule.RunOnStart {
		sched.Trigger("startup")
	}
	a.log.Info("next cleanup", "at", sched.Next())

	var reloadMu sync.Mutex
	reload := func() {
		reloadMu.Lock()
		defer reloadMu.Unlock()

		cfg, err := a.readConfig()
		if err == nil {
			err = cfg.Validate(config.RoleServe)
		}
		if err != nil {
			a.log.Error("config reload failed", "error", err)
			return
		}

		// Apply updates
		w.UpdateCleaner(newEngine(p, cfg, a.log))
		if err := sched.Reschedule(cfg.Schedule.Cleanup); err != nil {
			a.log.Error("config reload: schedule unchanged", "error", err)
		}
		a.log.Info("config reloaded", "schedule", sched.Spec(), "next", sched.Next())
	}

	if a.cfg.ConfigReload.Enabled && a.configPath != "" {
		watch := watcher.New(a.configPath, a.cfg.ConfigReload, a.log, reload)
		go func() {
			if err := watch.Start(ctx); err != nil {
				a.log.Error("config watcher stopped", "error", err)
			}
		}()
	}

	// Hot reload and on-demand cleanup
	reloadCh := make(chan os.Signal, 1)
	signal.Notify(reloadCh, reloadSignals...)
	defer signal.Stop(reloadCh)

	triggerCh := make(chan os.Signal, 1)
	if len(triggerSignals) > 0 {
		signal.Notify(triggerCh, triggerSignals...)
		defer signal.Stop(triggerCh)
	}

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutting down")
			return nil
		case <-reloadCh:
			reload()
		case <-triggerCh:
			sched.Trigger("signal")
		}
	}
}
