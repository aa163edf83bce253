package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/cloud"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/event"
)

func newShareCommand(a *app) *cobra.Command {
	return newEventCommand(a, config.RoleShare, "Share one snapshot with the target account")
}

func newCopyCommand(a *app) *cobra.Command {
	return newEventCommand(a, config.RoleCopy, "Copy one snapshot into the target region")
}

// newEventCommand runs the share or copy handler once on an event file.
func newEventCommand(a *app, role config.Role, short string) *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   string(role),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(role); err != nil {
				return err
			}

			raw, err := readEvent(cmd.InOrStdin(), eventPath)
			if err != nil {
				return err
			}
			ev, err := event.Parse(raw)
			if err != nil {
				return err
			}

			h, err := newHandler(cmd.Context(), role, a.cfg, a.log)
			if err != nil {
				return err
			}

			out, err := h.Handle(cmd.Context(), ev)
			if err != nil {
				a.log.Error(string(role)+" failed", "snapshot", ev.SnapshotID, "code", cloud.ErrorCode(err), "error", err)
				return err
			}
			a.log.Info(string(role)+" done", "snapshot", out.SnapshotID, "action", out.Action, "copy", out.CopyID, "reason", out.Reason)
			return nil
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", "EventBridge event JSON file, - for stdin")
	return cmd
}

func readEvent(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading event from stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return raw, nil
}

func newCleanupCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete replicated snapshots older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(config.RoleCleanup); err != nil {
				return err
			}
			if dryRun {
				a.cfg.Retention.DryRun = true
			}

			p, err := cloud.NewProvider(cmd.Context())
			if err != nil {
				return err
			}

			_, err = newEngine(p, a.cfg, a.log).Apply(cmd.Context())
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list expired snapshots without deleting them")
	return cmd
}
