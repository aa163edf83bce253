// Package retention deletes replicated snapshots once they outlive the
// retention window.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/multierr"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/cloud"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/snapshot"
)

// API is the EC2 surface the engine needs.
type API interface {
	ec2.DescribeSnapshotsAPIClient
	DeleteSnapshot(ctx context.Context, params *ec2.DeleteSnapshotInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSnapshotOutput, error)
}

type Engine struct {
	setupName string
	days      int
	dryRun    bool
	ec2       API
	log       logging.Logger
	now       func() time.Time
}

func New(cfg config.Config, api API, log logging.Logger) *Engine {
	return &Engine{
		setupName: cfg.SetupName,
		days:      cfg.Retention.Days(),
		dryRun:    cfg.Retention.DryRun,
		ec2:       api,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Report summarises one cleanup pass.
type Report struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Expired reports whether a snapshot started at start is strictly older than
// days at now. Both instants are compared in UTC, on the calendar, so any
// window that fits in an int is representable.
func Expired(start, now time.Time, days int) bool {
	cutoff := now.UTC().AddDate(0, 0, -days)
	return start.UTC().Before(cutoff)
}

// ListInput selects completed snapshots owned by this account and tagged
// created_by=setupName. Nothing else is ever listed.
func ListInput(setupName string) *ec2.DescribeSnapshotsInput {
	return &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
		Filters: []types.Filter{
			{Name: aws.String("tag:" + snapshot.ProvenanceKey), Values: []string{setupName}},
			{Name: aws.String("status"), Values: []string{string(snapshot.StatusCompleted)}},
		},
	}
}

// Apply runs one cleanup pass over every page of the listing. A failed
// delete is logged and the pass continues; the returned error aggregates
// every failure.
func (e *Engine) Apply(ctx context.Context) (Report, error) {
	var (
		rep  Report
		errs error
	)

	now := e.now()
	e.log.Info("retention: starting cleanup", "setup", e.setupName, "days", e.days, "dryRun", e.dryRun)

	pages := ec2.NewDescribeSnapshotsPaginator(e.ec2, ListInput(e.setupName))
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return rep, multierr.Append(errs, fmt.Errorf("listing snapshots: %w", err))
		}

		for _, s := range page.Snapshots {
			rep.Scanned++
			d := cloud.Descriptor(s)
			if !Expired(d.StartTime, now, e.days) {
				continue
			}
			rep.Expired++

			if err := e.delete(ctx, d); err != nil {
				rep.Failed++
				errs = multierr.Append(errs, err)
				continue
			}
			if !e.dryRun {
				rep.Deleted++
			}
		}
	}

	e.log.Info("retention: cleanup finished",
		"scanned", rep.Scanned, "expired", rep.Expired, "deleted", rep.Deleted, "failed", rep.Failed)
	return rep, errs
}

func (e *Engine) delete(ctx context.Context, d snapshot.Descriptor) error {
	if e.dryRun {
		e.log.Info("retention: would delete snapshot", "snapshot", d.ID, "started", d.StartTime)
		return nil
	}

	e.log.Info("retention: deleting snapshot", "snapshot", d.ID, "started", d.StartTime)
	_, err := e.ec2.DeleteSnapshot(ctx, &ec2.DeleteSnapshotInput{SnapshotId: aws.String(d.ID)})
	if err != nil {
		e.log.Error("retention: delete failed", "snapshot", d.ID, "code", cloud.ErrorCode(err), "error", err)
		return fmt.Errorf("deleting snapshot %s: %w", d.ID, err)
	}
	return nil
}
