package replication

import (
	"context"
	"fmt"
	"maps"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/cloud"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/event"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/snapshot"
)

// Sharer grants createVolumePermission on matching snapshots to the target
// account.
type Sharer struct {
	targetAccount string
	required      snapshot.Tags
	ec2           cloud.EC2API
	log           logging.Logger
}

// NewSharer builds a Sharer. api must address the snapshot's own region.
func NewSharer(cfg config.ReplicationConfig, api cloud.EC2API, log logging.Logger) *Sharer {
	return &Sharer{
		targetAccount: cfg.TargetAccountID,
		required:      snapshot.Tags(maps.Clone(cfg.MatchTags)),
		ec2:           api,
		log:           log,
	}
}

// Handle shares the event's snapshot if its tags match. A snapshot that
// does not match is skipped without error.
func (s *Sharer) Handle(ctx context.Context, ev event.SnapshotEvent) (Outcome, error) {
	if !ev.Actionable() {
		s.log.Info("ignoring snapshot notification", "snapshot", ev.SnapshotID, "result", ev.Detail.Result)
		return skipped(ev.SnapshotID, reasonNotSucceeded), nil
	}

	d, err := cloud.FetchSnapshot(ctx, s.ec2, ev.SnapshotID)
	if err != nil {
		return Outcome{}, err
	}

	snap, ok := snapshot.Match(d, s.required)
	if !ok {
		s.log.Info("snapshot does not match required tags", "snapshot", d.ID)
		return skipped(d.ID, reasonNoMatch), nil
	}

	s.log.Info("sharing snapshot", "snapshot", snap.ID, "account", s.targetAccount)

	_, err = s.ec2.ModifySnapshotAttribute(ctx, &ec2.ModifySnapshotAttributeInput{
		SnapshotId:    aws.String(snap.ID),
		Attribute:     types.SnapshotAttributeNameCreateVolumePermission,
		OperationType: types.OperationTypeAdd,
		UserIds:       []string{s.targetAccount},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("sharing snapshot %s with %s: %w", snap.ID, s.targetAccount, err)
	}

	return Outcome{Action: ActionShared, SnapshotID: snap.ID}, nil
}
