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

// Copier copies matching snapshots into the target region, re-encrypted
// with the target key and stamped with the provenance tag.
//
// The snapshot is read through source, which is either the local account
// or a role assumed in the source account; the copy itself is always issued
// with target, the local client in the target region.
type Copier struct {
	sourceRegion string
	kmsKey       string
	setupName    string
	required     snapshot.Tags
	source       cloud.SourceOpener
	target       cloud.EC2API
	log          logging.Logger
}

// NewCopier builds a Copier.
func NewCopier(cfg config.Config, source cloud.SourceOpener, target cloud.EC2API, log logging.Logger) *Copier {
	return &Copier{
		sourceRegion: cfg.Replication.SourceRegion,
		kmsKey:       cfg.Replication.TargetKMSKeyARN,
		setupName:    cfg.SetupName,
		required:     snapshot.Tags(maps.Clone(cfg.Replication.MatchTags)),
		source:       source,
		target:       target,
		log:          log,
	}
}

// Handle copies the event's snapshot if its tags match.
func (c *Copier) Handle(ctx context.Context, ev event.SnapshotEvent) (Outcome, error) {
	if !ev.Actionable() {
		c.log.Info("ignoring snapshot notification", "snapshot", ev.SnapshotID, "result", ev.Detail.Result)
		return skipped(ev.SnapshotID, reasonNotSucceeded), nil
	}

	reader, err := c.source.Open(ctx)
	if err != nil {
		return Outcome{}, err
	}

	d, err := cloud.FetchSnapshot(ctx, reader, ev.SnapshotID)
	if err != nil {
		return Outcome{}, err
	}

	snap, ok := snapshot.Match(d, c.required)
	if !ok {
		c.log.Info("snapshot does not match required tags", "snapshot", d.ID)
		return skipped(d.ID, reasonNoMatch), nil
	}

	in := c.copyInput(snap)
	c.log.Info("copying snapshot", "snapshot", snap.ID, "from", c.sourceRegion)

	out, err := c.target.CopySnapshot(ctx, in)
	if err != nil {
		return Outcome{}, fmt.Errorf("copying snapshot %s from %s: %w", snap.ID, c.sourceRegion, err)
	}

	copyID := aws.ToString(out.SnapshotId)
	c.log.Info("snapshot copy started", "snapshot", snap.ID, "copy", copyID)

	return Outcome{Action: ActionCopied, SnapshotID: snap.ID, CopyID: copyID}, nil
}

// copyInput renders the CopySnapshot request. Tags are the original tags
// plus created_by, in sorted key order.
func (c *Copier) copyInput(snap snapshot.Descriptor) *ec2.CopySnapshotInput {
	return &ec2.CopySnapshotInput{
		SourceRegion:     aws.String(c.sourceRegion),
		SourceSnapshotId: aws.String(snap.ID),
		Description:      aws.String(snap.Description),
		Encrypted:        aws.Bool(true),
		KmsKeyId:         aws.String(c.kmsKey),
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeSnapshot,
			Tags:         cloud.EC2Tags(snapshot.WithProvenance(snap.Tags, c.setupName)),
		}},
	}
}
