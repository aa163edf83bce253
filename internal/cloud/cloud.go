// Package cloud wraps the EC2 and STS calls the handlers make, behind
// interfaces narrow enough to fake in tests.
package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/snapshot"
)

// ErrSnapshotNotFound is returned when EC2 reports no snapshot for an id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// EC2API is the EC2 surface used by the handlers. *ec2.Client satisfies it.
type EC2API interface {
	ec2.DescribeSnapshotsAPIClient
	ModifySnapshotAttribute(ctx context.Context, params *ec2.ModifySnapshotAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifySnapshotAttributeOutput, error)
	CopySnapshot(ctx context.Context, params *ec2.CopySnapshotInput, optFns ...func(*ec2.Options)) (*ec2.CopySnapshotOutput, error)
	DeleteSnapshot(ctx context.Context, params *ec2.DeleteSnapshotInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSnapshotOutput, error)
}

// STSAPI is the STS surface used for delegated reads. *sts.Client satisfies it.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// FetchSnapshot reads one snapshot by id.
func FetchSnapshot(ctx context.Context, api ec2.DescribeSnapshotsAPIClient, id string) (snapshot.Descriptor, error) {
	out, err := api.DescribeSnapshots(ctx, &ec2.DescribeSnapshotsInput{
		SnapshotIds: []string{id},
	})
	if err != nil {
		return snapshot.Descriptor{}, fmt.Errorf("describing snapshot %s: %w", id, err)
	}
	if len(out.Snapshots) == 0 {
		return snapshot.Descriptor{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return Descriptor(out.Snapshots[0]), nil
}

// Descriptor converts an EC2 snapshot into a snapshot.Descriptor.
func Descriptor(s types.Snapshot) snapshot.Descriptor {
	d := snapshot.Descriptor{
		ID:          aws.ToString(s.SnapshotId),
		Tags:        make(snapshot.Tags, len(s.Tags)),
		Description: aws.ToString(s.Description),
		StartTime:   aws.ToTime(s.StartTime),
		Status:      snapshot.Status(s.State),
	}
	for _, t := range s.Tags {
		d.Tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return d
}

// EC2Tags renders tags as EC2 tags in sorted key order, so the same tag set
// always produces the same request.
func EC2Tags(tags snapshot.Tags) []types.Tag {
	out := make([]types.Tag, 0, len(tags))
	for _, k := range tags.Keys() {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

// ErrorCode returns the AWS API error code carried by err, or "".
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
