// Package mocks provides testify mocks for the cloud interfaces.
package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/mock"
)

// EC2 is a mock of cloud.EC2API.
type EC2 struct {
	mock.Mock
}

func (m *EC2) DescribeSnapshots(ctx context.Context, params *ec2.DescribeSnapshotsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ec2.DescribeSnapshotsOutput)
	return out, args.Error(1)
}

func (m *EC2) ModifySnapshotAttribute(ctx context.Context, params *ec2.ModifySnapshotAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifySnapshotAttributeOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ec2.ModifySnapshotAttributeOutput)
	return out, args.Error(1)
}

func (m *EC2) CopySnapshot(ctx context.Context, params *ec2.CopySnapshotInput, _ ...func(*ec2.Options)) (*ec2.CopySnapshotOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ec2.CopySnapshotOutput)
	return out, args.Error(1)
}

func (m *EC2) DeleteSnapshot(ctx context.Context, params *ec2.DeleteSnapshotInput, _ ...func(*ec2.Options)) (*ec2.DeleteSnapshotOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ec2.DeleteSnapshotOutput)
	return out, args.Error(1)
}

// STS is a mock of cloud.STSAPI.
type STS struct {
	mock.Mock
}

func (m *STS) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sts.AssumeRoleOutput)
	return out, args.Error(1)
}
