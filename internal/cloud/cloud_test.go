package cloud

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/cloud/mocks"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/snapshot"
)

func TestFetchSnapshot(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	api := &mocks.EC2{}
	api.On("DescribeSnapshots", mock.Anything, &ec2.DescribeSnapshotsInput{SnapshotIds: []string{"snap-1"}}).
		Return(&ec2.DescribeSnapshotsOutput{Snapshots: []types.Snapshot{{
			SnapshotId:  aws.String("snap-1"),
			Description: aws.String("nightly"),
			StartTime:   aws.Time(start),
			State:       types.SnapshotStateCompleted,
			Tags: []types.Tag{
				{Key: aws.String("env"), Value: aws.String("prod")},
				{Key: aws.String("owner"), Value: aws.String("team-a")},
			},
		}}}, nil)

	d, err := FetchSnapshot(context.Background(), api, "snap-1")
	require.NoError(t, err)

	assert.Equal(t, snapshot.Descriptor{
		ID:          "snap-1",
		Tags:        snapshot.Tags{"env": "prod", "owner": "team-a"},
		Description: "nightly",
		StartTime:   start,
		Status:      snapshot.StatusCompleted,
	}, d)
	api.AssertExpectations(t)
}

func TestFetchSnapshotNotFound(t *testing.T) {
	api := &mocks.EC2{}
	api.On("DescribeSnapshots", mock.Anything, mock.Anything).Return(&ec2.DescribeSnapshotsOutput{}, nil)

	_, err := FetchSnapshot(context.Background(), api, "snap-404")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFetchSnapshotAPIError(t *testing.T) {
	api := &mocks.EC2{}
	apiErr := &smithy.GenericAPIError{Code: "InvalidSnapshot.NotFound", Message: "nope"}
	api.On("DescribeSnapshots", mock.Anything, mock.Anything).Return(nil, apiErr)

	_, err := FetchSnapshot(context.Background(), api, "snap-1")
	require.Error(t, err)
	assert.Equal(t, "InvalidSnapshot.NotFound", ErrorCode(err))
}

func TestEC2TagsSorted(t *testing.T) {
	got := EC2Tags(snapshot.Tags{"z": "1", "a": "2", "created_by": "dr"})

	keys := make([]string, 0, len(got))
	for _, tag := range got {
		keys = append(keys, aws.ToString(tag.Key))
	}
	assert.Equal(t, []string{"a", "created_by", "z"}, keys)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Equal(t, "", ErrorCode(nil))

	wrapped := fmt.Errorf("deleting: %w", &smithy.GenericAPIError{Code: "InvalidSnapshot.InUse"})
	assert.Equal(t, "InvalidSnapshot.InUse", ErrorCode(wrapped))
}

func TestLocalSource(t *testing.T) {
	api := &mocks.EC2{}
	client, err := LocalSource{Client: api}.Open(context.Background())
	require.NoError(t, err)
	assert.Same(t, api, client)
}

func TestDelegatedSourceAssumesRolePerOpen(t *testing.T) {
	stsAPI := &mocks.STS{}
	stsAPI.On("AssumeRole", mock.Anything, mock.MatchedBy(func(in *sts.AssumeRoleInput) bool {
		return aws.ToString(in.RoleArn) == "arn:aws:iam::111111111111:role/reader" &&
			len(aws.ToString(in.RoleSessionName)) <= 64
	})).Return(&sts.AssumeRoleOutput{Credentials: &ststypes.Credentials{
		AccessKeyId:     aws.String("AKIA"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("token"),
	}}, nil)

	var seen []aws.Credentials
	src := &DelegatedSource{
		STS:           stsAPI,
		RoleARN:       "arn:aws:iam::111111111111:role/reader",
		SessionPrefix: "test",
		NewClient: func(creds aws.CredentialsProvider) ec2.DescribeSnapshotsAPIClient {
			c, err := creds.Retrieve(context.Background())
			require.NoError(t, err)
			seen = append(seen, c)
			return &mocks.EC2{}
		},
	}

	first, err := src.Open(context.Background())
	require.NoError(t, err)
	second, err := src.Open(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second, "each invocation gets its own client")
	stsAPI.AssertNumberOfCalls(t, "AssumeRole", 2)
	require.Len(t, seen, 2)
	assert.Equal(t, "AKIA", seen[0].AccessKeyID)
	assert.Equal(t, "token", seen[0].SessionToken)
}

func TestDelegatedSourceAssumeRoleDenied(t *testing.T) {
	stsAPI := &mocks.STS{}
	stsAPI.On("AssumeRole", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

	src := &DelegatedSource{
		STS:     stsAPI,
		RoleARN: "arn:aws:iam::111111111111:role/reader",
		NewClient: func(aws.CredentialsProvider) ec2.DescribeSnapshotsAPIClient {
			t.Fatal("no client may be built without credentials")
			return nil
		},
	}

	_, err := src.Open(context.Background())
	require.Error(t, err)
	assert.Equal(t, "AccessDenied", ErrorCode(err))
}
