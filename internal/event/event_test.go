package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createSnapshotEvent = `{
  "version": "0",
  "id": "01234567-0123-0123-0123-012345678901",
  "detail-type": "EBS Snapshot Notification",
  "source": "aws.ec2",
  "account": "111111111111",
  "time": "2024-05-01T12:00:00Z",
  "region": "eu-west-1",
  "resources": ["arn:aws:ec2::eu-west-1:snapshot/snap-01234567"],
  "detail": {
    "event": "createSnapshot",
    "result": "succeeded",
    "cause": "",
    "request-id": "",
    "snapshot_id": "arn:aws:ec2::eu-west-1:snapshot/snap-01234567",
    "source": "arn:aws:ec2::eu-west-1:volume/vol-01234567",
    "startTime": "2024-05-01T11:59:00Z",
    "endTime": "2024-05-01T12:00:00Z"
  }
}`

func TestParse(t *testing.T) {
	ev, err := Parse([]byte(createSnapshotEvent))
	require.NoError(t, err)

	assert.Equal(t, "snap-01234567", ev.SnapshotID)
	assert.Equal(t, "eu-west-1", ev.Region)
	assert.Equal(t, "111111111111", ev.Account)
	assert.Equal(t, "createSnapshot", ev.Detail.Event)
	assert.True(t, ev.Actionable())
}

func TestParseBareSnapshotID(t *testing.T) {
	ev, err := Parse([]byte(`{"detail": {"snapshot_id": "snap-0abc"}}`))
	require.NoError(t, err)
	assert.Equal(t, "snap-0abc", ev.SnapshotID)
	assert.True(t, ev.Actionable())
}

func TestParseFailedResultIsNotActionable(t *testing.T) {
	ev, err := Parse([]byte(`{"detail": {"snapshot_id": "arn:aws:ec2::eu-west-1:snapshot/snap-1", "result": "failed"}}`))
	require.NoError(t, err)
	assert.False(t, ev.Actionable())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		isErr error
	}{
		{name: "not json", raw: `nope`},
		{name: "no detail", raw: `{"id": "x"}`, isErr: ErrNoSnapshotID},
		{name: "empty snapshot id", raw: `{"detail": {"snapshot_id": ""}}`, isErr: ErrNoSnapshotID},
		{name: "arn without id", raw: `{"detail": {"snapshot_id": "arn:aws:ec2::eu-west-1:snapshot/"}}`, isErr: ErrNoSnapshotID},
		{name: "detail wrong shape", raw: `{"detail": ["snap-1"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			if tt.isErr != nil {
				assert.ErrorIs(t, err, tt.isErr)
			}
		})
	}
}
