package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/mailbox"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/worker"
)

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every tuesday", mailbox.New[worker.Job](), logging.Discard())
	assert.Error(t, err)
}

func TestTriggerPostsJob(t *testing.T) {
	mb := mailbox.New[worker.Job]()
	s, err := New("@daily", mb, logging.Discard())
	require.NoError(t, err)

	s.Trigger("startup")
	s.Trigger("signal")

	job := mb.TryTake()
	require.NotNil(t, job)
	assert.Equal(t, "signal", job.Trigger)
	assert.Nil(t, mb.TryTake())
}

func TestRescheduleKeepsOldEntryOnError(t *testing.T) {
	s, err := New("@daily", mailbox.New[worker.Job](), logging.Discard())
	require.NoError(t, err)

	assert.Error(t, s.Reschedule("not a schedule"))
	assert.Equal(t, "@daily", s.Spec())

	require.NoError(t, s.Reschedule("0 3 * * *"))
	assert.Equal(t, "0 3 * * *", s.Spec())
	assert.Len(t, s.cron.Entries(), 1)
}

func TestScheduleFires(t *testing.T) {
	mb := mailbox.New[worker.Job]()
	s, err := New("@every 1s", mb, logging.Discard())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.False(t, s.Next().IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	job, ok := mb.Take(ctx)
	require.True(t, ok, "schedule did not fire")
	assert.Equal(t, "schedule", job.Trigger)
}
