package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestWins(t *testing.T) {
	m := New[int]()

	assert.False(t, m.Put(1))
	assert.True(t, m.Put(2))
	assert.True(t, m.HasJob())

	got, ok := m.Take(context.Background())
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.False(t, m.HasJob())
}

func TestTryTake(t *testing.T) {
	m := New[string]()
	assert.Nil(t, m.TryTake())

	m.Put("cleanup")
	got := m.TryTake()
	require.NotNil(t, got)
	assert.Equal(t, "cleanup", *got)
	assert.Nil(t, m.TryTake())
}

func TestTakeBlocksUntilPut(t *testing.T) {
	m := New[int]()
	done := make(chan int)

	go func() {
		v, _ := m.Take(context.Background())
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Take returned before Put")
	case <-time.After(20 * time.Millisecond):
	}

	m.Put(7)

	select {
	case v := <-done:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("Take did not return after Put")
	}
}

func TestTakeHonoursContext(t *testing.T) {
	m := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := m.Take(ctx)
	assert.False(t, ok)
}
