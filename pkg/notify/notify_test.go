package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_Coalesces(t *testing.T) {
	n := New()
	assert.False(t, n.Pending())

	assert.True(t, n.Give())
	assert.False(t, n.Give())
	assert.False(t, n.Give())
	assert.True(t, n.Pending())
	assert.Equal(t, uint32(1), n.Given())
	assert.Equal(t, uint32(2), n.Dropped())

	require.NoError(t, n.Take(context.Background()))
	assert.False(t, n.Pending())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Take(ctx), context.DeadlineExceeded, "only one wake may be buffered")
}

func TestTask_OneWakeOneRun(t *testing.T) {
	ran := make(chan struct{}, 10)
	task := NewTask("single", func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go task.Run(ctx)

	assert.True(t, task.Notify())
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("work did not run after notify")
	}

	require.Eventually(t, func() bool { return task.State() == Waiting && task.Runs() == 1 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return task.Runs() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestTask_CoalescesWhileRunning(t *testing.T) {
	started := make(chan struct{}, 10)
	release := make(chan struct{})
	task := NewTask("coalesce", func(ctx context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go task.Run(ctx)

	task.Notify()
	<-started
	assert.Equal(t, Running, task.State())

	// Two back-to-back wakes while running: one buffers, one is lost.
	assert.True(t, task.Notify())
	assert.False(t, task.Notify())
	close(release)

	require.Eventually(t, func() bool { return task.Runs() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return task.Runs() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, uint32(1), task.Notification().Dropped())
}

func TestTask_ErrorDoesNotStopLoop(t *testing.T) {
	task := NewTask("failing", func(ctx context.Context) error {
		return errors.New("sensor timeout")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go task.Run(ctx)

	for i := 1; i <= 3; i++ {
		task.Notify()
		want := uint64(i)
		require.Eventually(t, func() bool { return task.Runs() == want }, time.Second, time.Millisecond)
	}
}

func TestTask_GracefulShutdown(t *testing.T) {
	task := NewTask("idle", func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- task.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, "idle", task.Name())
	assert.Equal(t, "waiting", task.State().String())
}
