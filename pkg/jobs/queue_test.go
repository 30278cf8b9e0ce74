package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesTasks(t *testing.T) {
	done := make(chan Task, 1)
	queue := NewQueue("test", func(_ context.Context, task Task) error {
		done <- task
		return nil
	}, QueueConfig{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Task{ID: "task-1", Kind: "test"}))

	select {
	case task := <-done:
		assert.Equal(t, "task-1", task.ID)
		assert.False(t, task.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}
}

func TestQueueRetriesFailedTasks(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	queue := NewQueue("test", func(_ context.Context, _ Task) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient failure")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Task{ID: "task-1"}))

	select {
	case <-done:
		assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried to success")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	queue := NewQueue("test", func(context.Context, Task) error { return nil }, QueueConfig{})
	assert.Error(t, queue.Enqueue(Task{ID: "task-1"}))
}

func TestQueueStartIsIdempotent(t *testing.T) {
	queue := NewQueue("test", func(context.Context, Task) error { return nil }, QueueConfig{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	queue.Start(ctx)
	queue.Stop()
}
