package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var processed int32
	done := make(chan struct{}, 3)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&processed, 1)
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "noop"}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&processed))
}

func TestQueueRetriesThenReportsFailure(t *testing.T) {
	var attempts int32
	failed := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("store unavailable")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnFailure: func(job Job, err error) {
			failed <- job
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "persist"}))

	select {
	case job := <-failed:
		assert.Equal(t, "j1", job.ID)
		assert.Equal(t, 3, job.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("failure handler not invoked")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueEnqueueRequiresStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
}

func TestQueueStopDrainsBuffer(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	release := make(chan struct{})
	q := NewQueue("drain", func(ctx context.Context, job Job) error {
		if job.ID == "first" {
			<-release
		}
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "first"}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "second"}))
	require.NoError(t, q.Enqueue(Job{ID: "third"}))

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"first", "second", "third"}, seen)
}

func TestQueueStopDuringRetryBackoffReportsFailure(t *testing.T) {
	var calls, failures int32
	q := NewQueue("backoff", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("store unavailable")
	}, QueueConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		OnFailure: func(job Job, err error) {
			atomic.AddInt32(&failures, 1)
		},
	})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "persist"}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)

	q.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&failures))
	assert.Equal(t, 0, q.Pending())
}

func TestQueueStopDuringRetryBackoffRunsJobOnce(t *testing.T) {
	var calls int32
	var failures int32
	q := NewQueue("backoff", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("store unavailable")
		}
		return nil
	}, QueueConfig{
		Workers:    1,
		RetryDelay: 500 * time.Millisecond,
		OnFailure: func(job Job, err error) {
			atomic.AddInt32(&failures, 1)
		},
	})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "j2", Type: "persist"}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)

	q.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Zero(t, atomic.LoadInt32(&failures))
}
