package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeGoRunsTask(t *testing.T) {
	done := make(chan struct{})
	SafeGo(context.Background(), time.Second, "test task", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task")
	}
}

func TestSafeGoRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	require.NotPanics(t, func() {
		SafeGo(context.Background(), time.Second, "panicky task", func(ctx context.Context) error {
			defer close(done)
			panic("boom")
		})
		<-done
	})
	// Give the deferred recovery a moment to run.
	time.Sleep(50 * time.Millisecond)
}

func TestSafeGoEnforcesTimeout(t *testing.T) {
	expired := make(chan bool, 1)
	SafeGo(context.Background(), 50*time.Millisecond, "slow task", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			expired <- true
		case <-time.After(5 * time.Second):
			expired <- false
		}
		return nil
	})

	select {
	case ok := <-expired:
		assert.True(t, ok, "task context should expire with the timeout")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task")
	}
}

func TestSafeGoNoError(t *testing.T) {
	done := make(chan struct{})
	SafeGoNoError(context.Background(), time.Second, "test task", func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task")
	}
}

func TestWorkerPoolProcessesTasks(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 4, "test pool", time.Second)

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
			return nil
		}))
	}
	wg.Wait()

	require.NoError(t, pool.Shutdown(5*time.Second))
	assert.EqualValues(t, 20, atomic.LoadInt64(&count))
}

func TestWorkerPoolReportsErrors(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2, "test pool", time.Second)

	boom := errors.New("task failed")
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		return boom
	}))
	require.NoError(t, pool.Shutdown(5*time.Second))

	select {
	case err := <-pool.Errors():
		assert.ErrorIs(t, err, boom)
	default:
		t.Fatal("expected an error on the pool error channel")
	}
}

func TestWorkerPoolRecoversTaskPanic(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2, "test pool", time.Second)

	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		panic("task exploded")
	}))
	require.NoError(t, pool.Shutdown(5*time.Second))

	select {
	case err := <-pool.Errors():
		assert.Contains(t, err.Error(), "task exploded")
	default:
		t.Fatal("expected a panic report on the pool error channel")
	}
}

func TestWorkerPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2, "test pool", time.Second)
	require.NoError(t, pool.Shutdown(5*time.Second))

	err := pool.Submit(func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	var sum int64
	errs := Batch(context.Background(), items, 8, "test batch", time.Second,
		func(ctx context.Context, n int) error {
			atomic.AddInt64(&sum, int64(n))
			return nil
		})

	assert.Empty(t, errs)
	assert.EqualValues(t, 4950, atomic.LoadInt64(&sum))
}

func TestBatchCollectsErrors(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	errs := Batch(context.Background(), items, 2, "test batch", time.Second,
		func(ctx context.Context, n int) error {
			if n%2 == 0 {
				return fmt.Errorf("item %d failed", n)
			}
			return nil
		})

	assert.Len(t, errs, 2)
}

func TestBatchEmptyInput(t *testing.T) {
	errs := Batch(context.Background(), nil, 2, "test batch", time.Second,
		func(ctx context.Context, n int) error {
			t.Fatal("should not be called")
			return nil
		})

	assert.Empty(t, errs)
}
