package pow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/powchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolverPool_Solve(t *testing.T) {
	pool := NewSolverPool("test", mustEngine(t, 2), 2, 8)
	defer pool.Shutdown()

	c, err := pool.Solve(context.Background(), aliceHi)
	require.NoError(t, err)
	assert.Equal(t, uint64(55), c.Nonce)
	assert.True(t, Verify(c))

	stats := pool.Stats()
	assert.Equal(t, "test", stats.Name)
	assert.Equal(t, 2, stats.Workers)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestSolverPool_SolveWith(t *testing.T) {
	pool := NewSolverPool("test", mustEngine(t, 0), 1, 1)
	defer pool.Shutdown()

	c, err := pool.SolveWith(context.Background(), mustEngine(t, 1), aliceHi)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), c.Difficulty)
	assert.Equal(t, uint64(6), c.Nonce)
}

func TestSolverPool_Concurrent(t *testing.T) {
	pool := NewSolverPool("test", mustEngine(t, 2), 4, 32)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := ChatMessage{Timestamp: "1000", Message: fmt.Sprintf("msg-%d", i), Sender: "alice"}
			c, err := pool.Solve(context.Background(), msg)
			if err != nil {
				errs <- err
				return
			}
			if !Verify(c) {
				errs <- fmt.Errorf("commitment %d does not verify", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, int64(16), pool.Stats().Completed)
}

func TestSolverPool_ObserverCalled(t *testing.T) {
	var mu sync.Mutex
	var observed []time.Duration
	pool := NewSolverPool("test", mustEngine(t, 1), 1, 1, WithObserver(func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, d)
	}))
	defer pool.Shutdown()

	_, err := pool.Solve(context.Background(), aliceHi)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, observed, 1)
}

func TestSolverPool_CallerCancellation(t *testing.T) {
	pool := NewSolverPool("test", mustEngine(t, DigestLength), 1, 1)
	defer pool.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := pool.Solve(ctx, aliceHi)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The worker must give up on the abandoned search and take new work.
	c, err := pool.SolveWith(context.Background(), mustEngine(t, 0), aliceHi)
	require.NoError(t, err)
	assert.True(t, Verify(c))

	assert.Eventually(t, func() bool {
		return pool.Stats().Failed == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSolverPool_QueueFull(t *testing.T) {
	pool := NewSolverPool("test", mustEngine(t, DigestLength), 1, 1)
	defer pool.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One request occupies the worker, one fills the queue.
	go pool.Solve(ctx, aliceHi) //nolint:errcheck
	require.Eventually(t, func() bool { return pool.Stats().Active == 1 }, time.Second, 5*time.Millisecond)
	go pool.Solve(ctx, aliceHi) //nolint:errcheck
	require.Eventually(t, func() bool { return pool.Stats().Pending == 1 }, time.Second, 5*time.Millisecond)

	_, err := pool.Solve(ctx, aliceHi)
	assert.ErrorIs(t, err, domain.ErrSolverQueueFull)
}

func TestSolverPool_Shutdown(t *testing.T) {
	pool := NewSolverPool("test", mustEngine(t, DigestLength), 1, 4)

	done := make(chan error, 1)
	go func() {
		_, err := pool.Solve(context.Background(), aliceHi)
		done <- err
	}()
	require.Eventually(t, func() bool { return pool.Stats().Active == 1 }, time.Second, 5*time.Millisecond)

	pool.Shutdown()
	pool.Shutdown()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrSolverClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight solve was not released by shutdown")
	}

	_, err := pool.Solve(context.Background(), aliceHi)
	assert.ErrorIs(t, err, domain.ErrSolverClosed)
}
