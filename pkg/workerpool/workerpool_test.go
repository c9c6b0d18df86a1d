package workerpool

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

func TestPoolNeverExceedsSize(t *testing.T) {
	p := New(2)

	var running, peak int32
	for i := 0; i < 10; i++ {
		err := p.Submit(context.Background(), func() {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
		require.NoError(t, err)
	}
	p.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, int32(0), atomic.LoadInt32(&running))
}

func TestSubmitRespectsContext(t *testing.T) {
	p := New(1)

	release := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ran := false
	err := p.Submit(ctx, func() { ran = true })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	p.Wait()
	assert.False(t, ran)
}

func TestDoReturnsResult(t *testing.T) {
	p := New(3)

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Do(context.Background(), p, func() (int, error) { return i * i, nil })
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []int{0, 1, 4, 9, 16}, results)

	boom := errors.New("boom")
	_, err := Do(context.Background(), p, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestNewFromEnvDefaults(t *testing.T) {
	t.Setenv("TEST_WORKERS", "nope")
	assert.Equal(t, defaultWorkers, NewFromEnv("TEST_WORKERS").Size())

	t.Setenv("TEST_WORKERS", "4")
	assert.Equal(t, 4, NewFromEnv("TEST_WORKERS").Size())
}

func TestCloseWaitsAndRejects(t *testing.T) {
	p := New(1)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished int32
	require.NoError(t, p.Submit(context.Background(), func() {
		close(started)
		<-release
		atomic.StoreInt32(&finished, 1)
	}))
	<-started

	// blocked on the only slot until the running job ends
	blocked := make(chan error, 1)
	go func() {
		blocked <- p.Submit(context.Background(), func() { t.Error("job ran after Close") })
	}()

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned before the running job finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-closed
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
	assert.ErrorIs(t, <-blocked, ErrPoolClosed)

	assert.ErrorIs(t, p.Submit(context.Background(), func() {}), ErrPoolClosed)
	_, err := Do(context.Background(), p, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}
