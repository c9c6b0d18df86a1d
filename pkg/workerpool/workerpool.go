package workerpool

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"
)

const defaultWorkers = 2

var ErrPoolClosed = errors.New("worker pool closed")

// Pool bounds how many CPU heavy jobs run at once across every caller that
// shares it.
type Pool struct {
	sem  *semaphore.Weighted
	size int
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func New(size int) *Pool {
	if size < 1 {
		size = defaultWorkers
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// NewFromEnv sizes the pool from the given variable, e.g. WEED_WORKERS.
func NewFromEnv(key string) *Pool {
	size, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		size = defaultWorkers
	}
	return New(size)
}

func (p *Pool) Size() int {
	return p.size
}

// Submit blocks until a worker slot is free and then runs fn on its own
// goroutine. It returns ctx.Err() without running fn if ctx ends first, and
// ErrPoolClosed once Close has been called.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		fn()
	}()

	return nil
}

// Do runs fn on a worker and waits for it to finish.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var (
		res  T
		err  error
		done = make(chan struct{})
	)

	if subErr := p.Submit(ctx, func() {
		defer close(done)
		res, err = fn()
	}); subErr != nil {
		return res, subErr
	}

	<-done
	return res, err
}

// Wait blocks until every submitted job has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close rejects new jobs and waits for the running ones. Callers that are
// still blocked in Submit get ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}
