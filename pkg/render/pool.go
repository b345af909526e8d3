package render

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many render jobs run at once. Jobs beyond the limit wait
// for a free slot; a job whose context ends while waiting never runs.
type Pool struct {
	sem  *semaphore.Weighted
	size int
	wg   sync.WaitGroup
}

// NewPool returns a pool with size worker slots.
// A size below 1 uses runtime.NumCPU().
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the number of worker slots.
func (p *Pool) Size() int { return p.size }

// Submit runs job on its own goroutine once a slot is free. If ctx ends
// first, job is not run and onCancel receives the context error instead.
// Submit never blocks.
func (p *Pool) Submit(ctx context.Context, job func(), onCancel func(error)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			onCancel(err)
			return
		}
		defer p.sem.Release(1)
		job()
	}()
}

// Wait blocks until every submitted job has finished or been cancelled.
func (p *Pool) Wait() { p.wg.Wait() }
