package stream

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many producers may run at once. It keeps blocking provider
// work (cursors, HTTP bodies, RPC receives) off the serving goroutines' budget.
// A nil *Pool admits everything.
type Pool struct {
	sem    *semaphore.Weighted
	size   int64
	active atomic.Int64
}

// NewPool returns a pool admitting at most size concurrent producers. A size
// below 1 returns nil, which means unbounded.
func NewPool(size int) *Pool {
	if size < 1 {
		return nil
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Acquire blocks until a slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.active.Add(1)
	return nil
}

// Release frees a slot taken by Acquire.
func (p *Pool) Release() {
	if p == nil {
		return
	}
	p.active.Add(-1)
	p.sem.Release(1)
}

// Size is the configured capacity, 0 for an unbounded pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return int(p.size)
}

// Active reports how many producers currently hold a slot.
func (p *Pool) Active() int {
	if p == nil {
		return 0
	}
	return int(p.active.Load())
}
