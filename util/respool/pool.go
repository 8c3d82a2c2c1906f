// Package respool implements the generic object pool of SPEC_FULL.md
// supplement C.2: a Pool holds between min and max built objects,
// growing lazily on demand and blocking Acquire when it is at max and
// every object is checked out, until either one is released or the
// caller's context is canceled.
//
// Grounded on original_source/Beam/Include/Beam/Utilities/
// ResourcePool.hpp: ScopedResource's RAII-return-to-pool shape becomes
// Scoped.Release; the timed-wait-then-grow strategy becomes an
// unconditional grow-until-max followed by a context-aware
// sync.Cond.Wait, since Go's idiomatic cancellation primitive is
// context.Context rather than a wait-with-timeout loop. Exercised by
// network.Channel's Reader.Read destination buffers (B).
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package respool

import (
	"context"
	"sync"
)

// Pool holds up to max objects built by builder, pre-building min of
// them eagerly.
type Pool[T any] struct {
	builder func() (T, error)
	max     int

	mu    sync.Mutex
	cond  *sync.Cond
	count int
	idle  []T
}

// New builds a Pool with minCount objects built eagerly (at least 1) and
// capacity for up to maxCount total (raised to minCount if lower).
func New[T any](builder func() (T, error), minCount, maxCount int) (*Pool[T], error) {
	if minCount < 1 {
		minCount = 1
	}
	if maxCount < minCount {
		maxCount = minCount
	}
	p := &Pool[T]{builder: builder, max: maxCount}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < minCount; i++ {
		v, err := builder()
		if err != nil {
			return nil, err
		}
		p.idle = append(p.idle, v)
		p.count++
	}
	return p, nil
}

// Scoped is a checked-out object; Release returns it to the pool. A
// Scoped must be released exactly once.
type Scoped[T any] struct {
	pool *Pool[T]
	val  T
}

func (s *Scoped[T]) Value() T { return s.val }

func (s *Scoped[T]) Release() {
	s.pool.mu.Lock()
	s.pool.idle = append(s.pool.idle, s.val)
	s.pool.mu.Unlock()
	s.pool.cond.Signal()
}

// Acquire returns an idle object immediately, builds a fresh one if the
// pool has room to grow, or blocks until a Release or ctx's
// cancellation - whichever comes first.
func (p *Pool[T]) Acquire(ctx context.Context) (*Scoped[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stop := context.AfterFunc(ctx, p.cond.Broadcast)
	defer stop()

	for {
		if n := len(p.idle); n > 0 {
			v := p.idle[n-1]
			p.idle = p.idle[:n-1]
			return &Scoped[T]{pool: p, val: v}, nil
		}
		if p.count < p.max {
			p.count++
			p.mu.Unlock()
			v, err := p.builder()
			p.mu.Lock()
			if err != nil {
				p.count--
				return nil, err
			}
			return &Scoped[T]{pool: p, val: v}, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.cond.Wait()
	}
}

// TryAcquire returns an idle object without blocking, or (nil, false) if
// none is idle; it does not build a new object even when the pool is
// below max.
func (p *Pool[T]) TryAcquire() (*Scoped[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.idle); n > 0 {
		v := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return &Scoped[T]{pool: p, val: v}, true
	}
	return nil, false
}

// Len returns the number of objects currently idle in the pool.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
