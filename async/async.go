// Package async implements the single-shot Async[T]/Eval[T] rendezvous of
// spec §3/§4.2: a setter (Eval) publishes a value or an exception exactly
// once, and any number of waiters parked in Get() are released in FIFO
// order.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package async

import (
	"context"
	"sync"

	"github.com/beamtrade/beam/routines"
)

type state int32

const (
	pending state = iota
	complete
	exception
)

// Async is grounded on the teacher's transport.MsgStream.term struct: a
// mutex-guarded "set at most once" cell (there, `term.done.CAS` plus
// `term.err` under `term.mu`) generalized to hold a typed value and to
// wake any number of FIFO-ordered waiters instead of exactly one.
type Async[T any] struct {
	mu      sync.Mutex
	st      state
	value   T
	err     error
	waiters []*routines.Routine
}

func NewAsync[T any]() *Async[T] { return &Async[T]{} }

// Get returns the stored value once set, rethrowing the stored exception
// if the Async completed exceptionally. If the Async is still PENDING,
// the calling routine (recovered from ctx, materializing an
// ExternalRoutine if ctx was never attached to a Spawn) suspends via
// routines.Suspend and is released, in FIFO order with any other waiters,
// when Eval.Set/SetException runs.
func (a *Async[T]) Get(ctx context.Context) (T, error) {
	a.mu.Lock()
	for a.st == pending {
		r := routines.FromContext(ctx)
		a.waiters = append(a.waiters, r)
		// Suspend releases &a.mu before parking and re-acquires it (in
		// the same order, trivially - there's only one lock here) before
		// returning, so the mutex is held again by the time we loop back
		// to re-check state.
		routines.Suspend(ctx, &a.mu)
	}
	defer a.mu.Unlock()
	if a.st == exception {
		var zero T
		return zero, a.err
	}
	return a.value, nil
}

// TryGet returns (value, true, nil) if already COMPLETE, (zero, false,
// nil) if still PENDING, or (zero, true, err) if EXCEPTION - a
// non-suspending peek used by code that must not block (e.g. a Channel
// close path checking whether a write Async already resolved).
func (a *Async[T]) TryGet() (value T, ready bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.st {
	case complete:
		return a.value, true, nil
	case exception:
		return value, true, a.err
	default:
		return value, false, nil
	}
}

// Reset clears the Async back to PENDING so it can be reused. Per spec
// §9's open question, the source has no synchronization preventing
// concurrent resetters; Beam keeps that contract explicitly - callers
// must externally guarantee no waiters and no concurrent setters are in
// flight across a Reset.
func (a *Async[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	var zero T
	a.st = pending
	a.value = zero
	a.err = nil
	a.waiters = nil
}

func (a *Async[T]) set(v T, err error, exc bool) {
	a.mu.Lock()
	if a.st != pending {
		a.mu.Unlock()
		return
	}
	if exc {
		a.st = exception
		a.err = err
	} else {
		a.st = complete
		a.value = v
	}
	waiters := a.waiters
	a.waiters = nil
	a.mu.Unlock()

	for _, w := range waiters {
		routines.Resume(w)
	}
}

// Eval is the unique setter handle for one Async: at most one of Set /
// SetException succeeds, matching spec §4.2's idempotent-no-op-after-set
// contract. Eval holds a pointer to its Async directly rather than
// modeling C++ move-only ownership transfer - Go has no analogous
// "destroyed without being set" hazard to guard against beyond leaving
// the Async PENDING forever, which callers can already detect via
// TryGet/context cancellation.
type Eval[T any] struct {
	a *Async[T]
}

func NewEval[T any]() *Eval[T] { return &Eval[T]{a: NewAsync[T]()} }

// WrapEval returns an Eval bound to an existing Async, used when a
// service-protocol dispatcher registers a pending-requests entry that a
// reader routine will later resolve via the same Async a caller is
// already blocked in Get() on.
func WrapEval[T any](a *Async[T]) *Eval[T] { return &Eval[T]{a: a} }

func (e *Eval[T]) Async() *Async[T] { return e.a }

func (e *Eval[T]) Set(v T)              { e.a.set(v, nil, false) }
func (e *Eval[T]) SetException(err error) { e.a.set(*new(T), err, true) }

// Get is a convenience forwarding to the underlying Async, so callers
// that only ever deal with one Eval/Async pair don't need to thread both
// types through their own signatures.
func (e *Eval[T]) Get(ctx context.Context) (T, error) { return e.a.Get(ctx) }
