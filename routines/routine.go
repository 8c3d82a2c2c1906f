// Package routines implements the M:N stackful-coroutine scheduler of
// spec §4.1: a Routine is spawned against a context id, runs cooperatively
// until it completes or suspends on a well-known primitive, and resumes
// exactly once per wake.
//
// Go's own runtime already multiplexes goroutines - which are themselves
// stackful, growable, preemptible continuations - onto a small number of
// OS threads; per design notes §9 ("Stackful coroutines with runtime
// switching... Suspension primitives become channel receives or
// condition-variable waits"), the idiomatic Go translation of Beam's
// scheduler does not reimplement fiber switching. Instead it layers the
// spec's CONTRACT - Routine identity, state machine, per-context FIFO
// submission order, and above all the suspend/resume race - on top of
// real goroutines. The teacher's own code never hand-rolls fibers either:
// every long-lived worker in transport/ and the housekeeping timer is a
// goroutine reading off a channel, which is exactly the pattern adapted
// here.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package routines

import (
	"context"
	"sync"

	"github.com/beamtrade/beam/cmn/debug"
	"github.com/beamtrade/beam/cmn/ratomic"
)

type State int32

const (
	Pending State = iota
	Running
	PendingSuspend
	Suspended
	Complete
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Running:
		return "RUNNING"
	case PendingSuspend:
		return "PENDING_SUSPEND"
	case Suspended:
		return "SUSPENDED"
	case Complete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Routine is the spec §3 data model: an identifier, a state variant, a
// bound context id, and (in this translation) the goroutine itself rather
// than a saved stack/continuation resource. ScheduledRoutine's additional
// attributes (parent continuation, pending-resume flag, stack size) are
// folded directly into this struct since Go routines have no separate
// "parent continuation" to save - suspension is a channel receive, not a
// stack switch.
type Routine struct {
	id         uint64
	contextID  int
	stackSize  int
	external   bool
	state      ratomic.Int32
	mu         sync.Mutex
	resumeCh   chan struct{}
	pendingResume bool
	doneCh     chan struct{}
	waiters    int // advisory, for metrics only
}

func (r *Routine) ID() uint64      { return r.id }
func (r *Routine) ContextID() int  { return r.contextID }
func (r *Routine) State() State    { return State(r.state.Load()) }
func (r *Routine) IsExternal() bool { return r.external }

type ctxKey struct{}

// WithRoutine attaches a routine handle to ctx so nested suspension
// primitives (Async.Get, Queue.Pop, channel reads) can recover "the
// current routine" the same way spec's current_routine() does, without
// relying on Go's lack of goroutine-local storage.
func WithRoutine(ctx context.Context, r *Routine) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the Routine attached to ctx, materializing a fresh
// ExternalRoutine if none is present - the spec §4.1/§5 "thread
// impersonation" contract for non-worker callers (library users, a
// service client's own goroutine) that never went through Spawn. Callers
// that need to suspend more than once from the same logical external
// thread must reuse the same ctx (or one derived from it) across calls so
// the synthesized handle, and therefore any pending-resume state, is
// shared - see ExternalContext.
func FromContext(ctx context.Context) *Routine {
	if r, ok := ctx.Value(ctxKey{}).(*Routine); ok {
		return r
	}
	return newExternalRoutine()
}

// ExternalContext wraps parent with a freshly materialized ExternalRoutine
// handle, for a non-worker goroutine (an application's main goroutine, an
// HTTP client issuing a blocking call) that wants to use Async/Queue/
// Channel suspension primitives exactly as a scheduled routine would.
func ExternalContext(parent context.Context) context.Context {
	return WithRoutine(parent, newExternalRoutine())
}

func newExternalRoutine() *Routine {
	r := &Routine{
		id:       0,
		external: true,
		doneCh:   make(chan struct{}),
	}
	r.state.Store(int32(Running))
	return r
}

func (r *Routine) newResumeGate() chan struct{} {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	r.resumeCh = ch
	r.mu.Unlock()
	return ch
}

// Suspend transitions the routine owning ctx to PENDING_SUSPEND, releases
// the provided locks (in order), and blocks until Resume is called for
// this routine - at which point it re-acquires the locks in the same
// order before returning. This is the spec §4.1 `suspend(out, lock...)`
// primitive; Async.Get and Queue.Pop (for the scheduler-aware variants)
// and Channel.Read/Write build on it.
//
// The critical correctness property (spec §5, testable scenario 6) is
// that a Resume racing in before this routine reaches its wait point must
// never be lost: this is closed below by checking pendingResume under the
// routine's own mutex between releasing the caller's locks and blocking.
func Suspend(ctx context.Context, locks ...sync.Locker) {
	r := FromContext(ctx)
	gate := r.newResumeGate()
	r.state.Store(int32(PendingSuspend))

	for _, l := range locks {
		l.Unlock()
	}

	r.mu.Lock()
	if r.pendingResume {
		r.pendingResume = false
		r.mu.Unlock()
		r.state.Store(int32(Running))
	} else {
		r.state.Store(int32(Suspended))
		r.mu.Unlock()
		<-gate
		r.state.Store(int32(Running))
	}

	for _, l := range locks {
		l.Lock()
	}
}

// Resume wakes the routine r: if it has already reached SUSPENDED, this
// sends on its resume gate; if it is still transitioning
// (PENDING_SUSPEND), this sets the pending-resume flag instead so the
// wakeup is never lost. Resuming a routine that is RUNNING, PENDING, or
// COMPLETE is a no-op - spec §4.9 "receiving a Response with no matching
// pending entry is ignored", and more generally resume-after-completion
// must be tolerated since the waiter list can race with completion.
func Resume(r *Routine) {
	r.mu.Lock()
	switch State(r.state.Load()) {
	case Suspended:
		gate := r.resumeCh
		r.mu.Unlock()
		select {
		case gate <- struct{}{}:
		default:
			debug.Assert(false, "resume gate already signaled")
		}
	case PendingSuspend:
		r.pendingResume = true
		r.mu.Unlock()
	default:
		r.mu.Unlock()
	}
}
