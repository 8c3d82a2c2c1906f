package routines

import (
	"context"
	"runtime"
	"sync"

	"github.com/beamtrade/beam/cmn/nlog"
	"github.com/beamtrade/beam/cmn/ratomic"
)

const defaultStackSize = 1 << 17 // 128 KiB, kept only for introspection/metrics

// Metrics receives Scheduler lifecycle events; stats.Registry
// implements it. Nil by default, so Scheduler carries no Prometheus
// dependency of its own.
type Metrics interface {
	RoutineSpawned()
	RoutineCompleted()
}

// Scheduler owns the id space and the `id mod W` context assignment of
// spec §4.1. W defaults to hardware concurrency, matching the spec's
// default worker count, but - unlike the C++ original's one-OS-thread-
// per-context worker loop - a context here is purely a label carried by
// each Routine for metrics and hashing. Every routine runs on its own
// goroutine (see Spawn), because spec §4.1's worker loop only makes sense
// with fiber switching: advance() must return control to the worker the
// instant a routine suspends, so the worker can pick up the *next*
// pending routine on that context. Go has no fiber switch to borrow -
// goroutines don't yield control to a dispatcher, they block the one
// thread of execution they own - so a single dispatcher goroutine per
// context would wedge on the first routine that suspends, starving every
// other routine ever assigned to that context. Design notes §9 already
// calls this out explicitly: "first run = go func(){...}()". Running
// every routine on its own goroutine and leaning on the Go runtime's own
// M:N goroutine-to-OS-thread scheduler is the idiomatic translation -
// strictly more concurrent than the spec requires, never less correct.
type Scheduler struct {
	numContexts int
	nextID      ratomic.Uint64
	mu          sync.Mutex
	byID        map[uint64]*Routine
	stopping    ratomic.Bool
	live        sync.WaitGroup
	metrics     Metrics
}

// SetMetrics attaches m so every future Spawn/completion reports
// through it. Not safe to call concurrently with Spawn.
func (s *Scheduler) SetMetrics(m Metrics) { s.metrics = m }

func New(numContexts int) *Scheduler {
	if numContexts <= 0 {
		numContexts = runtime.NumCPU()
	}
	return &Scheduler{
		numContexts: numContexts,
		byID:        make(map[uint64]*Routine),
	}
}

// Spawn allocates a Routine owning f, assigns it to contextID (or
// `id mod W` if contextID is negative) for metrics/hashing purposes, and
// runs it on its own goroutine. f receives a context.Context carrying the
// new Routine's handle so any suspension primitive it calls resolves to
// the right routine. Spawn returns immediately with the routine's id.
func (s *Scheduler) Spawn(parent context.Context, f func(ctx context.Context), stackSize int, contextID int) uint64 {
	id := s.nextID.Inc()
	if contextID < 0 {
		contextID = int(id % uint64(s.numContexts))
	}
	if stackSize <= 0 {
		stackSize = defaultStackSize
	}
	r := &Routine{
		id:        id,
		contextID: contextID,
		stackSize: stackSize,
		doneCh:    make(chan struct{}),
	}
	r.state.Store(int32(Pending))

	s.mu.Lock()
	s.byID[id] = r
	s.mu.Unlock()
	s.live.Add(1)
	if s.metrics != nil {
		s.metrics.RoutineSpawned()
	}

	go s.advance(parent, r, f)
	return id
}

func (s *Scheduler) advance(parent context.Context, r *Routine, f func(ctx context.Context)) {
	r.state.Store(int32(Running))
	ctx := WithRoutine(parent, r)
	defer s.finish(r)
	defer func() {
		if rec := recover(); rec != nil {
			nlog.Errorf("routine %d: recovered from panic: %v", r.id, rec)
		}
	}()
	f(ctx)
}

func (s *Scheduler) finish(r *Routine) {
	r.state.Store(int32(Complete))
	s.mu.Lock()
	delete(s.byID, r.id)
	s.mu.Unlock()
	close(r.doneCh)
	s.live.Done()
	if s.metrics != nil {
		s.metrics.RoutineCompleted()
	}
}

// Wait blocks the calling routine (or external caller) until the routine
// identified by id completes. If the routine is not currently live, Wait
// returns immediately - matching spec §4.1 ("if the routine is live,
// parks the caller on its waiter list; otherwise returns immediately").
func (s *Scheduler) Wait(id uint64) {
	s.mu.Lock()
	r, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	<-r.doneCh
}

// Defer marks the current routine RUNNING, yields to other pending work
// on the same context by re-submitting itself, and continues once the
// runtime schedules it again. In the Go translation this is a
// cooperative yield (runtime.Gosched) rather than a context switch to a
// parent continuation, since there is no parent continuation to return
// to - the goroutine never left its own stack.
func Defer(ctx context.Context) {
	_ = FromContext(ctx)
	runtime.Gosched()
}

// NumContexts reports W, the configured worker-context count.
func (s *Scheduler) NumContexts() int { return s.numContexts }

// Shutdown blocks until every live routine has completed, matching the
// spec's "scheduler lifetime ends after all spawned routines" lifecycle
// note (design notes §9). Safe to call once.
func (s *Scheduler) Shutdown() {
	if !s.stopping.CAS(false, true) {
		return
	}
	s.live.Wait()
}
