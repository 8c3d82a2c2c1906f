package threading

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/beamtrade/beam/async"
)

// ThreadPool is the elastic worker pool of spec §4.4: Queue(f) either
// reuses an idle worker or spawns a new one (bounded by maxWorkers,
// runtime.NumCPU() by default) to run f; Park stores f's result or error
// into an Eval. Idle workers self-terminate after a random 30-60s wait with no
// work, matching the spec's jittered idle-timeout to avoid thundering-herd
// teardown across many pools.
type ThreadPool struct {
	maxWorkers int
	mu         sync.Mutex
	idle       int
	live       int
	work       chan func()
}

func NewThreadPool(maxWorkers int) *ThreadPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &ThreadPool{maxWorkers: maxWorkers, work: make(chan func())}
}

// Queue submits f for execution on an auxiliary OS thread. It does not
// wait for f when a worker is idle or another can be spawned; at
// maxWorkers it runs f inline on the caller. Use Park (below) to block the calling routine on f's result
// while keeping its scheduler worker free.
func (p *ThreadPool) Queue(f func()) {
	p.mu.Lock()
	if p.idle > 0 {
		p.idle--
		p.mu.Unlock()
		p.work <- f
		return
	}
	spawn := p.live < p.maxWorkers
	if spawn {
		p.live++
	}
	p.mu.Unlock()

	if spawn {
		go p.runWorker(f)
		return
	}
	// at capacity: run inline rather than deadlock: the spec bounds
	// worker COUNT, not submitted work, and a caller that floods the pool
	// past its bound should still make forward progress.
	f()
}

func (p *ThreadPool) runWorker(first func()) {
	defer func() {
		p.mu.Lock()
		p.live--
		p.mu.Unlock()
	}()
	task := first
	for {
		task()
		p.mu.Lock()
		p.idle++
		p.mu.Unlock()

		idleFor := time.Duration(30+rand.Intn(30)) * time.Second
		select {
		case task = <-p.work:
		case <-time.After(idleFor):
			p.mu.Lock()
			// only exit if still idle (not racing a Queue() that just
			// decremented p.idle for us)
			if p.idle > 0 {
				p.idle--
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			task = <-p.work
		}
	}
}

// Park runs f on the pool and blocks the calling routine until it
// completes, returning f's result. This is how a routine calls a
// synchronous blocking API (DNS, file I/O) without stalling a scheduler
// worker - the work happens on a ThreadPool thread while the scheduler
// worker that issued Park is free to run other routines; the caller's own
// continuation blocks only on the Eval, which the scheduler already knows
// how to suspend on (see beam/routines).
func Park[T any](p *ThreadPool, ctx context.Context, f func() (T, error)) (T, error) {
	ev := async.NewEval[T]()
	p.Queue(func() {
		v, err := f()
		if err != nil {
			ev.SetException(err)
		} else {
			ev.Set(v)
		}
	})
	return ev.Get(ctx)
}
