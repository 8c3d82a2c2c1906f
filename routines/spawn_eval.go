package routines

import (
	"context"
	"fmt"
)

// Settable is the minimal surface Scheduler.SpawnEval needs from a
// result cell - satisfied by async.Eval[T] - without routines importing
// the async package (async imports routines for Suspend/Resume, so the
// dependency runs one way only).
type Settable[T any] interface {
	Set(T)
	SetException(error)
}

// SpawnEval is the spec §4.1 convenience `spawn(f, ..., eval)`: it wraps f
// so that its return value or any panic/escaping error is stored into
// eval before the routine completes, exactly as the scheduler's
// top-level recover reports uncaught exceptions while still letting the
// routine reach COMPLETE cleanly (spec §4.1 "All uncaught exceptions...
// are caught and reported; the routine still transitions COMPLETE
// cleanly").
func SpawnEval[T any](s *Scheduler, parent context.Context, f func(ctx context.Context) (T, error), eval Settable[T], stackSize int, contextID int) uint64 {
	return s.Spawn(parent, func(ctx context.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				eval.SetException(fmt.Errorf("routine panicked: %v", rec))
				panic(rec)
			}
		}()
		v, err := f(ctx)
		if err != nil {
			eval.SetException(err)
			return
		}
		eval.Set(v)
	}, stackSize, contextID)
}
