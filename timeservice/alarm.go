package timeservice

import (
	"context"
	"time"

	"github.com/beamtrade/beam/async"
	"github.com/beamtrade/beam/cmn/cos"
)

// Clock abstracts "now" so AlarmReactor can be driven by a FixedTimeClock
// in tests the way the original's FixedTimeClient drives
// AlarmReactorTester.
type Clock interface {
	Now() time.Time
}

// RealClock reports the actual wall-clock time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock reports a constant time, for deterministic tests.
type FixedClock struct{ At time.Time }

func (c FixedClock) Now() time.Time { return c.At }

// TimerFactory constructs the Timer an AlarmReactor arms for a given
// remaining duration - a real LiveTimer in production, a TriggerTimer a
// test can fire by hand.
type TimerFactory func(remaining time.Duration) Timer

// AlarmReactor resolves to true once expiry passes (Eval blocks until
// then) and stays true - the Go translation of the original's
// alarm_reactor(time_client, timer_factory, expiry), with Aspen's
// generation-counted reactor protocol collapsed onto a single
// async.Eval[bool]: the evaluation after the deadline fires is "the"
// commit/eval pair's EVALUATED transition the original models explicitly.
type AlarmReactor struct {
	eval *async.Eval[bool]
}

// NewAlarmReactor starts counting down immediately: if expiry has
// already passed according to clock, the reactor resolves to true without
// arming a timer at all.
func NewAlarmReactor(clock Clock, newTimer TimerFactory, expiry time.Time) *AlarmReactor {
	r := &AlarmReactor{eval: async.NewEval[bool]()}
	now := clock.Now()
	if !now.Before(expiry) {
		r.eval.Set(true)
		return r
	}
	timer := newTimer(expiry.Sub(now))
	go func() {
		res := timer.Wait(context.Background())
		if res == Expired {
			r.eval.Set(true)
		} else {
			r.eval.SetException(cos.ErrTimeout)
		}
	}()
	timer.Start()
	return r
}

// Eval blocks until the deadline passes (returning true) or the
// underlying timer is canceled/fails (returning the error).
func (r *AlarmReactor) Eval(ctx context.Context) (bool, error) {
	return r.eval.Get(ctx)
}
