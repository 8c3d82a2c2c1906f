package timeservice

import (
	"context"
	"sync"
	"time"
)

// TestEnvironment drives a set of TestTimers against virtual time: tests
// Advance the clock explicitly instead of sleeping on wall time, matching
// the original's TimeServiceTestEnvironment. Grounded on
// TimeServiceTests/TestTimer.hpp's Add/Remove/Trigger choreography.
type TestEnvironment struct {
	mu      sync.Mutex
	entries []*testEntry
}

type testEntry struct {
	timer    *TestTimer
	deadline time.Duration
}

func NewTestEnvironment() *TestEnvironment {
	return &TestEnvironment{}
}

func (e *TestEnvironment) add(t *TestTimer) {
	if t.interval <= 0 {
		t.timer.Trigger()
		return
	}
	e.mu.Lock()
	e.entries = append(e.entries, &testEntry{timer: t, deadline: t.interval})
	e.mu.Unlock()
}

func (e *TestEnvironment) remove(t *TestTimer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, ent := range e.entries {
		if ent.timer == t {
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			return
		}
	}
}

// Advance subtracts elapsed from every running TestTimer's remaining
// interval, triggering (and removing) any whose deadline has passed.
func (e *TestEnvironment) Advance(elapsed time.Duration) {
	e.mu.Lock()
	var fired []*testEntry
	remaining := e.entries[:0]
	for _, ent := range e.entries {
		ent.deadline -= elapsed
		if ent.deadline <= 0 {
			fired = append(fired, ent)
		} else {
			remaining = append(remaining, ent)
		}
	}
	e.entries = remaining
	e.mu.Unlock()

	for _, ent := range fired {
		ent.timer.timer.Trigger()
	}
}

// TestTimer is the Timer implementation used by test environments: it
// never consults a real clock, instead registering itself with a
// TestEnvironment that callers Advance() explicitly.
type TestTimer struct {
	mu          sync.Mutex
	interval    time.Duration
	env         *TestEnvironment
	hasStarted  bool
	timer       *TriggerTimer
}

func NewTestTimer(interval time.Duration, env *TestEnvironment) *TestTimer {
	return &TestTimer{
		interval: interval,
		env:      env,
		timer:    NewTriggerTimer(),
	}
}

func (t *TestTimer) Start() {
	t.mu.Lock()
	if t.hasStarted {
		t.mu.Unlock()
		return
	}
	t.hasStarted = true
	t.mu.Unlock()
	t.timer.Start()
	t.env.add(t)
}

func (t *TestTimer) Cancel() {
	t.mu.Lock()
	if !t.hasStarted {
		t.mu.Unlock()
		return
	}
	t.hasStarted = false
	t.mu.Unlock()
	t.env.remove(t)
	t.timer.Cancel()
}

func (t *TestTimer) Wait(ctx context.Context) Result { return t.timer.Wait(ctx) }
func (t *TestTimer) Results() <-chan Result          { return t.timer.Results() }

// Fail forces this timer's current cycle to publish Failed, as the
// original's free function Fail(TestTimer&) does for its test suites.
func (t *TestTimer) Fail() {
	t.mu.Lock()
	t.hasStarted = false
	t.mu.Unlock()
	t.timer.Fail()
}

// Trigger forces this timer's current cycle to publish Expired
// immediately, bypassing the TestEnvironment's Advance bookkeeping.
func (t *TestTimer) Trigger() {
	t.mu.Lock()
	t.hasStarted = false
	t.mu.Unlock()
	t.timer.Trigger()
}
