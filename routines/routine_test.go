package routines_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/beamtrade/beam/routines"
	"github.com/stretchr/testify/require"
)

func TestSpawnRunsAndCompletes(t *testing.T) {
	s := routines.New(2)
	var ran bool
	var mu sync.Mutex
	id := s.Spawn(context.Background(), func(ctx context.Context) {
		mu.Lock()
		ran = true
		mu.Unlock()
	}, 0, -1)
	s.Wait(id)
	mu.Lock()
	defer mu.Unlock()
	require.True(t, ran)
	s.Shutdown()
}

func TestWaitOnUnknownRoutineReturnsImmediately(t *testing.T) {
	s := routines.New(1)
	s.Wait(999999)
	s.Shutdown()
}

// TestSuspendResumeRoundTrip exercises the common case: a routine suspends,
// an external goroutine resumes it once it is actually parked.
func TestSuspendResumeRoundTrip(t *testing.T) {
	s := routines.New(2)
	var mu sync.Mutex
	resumed := make(chan struct{})
	var r *routines.Routine

	id := s.Spawn(context.Background(), func(ctx context.Context) {
		r = routines.FromContext(ctx)
		mu.Lock()
		routines.Suspend(ctx, &mu)
		mu.Unlock()
		close(resumed)
	}, 0, -1)
	_ = id

	// Give the worker time to reach SUSPENDED before resuming.
	require.Eventually(t, func() bool {
		return r != nil && r.State() == routines.Suspended
	}, time.Second, time.Millisecond)

	routines.Resume(r)
	select {
	case <-resumed:
	case <-time.After(time.Second):
		t.Fatal("routine never resumed")
	}
	s.Shutdown()
}

// TestResumeRacingSuspendIsNeverLost reproduces the pending-resume race
// (scenario 6): Resume is invoked while the target is still transitioning
// through PENDING_SUSPEND, before it reaches SUSPENDED. The wakeup must
// not be lost - the routine must still observe exactly one resume and
// complete.
func TestResumeRacingSuspendIsNeverLost(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := routines.New(2)
		var mu sync.Mutex
		done := make(chan struct{})
		routineReady := make(chan *routines.Routine, 1)

		s.Spawn(context.Background(), func(ctx context.Context) {
			r := routines.FromContext(ctx)
			mu.Lock()
			routineReady <- r
			routines.Suspend(ctx, &mu)
			mu.Unlock()
			close(done)
		}, 0, -1)

		r := <-routineReady
		// Fire Resume as soon as Suspend releases mu, racing the worker's
		// own transition from PENDING_SUSPEND to SUSPENDED.
		go func() {
			mu.Lock()
			routines.Resume(r)
			mu.Unlock()
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: resume lost, routine never completed", i)
		}
		s.Shutdown()
	}
}

type fakeMetrics struct {
	mu        sync.Mutex
	spawned   int
	completed int
}

func (f *fakeMetrics) RoutineSpawned()   { f.mu.Lock(); f.spawned++; f.mu.Unlock() }
func (f *fakeMetrics) RoutineCompleted() { f.mu.Lock(); f.completed++; f.mu.Unlock() }

func TestSetMetricsReportsSpawnAndCompletion(t *testing.T) {
	s := routines.New(2)
	m := &fakeMetrics{}
	s.SetMetrics(m)

	id := s.Spawn(context.Background(), func(ctx context.Context) {}, 0, -1)
	s.Wait(id)
	s.Shutdown()

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Equal(t, 1, m.spawned)
	require.Equal(t, 1, m.completed)
}

func TestExternalContextSuspendResume(t *testing.T) {
	ctx := routines.ExternalContext(context.Background())
	r := routines.FromContext(ctx)
	require.True(t, r.IsExternal())

	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		mu.Lock()
		routines.Suspend(ctx, &mu)
		mu.Unlock()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return r.State() == routines.Suspended
	}, time.Second, time.Millisecond)
	routines.Resume(r)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("external routine never resumed")
	}
}
