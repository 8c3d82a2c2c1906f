package threading

import "sync"

// ConditionVariable pairs a sync.Cond with its own mutex, giving callers
// Wait/Notify/NotifyAll without needing to manage the backing Locker
// themselves - the Go analogue of the original's Threading::
// ConditionVariable, which TimedConditionVariable composes with a
// LiveTimer.
type ConditionVariable struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func NewConditionVariable() *ConditionVariable {
	cv := &ConditionVariable{}
	cv.cond = sync.NewCond(&cv.mu)
	return cv
}

func (cv *ConditionVariable) Lock()   { cv.mu.Lock() }
func (cv *ConditionVariable) Unlock() { cv.mu.Unlock() }

// Wait must be called with the ConditionVariable locked; it atomically
// unlocks and blocks until Notify/NotifyAll, then re-locks before
// returning.
func (cv *ConditionVariable) Wait() { cv.cond.Wait() }

func (cv *ConditionVariable) Notify()    { cv.cond.Signal() }
func (cv *ConditionVariable) NotifyAll() { cv.cond.Broadcast() }
