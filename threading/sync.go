// Package threading provides the Sync-wrapper / LockRelease /
// TaskRunner / ThreadPool primitives of spec §2 and §4.3/§4.4.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package threading

import "sync"

// Sync wraps a value of type T behind a mutex with with(f)-style scoped
// access, grounded on the teacher's pervasive pattern of a small mutex
// guarding one struct field (transport.MsgStream.term, cmn/cos.Errs).
// With holds the lock for the duration of f, so f must not itself call
// back into the same Sync.
type Sync[T any] struct {
	mu  sync.Mutex
	val T
}

func NewSync[T any](initial T) *Sync[T] { return &Sync[T]{val: initial} }

func (s *Sync[T]) With(f func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.val)
}

func (s *Sync[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

func (s *Sync[T]) Set(v T) {
	s.mu.Lock()
	s.val = v
	s.mu.Unlock()
}

// Lock/Unlock expose the raw mutex for callers (routines.Suspend) that
// must release the lock on one goroutine and have it re-acquired after a
// suspension completes on a different logical continuation.
func (s *Sync[T]) Lock()   { s.mu.Lock() }
func (s *Sync[T]) Unlock() { s.mu.Unlock() }

// LockRelease wraps a mutex the caller already holds (NewLockRelease does
// not lock it) and releases it exactly once, either explicitly via Release or via a deferred call,
// giving suspend() a value it can release before parking and re-acquire
// (in the same order relative to sibling LockReleases) on resume.
type LockRelease struct {
	mu       sync.Locker
	released bool
}

func NewLockRelease(mu sync.Locker) *LockRelease {
	return &LockRelease{mu: mu}
}

func (l *LockRelease) Release() {
	if !l.released {
		l.released = true
		l.mu.Unlock()
	}
}

func (l *LockRelease) Reacquire() {
	l.mu.Lock()
	l.released = false
}
