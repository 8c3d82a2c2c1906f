//go:build !debug

// Package debug provides build-tag-gated assertions: no-ops in a normal
// build, active checks when built with `-tags debug`. Routine suspension,
// Async state transitions, and Channel close idempotency are exactly the
// invariants spec §3/§5 call out as "programming errors" if violated, so
// they're asserted here rather than checked unconditionally on every hot
// path.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package debug

import "sync"

func ON() bool { return false }

func Infof(_ string, _ ...any) {}

func Assert(_ bool, _ ...any)            {}
func AssertFunc(_ func() bool, _ ...any) {}
func AssertNoErr(_ error)                {}
func Assertf(_ bool, _ string, _ ...any) {}

func AssertMutexLocked(_ *sync.Mutex)      {}
func AssertRWMutexLocked(_ *sync.RWMutex)  {}
func AssertRWMutexRLocked(_ *sync.RWMutex) {}
