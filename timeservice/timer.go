// Package timeservice implements the Timer abstraction of spec §2/§5:
// LiveTimer, TriggerTimer, TestTimer and the TimedConditionVariable /
// AlarmReactor built on top of them.
//
// Every Timer produces exactly one Result (Expired, Canceled or Failed)
// per Start/Cancel cycle, published on a channel a caller can Wait on -
// the Go translation of the original's Publisher<Timer::Result>. Grounded
// on the teacher's housekeeping ticker goroutines (cmn/cos/runners.go
// pattern: a single long-lived goroutine driven by a time.Timer,
// reporting completion over a channel) generalized into a restartable,
// cancelable primitive.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package timeservice

import "context"

// Result is the outcome of one Timer cycle.
type Result int

const (
	Expired Result = iota
	Canceled
	Failed
)

func (r Result) String() string {
	switch r {
	case Expired:
		return "EXPIRED"
	case Canceled:
		return "CANCELED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Timer is the common contract every implementation (LiveTimer,
// TriggerTimer, TestTimer) satisfies: Start arms it, Cancel aborts it
// and publishes Canceled, Wait blocks the caller until a Result is published.
// Calling Start while already running, or Cancel while not running, is a
// no-op - matching TestTimer.Start/Cancel's guarded m_hasStarted checks.
type Timer interface {
	Start()
	Cancel()
	Wait(ctx context.Context) Result
	Results() <-chan Result
}
