// Package mono provides monotonic-clock helpers used wherever Beam compares
// deadlines or measures elapsed time, so that wall-clock adjustments (NTP
// step, user changing the system clock) never produce a negative duration.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package mono

import "time"

var start = time.Now()

// NanoTime returns a monotonic nanosecond counter anchored at process start.
// Two calls' difference is always non-negative and immune to wall-clock
// adjustments, which is the property the housekeeping timer and the
// scheduler's suspended-routine deadlines depend on.
func NanoTime() int64 { return time.Since(start).Nanoseconds() }

// Since is a convenience wrapper returning the elapsed duration since a
// NanoTime() reading.
func Since(t int64) time.Duration { return time.Duration(NanoTime() - t) }
