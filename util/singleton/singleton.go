// Package singleton implements the remaining small utilities of
// SPEC_FULL.md supplement C.4: Singleton, Enum and ReportException.
//
// Grounded on original_source/Beam/Include/Beam/Utilities/
// Singleton.hpp (function-local static instance, lazily built exactly
// once) and ReportException.hpp (print the current exception plus its
// nested chain to stderr, indenting one level per nesting). There is no
// Enum.hpp in the original source; Enum here is grounded instead on the
// teacher's stringer-backed named-int pattern (cmn/cos.FsID and
// friends: a small value type with a String method and a table-driven
// lookup) generalized to a reusable generic helper.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package singleton

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Singleton lazily builds and caches exactly one T, the Go stand-in for
// GetInstance()'s function-local static.
type Singleton[T any] struct {
	once sync.Once
	val  T
}

// Get returns the cached instance, building it with build on first call.
// Concurrent callers block on the same build and observe the same
// instance.
func (s *Singleton[T]) Get(build func() T) T {
	s.once.Do(func() { s.val = build() })
	return s.val
}

// Enum pairs a comparable underlying value with a name, mirroring the
// teacher's table-driven String() methods (cmn/cos.FsID and the
// apc/actmsg stringer-generated constants) but reusable across any enum
// defined by a Go repo instead of regenerated per type.
type Enum[T comparable] struct {
	names map[T]string
	order []T
}

// NewEnum builds an Enum from an ordered list of (value, name) pairs.
// Order is preserved for Values().
func NewEnum[T comparable](pairs ...struct {
	Value T
	Name  string
}) *Enum[T] {
	e := &Enum[T]{names: make(map[T]string, len(pairs))}
	for _, p := range pairs {
		if _, exists := e.names[p.Value]; !exists {
			e.order = append(e.order, p.Value)
		}
		e.names[p.Value] = p.Name
	}
	return e
}

// String returns the registered name for v, or a numeric-looking
// fallback ("enum(%v)") if v was never registered.
func (e *Enum[T]) String(v T) string {
	if name, ok := e.names[v]; ok {
		return name
	}
	return fmt.Sprintf("enum(%v)", v)
}

// Parse returns the value registered under name, if any.
func (e *Enum[T]) Parse(name string) (T, bool) {
	for v, n := range e.names {
		if n == name {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Values returns every registered value in registration order.
func (e *Enum[T]) Values() []T {
	out := make([]T, len(e.order))
	copy(out, e.order)
	return out
}

// ReportException formats err and, if it was built with errors.Wrap
// (github.com/pkg/errors), every cause beneath it - one indentation
// level per nesting - matching make_exception_report's recursive
// nested-exception walk. A nil err reports the empty string.
func ReportException(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	reportInto(&b, err, 0)
	return b.String()
}

func reportInto(b *strings.Builder, err error, level int) {
	prefix := strings.Repeat("  ", level)
	b.WriteString(prefix)
	b.WriteString(err.Error())

	type stackTracer interface{ StackTrace() errors.StackTrace }
	if st, ok := err.(stackTracer); ok {
		for _, frame := range st.StackTrace() {
			b.WriteByte('\n')
			b.WriteString(prefix)
			b.WriteString(fmt.Sprintf("  %+v", frame))
		}
	}

	if cause := errors.Unwrap(err); cause != nil {
		b.WriteByte('\n')
		reportInto(b, cause, level+1)
	}
}

// PrintException writes ReportException(err)'s report to w, prefixed
// the way the original's BEAM_REPORT_CURRENT_EXCEPTION macro labels an
// uncaught exception.
func PrintException(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, "uncaught exception thrown:")
	fmt.Fprintln(w, ReportException(err))
}

// ReportCurrentException writes err's report to stderr - the Go
// equivalent of report_current_exception(), called from a top-level
// recover rather than a catch-all exception handler.
func ReportCurrentException(err error) {
	PrintException(os.Stderr, err)
}
