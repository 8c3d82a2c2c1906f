// Package cos provides the common low-level types shared by every Beam
// subsystem: the error taxonomy of spec §7 and the Buffer/SharedBuffer
// byte containers of spec §3.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package cos

import (
	goerrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors matching spec §7's "EndOfFile / PipeBroken" kind: raised
// by Reader/Writer/Queue operations on a closed resource. errors.Is
// against these works across every subsystem that wraps them with
// cos.Wrap.
var (
	ErrEndOfFile  = goerrors.New("beam: end of file")
	ErrPipeBroken = goerrors.New("beam: pipe broken")
	ErrTimeout    = goerrors.New("beam: timeout")
)

// ErrConnect is returned when establishing a transport fails.
type ErrConnect struct {
	Addr string
	Err  error
}

func (e *ErrConnect) Error() string {
	return fmt.Sprintf("beam: connect to %s failed: %v", e.Addr, e.Err)
}
func (e *ErrConnect) Unwrap() error { return e.Err }

// ErrSocket carries a numeric errno-like code alongside a message, for
// transport failures that aren't end-of-file.
type ErrSocket struct {
	Code    int
	Message string
}

func (e *ErrSocket) Error() string {
	return fmt.Sprintf("beam: socket error %d: %s", e.Code, e.Message)
}

// InvalidHTTPRequestError / InvalidHTTPResponseError are surfaced from
// HttpRequestParser.GetNext / HttpResponseParser.GetNext (spec §4.6) when
// the parser state reached ERROR without ever finalizing a message.
type InvalidHTTPRequestError struct{ Reason string }

func (e *InvalidHTTPRequestError) Error() string {
	return "beam: invalid HTTP request: " + e.Reason
}

type InvalidHTTPResponseError struct{ Reason string }

func (e *InvalidHTTPResponseError) Error() string {
	return "beam: invalid HTTP response: " + e.Reason
}

// MalformedURIError is returned when the URI parser rejects its input.
type MalformedURIError struct{ Input string }

func (e *MalformedURIError) Error() string {
	return fmt.Sprintf("beam: malformed URI %q", e.Input)
}

// ServiceRequestError is a logical (not transport) error returned by a
// remote service-protocol handler; it is carried on the wire inside a
// ResponseMessage and rethrown at the Eval boundary (spec §4.9).
type ServiceRequestError struct{ Message string }

func (e *ServiceRequestError) Error() string { return e.Message }

// AssertionError signals a precondition violation (spec §7); in a debug
// build cmn/debug panics directly instead of constructing this, so this
// type exists for the rarer cases where the violation must propagate as
// an ordinary error instead of crashing the process.
type AssertionError struct{ What string }

func (e *AssertionError) Error() string { return "beam: assertion failed: " + e.What }

// Wrap attaches file:line stack context the same way the teacher wraps
// errors throughout cmn/ais with github.com/pkg/errors, at every
// subsystem boundary (scheduler top-level recover, service-client
// reconnect, HTTP client retry).
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

func IsEOF(err error) bool        { return goerrors.Is(err, ErrEndOfFile) }
func IsPipeBroken(err error) bool { return goerrors.Is(err, ErrPipeBroken) }
