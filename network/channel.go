// Package network implements the Channel abstraction of spec §3/§4.5: a
// Channel bundles an Identifier, a Connection, a Reader and a Writer, all
// of which refer to the same underlying transport. Grounded on the
// teacher's streamBase (transport/bundle): a single connection wrapped
// by a FIFO-serializing send path (here, threading.TaskRunner) and an
// idempotent close/termination path (streamBase.term / Stream.Fin).
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package network

import (
	"context"

	"github.com/beamtrade/beam/cmn/cos"
)

// Identifier names the endpoint a Channel is connected to, e.g. a TCP
// "host:port" pair or an in-memory test label.
type Identifier interface {
	String() string
}

type StringIdentifier string

func (s StringIdentifier) String() string { return string(s) }

// Connection is the lifecycle half of a Channel: Close is idempotent and
// IsOpen lets callers check liveness without attempting an operation
// that would otherwise fail with cos.ErrPipeBroken.
type Connection interface {
	Close() error
	IsOpen() bool
}

// Reader reads up to max bytes into buf, returning the count appended.
// Implementations must serialize concurrent Read calls so only one is
// outstanding at a time (spec §4.5's "is_read_pending" latch) - a second
// caller blocks rather than erroring.
type Reader interface {
	Read(ctx context.Context, buf *cos.SharedBuffer, max int) (int, error)
}

// Writer enqueues data for transmission; concurrent Write calls from
// different routines are serialized FIFO by the underlying TaskRunner,
// and Write does not return until its own bytes have been flushed (or
// failed) - it does not wait for writes queued behind it beyond what
// FIFO ordering already implies.
type Writer interface {
	Write(ctx context.Context, data []byte) error
}

// Channel bundles the four Channel-abstraction accessors. A Channel is
// terminal once closed: every accessor keeps returning the same
// instances, but operations against them fail with cos.ErrPipeBroken.
type Channel struct {
	id   Identifier
	conn Connection
	r    Reader
	w    Writer
}

func NewChannel(id Identifier, conn Connection, r Reader, w Writer) *Channel {
	return &Channel{id: id, conn: conn, r: r, w: w}
}

func (c *Channel) Identifier() Identifier { return c.id }
func (c *Channel) Connection() Connection { return c.conn }
func (c *Channel) Reader() Reader         { return c.r }
func (c *Channel) Writer() Writer         { return c.w }

// Close is a convenience forwarding to the underlying Connection.
func (c *Channel) Close() error { return c.conn.Close() }
