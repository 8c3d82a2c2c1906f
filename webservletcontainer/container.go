// Package webservletcontainer implements the session-aware HTTP
// dispatch of SPEC_FULL.md supplements C.8/C.9/C.10: a Container accepts
// Channels, parses pipelined requests off each with httpparse, resolves
// an HTTP session via a sessionstore.Store, and routes to the first
// registered slot whose Predicate matches, falling back to a static file
// store when nothing does.
//
// Grounded on original_source/Beam/Include/Beam/WebServices/
// WebServletContainer.hpp (one container owning a session handler plus
// an ordered slot table) and HttpSessionHandler.hpp (GetSlot wraps a
// predicate+handler pair behind session resolution); the accept-loop/
// per-connection-routine shape is grounded on services/protocol.go's
// Serve/readLoop split, generalized from one long-lived frame reader to
// one long-lived pipelined-HTTP-request reader.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package webservletcontainer

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/cmn/nlog"
	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/httpparse"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/sessionstore"
)

// Metrics receives per-request service events; stats.Registry
// implements it.
type Metrics interface {
	RequestServed(method, status string, d time.Duration)
}

// Acceptor produces Channels for inbound connections. network/tcp.Listener
// satisfies this without adaptation.
type Acceptor interface {
	Accept() (*network.Channel, error)
	Close() error
}

const readChunk = 4096

// Container dispatches HTTP requests arriving on Channels produced by an
// Acceptor to registered slots, resolving a Session per request via
// sessions. The zero value is not usable; build one with New.
type Container[S any] struct {
	sched    *routines.Scheduler
	acceptor Acceptor
	sessions sessionstore.Store[S]

	mu       sync.Mutex
	slots    []slot[S]
	fallback Handler[S]
	metrics  Metrics
}

// SetMetrics attaches m so every future dispatched request reports
// through it.
func (c *Container[S]) SetMetrics(m Metrics) { c.metrics = m }

// New builds a Container serving requests accepted from acceptor,
// resolving sessions through sessions.
func New[S any](sched *routines.Scheduler, acceptor Acceptor, sessions sessionstore.Store[S]) *Container[S] {
	return &Container[S]{sched: sched, acceptor: acceptor, sessions: sessions}
}

// Handle registers handler for every request matching predicate, tried
// in registration order; the first match wins.
func (c *Container[S]) Handle(predicate Predicate, handler Handler[S]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = append(c.slots, slot[S]{predicate: predicate, handler: handler})
}

// SetFallback registers the handler invoked when no slot's predicate
// matches - typically a static file store.
func (c *Container[S]) SetFallback(handler Handler[S]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = handler
}

// Serve spawns the accept loop and returns its routine id.
func (c *Container[S]) Serve(ctx context.Context) uint64 {
	return c.sched.Spawn(ctx, c.acceptLoop, 0, -1)
}

// Close stops accepting new connections. Connections already being
// served drain independently; they end when their Channel does.
func (c *Container[S]) Close() error { return c.acceptor.Close() }

func (c *Container[S]) acceptLoop(ctx context.Context) {
	for {
		ch, err := c.acceptor.Accept()
		if err != nil {
			return
		}
		c.sched.Spawn(ctx, func(ctx context.Context) { c.serveConn(ctx, ch) }, 0, -1)
	}
}

func (c *Container[S]) serveConn(ctx context.Context, ch *network.Channel) {
	defer ch.Close()
	parser := httpparse.NewHttpRequestParser()
	scratch := cos.NewSharedBuffer(cos.NewBuffer(readChunk))
	for {
		req, err := parser.GetNext()
		if err != nil {
			nlog.Warningf("webservletcontainer: malformed request from %s: %v", ch.Identifier(), err)
			return
		}
		if req == nil {
			scratch.Buffer().Reset()
			n, err := ch.Reader().Read(ctx, scratch, readChunk)
			if err != nil {
				return
			}
			if n > 0 {
				parser.Feed(scratch.Buffer().Data())
			}
			continue
		}

		start := time.Now()
		resp := c.dispatch(req)
		if c.metrics != nil {
			c.metrics.RequestServed(req.Method.String(), strconv.Itoa(int(resp.StatusCode)), time.Since(start))
		}
		if err := ch.Writer().Write(ctx, httpmsg.EncodeResponse(resp)); err != nil {
			return
		}
		if req.Special.Connection == httpmsg.ConnectionClose {
			return
		}
	}
}

func (c *Container[S]) dispatch(req *httpmsg.HttpRequest) *httpmsg.HttpResponse {
	resp := httpmsg.NewHttpResponse()

	entry, err := c.sessions.Get(req, resp)
	if err != nil {
		nlog.Errorf("webservletcontainer: session resolution failed: %v", err)
		resp.StatusCode = httpmsg.StatusInternalServerError
		return resp
	}

	c.mu.Lock()
	slots := append([]slot[S](nil), c.slots...)
	fallback := c.fallback
	c.mu.Unlock()

	for _, s := range slots {
		if s.predicate(req) {
			s.handler(entry, req, resp)
			return resp
		}
	}
	if fallback != nil {
		fallback(entry, req, resp)
		return resp
	}
	resp.StatusCode = httpmsg.StatusNotFound
	return resp
}
