// Package services implements the request/response protocol of spec
// §4.9 over a bidirectional network.Channel: every message is a
// wire.Envelope of one of three kinds (Record, Request, Response),
// framed length-prefixed, dispatched by static tag through a
// SlotRegistry, and correlated back to its caller through a
// monotonically-increasing per-Protocol request id.
//
// Grounded on the dispatch shape of modelcontextprotocol-go-sdk's
// mcp/session.go (a pending-requests id->response-channel map plus a
// tag/method-keyed handler table reading off one per-connection receive
// loop), adapted from JSON-RPC's string method names to Beam's static-tag
// Record/Request/Response triad, and on the teacher's own worker pattern
// of one long-lived goroutine driving a channel's reads.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package services

import (
	"context"
	"sync"

	"github.com/beamtrade/beam/async"
	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/cmn/nlog"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/services/wire"
)

// Protocol drives one Channel's Record/Request/Response traffic: a
// reader routine decodes frames and either dispatches them to a
// registered slot or resolves a pending Request's Eval, while Send*
// methods encode and write outbound frames.
type Protocol struct {
	ch    *network.Channel
	codec wire.Codec
	slots *SlotRegistry
	sched *routines.Scheduler

	mu      sync.Mutex
	seq     uint64
	pending map[uint64]*async.Eval[*wire.Envelope]
	closed  bool
}

func NewProtocol(sched *routines.Scheduler, ch *network.Channel, codec wire.Codec, slots *SlotRegistry) *Protocol {
	return &Protocol{
		sched:   sched,
		ch:      ch,
		codec:   codec,
		slots:   slots,
		pending: make(map[uint64]*async.Eval[*wire.Envelope]),
	}
}

func (p *Protocol) Channel() *network.Channel { return p.ch }

// Serve spawns the reader routine that drains the Channel for the
// lifetime of the connection and returns its routine id, so a caller
// (typically ServiceClient) can Wait on it to learn when the connection
// has ended.
func (p *Protocol) Serve(ctx context.Context) uint64 {
	return p.sched.Spawn(ctx, p.readLoop, 0, -1)
}

func (p *Protocol) readLoop(ctx context.Context) {
	acc := newFrameAccumulator()
	scratch := cos.NewSharedBuffer(cos.NewBuffer(4096))
	for {
		if frame, ok := acc.Next(); ok {
			p.dispatch(ctx, frame)
			continue
		}
		scratch.Buffer().Reset()
		n, err := p.ch.Reader().Read(ctx, scratch, 4096)
		if err != nil {
			p.breakPending(err)
			return
		}
		if n > 0 {
			acc.Feed(scratch.Buffer().Data())
		}
	}
}

func (p *Protocol) dispatch(ctx context.Context, frame []byte) {
	env, err := p.codec.UnmarshalEnvelope(frame)
	if err != nil {
		nlog.Errorf("services: malformed envelope from %s: %v", p.ch.Identifier(), err)
		return
	}
	switch env.Kind {
	case wire.KindRecord:
		h, ok := p.slots.record(env.Tag)
		if !ok {
			nlog.Warningf("services: no record slot registered for tag %q", env.Tag)
			return
		}
		p.sched.Spawn(ctx, func(ctx context.Context) { h(p, env.Payload) }, 0, -1)

	case wire.KindRequest:
		token := &RequestToken{p: p, id: env.ID, tag: env.Tag}
		h, ok := p.slots.request(env.Tag)
		if !ok {
			token.SetException(ctx, &cos.ServiceRequestError{Message: "no such service: " + env.Tag})
			return
		}
		p.sched.Spawn(ctx, func(ctx context.Context) { h(token, env.Payload) }, 0, -1)

	case wire.KindResponse:
		p.mu.Lock()
		eval, ok := p.pending[env.ID]
		if ok {
			delete(p.pending, env.ID)
		}
		p.mu.Unlock()
		if !ok {
			// spec §4.9: a Response with no matching pending entry is
			// ignored, not an error - it can legitimately arrive after a
			// caller's context was canceled and the entry already dropped.
			nlog.Warningf("services: response for unknown request id %d (tag %q)", env.ID, env.Tag)
			return
		}
		eval.Set(env)
	}
}

// breakPending resolves every outstanding Request's Eval with an
// end-of-file exception and marks the Protocol closed, so any further
// SendRequest fails fast instead of hanging - spec §4.9's "closing the
// Channel breaks all pending Evals".
func (p *Protocol) breakPending(err error) {
	p.mu.Lock()
	pending := p.pending
	p.pending = make(map[uint64]*async.Eval[*wire.Envelope])
	p.closed = true
	p.mu.Unlock()

	for _, eval := range pending {
		eval.SetException(cos.Wrap(err, "channel closed"))
	}
}

func (p *Protocol) send(ctx context.Context, env *wire.Envelope) error {
	data, err := p.codec.MarshalEnvelope(env)
	if err != nil {
		return err
	}
	return p.ch.Writer().Write(ctx, encodeFrame(data))
}

// SendRecord transmits a fire-and-forget message; there is no reply to
// wait for.
func (p *Protocol) SendRecord(ctx context.Context, tag string, params any) error {
	payload, err := p.codec.MarshalPayload(params)
	if err != nil {
		return err
	}
	return p.send(ctx, &wire.Envelope{Kind: wire.KindRecord, Tag: tag, Payload: payload})
}

func (p *Protocol) nextRequestID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return p.seq
}

func (p *Protocol) registerPending(id uint64) *async.Eval[*wire.Envelope] {
	eval := async.NewEval[*wire.Envelope]()
	p.mu.Lock()
	closed := p.closed
	if !closed {
		p.pending[id] = eval
	}
	p.mu.Unlock()
	if closed {
		eval.SetException(cos.ErrEndOfFile)
	}
	return eval
}

// SendRequest issues a Request carrying params, allocating a fresh
// monotonically-increasing id, and blocks the calling routine until the
// matching Response envelope arrives (or the Channel breaks). Callers
// that want a typed result call SendRequestAs instead.
func (p *Protocol) SendRequest(ctx context.Context, tag string, params any) (*wire.Envelope, error) {
	id := p.nextRequestID()
	eval := p.registerPending(id)

	payload, err := p.codec.MarshalPayload(params)
	if err != nil {
		return nil, err
	}
	if err := p.send(ctx, &wire.Envelope{Kind: wire.KindRequest, Tag: tag, ID: id, Payload: payload}); err != nil {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, err
	}
	return eval.Get(ctx)
}

// SendRequestAs issues a Request and decodes its successful Response
// payload as R, or rethrows the remote side's logical error as a
// cos.ServiceRequestError.
func SendRequestAs[R any](ctx context.Context, p *Protocol, tag string, params any) (R, error) {
	var zero R
	env, err := p.SendRequest(ctx, tag, params)
	if err != nil {
		return zero, err
	}
	if env.Err != "" {
		return zero, &cos.ServiceRequestError{Message: env.Err}
	}
	var out R
	if err := p.codec.UnmarshalPayload(env.Payload, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// RequestToken is handed to a registered RequestHandler so it can send
// exactly one Response back for the Request it was invoked for.
// SetResult/SetException are idempotent past the first call, matching
// the one-Response-per-Request invariant without requiring handlers to
// track that themselves.
type RequestToken struct {
	p   *Protocol
	id  uint64
	tag string

	mu   sync.Mutex
	done bool
}

func (t *RequestToken) SetResult(ctx context.Context, v any) error {
	if !t.claim() {
		return nil
	}
	payload, err := t.p.codec.MarshalPayload(v)
	if err != nil {
		return err
	}
	return t.p.send(ctx, &wire.Envelope{Kind: wire.KindResponse, Tag: t.tag, ID: t.id, Payload: payload})
}

func (t *RequestToken) SetException(ctx context.Context, err error) error {
	if !t.claim() {
		return nil
	}
	return t.p.send(ctx, &wire.Envelope{Kind: wire.KindResponse, Tag: t.tag, ID: t.id, Err: err.Error()})
}

func (t *RequestToken) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
