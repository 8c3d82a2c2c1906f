package services

import (
	"context"
	"sync"
	"time"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/cmn/nlog"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/services/wire"
	"golang.org/x/sync/errgroup"
)

// ReplayAction is a previously-performed registration or subscription
// request, recorded so it can be reissued against a freshly
// re-logged-in Protocol after a reconnect (spec §4.9 session semantics).
type ReplayAction func(ctx context.Context, p *Protocol) error

// Metrics receives ServiceClient reconnection events; stats.Registry
// implements it.
type Metrics interface {
	ReconnectAttempt()
	ReconnectSucceeded()
}

// ServiceClient is the long-lived session wrapper of spec §4.9: it holds
// at most one live Protocol, and on disconnect rebuilds the Channel,
// re-authenticates, and replays every remembered action in the order it
// was originally performed before exposing itself as usable again.
// Grounded on the teacher's reconnecting bucket/client pattern
// (api/client.go retry-on-reconnect plus a remembered request log), with
// the login/connect steps left as injected hooks since Beam's own
// authentication shape (servicelocator) is a separate package built on
// top of this one.
type ServiceClient struct {
	sched   *routines.Scheduler
	codec   wire.Codec
	slots   *SlotRegistry
	connect func(ctx context.Context) (*network.Channel, error)
	login   func(ctx context.Context, p *Protocol) error

	mu      sync.Mutex
	proto   *Protocol
	replay  []ReplayAction
	closed  bool
	backoff time.Duration
	maxWait time.Duration
	metrics Metrics
}

// SetMetrics attaches m so every future reconnect attempt reports
// through it.
func (c *ServiceClient) SetMetrics(m Metrics) { c.metrics = m }

// NewServiceClient wires a ServiceClient. login may be nil for a server
// protocol that needs no authentication handshake.
func NewServiceClient(
	sched *routines.Scheduler,
	codec wire.Codec,
	slots *SlotRegistry,
	connect func(ctx context.Context) (*network.Channel, error),
	login func(ctx context.Context, p *Protocol) error,
) *ServiceClient {
	return &ServiceClient{
		sched:   sched,
		codec:   codec,
		slots:   slots,
		connect: connect,
		login:   login,
		backoff: time.Second,
		maxWait: 30 * time.Second,
	}
}

// Start performs the initial connect + login.
func (c *ServiceClient) Start(ctx context.Context) error {
	return c.connectAndLogin(ctx, nil)
}

// Protocol returns the current live Protocol, or nil while disconnected
// (between a break and the reconnection task's login+replay completing).
func (c *ServiceClient) Protocol() *Protocol {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proto
}

// Remember runs action against the current Protocol and records it for
// replay on every future reconnect - the shape RegisterService,
// subscribe-style Monitor calls, and similar stateful requests use so
// the client doesn't need its own bookkeeping for "what did I already
// register".
func (c *ServiceClient) Remember(ctx context.Context, action ReplayAction) error {
	c.mu.Lock()
	c.replay = append(c.replay, action)
	proto := c.proto
	c.mu.Unlock()
	if proto == nil {
		return cos.ErrPipeBroken
	}
	return action(ctx, proto)
}

func (c *ServiceClient) connectAndLogin(ctx context.Context, replay []ReplayAction) error {
	ch, err := c.connect(ctx)
	if err != nil {
		return err
	}
	proto := NewProtocol(c.sched, ch, c.codec, c.slots)
	readerID := proto.Serve(ctx)

	if c.login != nil {
		if err := c.login(ctx, proto); err != nil {
			ch.Close()
			return err
		}
	}

	// Replay with a concurrency limit of one: errgroup still fans the
	// recorded actions out through its own worker dispatch rather than a
	// bare for-loop, but SetLimit(1) keeps them strictly ordered, which
	// spec §4.9 requires ("replays... in the order they were originally
	// performed").
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1)
	for _, action := range replay {
		action := action
		g.Go(func() error { return action(gctx, proto) })
	}
	if err := g.Wait(); err != nil {
		ch.Close()
		return err
	}

	c.mu.Lock()
	c.proto = proto
	c.mu.Unlock()

	go c.watch(ctx, proto, readerID)
	return nil
}

// watch waits for the Protocol's reader routine to end (Channel closed
// or broken), then - unless the client itself was closed - starts the
// reconnection task.
func (c *ServiceClient) watch(ctx context.Context, proto *Protocol, readerID uint64) {
	c.sched.Wait(readerID)

	c.mu.Lock()
	if c.proto == proto {
		c.proto = nil
	}
	closed := c.closed
	replay := append([]ReplayAction(nil), c.replay...)
	c.mu.Unlock()

	if closed {
		return
	}
	c.reconnectLoop(ctx, replay)
}

func (c *ServiceClient) reconnectLoop(ctx context.Context, replay []ReplayAction) {
	wait := c.backoff
	for {
		if ctx.Err() != nil {
			return
		}
		if c.metrics != nil {
			c.metrics.ReconnectAttempt()
		}
		if err := c.connectAndLogin(ctx, replay); err == nil {
			if c.metrics != nil {
				c.metrics.ReconnectSucceeded()
			}
			return
		} else {
			nlog.Warningf("services: reconnect attempt failed: %v", err)
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
		if wait < c.maxWait {
			wait *= 2
			if wait > c.maxWait {
				wait = c.maxWait
			}
		}
	}
}

// Close tears down the current Channel (if any) and prevents any further
// reconnection attempt.
func (c *ServiceClient) Close() error {
	c.mu.Lock()
	c.closed = true
	proto := c.proto
	c.proto = nil
	c.mu.Unlock()
	if proto != nil {
		return proto.Channel().Close()
	}
	return nil
}
