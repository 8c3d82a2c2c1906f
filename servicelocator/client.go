package servicelocator

import (
	"context"
	"sync"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/cmn/nlog"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/queue"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/services"
	"github.com/beamtrade/beam/services/wire"
	"github.com/teris-io/shortid"
)

// Client wraps a services.ServiceClient with the ServiceLocator session's
// login handshake and the two kinds of state spec §4.9 says must survive
// a reconnect: registered services (replayed via RegisterService) and
// account-monitor subscriptions (replayed via MonitorAccounts, re-
// enumerating fresh ADDED events per the "no diffing" rule).
type Client struct {
	inner *services.ServiceClient
	codec wire.Codec

	mu        sync.Mutex
	account   DirectoryEntry
	sessionID string

	monitorMu sync.Mutex
	queues    []*queue.Queue[AccountUpdate]
}

// New wires a Client that logs in with username/password as its
// reconnect handshake.
func New(
	sched *routines.Scheduler,
	codec wire.Codec,
	connect func(ctx context.Context) (*network.Channel, error),
	username, password string,
) *Client {
	c := &Client{codec: codec}

	slots := services.NewSlotRegistry()
	slots.RegisterRecordSlot(tagAccountUpdateMessage, c.handleAccountUpdate)

	login := func(ctx context.Context, p *services.Protocol) error {
		result, err := services.SendRequestAs[LoginResult](ctx, p, tagLoginService, loginParams{
			Username: username,
			Password: password,
		})
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.account = result.Account
		c.sessionID = result.SessionID
		c.mu.Unlock()
		return nil
	}

	c.inner = services.NewServiceClient(sched, codec, slots, connect, login)
	return c
}

// Start performs the initial connect and login.
func (c *Client) Start(ctx context.Context) error { return c.inner.Start(ctx) }

func (c *Client) Close() error { return c.inner.Close() }

func (c *Client) Account() DirectoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) protocol() (*services.Protocol, error) {
	p := c.inner.Protocol()
	if p == nil {
		return nil, cos.ErrPipeBroken
	}
	return p, nil
}

// Locate looks up services registered under name. Not remembered for
// replay - a lookup has no state to recover after a reconnect.
func (c *Client) Locate(ctx context.Context, name string) ([]ServiceEntry, error) {
	p, err := c.protocol()
	if err != nil {
		return nil, err
	}
	return services.SendRequestAs[[]ServiceEntry](ctx, p, tagLocateService, locateParams{Name: name})
}

// RegisterService adds a service to the directory and remembers the call
// so it is replayed - with the same name/properties - after every future
// reconnect (spec §4.9's "registered resources ... replayed in the order
// they were originally performed"). A short correlation id is generated
// once and reused across every replay of this registration, so a server
// that sees the same id twice knows it is the same logical registration
// surviving a reconnect rather than a duplicate.
func (c *Client) RegisterService(ctx context.Context, name string, properties map[string]any) (ServiceEntry, error) {
	correlationID, err := shortid.Generate()
	if err != nil {
		return ServiceEntry{}, cos.Wrap(err, "generate registration correlation id")
	}

	var entry ServiceEntry
	err = c.inner.Remember(ctx, func(ctx context.Context, p *services.Protocol) error {
		e, err := services.SendRequestAs[ServiceEntry](ctx, p, tagRegisterService, registerParams{
			Name:          name,
			Properties:    properties,
			CorrelationID: correlationID,
		})
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	return entry, err
}

// UnregisterService removes a previously-registered service. It is a
// one-shot request, not replayed: undoing a remembered registration is
// out of scope for the append-only replay log (see DESIGN.md).
func (c *Client) UnregisterService(ctx context.Context, id uint64) error {
	p, err := c.protocol()
	if err != nil {
		return err
	}
	_, err = services.SendRequestAs[struct{}](ctx, p, tagUnregisterService, unregisterParams{ID: id})
	return err
}

// MonitorAccounts subscribes to account lifecycle events: the server
// enumerates every currently-known account as an AccountAdded event, and
// subsequent additions/removals arrive as AccountUpdateMessage records
// fanned out to every subscribed queue. The subscription is remembered
// so a reconnect re-subscribes and re-enumerates into the SAME queue -
// consumers see this as a gap, never a close (spec §4.9 point 4).
func (c *Client) MonitorAccounts(ctx context.Context) (*queue.Queue[AccountUpdate], error) {
	q := queue.New[AccountUpdate]()
	c.monitorMu.Lock()
	c.queues = append(c.queues, q)
	c.monitorMu.Unlock()

	err := c.inner.Remember(ctx, func(ctx context.Context, p *services.Protocol) error {
		accounts, err := services.SendRequestAs[[]DirectoryEntry](ctx, p, tagMonitorAccountsService, struct{}{})
		if err != nil {
			return err
		}
		for _, a := range accounts {
			q.Push(AccountUpdate{Account: a, Type: AccountAdded})
		}
		return nil
	})
	if err != nil {
		c.removeQueue(q)
		return nil, err
	}
	return q, nil
}

// UnmonitorAccounts ends a subscription: the queue stops receiving
// updates, and the server is told via UnmonitorAccountsService. The
// queue itself is left open for the caller to drain/close.
func (c *Client) UnmonitorAccounts(ctx context.Context, q *queue.Queue[AccountUpdate]) error {
	c.removeQueue(q)
	p, err := c.protocol()
	if err != nil {
		return err
	}
	_, err = services.SendRequestAs[struct{}](ctx, p, tagUnmonitorAccountsService, struct{}{})
	return err
}

func (c *Client) removeQueue(q *queue.Queue[AccountUpdate]) {
	c.monitorMu.Lock()
	defer c.monitorMu.Unlock()
	for i, existing := range c.queues {
		if existing == q {
			c.queues = append(c.queues[:i], c.queues[i+1:]...)
			return
		}
	}
}

func (c *Client) handleAccountUpdate(p *services.Protocol, payload []byte) {
	var update AccountUpdate
	if err := c.codec.UnmarshalPayload(payload, &update); err != nil {
		nlog.Errorf("servicelocator: malformed account update message: %v", err)
		return
	}
	c.monitorMu.Lock()
	queues := append([]*queue.Queue[AccountUpdate](nil), c.queues...)
	c.monitorMu.Unlock()
	for _, q := range queues {
		q.Push(update)
	}
}
