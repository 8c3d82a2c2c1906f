package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/network/pipe"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/services"
	"github.com/beamtrade/beam/services/wire"
	"github.com/stretchr/testify/require"
)

type echoParams struct {
	Text string `json:"text"`
}

type echoResult struct {
	Text string `json:"text"`
}

func newPair(t *testing.T) (sched *routines.Scheduler, clientProto, serverProto *services.Protocol, ctx context.Context) {
	sched = routines.New(4)
	ctx = routines.ExternalContext(context.Background())
	a, b := pipe.New()

	serverSlots := services.NewSlotRegistry()
	serverSlots.RegisterRequestSlot("Echo", func(token *services.RequestToken, payload []byte) {
		var p echoParams
		require.NoError(t, wire.JSONCodec{}.UnmarshalPayload(payload, &p))
		if p.Text == "fail" {
			token.SetException(ctx, &cos.ServiceRequestError{Message: "refused"})
			return
		}
		token.SetResult(ctx, echoResult{Text: p.Text})
	})

	clientSlots := services.NewSlotRegistry()
	serverProto = services.NewProtocol(sched, b, wire.JSONCodec{}, serverSlots)
	clientProto = services.NewProtocol(sched, a, wire.JSONCodec{}, clientSlots)
	serverProto.Serve(ctx)
	clientProto.Serve(ctx)
	return sched, clientProto, serverProto, ctx
}

func TestRequestResponseRoundTrip(t *testing.T) {
	_, client, _, ctx := newPair(t)
	result, err := services.SendRequestAs[echoResult](ctx, client, "Echo", echoParams{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, "hello", result.Text)
}

func TestRequestExceptionRethrown(t *testing.T) {
	_, client, _, ctx := newPair(t)
	_, err := services.SendRequestAs[echoResult](ctx, client, "Echo", echoParams{Text: "fail"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "refused")
}

func TestUnknownTagReturnsServiceRequestError(t *testing.T) {
	_, client, _, ctx := newPair(t)
	_, err := services.SendRequestAs[echoResult](ctx, client, "NoSuchTag", echoParams{Text: "x"})
	require.Error(t, err)
	var svcErr *cos.ServiceRequestError
	require.ErrorAs(t, err, &svcErr)
}

func TestRecordDelivery(t *testing.T) {
	sched := routines.New(2)
	ctx := routines.ExternalContext(context.Background())
	a, b := pipe.New()

	received := make(chan string, 1)
	serverSlots := services.NewSlotRegistry()
	serverSlots.RegisterRecordSlot("Ping", func(p *services.Protocol, payload []byte) {
		var m echoParams
		_ = wire.JSONCodec{}.UnmarshalPayload(payload, &m)
		received <- m.Text
	})
	server := services.NewProtocol(sched, b, wire.JSONCodec{}, serverSlots)
	client := services.NewProtocol(sched, a, wire.JSONCodec{}, services.NewSlotRegistry())
	server.Serve(ctx)
	client.Serve(ctx)

	require.NoError(t, client.SendRecord(ctx, "Ping", echoParams{Text: "hi"}))

	select {
	case text := <-received:
		require.Equal(t, "hi", text)
	case <-time.After(2 * time.Second):
		t.Fatal("record was never delivered")
	}
}

func TestClosingChannelBreaksPendingRequest(t *testing.T) {
	sched := routines.New(2)
	ctx := routines.ExternalContext(context.Background())
	a, b := pipe.New()

	// Server side registers the slot but never responds, then closes.
	block := make(chan struct{})
	serverSlots := services.NewSlotRegistry()
	serverSlots.RegisterRequestSlot("Hang", func(token *services.RequestToken, payload []byte) {
		<-block
	})
	server := services.NewProtocol(sched, b, wire.JSONCodec{}, serverSlots)
	client := services.NewProtocol(sched, a, wire.JSONCodec{}, services.NewSlotRegistry())
	server.Serve(ctx)
	client.Serve(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := services.SendRequestAs[echoResult](ctx, client, "Hang", echoParams{Text: "x"})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, a.Close())
	close(block)

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pending request was never broken by channel close")
	}
}

func TestServiceClientReplaysRegistrationsAfterReconnect(t *testing.T) {
	sched := routines.New(4)
	ctx := routines.ExternalContext(context.Background())

	var serverSides []*network.Channel
	connectCount := 0
	connect := func(ctx context.Context) (*network.Channel, error) {
		a, b := pipe.New()
		serverSides = append(serverSides, b)
		connectCount++
		return a, nil
	}

	registerCalls := make(chan string, 8)
	serverSlotsFor := func(ch *network.Channel) *services.Protocol {
		slots := services.NewSlotRegistry()
		slots.RegisterRequestSlot("Register", func(token *services.RequestToken, payload []byte) {
			var p echoParams
			_ = wire.JSONCodec{}.UnmarshalPayload(payload, &p)
			registerCalls <- p.Text
			token.SetResult(ctx, echoResult{Text: p.Text})
		})
		proto := services.NewProtocol(sched, ch, wire.JSONCodec{}, slots)
		proto.Serve(ctx)
		return proto
	}

	client := services.NewServiceClient(sched, wire.JSONCodec{}, services.NewSlotRegistry(), func(ctx context.Context) (*network.Channel, error) {
		ch, err := connect(ctx)
		if err != nil {
			return nil, err
		}
		serverSlotsFor(serverSides[len(serverSides)-1])
		return ch, nil
	}, nil)
	metrics := &fakeServiceMetrics{}
	client.SetMetrics(metrics)

	require.NoError(t, client.Start(ctx))

	require.NoError(t, client.Remember(ctx, func(ctx context.Context, p *services.Protocol) error {
		_, err := services.SendRequestAs[echoResult](ctx, p, "Register", echoParams{Text: "A"})
		return err
	}))
	require.NoError(t, client.Remember(ctx, func(ctx context.Context, p *services.Protocol) error {
		_, err := services.SendRequestAs[echoResult](ctx, p, "Register", echoParams{Text: "B"})
		return err
	}))

	require.Equal(t, "A", <-registerCalls)
	require.Equal(t, "B", <-registerCalls)

	// Forcibly break the connection; the client should reconnect and
	// replay "A" then "B" again, in order, against the new Channel.
	require.NoError(t, client.Protocol().Channel().Close())

	require.Equal(t, "A", <-registerCalls)
	require.Equal(t, "B", <-registerCalls)

	require.NoError(t, client.Close())

	require.Eventually(t, func() bool {
		metrics.mu.Lock()
		defer metrics.mu.Unlock()
		return metrics.attempts >= 1 && metrics.successes >= 1
	}, 2*time.Second, time.Millisecond)
}

type fakeServiceMetrics struct {
	mu        sync.Mutex
	attempts  int
	successes int
}

func (f *fakeServiceMetrics) ReconnectAttempt() { f.mu.Lock(); f.attempts++; f.mu.Unlock() }
func (f *fakeServiceMetrics) ReconnectSucceeded() {
	f.mu.Lock()
	f.successes++
	f.mu.Unlock()
}
