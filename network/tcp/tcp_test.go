package tcp_test

import (
	"context"
	"net"
	"testing"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/network/tcp"
	"github.com/stretchr/testify/require"
)

func TestDialAndRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan *network.Channel, 1)
	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		accepted <- tcp.NewChannel(network.StringIdentifier("server"), conn)
	}()

	ctx := context.Background()
	client, err := tcp.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	server := <-accepted

	require.NoError(t, client.Writer().Write(ctx, []byte("ping")))

	buf := cos.NewSharedBuffer(cos.NewBuffer(16))
	n, err := server.Reader().Read(ctx, buf, 16)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "ping", string(buf.Buffer().Data()))

	require.NoError(t, client.Close())
	require.NoError(t, server.Close())
}

func TestListenAndAccept(t *testing.T) {
	ln, err := tcp.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan *network.Channel, 1)
	go func() {
		server, err := ln.Accept()
		require.NoError(t, err)
		accepted <- server
	}()

	ctx := context.Background()
	client, err := tcp.Dial(ctx, ln.Addr())
	require.NoError(t, err)
	server := <-accepted

	require.NoError(t, client.Writer().Write(ctx, []byte("hi")))
	buf := cos.NewSharedBuffer(cos.NewBuffer(16))
	n, err := server.Reader().Read(ctx, buf, 16)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, client.Close())
	require.NoError(t, server.Close())
}

func TestClosedConnectionBreaksWrite(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, _ := ln.Accept()
		if conn != nil {
			conn.Close()
		}
	}()

	ctx := context.Background()
	client, err := tcp.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	err = client.Writer().Write(ctx, []byte("x"))
	require.ErrorIs(t, err, cos.ErrPipeBroken)
}
