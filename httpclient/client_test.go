package httpclient_test

import (
	"context"
	"testing"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/httpclient"
	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/httpparse"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/network/pipe"
	"github.com/stretchr/testify/require"
)

// fakeServer reads one request per Send call and writes back a canned
// response, echoing whatever Set-Cookie its caller staged.
type fakeServer struct {
	ch         *network.Channel
	parser     *httpparse.HttpRequestParser
	setCookies []httpmsg.Cookie
	bodyToSend []byte
}

func newFakeServer(ch *network.Channel) *fakeServer {
	return &fakeServer{ch: ch, parser: httpparse.NewHttpRequestParser()}
}

func (s *fakeServer) serveOne(t *testing.T) *httpmsg.HttpRequest {
	ctx := context.Background()
	buf := cos.NewSharedBuffer(cos.NewBuffer(4096))
	for {
		req, err := s.parser.GetNext()
		require.NoError(t, err)
		if req != nil {
			resp := httpmsg.NewHttpResponse()
			for _, c := range s.setCookies {
				resp.SetCookie(c)
			}
			resp.SetBody(s.bodyToSend)
			require.NoError(t, s.ch.Writer().Write(ctx, httpmsg.EncodeResponse(resp)))
			return req
		}
		buf.Buffer().Reset()
		n, err := s.ch.Reader().Read(ctx, buf, 4096)
		require.NoError(t, err)
		if n > 0 {
			s.parser.Feed(buf.Buffer().Data())
		}
	}
}

// pipeBuilder returns a ChannelBuilder backed by an in-memory pipe, and a
// channel delivering the server-side half of each pair it creates.
func pipeBuilder() (httpclient.ChannelBuilder, <-chan *network.Channel) {
	serverSides := make(chan *network.Channel, 4)
	build := func(ctx context.Context, addr string) (*network.Channel, error) {
		a, b := pipe.New()
		serverSides <- b
		return a, nil
	}
	return build, serverSides
}

func TestHttpClientSendAndReceive(t *testing.T) {
	build, serverSides := pipeBuilder()
	client := httpclient.New(build)

	uri, err := httpmsg.ParseURI("http://example.com/hello")
	require.NoError(t, err)
	req := httpmsg.NewHttpRequest(httpmsg.Version11, httpmsg.GET, uri, nil, nil, nil)

	done := make(chan *httpmsg.HttpRequest, 1)
	go func() {
		server := <-serverSides
		fs := newFakeServer(server)
		fs.bodyToSend = []byte("world")
		done <- fs.serveOne(t)
	}()

	resp, err := client.Send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "world", string(resp.Body))

	received := <-done
	require.Equal(t, "/hello", received.URI.Path)
}

func TestHttpClientCookieJarRoundTrip(t *testing.T) {
	build, serverSides := pipeBuilder()
	client := httpclient.New(build)

	uri, _ := httpmsg.ParseURI("http://example.com/login")
	req := httpmsg.NewHttpRequest(httpmsg.Version11, httpmsg.GET, uri, nil, nil, nil)

	go func() {
		server := <-serverSides
		fs := newFakeServer(server)
		fs.setCookies = []httpmsg.Cookie{httpmsg.NewCookie("session", "abc123")}
		fs.serveOne(t)
	}()

	resp, err := client.Send(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Cookies, 1)
	require.Equal(t, "abc123", resp.Cookies[0].Value)
}
