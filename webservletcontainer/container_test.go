package webservletcontainer_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/httpparse"
	"github.com/beamtrade/beam/network"
	"github.com/beamtrade/beam/network/pipe"
	"github.com/beamtrade/beam/routines"
	"github.com/beamtrade/beam/sessionstore"
	"github.com/beamtrade/beam/webservletcontainer"
	"github.com/stretchr/testify/require"
)

type counterSession struct {
	Hits int
}

// queueAcceptor hands out pre-created Channels one at a time, standing
// in for a real Listener in tests.
type queueAcceptor struct {
	ch     chan *network.Channel
	closed chan struct{}
}

func newQueueAcceptor() *queueAcceptor {
	return &queueAcceptor{ch: make(chan *network.Channel, 8), closed: make(chan struct{})}
}

func (a *queueAcceptor) offer(ch *network.Channel) { a.ch <- ch }

func (a *queueAcceptor) Accept() (*network.Channel, error) {
	select {
	case ch := <-a.ch:
		return ch, nil
	case <-a.closed:
		return nil, cos.ErrEndOfFile
	}
}

func (a *queueAcceptor) Close() error {
	close(a.closed)
	return nil
}

func newServer(t *testing.T) (*webservletcontainer.Container[counterSession], *queueAcceptor, context.Context) {
	sched := routines.New(4)
	ctx := routines.ExternalContext(context.Background())
	acceptor := newQueueAcceptor()
	store := sessionstore.NewMemoryStore(func() counterSession { return counterSession{} })
	c := webservletcontainer.New[counterSession](sched, acceptor, store)
	c.Serve(ctx)
	return c, acceptor, ctx
}

func roundTrip(t *testing.T, ctx context.Context, client *network.Channel, req *httpmsg.HttpRequest) *httpmsg.HttpResponse {
	require.NoError(t, client.Writer().Write(ctx, httpmsg.EncodeRequest(req)))

	parser := httpparse.NewHttpResponseParser()
	buf := cos.NewSharedBuffer(cos.NewBuffer(4096))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := parser.GetNext()
		require.NoError(t, err)
		if resp != nil {
			return resp
		}
		buf.Buffer().Reset()
		n, err := client.Reader().Read(ctx, buf, 4096)
		require.NoError(t, err)
		if n > 0 {
			parser.Feed(buf.Buffer().Data())
		}
	}
	t.Fatal("timed out waiting for response")
	return nil
}

func get(path string) *httpmsg.HttpRequest {
	uri := httpmsg.URI{Scheme: "http", Hostname: "localhost", Path: path}
	return httpmsg.NewHttpRequest(httpmsg.Version11, httpmsg.GET, uri, nil, nil, nil)
}

func TestSlotDispatchAndSessionCookieInjected(t *testing.T) {
	c, acceptor, ctx := newServer(t)
	c.Handle(webservletcontainer.MethodPath(httpmsg.GET, "/ping"), func(session *sessionstore.Entry[counterSession], req *httpmsg.HttpRequest, resp *httpmsg.HttpResponse) {
		session.Data.Hits++
		resp.SetBody([]byte("pong"))
	})

	client, server := pipe.New()
	acceptor.offer(server)

	resp := roundTrip(t, ctx, client, get("/ping"))
	require.Equal(t, httpmsg.StatusOK, resp.StatusCode)
	require.Equal(t, "pong", string(resp.Body))
	require.Len(t, resp.Cookies, 1)
	require.Equal(t, sessionstore.CookieName, resp.Cookies[0].Name)
}

func TestSessionPersistsAcrossPipelinedRequests(t *testing.T) {
	c, acceptor, ctx := newServer(t)
	c.Handle(webservletcontainer.MethodPath(httpmsg.GET, "/ping"), func(session *sessionstore.Entry[counterSession], req *httpmsg.HttpRequest, resp *httpmsg.HttpResponse) {
		session.Data.Hits++
		resp.SetBody([]byte("hits"))
	})

	client, server := pipe.New()
	acceptor.offer(server)

	first := roundTrip(t, ctx, client, get("/ping"))
	require.Len(t, first.Cookies, 1)
	sessionID := first.Cookies[0].Value

	req := get("/ping")
	req.Cookies = []httpmsg.Cookie{{Name: sessionstore.CookieName, Value: sessionID}}
	second := roundTrip(t, ctx, client, req)
	require.Empty(t, second.Cookies)
}

func TestUnmatchedRequestFallsBackToNotFound(t *testing.T) {
	_, acceptor, ctx := newServer(t)
	client, server := pipe.New()
	acceptor.offer(server)

	resp := roundTrip(t, ctx, client, get("/nothing-here"))
	require.Equal(t, httpmsg.StatusNotFound, resp.StatusCode)
}

func TestFileStoreFallbackServesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>hi</h1>"), 0o644))

	c, acceptor, ctx := newServer(t)
	fs := webservletcontainer.NewFileStore(dir, nil)
	c.SetFallback(webservletcontainer.FileStoreHandler[counterSession](fs))

	client, server := pipe.New()
	acceptor.offer(server)

	resp := roundTrip(t, ctx, client, get("/index.html"))
	require.Equal(t, httpmsg.StatusOK, resp.StatusCode)
	require.Equal(t, "<h1>hi</h1>", string(resp.Body))
	ct, ok := resp.GetHeader("Content-Type")
	require.True(t, ok)
	require.Equal(t, "text/html", ct)
}

func TestFileStoreMissingFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	c, acceptor, ctx := newServer(t)
	fs := webservletcontainer.NewFileStore(dir, nil)
	c.SetFallback(webservletcontainer.FileStoreHandler[counterSession](fs))

	client, server := pipe.New()
	acceptor.offer(server)

	resp := roundTrip(t, ctx, client, get("/missing.txt"))
	require.Equal(t, httpmsg.StatusNotFound, resp.StatusCode)
}

type fakeHTTPMetrics struct {
	mu      sync.Mutex
	served  int
	methods []string
	statuses []string
}

func (f *fakeHTTPMetrics) RequestServed(method, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.served++
	f.methods = append(f.methods, method)
	f.statuses = append(f.statuses, status)
}

func TestSetMetricsRecordsEachDispatchedRequest(t *testing.T) {
	c, acceptor, ctx := newServer(t)
	metrics := &fakeHTTPMetrics{}
	c.SetMetrics(metrics)
	c.Handle(webservletcontainer.MethodPath(httpmsg.GET, "/ping"), func(session *sessionstore.Entry[counterSession], req *httpmsg.HttpRequest, resp *httpmsg.HttpResponse) {
		resp.SetBody([]byte("pong"))
	})

	client, server := pipe.New()
	acceptor.offer(server)

	roundTrip(t, ctx, client, get("/ping"))
	roundTrip(t, ctx, client, get("/missing"))

	require.Eventually(t, func() bool {
		metrics.mu.Lock()
		defer metrics.mu.Unlock()
		return metrics.served == 2
	}, 2*time.Second, time.Millisecond)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.Equal(t, []string{"GET", "GET"}, metrics.methods)
	require.Equal(t, []string{"200", "404"}, metrics.statuses)
}

func TestContentTypePatternsDefaults(t *testing.T) {
	p := webservletcontainer.DefaultContentTypePatterns()
	require.Equal(t, "text/css", p.ContentType("style.css"))
	require.Equal(t, "text/html", p.ContentType("index.html"))
	require.Equal(t, "application/octet-stream", p.ContentType("blob.bin"))
}
