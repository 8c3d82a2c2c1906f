// Package httpclient implements the HttpClient of spec §4.8: a
// connection pool of size one, keyed by (hostname, port), with a
// per-host cookie jar and a single retry-once-on-write-failure policy.
// Channel construction is delegated to an injected builder so plain TCP,
// TLS, or test in-memory channels can be plugged in - grounded on the
// teacher's client.Client interface (api/client.go) keeping transport
// construction behind an injectable seam rather than hardcoding net/http.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package httpclient

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/httpparse"
	"github.com/beamtrade/beam/network"
)

// ChannelBuilder constructs a Channel connected to addr ("host:port").
type ChannelBuilder func(ctx context.Context, addr string) (*network.Channel, error)

type endpoint struct {
	host string
	port int
}

func (e endpoint) addr() string { return e.host + ":" + strconv.Itoa(e.port) }

// HttpClient keeps one cached channel per client instance (spec §4.8).
// Send holds the client's mutex for the whole request/response exchange,
// so concurrent Send calls on one client run one after another rather
// than interleaving; callers that want requests in parallel create one
// HttpClient per logical connection.
type HttpClient struct {
	build ChannelBuilder

	mu       sync.Mutex
	end      endpoint
	hasEnd   bool
	channel  *network.Channel
	parser   *httpparse.HttpResponseParser
	jar      map[string]map[string]httpmsg.Cookie // host -> name -> cookie
}

func New(build ChannelBuilder) *HttpClient {
	return &HttpClient{build: build, jar: make(map[string]map[string]httpmsg.Cookie)}
}

// Send implements spec §4.8's seven-step send algorithm.
func (c *HttpClient) Send(ctx context.Context, req *httpmsg.HttpRequest) (*httpmsg.HttpResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	end := endpoint{host: req.URI.Hostname, port: req.URI.Port}
	if c.hasEnd && c.end != end {
		c.dropChannel()
	}

	outgoing := c.mergeCookies(req)
	wire := httpmsg.EncodeRequest(outgoing)

	freshlyCreated := c.channel == nil
	if c.channel == nil {
		if err := c.connect(ctx, end); err != nil {
			return nil, err
		}
	}

	if err := c.channel.Writer().Write(ctx, wire); err != nil {
		c.dropChannel()
		if freshlyCreated {
			return nil, err
		}
		if err := c.connect(ctx, end); err != nil {
			return nil, err
		}
		if err := c.channel.Writer().Write(ctx, wire); err != nil {
			c.dropChannel()
			return nil, err
		}
	}

	resp, err := c.readResponse(ctx)
	if err != nil {
		c.dropChannel()
		return nil, err
	}

	if conn, ok := resp.GetHeader("Connection"); (ok && !strings.EqualFold(conn, "keep-alive")) ||
		(!ok && !outgoing.Version.IsOneDotOne()) {
		c.dropChannel()
	}

	c.mergeResponseCookies(end.host, resp)
	return resp, nil
}

func (c *HttpClient) connect(ctx context.Context, end endpoint) error {
	ch, err := c.build(ctx, end.addr())
	if err != nil {
		return err
	}
	c.channel = ch
	c.end = end
	c.hasEnd = true
	c.parser = httpparse.NewHttpResponseParser()
	return nil
}

func (c *HttpClient) dropChannel() {
	if c.channel != nil {
		c.channel.Close()
	}
	c.channel = nil
	c.parser = nil
}

func (c *HttpClient) readResponse(ctx context.Context) (*httpmsg.HttpResponse, error) {
	scratch := cos.NewSharedBuffer(cos.NewBuffer(4096))
	for {
		if resp, err := c.parser.GetNext(); err != nil {
			return nil, err
		} else if resp != nil {
			return resp, nil
		}
		scratch.Buffer().Reset()
		n, err := c.channel.Reader().Read(ctx, scratch, 4096)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			c.parser.Feed(scratch.Buffer().Data())
		}
	}
}

// mergeCookies clones req and overlays the host's stored cookies - spec
// §9's resolved open question: the stored (jar) value wins over a
// request cookie of the same name.
func (c *HttpClient) mergeCookies(req *httpmsg.HttpRequest) *httpmsg.HttpRequest {
	stored := c.jar[req.URI.Hostname]
	if len(stored) == 0 {
		return req
	}
	clone := *req
	clone.Cookies = make([]httpmsg.Cookie, 0, len(req.Cookies)+len(stored))
	for _, ck := range req.Cookies {
		if _, overridden := stored[ck.Name]; !overridden {
			clone.Cookies = append(clone.Cookies, ck)
		}
	}
	for name, ck := range stored {
		_ = name
		clone.Cookies = append(clone.Cookies, ck)
	}
	return &clone
}

func (c *HttpClient) mergeResponseCookies(host string, resp *httpmsg.HttpResponse) {
	if len(resp.Cookies) == 0 {
		return
	}
	byName, ok := c.jar[host]
	if !ok {
		byName = make(map[string]httpmsg.Cookie)
		c.jar[host] = byName
	}
	for _, ck := range resp.Cookies {
		byName[ck.Name] = ck
	}
}
