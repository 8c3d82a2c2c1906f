package httpparse_test

import (
	"testing"

	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/httpparse"
	"github.com/stretchr/testify/require"
)

func TestRequestParserSimpleGET(t *testing.T) {
	p := httpparse.NewHttpRequestParser()
	p.Feed([]byte("GET /a/b?x=1 HTTP/1.1\r\nHost: example.com\r\nX-Foo: bar\r\n\r\n"))
	req, err := p.GetNext()
	require.NoError(t, err)
	require.NotNil(t, req)
	require.Equal(t, httpmsg.GET, req.Method)
	require.Equal(t, "/a/b", req.URI.Path)
	require.Equal(t, "x=1", req.URI.Query)
	require.Equal(t, "example.com", req.Special.Host)
	v, ok := req.GetHeader("X-Foo")
	require.True(t, ok)
	require.Equal(t, "bar", v)
}

func TestRequestParserIncrementalFeed(t *testing.T) {
	p := httpparse.NewHttpRequestParser()
	whole := "POST /submit HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"
	for i := 0; i < len(whole); i++ {
		p.Feed([]byte{whole[i]})
	}
	req, err := p.GetNext()
	require.NoError(t, err)
	require.Equal(t, "hello", string(req.Body))
}

func TestRequestParserSplitAcrossFeedsEquivalence(t *testing.T) {
	whole := []byte("GET /x HTTP/1.1\r\nHost: h\r\nContent-Length: 3\r\n\r\nabc" +
		"GET /y HTTP/1.0\r\nHost: h2\r\nContent-Length: 0\r\n\r\n")
	for split := 0; split <= len(whole); split++ {
		p := httpparse.NewHttpRequestParser()
		p.Feed(whole[:split])
		p.Feed(whole[split:])
		r1, err := p.GetNext()
		require.NoError(t, err)
		require.NotNil(t, r1)
		require.Equal(t, "/x", r1.URI.Path)
		require.Equal(t, "abc", string(r1.Body))
		r2, err := p.GetNext()
		require.NoError(t, err)
		require.NotNil(t, r2)
		require.Equal(t, "/y", r2.URI.Path)
	}
}

func TestRequestParserChunkedBody(t *testing.T) {
	p := httpparse.NewHttpRequestParser()
	p.Feed([]byte("POST /c HTTP/1.1\r\nHost: h\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"))
	req, err := p.GetNext()
	require.NoError(t, err)
	require.Equal(t, "Wikipedia", string(req.Body))
}

func TestRequestParserCookieHeader(t *testing.T) {
	p := httpparse.NewHttpRequestParser()
	p.Feed([]byte("GET / HTTP/1.1\r\nHost: h\r\nCookie: a=1; b=2\r\n\r\n"))
	req, err := p.GetNext()
	require.NoError(t, err)
	require.Len(t, req.Cookies, 2)
}

func TestRequestParserMissingSpaceAfterColonIsError(t *testing.T) {
	p := httpparse.NewHttpRequestParser()
	p.Feed([]byte("GET / HTTP/1.1\r\nHost:h\r\n\r\n"))
	_, err := p.GetNext()
	require.Error(t, err)
}

func TestRequestParserUnknownVersionIsError(t *testing.T) {
	p := httpparse.NewHttpRequestParser()
	p.Feed([]byte("GET / HTTP/2.0\r\nHost: h\r\n\r\n"))
	_, err := p.GetNext()
	require.Error(t, err)
}

func TestResponseParserNoFramingHeaderFinalizesEmptyBody(t *testing.T) {
	p := httpparse.NewHttpResponseParser()
	p.Feed([]byte("HTTP/1.1 204 No Content\r\n\r\n"))
	resp, err := p.GetNext()
	require.NoError(t, err)
	require.Equal(t, httpmsg.StatusNoContent, resp.StatusCode)
	require.Empty(t, resp.Body)
}

func TestResponseParserSetCookie(t *testing.T) {
	p := httpparse.NewHttpResponseParser()
	p.Feed([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\nSet-Cookie: s=1; path=/app; HttpOnly\r\n\r\n"))
	resp, err := p.GetNext()
	require.NoError(t, err)
	require.Len(t, resp.Cookies, 1)
	require.Equal(t, "s", resp.Cookies[0].Name)
	require.True(t, resp.Cookies[0].HttpOnly)
}

func TestResponseParserChunked(t *testing.T) {
	p := httpparse.NewHttpResponseParser()
	p.Feed([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\ntest\r\n0\r\n\r\n"))
	resp, err := p.GetNext()
	require.NoError(t, err)
	require.Equal(t, "test", string(resp.Body))
}

func TestParserReusableForPipelinedMessages(t *testing.T) {
	p := httpparse.NewHttpRequestParser()
	p.Feed([]byte("GET /1 HTTP/1.1\r\nHost: h\r\n\r\nGET /2 HTTP/1.1\r\nHost: h\r\n\r\n"))
	r1, err := p.GetNext()
	require.NoError(t, err)
	require.Equal(t, "/1", r1.URI.Path)
	r2, err := p.GetNext()
	require.NoError(t, err)
	require.Equal(t, "/2", r2.URI.Path)
	r3, err := p.GetNext()
	require.NoError(t, err)
	require.Nil(t, r3)
}
