package httpmsg

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// HttpRequest is spec §3's {version, method, uri, headers,
// special_headers, cookies, body} aggregate, with the construction-time
// invariants spelled out there.
type HttpRequest struct {
	Version        Version
	Method         Method
	URI            URI
	Special        SpecialHeaders
	Cookies        []Cookie
	Body           []byte
	headers        headerList
}

// NewHttpRequest builds a request applying every spec §3 construction
// invariant: Host derives from uri unless headers already set it
// explicitly, a POST with a non-empty query moves the query into the
// body as application/x-www-form-urlencoded, URI credentials inject a
// Basic Authorization header, and Content-Length always matches the
// final body size.
func NewHttpRequest(version Version, method Method, uri URI, headers []Header, cookies []Cookie, body []byte) *HttpRequest {
	r := &HttpRequest{Version: version, Method: method, URI: uri, Cookies: cookies}
	host := uri.Hostname
	conn, connSet := "", false
	for _, h := range headers {
		switch {
		case strings.EqualFold(h.Name, "Host"):
			host = h.Value
		case strings.EqualFold(h.Name, "Connection"):
			conn, connSet = h.Value, true
		case strings.EqualFold(h.Name, "Content-Length"):
			// recomputed from the final body below
		default:
			r.headers.Set(h.Name, h.Value)
		}
	}

	r.Special.Host = host

	if method == POST && uri.Query != "" {
		body = []byte(uri.Query)
		r.URI.Query = ""
		r.headers.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	r.Body = body
	r.Special.ContentLength = len(body)

	if uri.Username != "" {
		token := base64.StdEncoding.EncodeToString([]byte(uri.Username + ":" + uri.Password))
		r.headers.Set("Authorization", "Basic "+token)
	}

	if connSet {
		r.Special.Connection = ParseConnectionValue(conn)
	} else if version.IsOneDotOne() {
		r.Special.Connection = ConnectionKeepAlive
	} else {
		r.Special.Connection = ConnectionClose
	}

	return r
}

// NewParsedRequest builds an HttpRequest directly from already-parsed
// wire fields, without re-applying NewHttpRequest's outgoing-request
// construction invariants (query-into-body, Basic-auth injection) -
// used by HttpRequestParser.finalize, which is reconstructing exactly
// what arrived on the wire.
func NewParsedRequest(version Version, method Method, path, query string, headers []Header, special SpecialHeaders, cookies []Cookie, body []byte) *HttpRequest {
	r := &HttpRequest{Version: version, Method: method, Special: special, Cookies: cookies, Body: body}
	r.URI = URI{Path: path, Query: query, Hostname: special.Host}
	for _, h := range headers {
		r.headers.Set(h.Name, h.Value)
	}
	return r
}

func (r *HttpRequest) SetHeader(name, value string) { r.headers.Set(name, value) }
func (r *HttpRequest) Headers() []Header            { return r.headers.All() }

// GetHeader returns the synthesized value for Content-Length/Connection/
// Host from SpecialHeaders even when no explicit Header entry exists,
// per spec §3; any other name looks up the generic header list.
func (r *HttpRequest) GetHeader(name string) (string, bool) {
	switch name {
	case "Content-Length":
		return strconv.Itoa(r.Special.ContentLength), true
	case "Connection":
		return r.Special.Connection.String(), true
	case "Host":
		return r.Special.Host, true
	default:
		return r.headers.Get(name)
	}
}

func (r *HttpRequest) SetBody(body []byte) {
	r.Body = body
	r.Special.ContentLength = len(body)
}
