package httpmsg

import "strconv"

// HttpResponse is spec §3's {version, status_code, headers, cookies,
// body} aggregate. The default constructor's status is OK, with
// Content-Length: 0 and Connection: keep-alive.
type HttpResponse struct {
	Version    Version
	StatusCode StatusCode
	Cookies    []Cookie
	Body       []byte
	headers    headerList
}

func NewHttpResponse() *HttpResponse {
	r := &HttpResponse{Version: Version11, StatusCode: StatusOK}
	r.headers.Set("Connection", ConnectionKeepAlive.String())
	return r
}

// NewParsedResponse builds an HttpResponse directly from already-parsed
// wire fields, bypassing NewHttpResponse's default-header seeding - used
// by HttpResponseParser.finalize, which already has the real Connection
// header (or its absence) from the wire.
func NewParsedResponse(version Version, status StatusCode, headers []Header, cookies []Cookie, body []byte) *HttpResponse {
	r := &HttpResponse{Version: version, StatusCode: status, Cookies: cookies, Body: body}
	for _, h := range headers {
		r.headers.Set(h.Name, h.Value)
	}
	return r
}

func (r *HttpResponse) SetHeader(name, value string) { r.headers.Set(name, value) }
func (r *HttpResponse) Headers() []Header            { return r.headers.All() }

func (r *HttpResponse) GetHeader(name string) (string, bool) {
	if name == "Content-Length" {
		return strconv.Itoa(len(r.Body)), true
	}
	return r.headers.Get(name)
}

// SetBody replaces the body and keeps Content-Length in sync.
func (r *HttpResponse) SetBody(body []byte) {
	r.Body = body
}

// SetCookie upserts a cookie by name, matching spec §3's "replace the
// entry with matching name if one exists, else append" rule while
// preserving insertion order for the entries that survive.
func (r *HttpResponse) SetCookie(c Cookie) {
	for i := range r.Cookies {
		if r.Cookies[i].Name == c.Name {
			r.Cookies[i] = c
			return
		}
	}
	r.Cookies = append(r.Cookies, c)
}
