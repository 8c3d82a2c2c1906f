package httpmsg

import (
	"strconv"
	"strings"
)

// EncodeRequest writes the wire form of spec §4.7: request-line (method,
// URI path or "/" if empty, optional "?query" for GET, version) CRLF;
// each generic header "Name: Value" CRLF; if cookies is non-empty, a
// single "Cookie: k1=v1; k2=v2; ..." CRLF; then the three framing lines
// Host/Content-Length/Connection CRLF each; then CRLF; then body.
func EncodeRequest(r *HttpRequest) []byte {
	var sb strings.Builder

	sb.WriteString(r.Method.String())
	sb.WriteByte(' ')
	path := r.URI.Path
	if path == "" {
		path = "/"
	}
	sb.WriteString(path)
	if r.Method == GET && r.URI.Query != "" {
		sb.WriteByte('?')
		sb.WriteString(r.URI.Query)
	}
	sb.WriteByte(' ')
	sb.WriteString(r.Version.String())
	sb.WriteString("\r\n")

	for _, h := range r.headers.All() {
		sb.WriteString(h.Name)
		sb.WriteString(": ")
		sb.WriteString(h.Value)
		sb.WriteString("\r\n")
	}

	if len(r.Cookies) > 0 {
		parts := make([]string, len(r.Cookies))
		for i, c := range r.Cookies {
			parts[i] = c.WireRequest()
		}
		sb.WriteString("Cookie: ")
		sb.WriteString(strings.Join(parts, "; "))
		sb.WriteString("\r\n")
	}

	sb.WriteString("Host: ")
	sb.WriteString(r.Special.Host)
	sb.WriteString("\r\n")
	sb.WriteString("Content-Length: ")
	sb.WriteString(strconv.Itoa(r.Special.ContentLength))
	sb.WriteString("\r\n")
	sb.WriteString("Connection: ")
	sb.WriteString(r.Special.Connection.String())
	sb.WriteString("\r\n\r\n")

	out := make([]byte, 0, sb.Len()+len(r.Body))
	out = append(out, sb.String()...)
	out = append(out, r.Body...)
	return out
}

// EncodeResponse writes status-line, each header, each cookie as its own
// "Set-Cookie: ..." line, CRLF, then body - spec §4.7.
func EncodeResponse(r *HttpResponse) []byte {
	var sb strings.Builder

	sb.WriteString(r.Version.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(int(r.StatusCode)))
	sb.WriteByte(' ')
	sb.WriteString(r.StatusCode.ReasonPhrase())
	sb.WriteString("\r\n")

	sb.WriteString("Content-Length: ")
	sb.WriteString(strconv.Itoa(len(r.Body)))
	sb.WriteString("\r\n")

	for _, h := range r.headers.All() {
		sb.WriteString(h.Name)
		sb.WriteString(": ")
		sb.WriteString(h.Value)
		sb.WriteString("\r\n")
	}

	for _, c := range r.Cookies {
		sb.WriteString("Set-Cookie: ")
		sb.WriteString(c.WireResponse())
		sb.WriteString("\r\n")
	}

	sb.WriteString("\r\n")

	out := make([]byte, 0, sb.Len()+len(r.Body))
	out = append(out, sb.String()...)
	out = append(out, r.Body...)
	return out
}
