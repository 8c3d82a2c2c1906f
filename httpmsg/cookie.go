package httpmsg

import (
	"strings"
	"time"
)

// Cookie is the spec §3 attribute set; DefaultPath is "/" per spec.
type Cookie struct {
	Name       string
	Value      string
	Domain     string
	Path       string
	Expiration time.Time
	Secure     bool
	HttpOnly   bool
}

const DefaultCookiePath = "/"

func NewCookie(name, value string) Cookie {
	return Cookie{Name: name, Value: value, Path: DefaultCookiePath}
}

// WireRequest renders the cookie as it appears inside a request's single
// "Cookie:" header value: "name=value".
func (c Cookie) WireRequest() string {
	return c.Name + "=" + c.Value
}

// WireResponse renders the cookie as a full "Set-Cookie:" header value,
// including its attributes, per RFC 6265.
func (c Cookie) WireResponse() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte('=')
	sb.WriteString(c.Value)
	path := c.Path
	if path == "" {
		path = DefaultCookiePath
	}
	sb.WriteString("; path=")
	sb.WriteString(path)
	if c.Domain != "" {
		sb.WriteString("; domain=")
		sb.WriteString(c.Domain)
	}
	if !c.Expiration.IsZero() {
		sb.WriteString("; Expires=")
		sb.WriteString(c.Expiration.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
	}
	if c.Secure {
		sb.WriteString("; Secure")
	}
	if c.HttpOnly {
		sb.WriteString("; HttpOnly")
	}
	return sb.String()
}

// ParseRequestCookies splits a request "Cookie:" header value by "; ";
// each "k=v" token becomes Cookie(k,v); a token without "=" becomes
// Cookie("", token), per spec §4.6.
func ParseRequestCookies(header string) []Cookie {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, "; ")
	out := make([]Cookie, 0, len(parts))
	for _, p := range parts {
		if idx := strings.IndexByte(p, '='); idx >= 0 {
			out = append(out, Cookie{Name: p[:idx], Value: p[idx+1:]})
		} else {
			out = append(out, Cookie{Name: "", Value: p})
		}
	}
	return out
}

// ParseSetCookie parses a single response "Set-Cookie:" header value:
// the first "; "-delimited token is name=value, subsequent tokens are
// attributes - path, domain, HttpOnly (no value), Secure (no value),
// all case-insensitive - per spec §4.6.
func ParseSetCookie(header string) Cookie {
	parts := strings.Split(header, "; ")
	c := Cookie{Path: DefaultCookiePath}
	if len(parts) == 0 {
		return c
	}
	if idx := strings.IndexByte(parts[0], '='); idx >= 0 {
		c.Name = parts[0][:idx]
		c.Value = parts[0][idx+1:]
	} else {
		c.Name = parts[0]
	}
	for _, attr := range parts[1:] {
		lower := strings.ToLower(attr)
		switch {
		case strings.HasPrefix(lower, "path="):
			c.Path = attr[len("path="):]
		case strings.HasPrefix(lower, "domain="):
			c.Domain = attr[len("domain="):]
		case lower == "httponly":
			c.HttpOnly = true
		case lower == "secure":
			c.Secure = true
		}
	}
	return c
}
