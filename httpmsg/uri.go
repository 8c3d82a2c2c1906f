package httpmsg

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/beamtrade/beam/cmn/cos"
)

// URI is the parsed {scheme, username, password, hostname, port, path,
// query, fragment} tuple of spec §3, with default ports 80 (http/ws) and
// 443 (https/wss) filled in when the input omits one.
type URI struct {
	Scheme   string
	Username string
	Password string
	Hostname string
	Port     int
	Path     string
	Query    string
	Fragment string
}

func defaultPort(scheme string) int {
	switch strings.ToLower(scheme) {
	case "https", "wss":
		return 443
	default:
		return 80
	}
}

// ParseURI parses raw per spec §3; malformed input returns
// cos.MalformedURIError.
func ParseURI(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return URI{}, &cos.MalformedURIError{Input: raw}
	}
	out := URI{
		Scheme:   u.Scheme,
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}
	if u.User != nil {
		out.Username = u.User.Username()
		out.Password, _ = u.User.Password()
	}
	host := u.Hostname()
	if host == "" {
		return URI{}, &cos.MalformedURIError{Input: raw}
	}
	out.Hostname = host
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return URI{}, &cos.MalformedURIError{Input: raw}
		}
		out.Port = port
	} else {
		out.Port = defaultPort(out.Scheme)
	}
	return out, nil
}

// String reassembles the URI into its textual form.
func (u URI) String() string {
	var sb strings.Builder
	if u.Scheme != "" {
		sb.WriteString(u.Scheme)
		sb.WriteString("://")
	}
	if u.Username != "" {
		sb.WriteString(u.Username)
		if u.Password != "" {
			sb.WriteByte(':')
			sb.WriteString(u.Password)
		}
		sb.WriteByte('@')
	}
	sb.WriteString(u.Hostname)
	if u.Port != 0 && u.Port != defaultPort(u.Scheme) {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(u.Port))
	}
	sb.WriteString(u.Path)
	if u.Query != "" {
		sb.WriteByte('?')
		sb.WriteString(u.Query)
	}
	if u.Fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(u.Fragment)
	}
	return sb.String()
}
