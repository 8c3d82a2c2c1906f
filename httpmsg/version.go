// Package httpmsg implements the HTTP value types of spec §3: Version,
// Method, StatusCode, URI, Cookie, Header, HttpRequest and HttpResponse,
// plus the request/response wire encoders of spec §4.7.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package httpmsg

import "fmt"

// Version carries the HTTP major/minor pair. Only 1.0 and 1.1 are
// accepted on the wire (spec §4.6); the type itself is unconstrained so
// callers can construct either.
type Version struct {
	Major, Minor int
}

var (
	Version10 = Version{1, 0}
	Version11 = Version{1, 1}
)

func (v Version) String() string { return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor) }

func (v Version) IsOneDotOne() bool { return v.Major == 1 && v.Minor == 1 }

// ParseVersion accepts exactly "HTTP/1.0" or "HTTP/1.1"; anything else is
// rejected, matching spec §4.6's framing rule.
func ParseVersion(s string) (Version, bool) {
	switch s {
	case "HTTP/1.0":
		return Version10, true
	case "HTTP/1.1":
		return Version11, true
	default:
		return Version{}, false
	}
}
