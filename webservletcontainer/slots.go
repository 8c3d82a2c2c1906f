package webservletcontainer

import (
	"strings"

	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/sessionstore"
)

// Predicate decides whether a request matches a slot's registration
// condition - the Go equivalent of HttpRequestPredicate.
type Predicate func(req *httpmsg.HttpRequest) bool

// MethodPath matches an exact method and exact path, the common case for
// a servlet endpoint.
func MethodPath(method httpmsg.Method, path string) Predicate {
	return func(req *httpmsg.HttpRequest) bool {
		return req.Method == method && req.URI.Path == path
	}
}

// PathPrefix matches any method against a path prefix.
func PathPrefix(prefix string) Predicate {
	return func(req *httpmsg.HttpRequest) bool {
		return strings.HasPrefix(req.URI.Path, prefix)
	}
}

// Handler serves one request within its resolved Session, writing the
// result into resp. Grounded on HttpSessionRequestSlot::Slot's
// (session, request, response) signature.
type Handler[S any] func(session *sessionstore.Entry[S], req *httpmsg.HttpRequest, resp *httpmsg.HttpResponse)

type slot[S any] struct {
	predicate Predicate
	handler   Handler[S]
}
