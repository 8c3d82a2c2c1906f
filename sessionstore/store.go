// Package sessionstore implements the external-collaborator interface of
// spec §4.10: a SessionStore associates an HTTP session cookie with a
// caller-defined Session payload, generating unpredictable (crypto-random)
// session ids that cannot collide across concurrent Create calls.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package sessionstore

import (
	"sync"

	"github.com/beamtrade/beam/httpmsg"
	"github.com/google/uuid"
)

// CookieName is the cookie a SessionStore reads/writes to correlate a
// request with its Session.
const CookieName = "session"

// Entry pairs a session id with its caller-defined payload.
type Entry[S any] struct {
	ID   string
	Data S
}

// Store is the spec §4.10 interface: Get resolves (creating if absent)
// the Session for a request, injecting a Set-Cookie into resp when a
// fresh one was created; Find/Create/End are the lower-level primitives
// Get is built from.
type Store[S any] interface {
	Get(req *httpmsg.HttpRequest, resp *httpmsg.HttpResponse) (*Entry[S], error)
	Find(id string) (*Entry[S], bool)
	Create() (*Entry[S], error)
	End(id string) error
}

// MemoryStore is the in-memory Store implementation: entries live only
// for the process lifetime, keyed by a google/uuid v4 id - 122 bits of
// randomness per RFC 4122, making a collision across concurrent Create
// calls astronomically unlikely without needing its own locking beyond
// the map mutex already guarding insertion.
type MemoryStore[S any] struct {
	mu      sync.Mutex
	entries map[string]*Entry[S]
	newData func() S
}

// NewMemoryStore builds a MemoryStore whose Create calls seed each fresh
// Entry's Data via newData.
func NewMemoryStore[S any](newData func() S) *MemoryStore[S] {
	return &MemoryStore[S]{entries: make(map[string]*Entry[S]), newData: newData}
}

func (m *MemoryStore[S]) Create() (*Entry[S], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	e := &Entry[S]{ID: id, Data: m.newData()}
	m.entries[id] = e
	return e, nil
}

func (m *MemoryStore[S]) Find(id string) (*Entry[S], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *MemoryStore[S]) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore[S]) Get(req *httpmsg.HttpRequest, resp *httpmsg.HttpResponse) (*Entry[S], error) {
	if ck, ok := findCookie(req.Cookies, CookieName); ok {
		if e, found := m.Find(ck.Value); found {
			return e, nil
		}
	}
	e, err := m.Create()
	if err != nil {
		return nil, err
	}
	if resp != nil {
		resp.SetCookie(httpmsg.NewCookie(CookieName, e.ID))
	}
	return e, nil
}

func findCookie(cookies []httpmsg.Cookie, name string) (httpmsg.Cookie, bool) {
	for _, c := range cookies {
		if c.Name == name {
			return c, true
		}
	}
	return httpmsg.Cookie{}, false
}
