package sessionstore_test

import (
	"testing"

	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/sessionstore"
	"github.com/stretchr/testify/require"
)

type sessionData struct {
	LoginCount int
}

func TestCreateFindEnd(t *testing.T) {
	store := sessionstore.NewMemoryStore(func() sessionData { return sessionData{} })

	entry, err := store.Create()
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)

	found, ok := store.Find(entry.ID)
	require.True(t, ok)
	require.Same(t, entry, found)

	require.NoError(t, store.End(entry.ID))
	_, ok = store.Find(entry.ID)
	require.False(t, ok)
}

func TestGetCreatesOnMissingCookieAndInjectsSetCookie(t *testing.T) {
	store := sessionstore.NewMemoryStore(func() sessionData { return sessionData{} })
	req := &httpmsg.HttpRequest{}
	resp := httpmsg.NewHttpResponse()

	entry, err := store.Get(req, resp)
	require.NoError(t, err)

	require.Len(t, resp.Cookies, 1)
	require.Equal(t, sessionstore.CookieName, resp.Cookies[0].Name)
	require.Equal(t, entry.ID, resp.Cookies[0].Value)
}

func TestGetReusesExistingCookie(t *testing.T) {
	store := sessionstore.NewMemoryStore(func() sessionData { return sessionData{LoginCount: 1} })
	entry, err := store.Create()
	require.NoError(t, err)

	req := &httpmsg.HttpRequest{Cookies: []httpmsg.Cookie{{Name: sessionstore.CookieName, Value: entry.ID}}}
	resp := httpmsg.NewHttpResponse()

	found, err := store.Get(req, resp)
	require.NoError(t, err)
	require.Equal(t, entry.ID, found.ID)
	require.Equal(t, 1, found.Data.LoginCount)

	_, ok := resp.GetHeader("Set-Cookie")
	require.False(t, ok)
}

func TestCreateIdsAreUnpredictableAndUnique(t *testing.T) {
	store := sessionstore.NewMemoryStore(func() sessionData { return sessionData{} })
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		e, err := store.Create()
		require.NoError(t, err)
		require.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}
