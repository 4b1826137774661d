package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	_ "github.com/educore-erp/educore-erp/testing"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore("test-secret-key", false, rbac.NewStaticResolver(), nil)
}

// requestWithCookies carries the recorder's Set-Cookie headers into a
// fresh request, the way a browser would on the next page load.
func requestWithCookies(res *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range res.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)

	res := httptest.NewRecorder()
	err := store.Write(res, httptest.NewRequest(http.MethodPost, "/login", nil), &shared.Identity{
		User:      "academic.admin",
		FullName:  "Academic Admin",
		APIKey:    "key",
		APISecret: "secret",
	})
	require.NoError(t, err)

	id, expired := store.Read(requestWithCookies(res))
	require.NotNil(t, id)
	assert.False(t, expired)
	assert.Equal(t, "academic.admin", id.User)
	assert.Equal(t, "Academic Admin", id.FullName)
	assert.Equal(t, "key", id.APIKey)
	assert.Equal(t, "secret", id.APISecret)

	assert.NotEmpty(t, id.SessionID)

	// Roles are re-derived from the resolver, not stored in the cookie.
	require.Len(t, id.Roles, 1)
	assert.Equal(t, "Education Manager", id.Roles[0].Name)
}

func TestSessionExpiresAfterMaxAge(t *testing.T) {
	store := newTestStore(t)

	res := httptest.NewRecorder()
	require.NoError(t, store.Write(res, httptest.NewRequest(http.MethodPost, "/login", nil), &shared.Identity{User: "registrar"}))

	store.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	id, expired := store.Read(requestWithCookies(res))
	assert.Nil(t, id)
	assert.True(t, expired)
}

func TestSessionJustInsideWindow(t *testing.T) {
	store := newTestStore(t)

	res := httptest.NewRecorder()
	require.NoError(t, store.Write(res, httptest.NewRequest(http.MethodPost, "/login", nil), &shared.Identity{User: "registrar"}))

	store.now = func() time.Time { return time.Now().Add(23 * time.Hour) }
	id, expired := store.Read(requestWithCookies(res))
	require.NotNil(t, id)
	assert.False(t, expired)
}

func TestReadWithoutCookie(t *testing.T) {
	store := newTestStore(t)

	id, expired := store.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, id)
	assert.False(t, expired)
}

func TestReadTamperedCookie(t *testing.T) {
	store := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "educore_session", Value: "garbage"})
	id, expired := store.Read(req)
	assert.Nil(t, id)
	assert.True(t, expired)
}

func TestClearDropsCookie(t *testing.T) {
	store := newTestStore(t)

	res := httptest.NewRecorder()
	require.NoError(t, store.Write(res, httptest.NewRequest(http.MethodPost, "/login", nil), &shared.Identity{User: "registrar"}))

	cleared := httptest.NewRecorder()
	store.Clear(cleared, requestWithCookies(res))

	found := false
	for _, c := range cleared.Result().Cookies() {
		if c.Name == "educore_session" {
			found = true
			assert.Less(t, c.MaxAge, 0)
		}
	}
	assert.True(t, found, "expected expiring Set-Cookie header")
}

func TestFlashRoundTrip(t *testing.T) {
	store := newTestStore(t)

	res := httptest.NewRecorder()
	store.AddFlash(res, httptest.NewRequest(http.MethodPost, "/login", nil), shared.FlashMessage{Kind: "success", Message: "Welcome back"})

	popRes := httptest.NewRecorder()
	flash := store.PopFlash(popRes, requestWithCookies(res))
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
	assert.Equal(t, "Welcome back", flash.Message)

	// A second pop against the rewritten cookie finds nothing.
	flash = store.PopFlash(httptest.NewRecorder(), requestWithCookies(popRes))
	assert.Nil(t, flash)
}
