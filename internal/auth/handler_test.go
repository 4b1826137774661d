package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educore-erp/educore-erp/internal/erpnext"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/view"
)

func newTestHandler(t *testing.T, backend *stubBackend) (*chi.Mux, *SessionStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newTestStore(t)
	service := NewService(logger, backend, store, rbac.NewStaticResolver())
	templates, err := view.NewEngine()
	require.NoError(t, err)
	handler := NewHandler(logger, service, store, templates)

	router := chi.NewRouter()
	handler.MountAPIRoutes(router)
	handler.MountPageRoutes(router)
	return router, store
}

func TestAPILoginSuccess(t *testing.T) {
	backend := &stubBackend{loginResult: &erpnext.LoginResult{
		User:     "academic.admin",
		FullName: "Academic Admin",
		Message:  "Login successful",
		HomePage: "/app",
	}}
	router, store := newTestHandler(t, backend)

	body := `{"username":"academic.admin","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
	assert.Equal(t, "academic.admin", resp.User)
	assert.Equal(t, "Login successful", resp.Message)

	id, expired := store.Read(requestWithCookies(res))
	require.NotNil(t, id)
	assert.False(t, expired)
}

func TestAPILoginMissingFields(t *testing.T) {
	router, _ := newTestHandler(t, &stubBackend{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Username and password are required", body["error"])
}

func TestAPILoginRejected(t *testing.T) {
	backend := &stubBackend{loginErr: &erpnext.Error{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}}
	router, _ := newTestHandler(t, backend)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"bad"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Authentication failed", body["error"])
}

func TestAPILogout(t *testing.T) {
	router, _ := newTestHandler(t, &stubBackend{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var resp logoutResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Logged out successfully", resp.Message)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestLoginFormFlow(t *testing.T) {
	backend := &stubBackend{loginResult: &erpnext.LoginResult{User: "registrar", FullName: "Registrar"}}
	router, _ := newTestHandler(t, backend)

	// The GET renders the form and seeds the CSRF token cookie.
	getRes := httptest.NewRecorder()
	router.ServeHTTP(getRes, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, getRes.Code)
	token := extractCSRFToken(t, getRes.Body.String())

	form := url.Values{}
	form.Set("csrf_token", token)
	form.Set("username", "registrar")
	form.Set("password", "pw")
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range getRes.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard", res.Header().Get("Location"))
}

func TestLoginFormRejectsBadCSRF(t *testing.T) {
	router, _ := newTestHandler(t, &stubBackend{})

	form := url.Values{}
	form.Set("csrf_token", "forged")
	form.Set("username", "registrar")
	form.Set("password", "pw")
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestLoginFormShowsErrorOnRejection(t *testing.T) {
	backend := &stubBackend{loginErr: &erpnext.Error{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}}
	router, _ := newTestHandler(t, backend)

	getRes := httptest.NewRecorder()
	router.ServeHTTP(getRes, httptest.NewRequest(http.MethodGet, "/login", nil))
	token := extractCSRFToken(t, getRes.Body.String())

	form := url.Values{}
	form.Set("csrf_token", token)
	form.Set("username", "registrar")
	form.Set("password", "wrong")
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range getRes.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid username or password")
	assert.Contains(t, res.Body.String(), `value="registrar"`)
}

func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()
	marker := `name="csrf_token" value="`
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, "csrf token input not found")
	rest := body[idx+len(marker):]
	end := strings.Index(rest, `"`)
	require.Greater(t, end, 0)
	return rest[:end]
}
