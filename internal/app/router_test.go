package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educore-erp/educore-erp/internal/auth"
	"github.com/educore-erp/educore-erp/internal/dashboard"
	"github.com/educore-erp/educore-erp/internal/education"
	"github.com/educore-erp/educore-erp/internal/erpnext"
	"github.com/educore-erp/educore-erp/internal/partners"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/internal/view"
	_ "github.com/educore-erp/educore-erp/testing"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.SessionStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: time.Minute, SessionSecret: "test-secret"}
	templates, err := view.NewEngine()
	require.NoError(t, err)

	// Backend is unreachable; pages degrade instead of failing.
	client := erpnext.NewClient(erpnext.Config{BaseURL: "http://127.0.0.1:0"}, logger)
	rbacService := rbac.NewService(rbac.DefaultConfig())
	resolver := rbac.NewStaticResolver()
	sessions := auth.NewSessionStore(cfg.SessionSecret, false, resolver, logger)
	authService := auth.NewService(logger, client, sessions, resolver)
	educationService := education.NewService(client)
	partnersService := partners.NewService(client)
	dashboardService := dashboard.NewService(logger, educationService, partnersService)

	router := NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		AuthService:      authService,
		AuthHandler:      auth.NewHandler(logger, authService, sessions, templates),
		ProxyHandler:     erpnext.NewHandler(logger, client),
		EducationHandler: education.NewHandler(logger, educationService, rbacService, sessions, templates),
		PartnersHandler:  partners.NewHandler(logger, partnersService, rbacService, sessions, templates),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService, rbacService, sessions, templates, client),
		RBACMiddleware:   rbac.Middleware{Service: rbacService, Logger: logger},
	})
	return router, sessions
}

func sessionCookies(t *testing.T, sessions *auth.SessionStore, user string) []*http.Cookie {
	t.Helper()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, sessions.Write(res, req, &shared.Identity{User: user, FullName: user}))
	return res.Result().Cookies()
}

func TestRouterRedirectsAnonymousToLogin(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/dashboard", "/students", "/partners"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)

		assert.Equal(t, http.StatusSeeOther, res.Code, path)
		assert.Equal(t, "/login", res.Header().Get("Location"), path)
	}
}

func TestRouterDeniedRouteRedirectsToDashboard(t *testing.T) {
	router, sessions := newTestRouter(t)
	cookies := sessionCookies(t, sessions, "student.doe")

	req := httptest.NewRequest(http.MethodGet, "/partners", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard", res.Header().Get("Location"))
}

func TestRouterAllowsPermittedRoute(t *testing.T) {
	router, sessions := newTestRouter(t)
	cookies := sessionCookies(t, sessions, "student.doe")

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Courses")
}

func TestRouterServesHealthAndLandingWithoutSession(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}
