package education

import (
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

	"github.com/educore-erp/educore-erp/internal/auth"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/internal/view"
)

func newPageHandler(t *testing.T, client *fakeDocClient) (*chi.Mux, *auth.SessionStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewSessionStore("test-secret", false, rbac.NewStaticResolver(), logger)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	handler := NewHandler(logger, NewService(client), rbac.NewService(rbac.DefaultConfig()), sessions, templates)

	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router, sessions
}

func asIdentity(req *http.Request, user string, roles ...string) *http.Request {
	id := &shared.Identity{User: user, FullName: user}
	for _, name := range roles {
		id.Roles = append(id.Roles, shared.Role{Name: name})
	}
	return req.WithContext(shared.ContextWithIdentity(req.Context(), id))
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateStudentForbiddenWithoutCreatePermission(t *testing.T) {
	client := &fakeDocClient{}
	router, _ := newPageHandler(t, client)

	req := asIdentity(postForm("/students", url.Values{"student_name": {"Jane Doe"}}), "student.doe", "Student")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, client.lastDoctype, "backend must not be called")
}

func TestCreateStudentRejectsForgedToken(t *testing.T) {
	client := &fakeDocClient{}
	router, sessions := newPageHandler(t, client)

	seed := httptest.NewRecorder()
	sessions.EnsureCSRF(seed, httptest.NewRequest(http.MethodGet, "/students", nil))

	req := postForm("/students", url.Values{
		"student_name":     {"Jane Doe"},
		auth.CSRFFormField: {"forged"},
	})
	for _, c := range seed.Result().Cookies() {
		req.AddCookie(c)
	}
	req = asIdentity(req, "academic.admin", "Education Manager")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, client.lastDoctype)
}

func TestCreateStudentForwardsForm(t *testing.T) {
	client := &fakeDocClient{}
	router, sessions := newPageHandler(t, client)

	seed := httptest.NewRecorder()
	token := sessions.EnsureCSRF(seed, httptest.NewRequest(http.MethodGet, "/students", nil))

	req := postForm("/students", url.Values{
		"student_name":     {"Jane Doe"},
		"student_email_id": {"jane@example.edu"},
		auth.CSRFFormField: {token},
	})
	for _, c := range seed.Result().Cookies() {
		req.AddCookie(c)
	}
	req = asIdentity(req, "academic.admin", "Education Manager")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/students", res.Header().Get("Location"))
	assert.Equal(t, DoctypeStudent, client.lastDoctype)
	assert.Equal(t, "Jane Doe", client.lastData["student_name"])
	assert.Equal(t, "jane@example.edu", client.lastData["student_email_id"])
}

func TestDeleteAcademicYearForbiddenForReadOnlyRole(t *testing.T) {
	client := &fakeDocClient{}
	router, _ := newPageHandler(t, client)

	req := asIdentity(httptest.NewRequest(http.MethodPost, "/academic-years/AY-2026/delete", nil), "registrar", "Student User")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, client.lastName)
}

func TestStudentsPageGatesFormsByPermission(t *testing.T) {
	client := &fakeDocClient{listResult: []map[string]any{{"name": "EDU-STU-0001", "student_name": "Jane Doe"}}}
	router, _ := newPageHandler(t, client)

	req := asIdentity(httptest.NewRequest(http.MethodGet, "/students", nil), "academic.admin", "Education Manager")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `<form method="post" action="/students">`)
	assert.Contains(t, body, `action="/students/EDU-STU-0001/delete"`)

	req = asIdentity(httptest.NewRequest(http.MethodGet, "/students", nil), "student.doe", "Student")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	body = res.Body.String()
	assert.NotContains(t, body, `action="/students"`)
	assert.NotContains(t, body, "/delete")
}
