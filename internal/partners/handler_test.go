package partners

import (
	"context"
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
	"github.com/educore-erp/educore-erp/internal/erpnext"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/internal/view"
	_ "github.com/educore-erp/educore-erp/testing"
)

type stubDocClient struct {
	lastDoctype string
	lastName    string
	lastData    map[string]any

	listResult []map[string]any
}

func (s *stubDocClient) GetList(ctx context.Context, doctype string, params erpnext.ListParams) ([]map[string]any, error) {
	s.lastDoctype = doctype
	return s.listResult, nil
}

func (s *stubDocClient) GetDoc(ctx context.Context, doctype, name string, fields []string) (map[string]any, error) {
	s.lastDoctype = doctype
	s.lastName = name
	return map[string]any{"name": name}, nil
}

func (s *stubDocClient) Create(ctx context.Context, doctype string, data map[string]any) (map[string]any, error) {
	s.lastDoctype = doctype
	s.lastData = data
	return data, nil
}

func (s *stubDocClient) Update(ctx context.Context, doctype, name string, data map[string]any) (map[string]any, error) {
	s.lastDoctype = doctype
	s.lastName = name
	s.lastData = data
	return data, nil
}

func (s *stubDocClient) Delete(ctx context.Context, doctype, name string) error {
	s.lastDoctype = doctype
	s.lastName = name
	return nil
}

func (s *stubDocClient) GetCount(ctx context.Context, doctype string, filters map[string]any) (int, error) {
	return len(s.listResult), nil
}

func newPartnersHandler(t *testing.T, client *stubDocClient) (*chi.Mux, *auth.SessionStore) {
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

func identified(req *http.Request, user string, roles ...string) *http.Request {
	id := &shared.Identity{User: user, FullName: user}
	for _, name := range roles {
		id.Roles = append(id.Roles, shared.Role{Name: name})
	}
	return req.WithContext(shared.ContextWithIdentity(req.Context(), id))
}

func TestCreateCustomerForbiddenWithoutPermission(t *testing.T) {
	client := &stubDocClient{}
	router, _ := newPartnersHandler(t, client)

	form := url.Values{"customer_name": {"Acme Corp"}}
	req := httptest.NewRequest(http.MethodPost, "/partners/customers", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = identified(req, "academic.admin", "Education Manager")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, client.lastDoctype)
}

func TestCreateCustomerForwardsForm(t *testing.T) {
	client := &stubDocClient{}
	router, sessions := newPartnersHandler(t, client)

	seed := httptest.NewRecorder()
	token := sessions.EnsureCSRF(seed, httptest.NewRequest(http.MethodGet, "/partners", nil))

	form := url.Values{
		"customer_name":    {"Acme Corp"},
		"territory":        {"Rest Of The World"},
		auth.CSRFFormField: {token},
	}
	req := httptest.NewRequest(http.MethodPost, "/partners/customers", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range seed.Result().Cookies() {
		req.AddCookie(c)
	}
	req = identified(req, "data.clerk", "Data Entry User")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/partners", res.Header().Get("Location"))
	assert.Equal(t, DoctypeCustomer, client.lastDoctype)
	assert.Equal(t, "Acme Corp", client.lastData["customer_name"])
}

func TestPartnersPageGatesFormsByPermission(t *testing.T) {
	client := &stubDocClient{listResult: []map[string]any{{"name": "CUST-0001", "customer_name": "Acme Corp"}}}
	router, _ := newPartnersHandler(t, client)

	req := identified(httptest.NewRequest(http.MethodGet, "/partners", nil), "data.clerk", "Data Entry User")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `<form method="post" action="/partners/customers">`)

	req = identified(httptest.NewRequest(http.MethodGet, "/partners", nil), "reports.viewer", "Report User")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, res.Body.String(), `action="/partners/customers"`)
}
