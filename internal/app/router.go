package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/educore-erp/educore-erp/internal/auth"
	"github.com/educore-erp/educore-erp/internal/dashboard"
	"github.com/educore-erp/educore-erp/internal/education"
	"github.com/educore-erp/educore-erp/internal/erpnext"
	"github.com/educore-erp/educore-erp/internal/partners"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/internal/view"
	"github.com/educore-erp/educore-erp/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	ProxyHandler     *erpnext.Handler
	EducationHandler *education.Handler
	PartnersHandler  *partners.Handler
	DashboardHandler *dashboard.Handler
	RBACMiddleware   rbac.Middleware
}

// NewRouter constructs the chi.Router with gateway defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Session: params.AuthService.Middleware(),
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/static/*", http.FileServer(http.FS(web.Static)))

	// Landing page doubles as the unauthenticated home.
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		if shared.IdentityFromContext(req.Context()) != nil {
			http.Redirect(w, req, "/dashboard", http.StatusSeeOther)
			return
		}
		data := view.TemplateData{Title: "EduCore ERP", CurrentPath: "/"}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	// Authentication endpoints share a login rate limit.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(20, time.Minute))
		params.AuthHandler.MountPageRoutes(r)
		params.AuthHandler.MountAPIRoutes(r)
	})

	params.ProxyHandler.MountRoutes(r)

	// Rendered pages require a session; content routes are additionally
	// gated by role navigation.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Group(func(r chi.Router) {
			r.Use(routeGuard(params.RBACMiddleware))
			params.DashboardHandler.MountRoutes(r)
			params.EducationHandler.MountRoutes(r)
			params.PartnersHandler.MountRoutes(r)
		})
	})

	return r
}

// routeGuard maps the first path segment onto a navigation route name
// and applies the rbac check, so /students and /students/{name}/delete
// share one gate.
func routeGuard(mw rbac.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mw.RequireRoute(firstSegment(r.URL.Path))(next).ServeHTTP(w, r)
		})
	}
}

func firstSegment(path string) string {
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return path
}
