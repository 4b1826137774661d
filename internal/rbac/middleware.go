package rbac

import (
	"log/slog"
	"net/http"

	"github.com/educore-erp/educore-erp/internal/shared"
)

// Middleware wires route-level visibility checks for page handlers.
// It expects the auth layer to have placed the identity in context.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireRoute ensures the current identity may see the named route,
// redirecting to the dashboard otherwise. It is UI gating only.
func (m Middleware) RequireRoute(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.IdentityFromContext(r.Context())
			if !m.Service.CanAccessRoute(id, route) {
				if m.Logger != nil {
					m.Logger.Warn("route denied",
						slog.String("route", route),
						slog.String("user", userLabel(id)))
				}
				target := "/dashboard"
				if route == "dashboard" {
					target = "/"
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userLabel(id *shared.Identity) string {
	if id == nil {
		return "anonymous"
	}
	return id.User
}
