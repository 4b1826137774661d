package auth

import (
	"net/http"

	"github.com/educore-erp/educore-erp/internal/shared"
)

// Middleware restores the session identity into the request context.
// Downstream handlers read it from there instead of re-parsing the
// cookie, so one request sees one consistent identity.
func (s *Service) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := s.CheckAuth(w, r); id != nil {
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth redirects unauthenticated page requests to the login
// form.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.IdentityFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
