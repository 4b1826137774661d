package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/educore-erp/educore-erp/internal/erpnext"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
)

// Backend is the slice of the ERPNext client the auth flow needs.
type Backend interface {
	Login(ctx context.Context, username, password string) (*erpnext.LoginResult, error)
	Logout(ctx context.Context) error
	GetUserInfo(ctx context.Context, username string) map[string]any
}

// LoginResponse is what a successful login hands back to the caller.
type LoginResponse struct {
	User     string `json:"user"`
	FullName string `json:"full_name"`
	Message  string `json:"message"`
	HomePage string `json:"home_page"`
	// The credential pair is echoed so the session carries it to every
	// subsequent backend call.
	APIKey    string         `json:"api_key,omitempty"`
	APISecret string         `json:"api_secret,omitempty"`
	UserInfo  map[string]any `json:"user_info,omitempty"`
}

// Service orchestrates login, logout and session restoration.
type Service struct {
	logger   *slog.Logger
	backend  Backend
	sessions *SessionStore
	resolver rbac.RoleResolver
}

// NewService constructs the auth service.
func NewService(logger *slog.Logger, backend Backend, sessions *SessionStore, resolver rbac.RoleResolver) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, backend: backend, sessions: sessions, resolver: resolver}
}

// Login validates credentials against the backend, attaches roles and
// persists the session. Any failure leaves the caller fully logged out
// and reports ok=false; no error escapes this boundary unclassified.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, username, password string) (*LoginResponse, bool) {
	result, err := s.backend.Login(ctx, username, password)
	if err != nil || result.User == "" {
		s.logger.Warn("login rejected", slog.String("user", username), slog.Any("error", err))
		s.sessions.Clear(w, r)
		return nil, false
	}

	identity := &shared.Identity{
		User:      result.User,
		FullName:  result.FullName,
		APIKey:    result.APIKey,
		APISecret: result.APISecret,
		UserType:  "System User",
	}
	if s.resolver != nil {
		identity.Roles = s.resolver.Resolve(identity.User)
	}

	if err := s.sessions.Write(w, r, identity); err != nil {
		s.logger.Error("persist session", slog.Any("error", err))
		s.sessions.Clear(w, r)
		return nil, false
	}

	s.logger.Info("login succeeded",
		slog.String("user", identity.User),
		slog.String("session_id", identity.SessionID))
	return &LoginResponse{
		User:      result.User,
		FullName:  result.FullName,
		Message:   result.Message,
		HomePage:  result.HomePage,
		APIKey:    result.APIKey,
		APISecret: result.APISecret,
		UserInfo:  s.backend.GetUserInfo(ctx, username),
	}, true
}

// Logout notifies the backend best-effort, then unconditionally clears
// the session regardless of whether the notification succeeded.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if id, _ := s.sessions.Read(r); id != nil && id.APIKey != "" && id.APISecret != "" {
		if err := s.backend.Logout(ctx); err != nil {
			s.logger.Warn("backend logout notification failed", slog.Any("error", err))
		}
	}
	s.sessions.Clear(w, r)
}

// CheckAuth restores the identity from the persisted session. Expired
// or malformed sessions are cleared as a side effect. This is the sole
// re-authentication path after a reload; no backend round-trip occurs.
func (s *Service) CheckAuth(w http.ResponseWriter, r *http.Request) *shared.Identity {
	id, expired := s.sessions.Read(r)
	if id != nil {
		return id
	}
	if expired {
		s.sessions.Clear(w, r)
	}
	return nil
}
