package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/educore-erp/educore-erp/internal/auth"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/internal/view"
)

// Prober reports backend reachability for the system status card.
type Prober interface {
	Ping(ctx context.Context) error
	BaseURL() string
}

// Handler renders the dashboard and diagnostics pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      *rbac.Service
	sessions  *auth.SessionStore
	templates *view.Engine
	prober    Prober
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service, rbacSvc *rbac.Service, sessions *auth.SessionStore, templates *view.Engine, prober Prober) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacSvc, sessions: sessions, templates: templates, prober: prober}
}

// MountRoutes registers the dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.showDashboard)
	r.Get("/debug", h.showDebug)
}

type dashboardPageData struct {
	Stats         Stats
	BackendStatus string
	Debug         string
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	preset := h.rbac.Dashboard(id)

	data := dashboardPageData{BackendStatus: "unknown"}
	if preset.ShowAllMetrics {
		data.Stats = h.service.Stats(r.Context())
	}
	if preset.ShowSystemStatus {
		if err := h.prober.Ping(r.Context()); err != nil {
			data.BackendStatus = "unreachable"
		} else {
			data.BackendStatus = "healthy"
		}
	}
	if preset.ShowDebugInfo {
		raw, _ := json.MarshalIndent(map[string]any{
			"user":         id.User,
			"roles":        id.RoleNames(),
			"primary_role": h.rbac.PrimaryRole(id),
		}, "", "  ")
		data.Debug = string(raw)
	}

	viewData := view.TemplateData{
		Title:       "Dashboard",
		CSRFToken:   h.sessions.EnsureCSRF(w, r),
		Identity:    id,
		Nav:         h.rbac.AllowedNavigation(id),
		CurrentPath: "/dashboard",
		Flash:       h.sessions.PopFlash(w, r),
		Dashboard:   preset,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type debugPageData struct {
	BackendURL string
	Health     string
	Session    string
}

func (h *Handler) showDebug(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())

	health := "healthy"
	if err := h.prober.Ping(r.Context()); err != nil {
		health = "unreachable"
	}
	raw, _ := json.MarshalIndent(id, "", "  ")

	viewData := view.TemplateData{
		Title:       "Diagnostics",
		CSRFToken:   h.sessions.EnsureCSRF(w, r),
		Identity:    id,
		Nav:         h.rbac.AllowedNavigation(id),
		CurrentPath: "/debug",
		Data: debugPageData{
			BackendURL: h.prober.BaseURL(),
			Health:     health,
			Session:    string(raw),
		},
	}
	if err := h.templates.Render(w, "pages/debug.html", viewData); err != nil {
		h.logger.Error("render debug", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
