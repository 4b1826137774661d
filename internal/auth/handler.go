package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/educore-erp/educore-erp/internal/platform/httpx"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/internal/view"
)

// Handler wires the authentication endpoints: the JSON API consumed by
// scripts and the rendered login form.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *SessionStore
	templates *view.Engine
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *SessionStore, templates *view.Engine) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		templates: templates,
		validator: validator.New(),
	}
}

// MountAPIRoutes registers the JSON endpoints.
func (h *Handler) MountAPIRoutes(r chi.Router) {
	r.Post("/api/auth/login", h.handleAPILogin)
	r.Post("/api/auth/logout", h.handleAPILogout)
	r.Get("/api/auth/logout", h.handleAPILogout)
}

// MountPageRoutes registers the rendered login/logout flow.
func (h *Handler) MountPageRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLoginForm)
	r.Post("/logout", h.handleLogoutForm)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Username and password are required", nil)
		return
	}

	resp, ok := h.service.Login(r.Context(), w, r, req.Username, req.Password)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Authentication failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type logoutResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), w, r)
	httpx.JSON(w, http.StatusOK, logoutResponse{
		Success:   true,
		Message:   "Logged out successfully",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type loginPageData struct {
	Username string
	Error    string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if shared.IdentityFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginPageData{})
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.sessions.VerifyCSRF(r, r.PostFormValue(CSRFFormField)); err != nil {
		h.logger.Warn("csrf validation failed", slog.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.renderLogin(w, r, loginPageData{Username: username, Error: "Username and password are required"})
		return
	}

	if _, ok := h.service.Login(r.Context(), w, r, username, password); !ok {
		h.renderLogin(w, r, loginPageData{Username: username, Error: "Invalid username or password"})
		return
	}
	h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "success", Message: "Welcome back"})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleLogoutForm(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData) {
	viewData := view.TemplateData{
		Title:       "Sign in",
		CSRFToken:   h.sessions.EnsureCSRF(w, r),
		CurrentPath: r.URL.Path,
		Flash:       h.sessions.PopFlash(w, r),
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
