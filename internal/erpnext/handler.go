package erpnext

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/educore-erp/educore-erp/internal/platform/httpx"
)

// Handler exposes the same-origin proxy endpoints consumed by the
// view layer.
type Handler struct {
	logger *slog.Logger
	client *Client
}

// NewHandler constructs the proxy handler.
func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers the proxy endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/erpnext/operation", h.handleOperation)
	r.Get("/api/health", h.handleHealth)
}

func (h *Handler) handleOperation(w http.ResponseWriter, r *http.Request) {
	var op Operation
	if err := httpx.DecodeJSON(r, &op); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	env, err := h.client.Do(r.Context(), op)
	if err != nil {
		h.respondError(w, op, err)
		return
	}
	httpx.JSON(w, http.StatusOK, env)
}

// respondError maps translator failures onto the proxy contract:
// unsupported verbs are a local 400, backend verdicts keep their
// status, transport failures become 500.
func (h *Handler) respondError(w http.ResponseWriter, op Operation, err error) {
	if errors.Is(err, ErrUnsupportedOperation) {
		httpx.Error(w, http.StatusBadRequest, "Unsupported method: "+op.Method, nil)
		return
	}
	norm := NormalizeError(err)
	if norm.IsConnection() {
		h.logger.Error("erpnext operation failed",
			slog.String("doctype", op.Doctype),
			slog.String("method", op.Method),
			slog.String("error", norm.Message))
		httpx.Error(w, http.StatusInternalServerError, norm.Message, nil)
		return
	}
	httpx.Error(w, norm.StatusCode, norm.Message, norm.Details)
}

type serviceHealth struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Services  map[string]serviceHealth `json:"services"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: map[string]serviceHealth{
			"backend":  {Status: "healthy", URL: h.client.BaseURL()},
			"frontend": {Status: "healthy"},
		},
	}

	if err := h.client.Ping(r.Context()); err != nil {
		resp.Status = "error"
		resp.Services["backend"] = serviceHealth{
			Status: "unhealthy",
			URL:    h.client.BaseURL(),
			Error:  "Connection failed",
		}
		httpx.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}
