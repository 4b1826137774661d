package partners

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/educore-erp/educore-erp/internal/auth"
	"github.com/educore-erp/educore-erp/internal/erpnext"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/internal/view"
)

// Form fields accepted by the mutation handlers and rendered as
// inputs on the partners page.
var (
	customerFormFields = []string{"customer_name", "customer_group", "territory", "email_id"}
	supplierFormFields = []string{"supplier_name", "supplier_group", "country", "email_id"}
)

// Handler renders the combined customers/suppliers page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      *rbac.Service
	sessions  *auth.SessionStore
	templates *view.Engine
}

// NewHandler constructs the partners page handler.
func NewHandler(logger *slog.Logger, service *Service, rbacSvc *rbac.Service, sessions *auth.SessionStore, templates *view.Engine) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacSvc, sessions: sessions, templates: templates}
}

// MountRoutes registers the partner routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/partners", h.showPartners)
	r.Post("/partners/customers", h.createCustomer)
	r.Post("/partners/customers/{name}", h.updateCustomer)
	r.Post("/partners/customers/{name}/delete", h.deleteCustomer)
	r.Post("/partners/suppliers", h.createSupplier)
	r.Post("/partners/suppliers/{name}", h.updateSupplier)
	r.Post("/partners/suppliers/{name}/delete", h.deleteSupplier)
}

func (h *Handler) showPartners(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	page := view.RecordsPage{Heading: "Partners"}

	customers, err := h.service.ListCustomers(r.Context(), limit, 0)
	if err != nil {
		page.Error = erpnext.NormalizeError(err).Message
	}
	id := shared.IdentityFromContext(r.Context())
	page.Sections = append(page.Sections, view.Section{
		Heading:  "Customers",
		Columns:  []string{"name", "customer_name", "customer_group", "territory", "email_id"},
		Records:  customers,
		BasePath: "/partners/customers",
		Fields:   customerFormFields,
		Can:      h.rbac.Permissions(id, DoctypeCustomer),
	})

	suppliers, err := h.service.ListSuppliers(r.Context(), limit, 0)
	if err != nil && page.Error == "" {
		page.Error = erpnext.NormalizeError(err).Message
	}
	page.Sections = append(page.Sections, view.Section{
		Heading:  "Suppliers",
		Columns:  []string{"name", "supplier_name", "supplier_group", "country", "email_id"},
		Records:  suppliers,
		BasePath: "/partners/suppliers",
		Fields:   supplierFormFields,
		Can:      h.rbac.Permissions(id, DoctypeSupplier),
	})

	data := view.TemplateData{
		Title:       "Partners",
		CSRFToken:   h.sessions.EnsureCSRF(w, r),
		Identity:    id,
		Nav:         h.rbac.AllowedNavigation(id),
		CurrentPath: "/partners",
		Flash:       h.sessions.PopFlash(w, r),
		Data:        page,
	}
	if err := h.templates.Render(w, "pages/records.html", data); err != nil {
		h.logger.Error("render partners", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, DoctypeCustomer, rbac.ActionCreate, func(ctx context.Context) error {
		_, err := h.service.CreateCustomer(ctx, formData(r, customerFormFields...))
		return err
	}, "Customer created")
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, DoctypeSupplier, rbac.ActionCreate, func(ctx context.Context) error {
		_, err := h.service.CreateSupplier(ctx, formData(r, supplierFormFields...))
		return err
	}, "Supplier created")
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.mutate(w, r, DoctypeCustomer, rbac.ActionWrite, func(ctx context.Context) error {
		return h.service.UpdateCustomer(ctx, name, formData(r, customerFormFields...))
	}, "Customer updated")
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.mutate(w, r, DoctypeSupplier, rbac.ActionWrite, func(ctx context.Context) error {
		return h.service.UpdateSupplier(ctx, name, formData(r, supplierFormFields...))
	}, "Supplier updated")
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.mutate(w, r, DoctypeCustomer, rbac.ActionDelete, func(ctx context.Context) error {
		return h.service.DeleteCustomer(ctx, name)
	}, "Customer deleted")
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.mutate(w, r, DoctypeSupplier, rbac.ActionDelete, func(ctx context.Context) error {
		return h.service.DeleteSupplier(ctx, name)
	}, "Supplier deleted")
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, doctype string, action rbac.Action, run func(context.Context) error, success string) {
	id := shared.IdentityFromContext(r.Context())
	if !h.rbac.HasPermission(id, doctype, action) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.sessions.VerifyCSRF(r, r.PostFormValue(auth.CSRFFormField)); err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if err := run(r.Context()); err != nil {
		h.logger.Error("partner mutation", slog.String("doctype", doctype), slog.Any("error", err))
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "error", Message: erpnext.NormalizeError(err).Message})
	} else {
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "success", Message: success})
	}
	http.Redirect(w, r, "/partners", http.StatusSeeOther)
}

func formData(r *http.Request, fields ...string) map[string]any {
	data := make(map[string]any, len(fields))
	for _, field := range fields {
		if v := r.PostFormValue(field); v != "" {
			data[field] = v
		}
	}
	return data
}
