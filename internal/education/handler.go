package education

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
// inputs on the records pages.
var (
	studentFormFields      = []string{"student_name", "student_email_id", "program", "academic_year"}
	courseFormFields       = []string{"course_name", "course_code", "department"}
	academicYearFormFields = []string{"academic_year_name", "year_start_date", "year_end_date"}
)

// Handler renders the academic record pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      *rbac.Service
	sessions  *auth.SessionStore
	templates *view.Engine
}

// NewHandler constructs the education page handler.
func NewHandler(logger *slog.Logger, service *Service, rbacSvc *rbac.Service, sessions *auth.SessionStore, templates *view.Engine) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacSvc, sessions: sessions, templates: templates}
}

// MountRoutes registers the page routes. Route-level gating is applied
// by the router; per-action gating happens here.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/students", h.showStudents)
	r.Post("/students", h.createStudent)
	r.Post("/students/{name}", h.updateStudent)
	r.Post("/students/{name}/delete", h.deleteStudent)
	r.Get("/courses", h.showCourses)
	r.Post("/courses", h.createCourse)
	r.Post("/courses/{name}", h.updateCourse)
	r.Post("/courses/{name}/delete", h.deleteCourse)
	r.Get("/academic-years", h.showAcademicYears)
	r.Post("/academic-years", h.createAcademicYear)
	r.Post("/academic-years/{name}", h.updateAcademicYear)
	r.Post("/academic-years/{name}/delete", h.deleteAcademicYear)
}

func (h *Handler) showStudents(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	page := view.RecordsPage{Heading: "Students"}
	students, err := h.service.ListStudents(r.Context(), limit, offset)
	if err != nil {
		page.Error = erpnext.NormalizeError(err).Message
	}
	page.Sections = []view.Section{{
		Heading:  "Active students",
		Columns:  []string{"name", "student_name", "student_email_id", "program", "academic_year"},
		Records:  students,
		BasePath: "/students",
		Fields:   studentFormFields,
		Can:      h.rbac.Permissions(shared.IdentityFromContext(r.Context()), DoctypeStudent),
	}}
	h.render(w, r, "students", page)
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	h.createRecord(w, r, "students", DoctypeStudent, studentFormFields, h.service.CreateStudent)
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	h.updateRecord(w, r, "students", DoctypeStudent, studentFormFields, h.service.UpdateStudent)
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "students", DoctypeStudent, "Student", h.service.DeleteStudent)
}

func (h *Handler) showCourses(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	page := view.RecordsPage{Heading: "Courses"}

	courses, err := h.service.ListCourses(r.Context(), limit, offset)
	if err != nil {
		page.Error = erpnext.NormalizeError(err).Message
	}
	page.Sections = append(page.Sections, view.Section{
		Heading:  "Published courses",
		Columns:  []string{"name", "course_name", "course_code", "department", "credit_hours"},
		Records:  courses,
		BasePath: "/courses",
		Fields:   courseFormFields,
		Can:      h.rbac.Permissions(shared.IdentityFromContext(r.Context()), DoctypeCourse),
	})

	programs, err := h.service.ListPrograms(r.Context(), limit, offset)
	if err != nil && page.Error == "" {
		page.Error = erpnext.NormalizeError(err).Message
	}
	page.Sections = append(page.Sections, view.Section{
		Heading: "Published programs",
		Columns: []string{"name", "program_name", "program_code", "department", "duration"},
		Records: programs,
	})

	h.render(w, r, "courses", page)
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	h.createRecord(w, r, "courses", DoctypeCourse, courseFormFields, h.service.CreateCourse)
}

func (h *Handler) updateCourse(w http.ResponseWriter, r *http.Request) {
	h.updateRecord(w, r, "courses", DoctypeCourse, courseFormFields, h.service.UpdateCourse)
}

func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "courses", DoctypeCourse, "Course", h.service.DeleteCourse)
}

func (h *Handler) showAcademicYears(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	page := view.RecordsPage{Heading: "Academic Years"}
	years, err := h.service.ListAcademicYears(r.Context(), limit, offset)
	if err != nil {
		page.Error = erpnext.NormalizeError(err).Message
	}
	page.Sections = []view.Section{{
		Heading:  "Academic years",
		Columns:  []string{"name", "academic_year_name", "year_start_date", "year_end_date", "is_default"},
		Records:  years,
		BasePath: "/academic-years",
		Fields:   academicYearFormFields,
		Can:      h.rbac.Permissions(shared.IdentityFromContext(r.Context()), DoctypeAcademicYear),
	}}
	h.render(w, r, "academic-years", page)
}

func (h *Handler) createAcademicYear(w http.ResponseWriter, r *http.Request) {
	h.createRecord(w, r, "academic-years", DoctypeAcademicYear, academicYearFormFields, h.service.CreateAcademicYear)
}

func (h *Handler) updateAcademicYear(w http.ResponseWriter, r *http.Request) {
	h.updateRecord(w, r, "academic-years", DoctypeAcademicYear, academicYearFormFields, h.service.UpdateAcademicYear)
}

func (h *Handler) deleteAcademicYear(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "academic-years", DoctypeAcademicYear, "Academic year", h.service.DeleteAcademicYear)
}

// createRecord handles the shared create-form flow: CSRF check,
// advisory permission gate, verbatim field forwarding, flash, redirect.
func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request, route, doctype string, fields []string, create func(context.Context, map[string]any) (map[string]any, error)) {
	id := shared.IdentityFromContext(r.Context())
	if !h.rbac.HasPermission(id, doctype, rbac.ActionCreate) {
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
	data := make(map[string]any, len(fields))
	for _, field := range fields {
		if v := r.PostFormValue(field); v != "" {
			data[field] = v
		}
	}
	if _, err := create(r.Context(), data); err != nil {
		h.logger.Error("create "+doctype, slog.Any("error", err))
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "error", Message: erpnext.NormalizeError(err).Message})
	} else {
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "success", Message: doctype + " created"})
	}
	http.Redirect(w, r, "/"+route, http.StatusSeeOther)
}

// updateRecord mirrors createRecord for edit-form posts against an
// existing document name.
func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request, route, doctype string, fields []string, update func(context.Context, string, map[string]any) error) {
	id := shared.IdentityFromContext(r.Context())
	if !h.rbac.HasPermission(id, doctype, rbac.ActionWrite) {
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
	name := chi.URLParam(r, "name")
	data := make(map[string]any, len(fields))
	for _, field := range fields {
		if v := r.PostFormValue(field); v != "" {
			data[field] = v
		}
	}
	if err := update(r.Context(), name, data); err != nil {
		h.logger.Error("update "+doctype, slog.String("name", name), slog.Any("error", err))
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "error", Message: erpnext.NormalizeError(err).Message})
	} else {
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "success", Message: doctype + " updated"})
	}
	http.Redirect(w, r, "/"+route, http.StatusSeeOther)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request, route, doctype, label string, del func(context.Context, string) error) {
	id := shared.IdentityFromContext(r.Context())
	if !h.rbac.HasPermission(id, doctype, rbac.ActionDelete) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if err := h.sessions.VerifyCSRF(r, r.PostFormValue(auth.CSRFFormField)); err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	name := chi.URLParam(r, "name")
	if err := del(r.Context(), name); err != nil {
		h.logger.Error("delete "+doctype, slog.String("name", name), slog.Any("error", err))
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "error", Message: erpnext.NormalizeError(err).Message})
	} else {
		h.sessions.AddFlash(w, r, shared.FlashMessage{Kind: "success", Message: label + " deleted"})
	}
	http.Redirect(w, r, "/"+route, http.StatusSeeOther)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, route string, page view.RecordsPage) {
	id := shared.IdentityFromContext(r.Context())
	data := view.TemplateData{
		Title:       page.Heading,
		CSRFToken:   h.sessions.EnsureCSRF(w, r),
		Identity:    id,
		Nav:         h.rbac.AllowedNavigation(id),
		CurrentPath: "/" + route,
		Flash:       h.sessions.PopFlash(w, r),
		Data:        page,
	}
	if err := h.templates.Render(w, "pages/records.html", data); err != nil {
		h.logger.Error("render "+route, slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
