// Package view renders the gateway's HTML pages.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
	"github.com/educore-erp/educore-erp/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Identity    *shared.Identity
	Nav         []string
	CurrentPath string
	Flash       *shared.FlashMessage
	Dashboard   rbac.DashboardConfig
	Data        any
}

// NewEngine parses the embedded templates at startup.
func NewEngine() (*Engine, error) {
	titler := cases.Title(language.English)
	slugSeparators := strings.NewReplacer("-", " ", "_", " ")
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		// titleize turns route slugs like "academic-years" and field
		// names like "student_name" into display labels.
		"titleize": func(slug string) string {
			return titler.String(slugSeparators.Replace(slug))
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
