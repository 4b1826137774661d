// Package erpnext translates abstract document operations into ERPNext
// HTTP API calls and normalizes the backend's responses and failures.
package erpnext

import "time"

// Default frappe method names used by count and search operations.
const (
	DefaultCountMethod  = "frappe.client.get_count"
	DefaultSearchMethod = "frappe.desk.search.search_link"
)

// Config holds connection settings for the remote ERPNext instance.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string

	// Username/Password are the basic-auth fallback used when no API
	// key pair is configured.
	Username string
	Password string

	// Timeout bounds CRUD and method calls. ProbeTimeout bounds health
	// pings, AuthTimeout bounds login-time validation calls.
	Timeout      time.Duration
	ProbeTimeout time.Duration
	AuthTimeout  time.Duration

	CountMethod  string
	SearchMethod string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = 10 * time.Second
	}
	if c.CountMethod == "" {
		c.CountMethod = DefaultCountMethod
	}
	if c.SearchMethod == "" {
		c.SearchMethod = DefaultSearchMethod
	}
	return c
}

// CommonFields lists the declared field subset per doctype. The
// backend schema owns the full shape; the gateway only ever projects
// these.
var CommonFields = map[string][]string{
	"base": {"name", "creation", "modified", "modified_by", "owner", "docstatus"},
	"Student": {
		"student_name", "student_email_id", "student_mobile_number", "student_id",
		"joining_date", "program", "student_batch_name", "academic_year",
		"student_category", "date_of_birth", "guardian_name", "guardian_mobile_number",
		"guardian_email", "address_line_1", "city", "emergency_contact_name",
		"emergency_contact_mobile",
	},
	"Customer": {
		"customer_name", "customer_type", "customer_group", "territory",
		"email_id", "mobile_no", "phone_no", "website", "disabled",
	},
	"Supplier": {
		"supplier_name", "supplier_type", "supplier_group", "country",
		"email_id", "mobile_no", "phone_no", "website", "disabled",
	},
	"Program": {
		"program_name", "program_code", "department", "program_abbreviation",
		"description", "is_published", "duration", "max_students", "fees",
	},
	"Course": {
		"course_name", "course_code", "department", "course_abbreviation",
		"description", "is_published", "credit_hours", "max_students",
	},
	"Academic Year": {
		"academic_year_name", "year_start_date", "year_end_date", "is_default", "disabled",
	},
}

// FieldsFor returns the base projection plus the doctype specific one.
func FieldsFor(doctype string, extra ...string) []string {
	fields := make([]string, 0, len(CommonFields["base"])+len(CommonFields[doctype])+len(extra))
	fields = append(fields, CommonFields["base"]...)
	fields = append(fields, CommonFields[doctype]...)
	fields = append(fields, extra...)
	return fields
}

// Default list filters per doctype, mirroring the backend's soft-delete
// and publication conventions.
var (
	FilterActiveStudents      = map[string]any{"docstatus": []any{"!=", 2}, "disabled": []any{"!=", 1}}
	FilterActiveCustomers     = map[string]any{"disabled": []any{"!=", 1}}
	FilterActiveSuppliers     = map[string]any{"disabled": []any{"!=", 1}}
	FilterPublishedPrograms   = map[string]any{"is_published": 1, "disabled": []any{"!=", 1}}
	FilterPublishedCourses    = map[string]any{"is_published": 1, "disabled": []any{"!=", 1}}
	FilterCurrentAcademicYear = map[string]any{"is_default": 1, "disabled": []any{"!=", 1}}
	FilterEnabledRecords      = map[string]any{"disabled": []any{"!=", 1}}
)
