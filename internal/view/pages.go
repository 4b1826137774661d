package view

import "github.com/educore-erp/educore-erp/internal/rbac"

// Section is one table on a records page. BasePath and Fields feed the
// mutation forms; a zero Can tuple renders the table read-only.
type Section struct {
	Heading  string
	Columns  []string
	Records  []map[string]any
	BasePath string
	Fields   []string
	Can      rbac.Permission
}

// RecordsPage feeds the shared records template.
type RecordsPage struct {
	Heading  string
	Error    string
	Sections []Section
}
