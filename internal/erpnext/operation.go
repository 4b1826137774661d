package erpnext

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Operation verbs understood by the translator.
const (
	VerbGetList    = "get_list"
	VerbGetDoc     = "get_doc"
	VerbCreate     = "create"
	VerbUpdate     = "update"
	VerbDelete     = "delete"
	VerbGetCount   = "get_count"
	VerbCallMethod = "call_method"
	VerbSearch     = "search"
)

// Operation is the abstract request the view layer issues. It is
// constructed fresh per call and never persisted.
type Operation struct {
	Doctype         string         `json:"doctype,omitempty"`
	Method          string         `json:"method"`
	Name            string         `json:"name,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
	Filters         map[string]any `json:"filters,omitempty"`
	Fields          []string       `json:"fields,omitempty"`
	LimitStart      *int           `json:"limit_start,omitempty"`
	LimitPageLength *int           `json:"limit_page_length,omitempty"`
	OrderBy         string         `json:"order_by,omitempty"`
	MethodName      string         `json:"method_name,omitempty"`
	Args            map[string]any `json:"args,omitempty"`
	Query           string         `json:"query,omitempty"`
}

// requestPlan is one concrete backend HTTP request derived from an
// Operation. Path is relative to the backend base URL.
type requestPlan struct {
	httpMethod string
	path       string
	query      url.Values
	body       any
}

// translate maps an Operation onto the backend's resource/method URL
// conventions. Unsupported verbs fail locally.
func (op Operation) translate(cfg Config) (requestPlan, error) {
	switch op.Method {
	case VerbGetList:
		q := url.Values{}
		if len(op.Filters) > 0 {
			q.Set("filters", mustJSON(op.Filters))
		}
		if len(op.Fields) > 0 {
			q.Set("fields", mustJSON(op.Fields))
		}
		if op.LimitStart != nil {
			q.Set("limit_start", strconv.Itoa(*op.LimitStart))
		}
		if op.LimitPageLength != nil {
			q.Set("limit_page_length", strconv.Itoa(*op.LimitPageLength))
		}
		if op.OrderBy != "" {
			q.Set("order_by", op.OrderBy)
		}
		return requestPlan{httpMethod: http.MethodGet, path: "/api/resource/" + url.PathEscape(op.Doctype), query: q}, nil

	case VerbGetDoc:
		q := url.Values{}
		if len(op.Fields) > 0 {
			q.Set("fields", mustJSON(op.Fields))
		}
		return requestPlan{httpMethod: http.MethodGet, path: resourcePath(op.Doctype, op.Name), query: q}, nil

	case VerbCreate:
		return requestPlan{httpMethod: http.MethodPost, path: "/api/resource/" + url.PathEscape(op.Doctype), body: op.Data}, nil

	case VerbUpdate:
		return requestPlan{httpMethod: http.MethodPut, path: resourcePath(op.Doctype, op.Name), body: op.Data}, nil

	case VerbDelete:
		return requestPlan{httpMethod: http.MethodDelete, path: resourcePath(op.Doctype, op.Name)}, nil

	case VerbGetCount:
		filters := op.Filters
		if filters == nil {
			filters = map[string]any{}
		}
		body := map[string]any{"doctype": op.Doctype, "filters": filters}
		return requestPlan{httpMethod: http.MethodPost, path: "/api/method/" + cfg.CountMethod, body: body}, nil

	case VerbCallMethod:
		args := op.Args
		if args == nil {
			args = map[string]any{}
		}
		return requestPlan{httpMethod: http.MethodPost, path: "/api/method/" + op.MethodName, body: args}, nil

	case VerbSearch:
		filters := op.Filters
		if filters == nil {
			filters = map[string]any{}
		}
		body := map[string]any{"doctype": op.Doctype, "txt": op.Query, "filters": filters}
		return requestPlan{httpMethod: http.MethodPost, path: "/api/method/" + cfg.SearchMethod, body: body}, nil
	}

	return requestPlan{}, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op.Method)
}

func resourcePath(doctype, name string) string {
	return "/api/resource/" + url.PathEscape(doctype) + "/" + url.PathEscape(name)
}

// mustJSON never fails for map/slice inputs built from decoded JSON.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func intPtr(v int) *int { return &v }
