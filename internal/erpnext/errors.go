package erpnext

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrUnsupportedOperation marks a verb the translator does not know.
// It is always rejected locally and never reaches the backend.
var ErrUnsupportedOperation = errors.New("erpnext: unsupported operation")

// Error is the single failure shape crossing this package's boundary.
// Every heterogeneous source (backend error bodies, transport
// failures, timeouts) is converted into it before callers see it.
type Error struct {
	Message    string
	StatusCode int
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("erpnext: %s (status %d)", e.Message, e.StatusCode)
	}
	return "erpnext: " + e.Message
}

// IsConnection reports whether the error represents a transport or
// timeout failure rather than a backend verdict.
func (e *Error) IsConnection() bool {
	return e.StatusCode == 0
}

// newBackendError extracts the message from an ERPNext error body.
// The backend reports either message or exc depending on the failure.
func newBackendError(status int, body map[string]any) *Error {
	msg := "ERPNext operation failed"
	if m, ok := body["message"].(string); ok && m != "" {
		msg = m
	} else if exc, ok := body["exc"].(string); ok && exc != "" {
		msg = exc
	}
	return &Error{Message: msg, StatusCode: status, Details: body}
}

// NormalizeError converts any failure into *Error. Existing *Error
// values pass through untouched so status codes survive rewrapping.
func NormalizeError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		msg = "request timed out"
	}
	return &Error{Message: msg}
}
