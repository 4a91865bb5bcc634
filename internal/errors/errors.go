package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ConnectivityMessage is the fixed text of every ConnectivityError.
const ConnectivityMessage = "unable to reach the service, check the network or the URL"

var (
	// ErrNotFound is matched by HTTPError values carrying a 404.
	ErrNotFound = stderrors.New("not found")

	// ErrTerminalStatus is returned when an order is DELIVERED or CANCELLED.
	ErrTerminalStatus = stderrors.New("order status is terminal")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConnectivityError means the backend could not be reached at all.
type ConnectivityError struct {
	Service string
	Err     error
}

func (e *ConnectivityError) Error() string { return ConnectivityMessage }

func (e *ConnectivityError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx backend response. Message is the best-effort text
// extracted from the body, or "HTTP <status>".
type HTTPError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// StatusMessage is the fallback text used when a body carries no message.
func StatusMessage(status int) string {
	return fmt.Sprintf("HTTP %d", status)
}

// DecodeError is a 2xx response whose payload failed to parse or validate.
type DecodeError struct {
	Service string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response from %s service: %v", e.Service, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RefreshError wraps a failed reload that followed a successful write.
type RefreshError struct {
	Slice string
	Err   error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("change applied but reloading %s failed: %v", e.Slice, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Is, As and Join re-export the standard helpers so callers need one import.
var (
	Is   = stderrors.Is
	As   = stderrors.As
	Join = stderrors.Join
	New  = stderrors.New
)

// Message returns the user-facing text of err. RefreshError keeps its
// wrapper text so the caller can tell the write went through.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var refresh *RefreshError
	if As(err, &refresh) {
		return refresh.Error()
	}
	var httpErr *HTTPError
	if As(err, &httpErr) {
		return httpErr.Message
	}
	var connErr *ConnectivityError
	if As(err, &connErr) {
		return ConnectivityMessage
	}
	return err.Error()
}
