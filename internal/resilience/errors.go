// Package resilience classifies pipeline errors and retries transient
// remote failures.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Sentinel errors for the pipeline's failure taxonomy. Handlers map these
// to machine-readable envelope codes at the message boundary.
var (
	// ErrUnsupportedPage means the inspected page is not a supported
	// profile page type.
	ErrUnsupportedPage = errors.New("page is not a supported profile page")

	// ErrNoIdentity means extraction could not resolve any identifying
	// field at all.
	ErrNoIdentity = errors.New("no identifying field could be resolved")

	// ErrGestureLost means a panel-open request arrived outside the
	// user-gesture window. It is never retried automatically; the user
	// must re-trigger via a directly-user-initiated control.
	ErrGestureLost = errors.New("user gesture lost: re-trigger from the page control")

	// ErrNotEligible means the panel cannot open for the tab's current URL.
	ErrNotEligible = errors.New("panel not eligible for this page")

	// ErrPanelUnavailable means the host panel API is not available.
	ErrPanelUnavailable = errors.New("panel api unavailable")

	// ErrAlreadyExists is the duplicate rejection: the record is already
	// present in the CRM. A rejection, not a pipeline failure.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrAuthExpired means the session token is invalid and a single
	// refresh attempt did not recover it.
	ErrAuthExpired = errors.New("authentication expired: sign in again")
)

// ValidationError aggregates per-field problems that block record creation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Validation failed: " + strings.Join(e.Fields, "; ")
}

// NewValidationError builds a ValidationError from field messages.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// TransientError wraps an error that is safe to retry (429, 5xx, network
// timeout).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps an error as transient with an optional HTTP
// status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient returns true if the error chain contains a TransientError
// or matches common transient network failure patterns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String heuristics for errors wrapped by HTTP clients.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
