package resilience

import (
	"errors"
	"fmt"
	"strings"
)

// RemoteCategory is a user-readable classification of a remote failure.
type RemoteCategory string

const (
	RemoteUnauthorized RemoteCategory = "unauthorized"
	RemoteBadRequest   RemoteCategory = "bad_request"
	RemoteServerError  RemoteCategory = "server_error"
	RemoteUnreachable  RemoteCategory = "unreachable"
	RemoteUnknown      RemoteCategory = "unknown"
)

// ClassifyStatus maps an HTTP status from the remote CRM into a
// user-readable category.
func ClassifyStatus(status int) RemoteCategory {
	switch {
	case status == 401 || status == 403:
		return RemoteUnauthorized
	case status >= 400 && status < 500:
		return RemoteBadRequest
	case status >= 500:
		return RemoteServerError
	case status == 0:
		return RemoteUnreachable
	default:
		return RemoteUnknown
	}
}

// ClassifyError maps any remote error into a category, preferring an
// explicit status code carried by a TransientError in the chain.
func ClassifyError(err error) RemoteCategory {
	if err == nil {
		return RemoteUnknown
	}
	var te *TransientError
	if errors.As(err, &te) && te.StatusCode != 0 {
		return ClassifyStatus(te.StatusCode)
	}
	if IsTransient(err) {
		return RemoteUnreachable
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid_session") || strings.Contains(msg, "session expired"):
		return RemoteUnauthorized
	case strings.Contains(msg, "400") || strings.Contains(msg, "bad request") ||
		strings.Contains(msg, "required_field_missing") || strings.Contains(msg, "malformed"):
		return RemoteBadRequest
	case strings.Contains(msg, "500") || strings.Contains(msg, "503") ||
		strings.Contains(msg, "server error"):
		return RemoteServerError
	default:
		return RemoteUnknown
	}
}

// UserMessage renders a category into a short message fit for a toast.
func UserMessage(cat RemoteCategory) string {
	switch cat {
	case RemoteUnauthorized:
		return "CRM rejected the request: sign in again"
	case RemoteBadRequest:
		return "CRM rejected the record: check required fields"
	case RemoteServerError:
		return "CRM is having trouble: try again shortly"
	case RemoteUnreachable:
		return "CRM is unreachable: check your connection"
	default:
		return "import failed"
	}
}

// IsAuthError reports whether the error chain indicates an expired or
// rejected session.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthExpired) {
		return true
	}
	return ClassifyError(err) == RemoteUnauthorized
}

// Describe renders an error with its remote category for logging.
func Describe(err error) string {
	return fmt.Sprintf("%s (%s)", err, ClassifyError(err))
}
