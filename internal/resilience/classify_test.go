package resilience

import (
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   RemoteCategory
	}{
		{401, RemoteUnauthorized},
		{403, RemoteUnauthorized},
		{400, RemoteBadRequest},
		{404, RemoteBadRequest},
		{500, RemoteServerError},
		{503, RemoteServerError},
		{0, RemoteUnreachable},
		{302, RemoteUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyStatus(tt.status), "status %d", tt.status)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RemoteCategory
	}{
		{"nil", nil, RemoteUnknown},
		{"transient with status", NewTransientError(eris.New("throttled"), 503), RemoteServerError},
		{"transient network", eris.New("dial tcp: i/o timeout"), RemoteUnreachable},
		{"connection refused", syscall.ECONNREFUSED, RemoteUnreachable},
		{"unauthorized text", eris.New("INVALID_SESSION_ID: Session expired or invalid"), RemoteUnauthorized},
		{"bad request text", eris.New("REQUIRED_FIELD_MISSING: LastName"), RemoteBadRequest},
		{"server error text", eris.New("request failed: 500 Internal Server Error"), RemoteServerError},
		{"unclassified", eris.New("something odd"), RemoteUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	// Every category renders a non-empty toast message.
	for _, cat := range []RemoteCategory{
		RemoteUnauthorized, RemoteBadRequest, RemoteServerError, RemoteUnreachable, RemoteUnknown,
	} {
		assert.NotEmpty(t, UserMessage(cat))
	}
	assert.Contains(t, UserMessage(RemoteUnauthorized), "sign in")
	assert.Contains(t, UserMessage(RemoteUnreachable), "connection")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "request failed: 503 (server_error)",
		Describe(eris.New("request failed: 503")))
	assert.Equal(t, "something odd (unknown)",
		Describe(eris.New("something odd")))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(ErrAuthExpired))
	assert.True(t, IsAuthError(eris.Wrap(ErrAuthExpired, "crm: query")))
	assert.True(t, IsAuthError(eris.New("401 unauthorized")))
	assert.False(t, IsAuthError(eris.New("500 server error")))
	assert.False(t, IsAuthError(nil))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError(eris.New("x"), 0)))
	assert.True(t, IsTransient(eris.New("connection reset by peer")))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.False(t, IsTransient(eris.New("400 bad request")))
	assert.False(t, IsTransient(nil))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("name: name is required", "profile_url: profile URL is required")
	assert.Equal(t, "Validation failed: name: name is required; profile_url: profile URL is required", err.Error())
}
