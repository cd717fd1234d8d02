package crm

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/prospector/internal/resilience"
)

// Authenticator acquires a fresh bearer token from the identity provider.
type Authenticator interface {
	Authenticate(ctx context.Context) (token string, expiry time.Time, err error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context) (string, time.Time, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context) (string, time.Time, error) {
	return f(ctx)
}

// expirySkew refreshes slightly early so a token never expires mid-call.
const expirySkew = 2 * time.Minute

// Session holds the bearer token and its expiry. The token is refreshed
// lazily before use when stale; a refresh already in flight is awaited
// by concurrent callers rather than duplicated.
type Session struct {
	auth  Authenticator
	group singleflight.Group
	now   func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionClock overrides the expiry clock.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates a Session that acquires tokens through auth.
func NewSession(auth Authenticator, opts ...SessionOption) *Session {
	s := &Session{auth: auth, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore seeds the session from a persisted snapshot.
func (s *Session) Restore(token string, expiry time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiry = expiry
}

// Snapshot returns the current token and expiry for persistence.
func (s *Session) Snapshot() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.expiry
}

// Valid reports whether the session holds a token that is not stale.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	return s.token != "" && s.now().Add(expirySkew).Before(s.expiry)
}

// Token returns a usable bearer token, refreshing first when the held
// one is absent or stale. Concurrent refreshes collapse into one
// authenticate call.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.validLocked() {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("refresh", func() (any, error) {
		// Re-check: the refresh we piggybacked on may have already run.
		s.mu.Lock()
		if s.validLocked() {
			token := s.token
			s.mu.Unlock()
			return token, nil
		}
		s.mu.Unlock()

		token, expiry, err := s.auth.Authenticate(ctx)
		if err != nil {
			return "", eris.Wrap(resilience.ErrAuthExpired, err.Error())
		}
		s.mu.Lock()
		s.token = token
		s.expiry = expiry
		s.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate discards the held token, typically after a 401.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiry = time.Time{}
}
