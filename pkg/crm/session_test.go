package crm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/resilience"
)

// countingAuth counts Authenticate calls and serves a fixed token.
type countingAuth struct {
	calls  atomic.Int64
	token  string
	expiry time.Time
	err    error
}

func (a *countingAuth) Authenticate(_ context.Context) (string, time.Time, error) {
	a.calls.Add(1)
	if a.err != nil {
		return "", time.Time{}, a.err
	}
	return a.token, a.expiry, nil
}

func TestSession_LazyRefresh(t *testing.T) {
	auth := &countingAuth{token: "tok-1", expiry: time.Now().Add(time.Hour)}
	s := NewSession(auth)

	assert.False(t, s.Valid(), "fresh session holds no token")

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.EqualValues(t, 1, auth.calls.Load())

	// A valid token is reused without a second authenticate.
	token, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.EqualValues(t, 1, auth.calls.Load())
	assert.True(t, s.Valid())
}

func TestSession_RestoreSkipsRefresh(t *testing.T) {
	auth := &countingAuth{token: "fresh"}
	s := NewSession(auth)
	s.Restore("persisted", time.Now().Add(time.Hour))

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
	assert.Zero(t, auth.calls.Load())
}

func TestSession_StaleTokenRefreshes(t *testing.T) {
	auth := &countingAuth{token: "tok-2", expiry: time.Now().Add(time.Hour)}
	s := NewSession(auth)
	// Within the expiry skew counts as stale.
	s.Restore("old", time.Now().Add(30*time.Second))

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.EqualValues(t, 1, auth.calls.Load())
}

func TestSession_InvalidateForcesRefresh(t *testing.T) {
	auth := &countingAuth{token: "tok-3", expiry: time.Now().Add(time.Hour)}
	s := NewSession(auth)

	_, err := s.Token(context.Background())
	require.NoError(t, err)

	s.Invalidate()
	assert.False(t, s.Valid())

	_, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, auth.calls.Load())
}

func TestSession_AuthFailureIsAuthExpired(t *testing.T) {
	auth := &countingAuth{err: eris.New("invalid_grant")}
	s := NewSession(auth)

	_, err := s.Token(context.Background())
	assert.ErrorIs(t, err, resilience.ErrAuthExpired)
}

func TestSession_ConcurrentRefreshCollapses(t *testing.T) {
	auth := &countingAuth{token: "tok-4", expiry: time.Now().Add(time.Hour)}
	s := NewSession(auth)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := s.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-4", token)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, auth.calls.Load(), "concurrent callers await one in-flight refresh")
}

func TestSession_Snapshot(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	auth := &countingAuth{token: "tok-5", expiry: expiry}
	s := NewSession(auth)

	_, err := s.Token(context.Background())
	require.NoError(t, err)

	token, gotExpiry := s.Snapshot()
	assert.Equal(t, "tok-5", token)
	assert.True(t, gotExpiry.Equal(expiry))
}
