package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/resilience"
)

// newTestClient creates a Client backed by an httptest server.
func newTestClient(t *testing.T, handler http.Handler) (Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	sf, err := gosf.Init(gosf.Creds{
		AccessToken: "test-token",
		Domain:      ts.URL,
	},
		gosf.WithValidateAuthentication(false),
		gosf.WithRoundTripper(http.DefaultTransport),
	)
	require.NoError(t, err)
	require.NotNil(t, sf)

	return NewClient(sf), ts
}

func TestClient_Query(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/query")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]any{
				{"Id": "003XX01", "Name": "Jane Smith", "Profile_URL__c": "https://example.com/in/jane"},
			},
		})
	})

	client, _ := newTestClient(t, handler)

	var contacts []ContactRecord
	err := client.Query(context.Background(), "SELECT Id, Name FROM Contact LIMIT 1", &contacts)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "003XX01", contacts[0].ID)
	assert.Equal(t, "Jane Smith", contacts[0].Name)
}

func TestClient_InsertOne(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/sobjects/Contact")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "003XX02", "success": true})
	})

	client, _ := newTestClient(t, handler)

	id, err := client.InsertOne(context.Background(), "Contact", map[string]any{
		"LastName": "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "003XX02", id)
}

// authFn fails with an auth error the first n calls, then succeeds.
type authFn struct {
	failures int
	calls    int
}

func (a *authFn) run() error {
	a.calls++
	if a.calls <= a.failures {
		return eris.New("401 unauthorized: invalid_session")
	}
	return nil
}

func validSession() *Session {
	auth := &countingAuth{token: "tok", expiry: time.Now().Add(time.Hour)}
	return NewSession(auth)
}

func TestCall_AuthErrorRefreshesOnceAndRetries(t *testing.T) {
	c := &sfClient{session: validSession()}
	fn := &authFn{failures: 1}

	err := c.call(context.Background(), "query", fn.run)
	require.NoError(t, err)
	assert.Equal(t, 2, fn.calls)
}

func TestCall_SecondAuthRejectionIsAuthExpired(t *testing.T) {
	c := &sfClient{session: validSession()}
	fn := &authFn{failures: 2}

	err := c.call(context.Background(), "query", fn.run)
	assert.ErrorIs(t, err, resilience.ErrAuthExpired)
	assert.Equal(t, 2, fn.calls, "exactly one refresh-and-retry, never a loop")
}

func TestCall_RefreshFailureIsAuthExpired(t *testing.T) {
	auth := &countingAuth{err: eris.New("invalid_grant")}
	c := &sfClient{session: NewSession(auth)}
	fn := &authFn{failures: 1}

	err := c.call(context.Background(), "query", fn.run)
	assert.ErrorIs(t, err, resilience.ErrAuthExpired)
	assert.Equal(t, 1, fn.calls)
}

func TestCall_NonAuthErrorPassesThrough(t *testing.T) {
	c := &sfClient{session: validSession()}
	wantErr := eris.New("500 server error")

	err := c.call(context.Background(), "query", func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestCall_NoSessionNoRetry(t *testing.T) {
	c := &sfClient{}
	fn := &authFn{failures: 1}

	err := c.call(context.Background(), "query", fn.run)
	require.Error(t, err)
	assert.Equal(t, 1, fn.calls)
}
