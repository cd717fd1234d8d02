package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/panel"
)

// memStore implements the store surface the handlers touch.
type memStore struct {
	mu      sync.Mutex
	records []model.ImportRecord
	prefs   *model.Preferences
	token   string
	expiry  time.Time
}

func (m *memStore) SaveLastProfile(_ context.Context, _ *model.ExtractedProfile) error { return nil }
func (m *memStore) LastProfile(_ context.Context) (*model.ExtractedProfile, error)     { return nil, nil }

func (m *memStore) AppendImportRecord(_ context.Context, rec model.ImportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) ListImportRecords(_ context.Context, limit int) ([]model.ImportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	return append([]model.ImportRecord(nil), m.records[:limit]...), nil
}

func (m *memStore) Preferences(_ context.Context) (model.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs != nil {
		return *m.prefs, nil
	}
	return model.DefaultPreferences(), nil
}

func (m *memStore) SavePreferences(_ context.Context, prefs model.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = &prefs
	return nil
}

func (m *memStore) SaveAuthSession(_ context.Context, token string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.expiry = token, expiry
	return nil
}

func (m *memStore) AuthSession(_ context.Context) (string, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.expiry, nil
}

func (m *memStore) Migrate(_ context.Context) error { return nil }
func (m *memStore) Close() error                    { return nil }

type openRecorder struct {
	opened []string
}

func (o *openRecorder) Open(_ context.Context, tabID string) error {
	o.opened = append(o.opened, tabID)
	return nil
}

func newPanelDeps(t *testing.T) (Deps, *openRecorder) {
	t.Helper()
	opener := &openRecorder{}
	controller := panel.New(
		func(url string) bool { return strings.Contains(url, "/in/") },
		time.Second,
		panel.WithOpener(opener),
	)
	controller.SetEligibility("t1", "https://example.com/in/jane")
	return Deps{Panel: controller, Store: &memStore{}}, opener
}

func TestHandleOpenPanel_WithGesture(t *testing.T) {
	d, opener := newPanelDeps(t)
	r := New(d)

	payload, _ := json.Marshal(map[string]any{"gesture_at_ms": time.Now().UnixMilli()})
	env := r.Dispatch(context.Background(), model.Message{
		Type:    model.MsgOpenPanelGesture,
		TabID:   "t1",
		Payload: payload,
	})

	assert.True(t, env.Success, "error: %s", env.Error)
	assert.Equal(t, []string{"t1"}, opener.opened)
}

func TestHandleOpenPanel_GestureContextLost(t *testing.T) {
	d, opener := newPanelDeps(t)
	r := New(d)

	// No gesture timestamp in the payload at all.
	env := r.Dispatch(context.Background(), model.Message{
		Type:  model.MsgOpenPanelGesture,
		TabID: "t1",
	})

	assert.False(t, env.Success)
	assert.Equal(t, "gesture_lost", env.Code)
	assert.Empty(t, opener.opened)
}

func TestHandleOpenPanel_StaleGesture(t *testing.T) {
	d, opener := newPanelDeps(t)
	r := New(d)

	stale := time.Now().Add(-5 * time.Second).UnixMilli()
	payload, _ := json.Marshal(map[string]any{"gesture_at_ms": stale})
	env := r.Dispatch(context.Background(), model.Message{
		Type:    model.MsgOpenPanelGesture,
		TabID:   "t1",
		Payload: payload,
	})

	assert.False(t, env.Success)
	assert.Equal(t, "gesture_lost", env.Code)
	assert.Empty(t, opener.opened)
}

func TestHandleGetHistory(t *testing.T) {
	st := &memStore{}
	for i := 0; i < 3; i++ {
		require.NoError(t, st.AppendImportRecord(context.Background(), model.ImportRecord{
			ID:   fmt.Sprintf("r%d", i),
			Type: model.RecordContact,
			Name: fmt.Sprintf("Contact %d", i),
		}))
	}
	r := New(Deps{Store: st})

	env := r.Dispatch(context.Background(), model.Message{Type: model.MsgGetHistory})
	require.True(t, env.Success)
	records, ok := env.Data.([]model.ImportRecord)
	require.True(t, ok)
	assert.Len(t, records, 3)
}

func TestPreferencesRoundTrip(t *testing.T) {
	st := &memStore{}
	r := New(Deps{Store: st})

	env := r.Dispatch(context.Background(), model.Message{Type: model.MsgGetPreferences})
	require.True(t, env.Success)
	assert.Equal(t, model.DefaultPreferences(), env.Data)

	payload, _ := json.Marshal(model.Preferences{DuplicateChecking: false, Notifications: true})
	env = r.Dispatch(context.Background(), model.Message{Type: model.MsgSetPreferences, Payload: payload})
	require.True(t, env.Success)

	env = r.Dispatch(context.Background(), model.Message{Type: model.MsgGetPreferences})
	require.True(t, env.Success)
	prefs, ok := env.Data.(model.Preferences)
	require.True(t, ok)
	assert.False(t, prefs.DuplicateChecking)
	assert.True(t, prefs.Notifications)
}

func TestHandleCheckAuth_NoSession(t *testing.T) {
	r := New(Deps{Store: &memStore{}})
	env := r.Dispatch(context.Background(), model.Message{Type: model.MsgCheckAuth})
	require.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["authenticated"])
}
