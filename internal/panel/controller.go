// Package panel owns the per-tab visibility state of the side panel and
// enforces the user-gesture timing constraint on open requests.
package panel

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/resilience"
)

// Opener performs the host-controlled panel open. The host API enforces
// that open happens inside a user gesture; the controller enforces the
// same window on its side so a lost gesture fails with a specific error
// instead of a host rejection.
type Opener interface {
	Open(ctx context.Context, tabID string) error
}

// Controller is the single writer of per-tab panel state. All state
// changes flow through tab/window lifecycle events.
type Controller struct {
	mu        sync.Mutex
	states    map[string]*model.PanelState
	supported func(url string) bool
	window    time.Duration
	opener    Opener
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithOpener sets the host panel open implementation.
func WithOpener(o Opener) Option {
	return func(c *Controller) { c.opener = o }
}

// WithClock overrides the gesture clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New builds a Controller. supported decides per-URL eligibility and
// window bounds how long after a user gesture an open is still honored.
func New(supported func(string) bool, window time.Duration, opts ...Option) *Controller {
	c := &Controller{
		states:    make(map[string]*model.PanelState),
		supported: supported,
		window:    window,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleTabEvent re-evaluates panel state for the event's tab. Every
// relevant event re-evaluates, not only navigation, so a panel left
// open while the user switches tabs is corrected for the active tab.
func (c *Controller) HandleTabEvent(evt model.TabEvent) {
	switch evt.Kind {
	case model.TabClosed:
		c.Forget(evt.TabID)
	case model.TabNavigated, model.TabActivated, model.WindowFocused:
		c.SetEligibility(evt.TabID, evt.URL)
	}
}

// SetEligibility recomputes eligibility for the tab's current URL.
// Enabled is true only while the tab is eligible.
func (c *Controller) SetEligibility(tabID, url string) {
	eligible := c.supported(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[tabID]
	if !ok {
		st = &model.PanelState{TabID: tabID}
		c.states[tabID] = st
	}
	if st.Eligible != eligible {
		zap.L().Debug("panel: eligibility changed",
			zap.String("tab", tabID),
			zap.Bool("eligible", eligible),
			zap.String("url", url),
		)
	}
	st.Eligible = eligible
	st.Enabled = eligible
	st.URL = url
}

// State returns a copy of the tab's panel state. Unknown tabs are
// disabled.
func (c *Controller) State(tabID string) model.PanelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.states[tabID]; ok {
		return *st
	}
	return model.PanelState{TabID: tabID}
}

// Forget drops state for a closed tab.
func (c *Controller) Forget(tabID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, tabID)
}

// RequestOpen opens the panel for the token's tab. The token must have
// been minted synchronously inside the originating user event; a token
// that is stale, reused, or absent fails with ErrGestureLost and is
// never retried here.
func (c *Controller) RequestOpen(ctx context.Context, token *GestureToken) error {
	if token == nil {
		return eris.Wrap(resilience.ErrGestureLost, "panel: open without gesture")
	}
	if err := token.consume(c.now(), c.window); err != nil {
		return err
	}

	st := c.State(token.TabID)
	if !st.Eligible {
		return eris.Wrapf(resilience.ErrNotEligible, "panel: tab %s", token.TabID)
	}
	if c.opener == nil {
		return eris.Wrap(resilience.ErrPanelUnavailable, "panel: no opener")
	}

	if err := c.opener.Open(ctx, token.TabID); err != nil {
		return eris.Wrapf(err, "panel: open tab %s", token.TabID)
	}
	zap.L().Info("panel: opened", zap.String("tab", token.TabID))
	return nil
}
