package panel

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/resilience"
)

// GestureToken is single-use proof that an open request originated in a
// user gesture. It must be minted synchronously inside the originating
// event handler; any asynchronous hop before RequestOpen lets the
// window lapse, which is a distinct failure mode, not a generic error.
type GestureToken struct {
	TabID string

	mu     sync.Mutex
	issued time.Time
	used   bool
}

// MintGesture issues a token for the tab at the current instant. Call
// it directly in the user-event handler, before any await point.
func (c *Controller) MintGesture(tabID string) *GestureToken {
	return &GestureToken{TabID: tabID, issued: c.now()}
}

// TokenFromGesture rebuilds a token for an open request that crossed
// the message boundary carrying its originating gesture timestamp. A
// zero timestamp means the gesture context was lost in transit.
func (c *Controller) TokenFromGesture(tabID string, gestureAt time.Time) *GestureToken {
	if gestureAt.IsZero() {
		return nil
	}
	return &GestureToken{TabID: tabID, issued: gestureAt}
}

// consume marks the token spent, rejecting reuse and lapsed windows.
func (t *GestureToken) consume(now time.Time, window time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.used {
		return eris.Wrap(resilience.ErrGestureLost, "panel: gesture token reused")
	}
	t.used = true

	if now.Sub(t.issued) > window {
		return eris.Wrapf(resilience.ErrGestureLost,
			"panel: gesture window lapsed after %s", now.Sub(t.issued))
	}
	return nil
}
