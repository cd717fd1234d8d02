package model

// PanelState is the per-tab visibility state of the side panel. It is
// mutated only by the panel controller and never persisted beyond the
// session.
type PanelState struct {
	TabID    string `json:"tab_id"`
	Enabled  bool   `json:"enabled"`
	Eligible bool   `json:"eligible"`
	URL      string `json:"url,omitempty"`
}

// TabEventKind identifies the browser lifecycle event that triggered a
// panel re-evaluation.
type TabEventKind string

const (
	TabNavigated  TabEventKind = "navigated"
	TabActivated  TabEventKind = "activated"
	WindowFocused TabEventKind = "window_focused"
	TabClosed     TabEventKind = "closed"
)

// TabEvent is a browser lifecycle event routed to the panel controller.
type TabEvent struct {
	Kind  TabEventKind `json:"kind"`
	TabID string       `json:"tab_id"`
	URL   string       `json:"url,omitempty"`
}
