package browser

import (
	"context"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
)

// WatchTabs subscribes to DevTools target events and translates page
// lifecycle changes into TabEvents until ctx is done. The returned
// channel is never closed; the browser delivers destroyed-target
// events during its own teardown, after ctx is already cancelled, so
// consumers must select on ctx rather than wait for channel close.
func (s *Session) WatchTabs(ctx context.Context) (<-chan model.TabEvent, error) {
	events := make(chan model.TabEvent, 16)

	chromedp.ListenBrowser(s.ctx, func(ev any) {
		if out := tabEventFrom(ev); out != nil {
			sendTabEvent(ctx, events, *out)
		}
	})

	if err := chromedp.Run(s.ctx, target.SetDiscoverTargets(true)); err != nil {
		return nil, err
	}
	return events, nil
}

// tabEventFrom maps a DevTools target event to a TabEvent, or nil for
// events that do not concern page targets.
func tabEventFrom(ev any) *model.TabEvent {
	switch e := ev.(type) {
	case *target.EventTargetCreated:
		if e.TargetInfo.Type == "page" {
			return &model.TabEvent{
				Kind:  model.TabNavigated,
				TabID: string(e.TargetInfo.TargetID),
				URL:   e.TargetInfo.URL,
			}
		}
	case *target.EventTargetInfoChanged:
		if e.TargetInfo.Type == "page" {
			kind := model.TabNavigated
			if e.TargetInfo.Attached {
				kind = model.TabActivated
			}
			return &model.TabEvent{
				Kind:  kind,
				TabID: string(e.TargetInfo.TargetID),
				URL:   e.TargetInfo.URL,
			}
		}
	case *target.EventTargetDestroyed:
		return &model.TabEvent{
			Kind:  model.TabClosed,
			TabID: string(e.TargetID),
		}
	}
	return nil
}

// sendTabEvent delivers an event without ever blocking the DevTools
// listener. The browser keeps emitting destroyed-target events during
// its own teardown, after ctx is cancelled, so this must stay safe to
// call at any point in the session's lifetime.
func sendTabEvent(ctx context.Context, events chan<- model.TabEvent, out model.TabEvent) {
	select {
	case events <- out:
	case <-ctx.Done():
	default:
		// A stale event is superseded by the next one anyway.
		zap.L().Debug("browser: dropping tab event, channel full",
			zap.String("tab", out.TabID))
	}
}
