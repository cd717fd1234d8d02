// Package browser attaches to a Chrome instance over the DevTools
// protocol and exposes the DOM reads and tab lifecycle events the
// capture pipeline needs.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/config"
)

// Session owns a chromedp browser context and its allocator.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
}

// NewSession attaches to a running Chrome via its DevTools URL when
// configured, or launches a local instance otherwise.
func NewSession(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	var (
		allocCtx context.Context
		cancel   context.CancelFunc
	)

	if cfg.RemoteURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("no-first-run", true),
		)
		allocCtx, cancel = chromedp.NewExecAllocator(ctx, opts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, cancel},
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}

	// Force the browser to start now so attach failures surface here
	// rather than on the first action.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, eris.Wrap(err, "browser: start")
	}
	return s, nil
}

// Context returns the chromedp browser context for running actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Navigate loads the given URL in the attached tab and waits for the
// body to be ready.
func (s *Session) Navigate(url string) error {
	runCtx, cancel := s.withTimeout()
	defer cancel()
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	return eris.Wrapf(err, "browser: navigate %s", url)
}

// withTimeout derives a bounded context from the browser context. All
// chromedp actions must run on contexts derived from it.
func (s *Session) withTimeout() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return s.ctx, func() {}
	}
	return context.WithTimeout(s.ctx, s.timeout)
}

// Close tears down the browser context and allocator.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}
