// Package browser wraps chromedp with the narrow renderer surface the
// capture pipeline needs: a shared headless Chrome session, per-URL tabs
// with timeouts, element handles that must be released, viewport emulation,
// and clipped screenshot capture.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// Session owns one headless Chrome process shared across all captures in a
// run. Tabs are cheap; the process is not.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewSession launches headless Chrome and returns a Session ready to open
// tabs. Call Close when the run is finished.
func NewSession(ctx context.Context) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so the first capture does not
	// pay the launch cost inside its own timeout.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	return &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close tears down the browser process.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

// OpenTab creates a fresh tab with its own deadline. The returned Tab must
// be closed on every exit path; a failed capture in one tab leaves the
// session usable for the next URL.
func (s *Session) OpenTab(timeout time.Duration) *Tab {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	ctx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	return &Tab{
		ctx: ctx,
		cancel: func() {
			timeoutCancel()
			tabCancel()
		},
	}
}
