package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/snapcrop/internal/crop"
)

// Tab is one browser tab bound to a deadline. All measurement and capture
// calls for a single URL go through the same Tab.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Context exposes the tab's context for chromedp actions.
func (t *Tab) Context() context.Context { return t.ctx }

// Close releases the tab and its deadline.
func (t *Tab) Close() { t.cancel() }

// Navigate loads the URL and waits for the body to be ready, plus an
// optional settle delay for pages that render after load.
func (t *Tab) Navigate(url string, settle time.Duration) error {
	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if settle > 0 {
		tasks = append(tasks, chromedp.Sleep(settle))
	}
	if err := chromedp.Run(t.ctx, tasks...); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

// SetContent replaces the tab's document with the given HTML. The tab is
// first pointed at about:blank so the new document starts from a clean
// frame.
func (t *Tab) SetContent(html string) error {
	err := chromedp.Run(t.ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("browser: set content: %w", err)
	}
	return nil
}

// SetViewport overrides the tab's viewport size and device pixel ratio.
// Any bounding box measured before this call is invalid afterwards.
func (t *Tab) SetViewport(width, height int64, dpr float64) error {
	if dpr <= 0 {
		dpr = 1
	}
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(width, height, dpr, false).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("browser: set viewport %dx%d@%g: %w", width, height, dpr, err)
	}
	return nil
}

// Eval runs a JS expression and unmarshals its JSON value into out.
func (t *Tab) Eval(js string, out any) error {
	if err := chromedp.Run(t.ctx, chromedp.Evaluate(js, out)); err != nil {
		return fmt.Errorf("browser: evaluate: %w", err)
	}
	return nil
}

// WaitVisible blocks until the selector matches a visible element or the
// deadline expires.
func (t *Tab) WaitVisible(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

// Resolve evaluates an expression that yields a DOM element and returns a
// handle to it. The expression must not return by value. The caller owns
// the handle and must Release it.
func (t *Tab) Resolve(expr string) (*Element, error) {
	var el *Element
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, exc, err := runtime.Evaluate(expr).Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("exception: %s", exc.Text)
		}
		if obj == nil || obj.ObjectID == "" {
			return fmt.Errorf("expression yielded no element")
		}
		el = &Element{tab: t, objectID: obj.ObjectID}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("browser: resolve element: %w", err)
	}
	return el, nil
}

// PageExtent returns the document's full rendered size in CSS pixels.
func (t *Tab) PageExtent() (width, height float64, err error) {
	err = chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, _, _, _, cssContentSize, err := page.GetLayoutMetrics().Do(ctx)
		if err != nil {
			return err
		}
		if cssContentSize == nil {
			return fmt.Errorf("no content size reported")
		}
		width = cssContentSize.Width
		height = cssContentSize.Height
		return nil
	}))
	if err != nil {
		return 0, 0, fmt.Errorf("browser: layout metrics: %w", err)
	}
	return width, height, nil
}

// CaptureClip takes a PNG screenshot of exactly the given rectangle,
// in CSS pixels. scale multiplies the output resolution; 1 captures at
// CSS-pixel resolution, the device pixel ratio captures at native.
func (t *Tab) CaptureClip(r crop.Rect, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	var buf []byte
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&page.Viewport{
				X:      float64(r.X),
				Y:      float64(r.Y),
				Width:  float64(r.Width),
				Height: float64(r.Height),
				Scale:  scale,
			}).
			WithCaptureBeyondViewport(true).
			WithFromSurface(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("browser: clip capture: %w", err)
	}
	return buf, nil
}

// CaptureFull takes a PNG screenshot of the entire rendered page with no
// clip. The raster comes out at the emulated device pixel ratio, so a
// caller cutting a CSS-pixel rectangle from it must scale the rectangle
// first.
func (t *Tab) CaptureFull() ([]byte, error) {
	var buf []byte
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithCaptureBeyondViewport(true).
			WithFromSurface(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("browser: full capture: %w", err)
	}
	return buf, nil
}
