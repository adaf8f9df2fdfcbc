// Package synth re-renders extracted markup in a minimal standalone
// document so a region can be captured without the source page's
// stylesheet and chrome.
package synth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-scripts/snapcrop/internal/browser"
	"github.com/go-scripts/snapcrop/internal/crop"
)

// ErrSynthesisTimeout means the injected markup never produced a detectable
// element, which indicates malformed or unexpectedly-stripped input.
var ErrSynthesisTimeout = errors.New("synth: synthesized element not detectable")

// rootID is the wrapper element the injected markup lives in.
const rootID = "capture-root"

// Viewport clamp bounds in CSS pixels. The viewport grows to fit the
// synthesized content but never beyond the hard maximums.
const (
	MinWidth  = 600
	MaxWidth  = 3600
	MinHeight = 400
	MaxHeight = 10000
)

// Options controls one synthesis pass.
type Options struct {
	Theme      Theme
	PaddingPx  int
	Width      int64 // initial viewport width
	Height     int64 // initial viewport height
	Scale      float64
	StripLinks bool
	Timeout    time.Duration // element-detection timeout
}

func (o *Options) defaults() {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 900
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.PaddingPx < 0 {
		o.PaddingPx = 0
	}
}

// Render builds the standalone document around the markup, renders it in
// the tab at the requested viewport, grows the viewport to the content's
// full extent (clamped), and returns a handle to the synthesized root with
// its post-resize box.
//
// The box returned is measured after the final resize. A resize can move
// wrap points and change the element's geometry, so any earlier
// measurement is discarded rather than reused.
func Render(tab *browser.Tab, markup string, opts Options) (*browser.Element, crop.Box, error) {
	opts.defaults()

	if opts.StripLinks {
		stripped, err := StripLinks(markup)
		if err != nil {
			return nil, crop.Box{}, fmt.Errorf("synth: strip links: %w", err)
		}
		markup = stripped
	}

	if err := tab.SetViewport(opts.Width, opts.Height, opts.Scale); err != nil {
		return nil, crop.Box{}, err
	}
	if err := tab.SetContent(BuildDocument(markup, opts.Theme, opts.PaddingPx)); err != nil {
		return nil, crop.Box{}, err
	}
	if err := tab.WaitVisible("#"+rootID+" > *", opts.Timeout); err != nil {
		return nil, crop.Box{}, fmt.Errorf("%w after %s", ErrSynthesisTimeout, opts.Timeout)
	}

	// First measurement: the content's full scroll extent at the initial
	// viewport, used only to size the final viewport.
	var extent struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	measureJS := fmt.Sprintf(`(() => {
		const el = document.getElementById(%q);
		return {width: el.scrollWidth, height: el.scrollHeight};
	})()`, rootID)
	if err := tab.Eval(measureJS, &extent); err != nil {
		return nil, crop.Box{}, err
	}

	pad := float64(2 * opts.PaddingPx)
	w, h := GrowViewport(opts.Width, opts.Height, extent.Width+pad, extent.Height+pad)
	if w != opts.Width || h != opts.Height {
		if err := tab.SetViewport(w, h, opts.Scale); err != nil {
			return nil, crop.Box{}, err
		}
	}

	el, err := tab.Resolve(fmt.Sprintf("document.getElementById(%q)", rootID))
	if err != nil {
		return nil, crop.Box{}, err
	}
	// Re-measure after the resize; the pre-resize extent is stale.
	box, err := el.BoundingBox()
	if err != nil {
		el.Release()
		return nil, crop.Box{}, err
	}
	return el, box, nil
}

// GrowViewport returns the viewport size needed to lay out content of the
// given extent without scrolling, never shrinking below the current size's
// clamp floor and never exceeding the hard maximums.
func GrowViewport(curW, curH int64, contentW, contentH float64) (int64, int64) {
	w := clamp(int64(contentW)+1, MinWidth, MaxWidth)
	h := clamp(int64(contentH)+1, MinHeight, MaxHeight)
	if w < curW {
		w = curW
	}
	if h < curH {
		h = curH
	}
	return w, h
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
