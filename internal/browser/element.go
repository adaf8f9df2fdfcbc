package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/snapcrop/internal/crop"
)

// Element is a handle to one DOM node, backed by a CDP remote object.
// Handles hold renderer-side resources: Release must run on every exit
// path, success or failure.
type Element struct {
	tab      *Tab
	objectID runtime.RemoteObjectID
	released bool
}

// Release frees the renderer-side object. Safe to call more than once and
// safe to defer alongside the tab's Close.
func (e *Element) Release() {
	if e == nil || e.released {
		return
	}
	e.released = true
	// Best effort: a dead tab has already released everything.
	_ = chromedp.Run(e.tab.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return runtime.ReleaseObject(e.objectID).Do(ctx)
	}))
}

// BoundingBox measures the element's document-relative box in CSS pixels.
// When the rect comes back empty (display:none edge cases), it falls back
// to the DOM box model before giving up.
//
// Every measurement is invalidated by a later resize or content mutation;
// callers must re-measure rather than cache across those.
func (e *Element) BoundingBox() (crop.Box, error) {
	var box crop.Box
	err := chromedp.Run(e.tab.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, exc, err := runtime.CallFunctionOn(`function() {
			const r = this.getBoundingClientRect();
			return {
				x: r.x + window.scrollX,
				y: r.y + window.scrollY,
				width: r.width,
				height: r.height,
			};
		}`).WithObjectID(e.objectID).WithReturnByValue(true).Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("exception: %s", exc.Text)
		}
		if err := json.Unmarshal(obj.Value, &box); err != nil {
			return fmt.Errorf("decode rect: %w", err)
		}
		if !box.Empty() {
			return nil
		}
		return e.boxModelFallback(ctx, &box)
	}))
	if err != nil {
		return crop.Box{}, fmt.Errorf("browser: bounding box: %w", err)
	}
	return box, nil
}

// boxModelFallback asks the DOM domain for the content quad directly.
func (e *Element) boxModelFallback(ctx context.Context, box *crop.Box) error {
	nodeID, err := dom.RequestNode(e.objectID).Do(ctx)
	if err != nil {
		return fmt.Errorf("request node: %w", err)
	}
	model, err := dom.GetBoxModel().WithNodeID(nodeID).Do(ctx)
	if err != nil {
		return fmt.Errorf("box model: %w", err)
	}
	if model == nil || len(model.Content) < 8 {
		return fmt.Errorf("no box model content")
	}
	// Content quad: x1,y1,x2,y2,x3,y3,x4,y4 clockwise from top-left.
	box.X = model.Content[0]
	box.Y = model.Content[1]
	box.Width = model.Content[2] - model.Content[0]
	box.Height = model.Content[5] - model.Content[1]
	return nil
}

// OuterHTML extracts the element's serialized markup.
func (e *Element) OuterHTML() (string, error) {
	var markup string
	err := chromedp.Run(e.tab.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, exc, err := runtime.CallFunctionOn(`function() { return this.outerHTML; }`).
			WithObjectID(e.objectID).WithReturnByValue(true).Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("exception: %s", exc.Text)
		}
		return json.Unmarshal(obj.Value, &markup)
	}))
	if err != nil {
		return "", fmt.Errorf("browser: outer html: %w", err)
	}
	return markup, nil
}
