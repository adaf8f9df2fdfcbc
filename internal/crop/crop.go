// Package crop turns raw CSS-pixel layout measurements into integer pixel
// rectangles suitable for a screenshot clip. All functions are pure; the
// browser is never consulted here.
package crop

import (
	"errors"
	"fmt"
	"math"
)

// BoundsSlack is the tolerance, in pixels, allowed between a finalized
// rectangle's far edge and the document extent before the measurement is
// considered stale.
const BoundsSlack = 4

var (
	// ErrRegionTooSmall means the final rectangle rounded below 1px in
	// width or height.
	ErrRegionTooSmall = errors.New("crop: region too small")
	// ErrOutOfBounds means the clamped rectangle still exceeds the
	// document's rendered extent beyond rounding slack. The measurement
	// is stale and should be redone, not corrected.
	ErrOutOfBounds = errors.New("crop: rectangle out of document bounds")
)

// Box is a raw bounding box in CSS pixels, document-relative.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rendered area of the box.
func (b Box) Area() float64 { return b.Width * b.Height }

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Empty reports whether the box has no rendered extent.
func (b Box) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Rect is the final integer pixel rectangle passed to a capture call.
type Rect struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int64 { return r.Y + r.Height }

// Padding is the per-side expansion applied around a located region.
type Padding struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Uniform returns a Padding with the same value on all four sides.
func Uniform(px float64) Padding {
	return Padding{Top: px, Right: px, Bottom: px, Left: px}
}

// Pad expands the box symmetrically by the padding on each side.
func Pad(b Box, p Padding) Box {
	return Box{
		X:      b.X - p.Left,
		Y:      b.Y - p.Top,
		Width:  b.Width + p.Left + p.Right,
		Height: b.Height + p.Top + p.Bottom,
	}
}

// ClampOrigin moves the top-left corner to >= 0 on both axes, keeping the
// far edges in place. Idempotent: clamping an already-clamped box is a
// no-op.
func ClampOrigin(b Box) Box {
	if b.X < 0 {
		b.Width += b.X
		b.X = 0
	}
	if b.Y < 0 {
		b.Height += b.Y
		b.Y = 0
	}
	return b
}

// Round converts a box to integer pixels: origin rounded down, dimensions
// rounded up, with a 1px floor on width and height.
func Round(b Box) Rect {
	r := Rect{
		X:      int64(math.Floor(b.X)),
		Y:      int64(math.Floor(b.Y)),
		Width:  int64(math.Ceil(b.Width)),
		Height: int64(math.Ceil(b.Height)),
	}
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}

// Scale converts a rectangle from CSS pixels to device pixels by the given
// device pixel ratio, rounding to the nearest integer device pixel. Only
// correct when the raster being cropped was produced at the same ratio.
func Scale(r Rect, dpr float64) Rect {
	if dpr == 1 {
		return r
	}
	return Rect{
		X:      int64(math.Round(float64(r.X) * dpr)),
		Y:      int64(math.Round(float64(r.Y) * dpr)),
		Width:  int64(math.Round(float64(r.Width) * dpr)),
		Height: int64(math.Round(float64(r.Height) * dpr)),
	}
}

// Bounded combines a heading box with its containing column into a single
// capture box: left and right edges come from the column, the top from the
// heading. The bottom is the nearest of the trailing marker, the column's
// own bottom edge, and pageBottom; a marker sitting below the column never
// extends the capture past the column.
// The chain is best-effort; unusual layouts can yield a plausible but
// imperfect rectangle.
func Bounded(heading, column Box, marker *Box, pageBottom float64) Box {
	top := heading.Y
	bottom := column.Bottom()
	if marker != nil && marker.Y > top && marker.Y < bottom {
		bottom = marker.Y
	}
	if pageBottom > 0 && bottom > pageBottom {
		bottom = pageBottom
	}
	return Box{
		X:      column.X,
		Y:      top,
		Width:  column.Width,
		Height: bottom - top,
	}
}

// Finalize runs the full pipeline on one raw measurement: pad, clamp the
// origin, round to integer pixels, then validate against the document
// extent. pageW/pageH of zero disable the bounds check (extent unknown).
//
// Callers must finalize from a fresh measurement after any viewport resize;
// a resize can move wrap points and invalidate the earlier box.
func Finalize(b Box, p Padding, pageW, pageH float64) (Rect, error) {
	padded := ClampOrigin(Pad(b, p))
	if math.Ceil(padded.Width) < 1 || math.Ceil(padded.Height) < 1 {
		return Rect{}, fmt.Errorf("%w: %.1fx%.1f after padding", ErrRegionTooSmall, padded.Width, padded.Height)
	}
	r := Round(padded)
	if pageW > 0 && float64(r.Right()) > pageW+BoundsSlack {
		return Rect{}, fmt.Errorf("%w: right edge %d exceeds page width %.0f", ErrOutOfBounds, r.Right(), pageW)
	}
	if pageH > 0 && float64(r.Bottom()) > pageH+BoundsSlack {
		return Rect{}, fmt.Errorf("%w: bottom edge %d exceeds page height %.0f", ErrOutOfBounds, r.Bottom(), pageH)
	}
	return r, nil
}

// Fit shrinks the rectangle's far edges to the page extent without moving
// the origin. Used when the caller prefers a trimmed capture over an
// ErrOutOfBounds retry, e.g. a region padded past the document edge by
// less than the slack.
func Fit(r Rect, pageW, pageH float64) Rect {
	if pageW > 0 && float64(r.Right()) > pageW {
		r.Width = int64(pageW) - r.X
	}
	if pageH > 0 && float64(r.Bottom()) > pageH {
		r.Height = int64(pageH) - r.Y
	}
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}
