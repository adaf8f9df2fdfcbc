package locator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-scripts/snapcrop/internal/browser"
	"github.com/go-scripts/snapcrop/internal/crop"
)

var (
	// ErrNoTableFound means no visible table survived the size and
	// visibility filters.
	ErrNoTableFound = errors.New("locator: no table found")
	// ErrHeadingNotFound means no heading text matched the pattern.
	ErrHeadingNotFound = errors.New("locator: heading not found")
	// ErrContainerTooSmall means the located region has no usable extent.
	ErrContainerTooSmall = errors.New("locator: container too small")
)

// Region is the locator's result: a handle to the chosen element plus its
// measured box. Heading-anchored runs also carry the heading box and, when
// found, the trailing marker that bounds the capture from below.
//
// The caller owns Element and must Release it on every path.
type Region struct {
	Element *browser.Element
	Box     crop.Box
	Heading *crop.Box
	Marker  *crop.Box
}

// Locator runs the region policies against one tab.
type Locator struct {
	tab *browser.Tab
}

// New returns a Locator bound to the tab.
func New(tab *browser.Tab) *Locator {
	return &Locator{tab: tab}
}

// tableMeasure mirrors the JSON emitted by tableBoxesJS.
type tableMeasure struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LargestTable returns the visible table with the greatest rendered area,
// first in document order on ties.
func (l *Locator) LargestTable() (*Region, error) {
	var measures []tableMeasure
	if err := l.tab.Eval(tableBoxesJS(), &measures); err != nil {
		return nil, err
	}
	if len(measures) == 0 {
		return nil, ErrNoTableFound
	}

	boxes := make([]crop.Box, len(measures))
	for i, m := range measures {
		boxes[i] = crop.Box{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	}
	pick := PickLargest(boxes)
	if pick < 0 {
		return nil, ErrNoTableFound
	}

	el, err := l.tab.Resolve(tableResolveJS(measures[pick].Index))
	if err != nil {
		return nil, err
	}
	return &Region{Element: el, Box: boxes[pick]}, nil
}

// CenteredBlock resolves the element under the viewport center and climbs
// to the first block-level visible ancestor of usable size. Degrades to the
// first content wrapper, then the body; this policy always succeeds unless
// the renderer itself fails.
func (l *Locator) CenteredBlock() (*Region, error) {
	var infos []nodeInfo
	if err := l.tab.Eval(centerChainJS(), &infos); err != nil {
		return nil, err
	}

	if head := buildChain(infos); head != nil {
		if n := ClimbToBlock(head, CenterMinWidth, CenterMinHeight); n != nil {
			cn := n.(*chainNode)
			el, err := l.tab.Resolve(centerResolveJS(cn.steps))
			if err != nil {
				return nil, err
			}
			return &Region{Element: el, Box: cn.Box()}, nil
		}
	}

	// The walk reached the root: fall back to a content wrapper or body.
	el, err := l.tab.Resolve(centerFallbackResolveJS())
	if err != nil {
		return nil, err
	}
	box, err := el.BoundingBox()
	if err != nil {
		el.Release()
		return nil, err
	}
	if box.Empty() {
		el.Release()
		return nil, fmt.Errorf("%w: fallback body has no extent", ErrContainerTooSmall)
	}
	return &Region{Element: el, Box: box}, nil
}

// headingEntry mirrors the JSON emitted by headingListJS.
type headingEntry struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// headingSnapshot mirrors the JSON emitted by headingSnapshotJS.
type headingSnapshot struct {
	Heading nodeBox    `json:"heading"`
	Chain   []nodeInfo `json:"chain"`
	Anchors []anchor   `json:"anchors"`
}

type nodeBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (n nodeBox) box() crop.Box {
	return crop.Box{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

type anchor struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HeadingAnchored finds the first heading (levels 1-6) whose text matches
// the pattern, then climbs to the preferred container. The container walk
// prefers wrapper matches of usable size, falls back to any block-level
// ancestor large enough, and finally to the heading itself.
func (l *Locator) HeadingAnchored(pattern string) (*Region, error) {
	match, err := compilePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("locator: pattern %q: %w", pattern, err)
	}

	var headings []headingEntry
	if err := l.tab.Eval(headingListJS, &headings); err != nil {
		return nil, err
	}
	idx := -1
	for _, h := range headings {
		if match(h.Text) {
			idx = h.Index
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: pattern %q", ErrHeadingNotFound, pattern)
	}

	var snap headingSnapshot
	if err := l.tab.Eval(headingSnapshotJS(idx), &snap); err != nil {
		return nil, err
	}
	headingBox := snap.Heading.box()
	if headingBox.Empty() {
		return nil, fmt.Errorf("%w: heading has no extent", ErrContainerTooSmall)
	}

	steps := 0
	containerBox := headingBox
	if head := buildChain(snap.Chain); head != nil {
		n := ClimbToWrapper(head, HeadingMinWidth, HeadingMinHeight)
		if n == nil {
			n = ClimbToBlock(head, HeadingMinWidth, HeadingMinHeight)
		}
		if n != nil {
			cn := n.(*chainNode)
			steps = cn.steps
			containerBox = cn.Box()
		}
	}

	region := &Region{
		Box:     containerBox,
		Heading: &headingBox,
	}
	// Trailing marker: the first anchor below the heading whose text
	// matches the same pattern bounds the capture from below.
	for _, a := range snap.Anchors {
		if match(a.Text) {
			region.Marker = &crop.Box{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
			break
		}
	}

	el, err := l.tab.Resolve(headingResolveJS(idx, steps))
	if err != nil {
		return nil, err
	}
	region.Element = el
	return region, nil
}

// compilePattern builds a case-insensitive matcher: a regexp when the
// pattern compiles, a plain substring fold otherwise.
func compilePattern(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re.MatchString, nil
	}
	needle := strings.ToLower(pattern)
	return func(s string) bool {
		return strings.Contains(strings.ToLower(s), needle)
	}, nil
}
