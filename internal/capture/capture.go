// Package capture orchestrates one URL's full pipeline: navigate, locate a
// region under the selected policy, optionally re-render it in a clean
// document, compute the crop rectangle, and take the screenshot.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/snapcrop/internal/browser"
	"github.com/go-scripts/snapcrop/internal/crop"
	"github.com/go-scripts/snapcrop/internal/locator"
	"github.com/go-scripts/snapcrop/internal/synth"
)

// Mode selects the capture policy for a run.
type Mode string

const (
	// ModeTable clips the largest visible table in place.
	ModeTable Mode = "table"
	// ModeCenter clips the block under the viewport center.
	ModeCenter Mode = "center"
	// ModeHeading clips from a matched heading down to its trailing
	// marker or container bottom.
	ModeHeading Mode = "heading"
	// ModeSynth extracts the largest table's markup and re-renders it in
	// a clean standalone document before clipping.
	ModeSynth Mode = "synth"
)

// Valid reports whether m names a known capture mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeTable, ModeCenter, ModeHeading, ModeSynth:
		return true
	}
	return false
}

// Options configures the pipeline. Zero values take the documented
// defaults.
type Options struct {
	Mode           Mode
	HeadingPattern string
	PaddingPx      float64
	ViewportWidth  int64
	ViewportHeight int64
	Scale          float64
	NavTimeout     time.Duration
	SettleTime     time.Duration
	SynthTimeout   time.Duration
	Theme          synth.Theme
	StripLinks     bool

	// OnStage, when set, receives coarse progress for the URL being
	// captured ("navigating", "locating region", ...).
	OnStage func(url, stage string)
}

func (o *Options) defaults() {
	if o.Mode == "" {
		o.Mode = ModeTable
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = 1366
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = 900
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 60 * time.Second
	}
	if o.SynthTimeout <= 0 {
		o.SynthTimeout = 15 * time.Second
	}
}

// Result is one finished capture: the PNG bytes and the deterministic
// filename derived from the source URL. Immutable once produced.
type Result struct {
	PNG        []byte
	Filename   string
	URL        string
	Mode       Mode
	CapturedAt time.Time
}

// Pipeline runs captures against a shared browser session. Each URL gets
// its own tab; a failure in one leaves the session usable for the next.
type Pipeline struct {
	session *browser.Session
	opts    Options
	logger  *log.Logger
	now     func() time.Time
}

// New builds a Pipeline. The session is owned by the caller.
func New(session *browser.Session, opts Options, logger *log.Logger) *Pipeline {
	opts.defaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{session: session, opts: opts, logger: logger, now: time.Now}
}

// Capture runs the full pipeline for one URL. Every renderer-side resource
// acquired along the way is released on success and failure alike.
func (p *Pipeline) Capture(rawURL string) (*Result, error) {
	tab := p.session.OpenTab(p.opts.NavTimeout)
	defer tab.Close()

	if err := tab.SetViewport(p.opts.ViewportWidth, p.opts.ViewportHeight, p.opts.Scale); err != nil {
		return nil, err
	}
	p.stage(rawURL, "navigating")
	if err := tab.Navigate(rawURL, p.opts.SettleTime); err != nil {
		return nil, err
	}

	p.stage(rawURL, "locating region")
	loc := locator.New(tab)
	var png []byte
	var err error
	switch p.opts.Mode {
	case ModeSynth:
		png, err = p.captureSynthesized(rawURL, tab, loc)
	default:
		png, err = p.captureDirect(rawURL, tab, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", rawURL, err)
	}

	ts := p.now()
	return &Result{
		PNG:        png,
		Filename:   Filename(rawURL, p.opts.Mode, ts),
		URL:        rawURL,
		Mode:       p.opts.Mode,
		CapturedAt: ts,
	}, nil
}

// captureDirect locates the region and clips it in the source page.
func (p *Pipeline) captureDirect(rawURL string, tab *browser.Tab, loc *locator.Locator) ([]byte, error) {
	region, err := p.locate(loc)
	if err != nil {
		return nil, err
	}
	defer region.Element.Release()

	rect, err := p.finalRect(tab, region)
	if err != nil {
		return nil, err
	}
	p.stage(rawURL, "clipping screenshot")
	return p.clip(tab, rect)
}

// captureSynthesized extracts the largest table's markup and re-renders it
// in an isolated tab before clipping.
func (p *Pipeline) captureSynthesized(rawURL string, tab *browser.Tab, loc *locator.Locator) ([]byte, error) {
	region, err := loc.LargestTable()
	if err != nil {
		return nil, err
	}
	markup, err := region.Element.OuterHTML()
	region.Element.Release()
	if err != nil {
		return nil, err
	}

	p.stage(rawURL, "rendering document")
	synthTab := p.session.OpenTab(p.opts.NavTimeout)
	defer synthTab.Close()

	el, box, err := synth.Render(synthTab, markup, synth.Options{
		Theme:      p.opts.Theme,
		PaddingPx:  int(p.opts.PaddingPx),
		Width:      p.opts.ViewportWidth,
		Height:     p.opts.ViewportHeight,
		Scale:      p.opts.Scale,
		StripLinks: p.opts.StripLinks,
		Timeout:    p.opts.SynthTimeout,
	})
	if err != nil {
		return nil, err
	}
	defer el.Release()

	pageW, pageH, err := synthTab.PageExtent()
	if err != nil {
		return nil, err
	}
	rect, err := crop.Finalize(box, crop.Uniform(p.opts.PaddingPx), pageW, pageH)
	if err != nil {
		return nil, err
	}
	rect = crop.Fit(rect, pageW, pageH)
	p.stage(rawURL, "clipping screenshot")
	return p.clip(synthTab, rect)
}

// clip takes the clipped screenshot, falling back to a full-page capture
// cropped in-process when the native clip fails. The full raster comes out
// at device resolution, so the CSS rectangle is scaled before cutting.
func (p *Pipeline) clip(tab *browser.Tab, rect crop.Rect) ([]byte, error) {
	p.logger.Debug("clipping region", "mode", p.opts.Mode,
		"x", rect.X, "y", rect.Y, "w", rect.Width, "h", rect.Height)
	png, err := tab.CaptureClip(rect, p.opts.Scale)
	if err == nil {
		return png, nil
	}
	p.logger.Debug("native clip failed, cropping full capture", "err", err)
	full, fullErr := tab.CaptureFull()
	if fullErr != nil {
		return nil, err
	}
	return rasterCrop(full, rect, p.opts.Scale)
}

func (p *Pipeline) stage(rawURL, s string) {
	if p.opts.OnStage != nil {
		p.opts.OnStage(rawURL, s)
	}
}

func (p *Pipeline) locate(loc *locator.Locator) (*locator.Region, error) {
	switch p.opts.Mode {
	case ModeTable:
		return loc.LargestTable()
	case ModeCenter:
		return loc.CenteredBlock()
	case ModeHeading:
		return loc.HeadingAnchored(p.opts.HeadingPattern)
	default:
		return nil, fmt.Errorf("unknown capture mode %q", p.opts.Mode)
	}
}

// finalRect measures the element fresh, applies the heading bounds when
// present, and finalizes. A stale-measurement failure gets exactly one
// re-measure before giving up.
func (p *Pipeline) finalRect(tab *browser.Tab, region *locator.Region) (crop.Rect, error) {
	pageW, pageH, err := tab.PageExtent()
	if err != nil {
		return crop.Rect{}, err
	}

	// The locator's snapshot box can come back empty for display-toggled
	// elements; the handle's geometry query covers that case.
	if region.Box.Empty() {
		fresh, mErr := region.Element.BoundingBox()
		if mErr != nil {
			return crop.Rect{}, mErr
		}
		region.Box = fresh
	}

	rect, err := p.computeRect(region, pageW, pageH)
	if errors.Is(err, crop.ErrOutOfBounds) {
		p.logger.Debug("stale measurement, re-measuring", "mode", p.opts.Mode)
		fresh, mErr := region.Element.BoundingBox()
		if mErr != nil {
			return crop.Rect{}, mErr
		}
		region.Box = fresh
		rect, err = p.computeRect(region, pageW, pageH)
	}
	if err != nil {
		return crop.Rect{}, err
	}
	return crop.Fit(rect, pageW, pageH), nil
}

func (p *Pipeline) computeRect(region *locator.Region, pageW, pageH float64) (crop.Rect, error) {
	box := region.Box
	if p.opts.Mode == ModeHeading && region.Heading != nil {
		box = crop.Bounded(*region.Heading, region.Box, region.Marker, pageH)
	}
	return crop.Finalize(box, crop.Uniform(p.opts.PaddingPx), pageW, pageH)
}
