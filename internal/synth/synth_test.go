package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentEmbedsMarkupVerbatim(t *testing.T) {
	markup := `<table><tr><th>Team</th><th>W</th></tr><tr><td>DAL</td><td>12</td></tr></table>`
	doc := BuildDocument(markup, DefaultTheme(false), 16)

	assert.Contains(t, doc, markup)
	assert.Contains(t, doc, `id="capture-root"`)
	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, "padding: 16px;")
}

func TestBuildDocumentEmbedsEveryThemeColor(t *testing.T) {
	th := Theme{
		Background: "#101010",
		Surface:    "#202020",
		Text:       "#f0f0f0",
		Muted:      "#808080",
		Header:     "#303030",
		Dark:       true,
	}
	doc := BuildDocument("<table></table>", th, 8)

	for _, color := range []string{th.Background, th.Surface, th.Text, th.Muted, th.Header} {
		assert.Contains(t, doc, color)
	}
}

func TestBuildDocumentDeterministic(t *testing.T) {
	markup := "<table><tr><td>x</td></tr></table>"
	a := BuildDocument(markup, DefaultTheme(true), 12)
	b := BuildDocument(markup, DefaultTheme(true), 12)
	assert.Equal(t, a, b)
}

func TestDarkAndLightStylesheetsDiffer(t *testing.T) {
	markup := "<table></table>"
	light := BuildDocument(markup, DefaultTheme(false), 8)
	dark := BuildDocument(markup, DefaultTheme(true), 8)
	assert.NotEqual(t, light, dark)
	assert.Contains(t, dark, "#14161a")
	assert.Contains(t, light, "#ffffff")
}

func TestThemeNormalizeFillsEmptyFields(t *testing.T) {
	th := Theme{Background: "#abcdef", Dark: true}.normalize()
	assert.Equal(t, "#abcdef", th.Background)
	assert.Equal(t, DefaultTheme(true).Text, th.Text)
	assert.Equal(t, DefaultTheme(true).Header, th.Header)
	assert.NotEmpty(t, th.Surface)
	assert.NotEmpty(t, th.Muted)
}

func TestStylesheetStickyHeader(t *testing.T) {
	doc := BuildDocument("<table></table>", DefaultTheme(false), 0)
	assert.Contains(t, doc, "position: sticky;")
	assert.Contains(t, doc, "border-collapse: collapse;")
	assert.Contains(t, doc, "monospace")
}

func TestStripLinksPreservesTextDropsHref(t *testing.T) {
	in := `<td><a href="/players/smith">J. Smith</a> had <a href="/games/123">3 TD</a></td>`
	out, err := StripLinks(in)
	require.NoError(t, err)

	assert.Contains(t, out, "J. Smith")
	assert.Contains(t, out, "3 TD")
	assert.NotContains(t, out, "<a")
	assert.NotContains(t, out, "href")
}

func TestStripLinksNestedMarkupInAnchor(t *testing.T) {
	in := `<p><a href="#"><b>Bold</b> and plain</a></p>`
	out, err := StripLinks(in)
	require.NoError(t, err)

	assert.Contains(t, out, "Bold and plain")
	assert.NotContains(t, out, "<b>")
	assert.NotContains(t, out, "<a")
}

func TestStripLinksLeavesOtherElementsAlone(t *testing.T) {
	in := `<table><tr><td><span class="num">42</span></td></tr></table>`
	out, err := StripLinks(in)
	require.NoError(t, err)
	assert.Contains(t, out, `<span class="num">42</span>`)
}

func TestStripLinksNoAnchors(t *testing.T) {
	in := `<div>plain content</div>`
	out, err := StripLinks(in)
	require.NoError(t, err)
	assert.Contains(t, out, "plain content")
}

func TestGrowViewport(t *testing.T) {
	tests := []struct {
		name               string
		curW, curH         int64
		contentW, contentH float64
		wantW, wantH       int64
	}{
		{"grows to content", 1200, 900, 2000, 4000, 2001, 4001},
		{"never shrinks below current", 1200, 900, 300, 200, 1200, 900},
		{"clamps to maximums", 1200, 900, 9000, 50000, MaxWidth, MaxHeight},
		{"respects minimums", 100, 100, 50, 50, MinWidth, MinHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := GrowViewport(tt.curW, tt.curH, tt.contentW, tt.contentH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.defaults()
	assert.Equal(t, int64(1200), o.Width)
	assert.Equal(t, int64(900), o.Height)
	assert.InDelta(t, 1.0, o.Scale, 0.001)
	assert.Equal(t, "15s", o.Timeout.String())
}

func TestBuildDocumentPaddingZero(t *testing.T) {
	doc := BuildDocument("<table></table>", DefaultTheme(false), 0)
	assert.Contains(t, doc, "padding: 0px;")
	assert.False(t, strings.Contains(doc, "padding: -"))
}
