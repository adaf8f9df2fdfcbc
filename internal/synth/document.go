package synth

import (
	"fmt"
	"strings"
)

// Theme is the closed set of presentation parameters the stylesheet
// depends on. Every field is required; Default fills the gaps so the
// generated CSS never carries an empty color.
type Theme struct {
	Background string `yaml:"background"`
	Surface    string `yaml:"surface"`
	Text       string `yaml:"text"`
	Muted      string `yaml:"muted"`
	Header     string `yaml:"header"`
	Dark       bool   `yaml:"dark"`
}

// DefaultTheme returns the built-in light or dark palette.
func DefaultTheme(dark bool) Theme {
	if dark {
		return Theme{
			Background: "#14161a",
			Surface:    "#1d2026",
			Text:       "#e8eaed",
			Muted:      "#9aa0a6",
			Header:     "#262a31",
			Dark:       true,
		}
	}
	return Theme{
		Background: "#ffffff",
		Surface:    "#fafbfc",
		Text:       "#1c1e21",
		Muted:      "#5f6368",
		Header:     "#f1f3f4",
		Dark:       false,
	}
}

// normalize fills any empty field from the default palette for the theme's
// dark flag.
func (t Theme) normalize() Theme {
	def := DefaultTheme(t.Dark)
	if t.Background == "" {
		t.Background = def.Background
	}
	if t.Surface == "" {
		t.Surface = def.Surface
	}
	if t.Text == "" {
		t.Text = def.Text
	}
	if t.Muted == "" {
		t.Muted = def.Muted
	}
	if t.Header == "" {
		t.Header = def.Header
	}
	return t
}

// BuildDocument wraps the markup in a minimal standalone page with a fixed,
// deterministic stylesheet parameterized by the theme. The markup is
// injected verbatim; it was extracted from a live document and is trusted
// as-is.
func BuildDocument(markup string, theme Theme, paddingPx int) string {
	th := theme.normalize()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	fmt.Fprintf(&b, `* { box-sizing: border-box; }
html, body {
  margin: 0;
  background: %s;
  color: %s;
  font-family: "Helvetica Neue", Arial, "Segoe UI", "Liberation Sans", sans-serif;
  font-size: 14px;
  line-height: 1.45;
}
body { padding: %dpx; }
#%s {
  display: inline-block;
  background: %s;
  border: 1px solid %s;
  border-radius: 4px;
}
table {
  border-collapse: collapse;
  background: %s;
}
th, td {
  border: 1px solid %s;
  padding: 5px 9px;
  text-align: left;
  white-space: nowrap;
}
thead th, tr:first-child th {
  position: sticky;
  top: 0;
  background: %s;
  font-weight: 600;
}
caption, small, .muted {
  color: %s;
  font-size: 12px;
}
td.num, td[data-num], .mono {
  font-family: "SF Mono", Consolas, "Liberation Mono", Menlo, monospace;
}
a { color: inherit; text-decoration: none; }
`,
		th.Background, th.Text, paddingPx, rootID, th.Surface, th.Muted,
		th.Surface, th.Muted, th.Header, th.Muted)
	b.WriteString("</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<div id=%q>%s</div>\n", rootID, markup)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
