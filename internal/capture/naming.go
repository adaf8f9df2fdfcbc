package capture

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxNameLen = 48

var (
	schemeRe  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	nonWordRe = regexp.MustCompile(`\W+`)
)

// Filename derives a deterministic PNG name from the source URL: scheme
// stripped, non-word runs collapsed to underscores, truncated, then a date
// stamp and the capture mode appended.
func Filename(rawURL string, mode Mode, ts time.Time) string {
	name := schemeRe.ReplaceAllString(rawURL, "")
	name = nonWordRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "page"
	}
	if len(name) > maxNameLen {
		name = strings.TrimRight(name[:maxNameLen], "_")
	}
	return fmt.Sprintf("%s_%s_%s.png", name, ts.Format("2006-01-02"), mode)
}

// Caption is the human-readable text delivered alongside the image.
func Caption(rawURL string, ts time.Time) string {
	return fmt.Sprintf("%s - captured %s", rawURL, ts.Format("2006-01-02"))
}

// ParseURLList splits a plain delimiter-separated URL list: newlines,
// commas, semicolons and whitespace all delimit; empty entries drop out.
func ParseURLList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '\n', '\r', '\t', ' ', ',', ';':
			return true
		}
		return false
	})
	urls := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}
