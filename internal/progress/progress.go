// Package progress shows per-URL activity on the terminal while a capture
// runs. The pipeline is serial, so one spinner tracks the active URL.
package progress

import (
	"fmt"
	"net/url"
	"time"

	"github.com/briandowns/spinner"
)

// Tracker drives the spinner through one URL's lifecycle.
type Tracker struct {
	sp      *spinner.Spinner
	enabled bool
}

// New returns a Tracker. Disabled trackers (quiet mode, non-TTY logs) are
// valid and do nothing.
func New(enabled bool) *Tracker {
	t := &Tracker{enabled: enabled}
	if enabled {
		t.sp = spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	}
	return t
}

// Begin starts the spinner for a URL.
func (t *Tracker) Begin(rawURL string) {
	if !t.enabled {
		return
	}
	t.sp.Suffix = " " + truncateURL(rawURL)
	t.sp.Start()
}

// Update replaces the status line next to the URL.
func (t *Tracker) Update(rawURL, message string) {
	if !t.enabled {
		return
	}
	t.sp.Suffix = fmt.Sprintf(" %s: %s", truncateURL(rawURL), message)
}

// End stops the spinner for the current URL.
func (t *Tracker) End() {
	if !t.enabled {
		return
	}
	t.sp.Stop()
}

// truncateURL keeps the host and trims long paths so the spinner line
// stays readable.
func truncateURL(rawURL string) string {
	const maxLen = 48
	if len(rawURL) <= maxLen {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "..." + rawURL[len(rawURL)-maxLen:]
	}
	host := u.Host
	path := u.Path
	if len(path) > maxLen-len(host)-3 {
		path = "..." + path[len(path)-(maxLen-len(host)-3):]
	}
	return host + path
}
