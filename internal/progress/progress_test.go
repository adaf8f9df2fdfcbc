package progress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	short := "https://example.com/a"
	assert.Equal(t, short, truncateURL(short))

	long := "https://stats.example.com/" + strings.Repeat("deep/", 30) + "page"
	got := truncateURL(long)
	assert.Contains(t, got, "stats.example.com")
	assert.LessOrEqual(t, len(got), 60)
	assert.Contains(t, got, "...")
}

func TestDisabledTrackerIsSafe(t *testing.T) {
	tr := New(false)
	// None of these may panic without a spinner.
	tr.Begin("https://example.com")
	tr.Update("https://example.com", "locating region")
	tr.End()
	assert.Nil(t, tr.sp)
}
