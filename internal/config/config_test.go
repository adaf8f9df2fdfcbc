package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/snapcrop/internal/capture"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.Mode)
	assert.InDelta(t, 8.0, cfg.PaddingPx, 0.001)
	assert.Equal(t, int64(1366), cfg.Viewport.Width)
	assert.Equal(t, 60*time.Second, cfg.NavTimeout.Std())
	assert.Equal(t, 15*time.Second, cfg.SynthTimeout.Std())
	assert.NotEmpty(t, cfg.Theme.Background)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
urls:
  - https://example.com/stats
mode: heading
heading_pattern: "Stat of the Day"
padding_px: 12
viewport:
  width: 1600
  height: 1000
  scale: 2
nav_timeout: 90s
settle_time: 500ms
strip_links: true
theme:
  dark: true
  background: "#000000"
telegram:
  token: "123:ABC"
  chat_id: "-100"
output_dir: /tmp/caps
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"https://example.com/stats"}, cfg.URLs)
	assert.Equal(t, "heading", cfg.Mode)
	assert.Equal(t, "Stat of the Day", cfg.HeadingPattern)
	assert.InDelta(t, 12.0, cfg.PaddingPx, 0.001)
	assert.Equal(t, int64(1600), cfg.Viewport.Width)
	assert.InDelta(t, 2.0, cfg.Viewport.Scale, 0.001)
	assert.Equal(t, 90*time.Second, cfg.NavTimeout.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.SettleTime.Std())
	assert.True(t, cfg.StripLinks)
	assert.True(t, cfg.Theme.Dark)
	assert.Equal(t, "#000000", cfg.Theme.Background)
	assert.Equal(t, "123:ABC", cfg.Telegram.Token)
	assert.Equal(t, "/tmp/caps", cfg.OutputDir)

	// Fields the file omits keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.SynthTimeout.Std())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "mode: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDurationBareSeconds(t *testing.T) {
	path := writeConfig(t, "nav_timeout: 45\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.NavTimeout.Std())
}

func TestDurationInvalid(t *testing.T) {
	path := writeConfig(t, "nav_timeout: soon\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvTokenWinsOverFile(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: file-token\n  chat_id: \"1\"\n")
	t.Setenv("SNAPCROP_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "full" }, "unknown mode"},
		{"heading needs pattern", func(c *Config) { c.Mode = "heading" }, "heading_pattern"},
		{"negative padding", func(c *Config) { c.PaddingPx = -1 }, "padding_px"},
		{"zero viewport", func(c *Config) { c.Viewport.Width = 0 }, "viewport"},
		{"zero scale", func(c *Config) { c.Viewport.Scale = 0 }, "scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCaptureOptionsMapping(t *testing.T) {
	cfg := Default()
	cfg.Mode = "synth"
	cfg.StripLinks = true
	cfg.Viewport.Scale = 2

	opts := cfg.CaptureOptions()
	assert.Equal(t, capture.ModeSynth, opts.Mode)
	assert.True(t, opts.StripLinks)
	assert.InDelta(t, 2.0, opts.Scale, 0.001)
	assert.Equal(t, cfg.NavTimeout.Std(), opts.NavTimeout)
	assert.Equal(t, cfg.Theme, opts.Theme)
}
