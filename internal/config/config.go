// Package config loads the run configuration from a YAML file and applies
// defaults. CLI flags layered on top of it live in the command.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-scripts/snapcrop/internal/capture"
	"github.com/go-scripts/snapcrop/internal/synth"
)

// Duration wraps time.Duration with YAML decoding for "30s"-style strings
// and bare numbers (seconds).
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}
	var secs float64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration: %s", value.Value)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Viewport is the base render surface.
type Viewport struct {
	Width  int64   `yaml:"width"`
	Height int64   `yaml:"height"`
	Scale  float64 `yaml:"scale"` // device pixel ratio
}

// Telegram holds delivery credentials. The token can also come from the
// SNAPCROP_BOT_TOKEN environment variable, which wins over the file.
type Telegram struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

// Config is the full run configuration.
type Config struct {
	URLs           []string    `yaml:"urls"`
	Mode           string      `yaml:"mode"`
	HeadingPattern string      `yaml:"heading_pattern"`
	PaddingPx      float64     `yaml:"padding_px"`
	Viewport       Viewport    `yaml:"viewport"`
	NavTimeout     Duration    `yaml:"nav_timeout"`
	SettleTime     Duration    `yaml:"settle_time"`
	SynthTimeout   Duration    `yaml:"synth_timeout"`
	Theme          synth.Theme `yaml:"theme"`
	StripLinks     bool        `yaml:"strip_links"`
	Telegram       Telegram    `yaml:"telegram"`
	OutputDir      string      `yaml:"output_dir"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Mode:         string(capture.ModeTable),
		PaddingPx:    8,
		Viewport:     Viewport{Width: 1366, Height: 900, Scale: 1},
		NavTimeout:   Duration(60 * time.Second),
		SettleTime:   Duration(2 * time.Second),
		SynthTimeout: Duration(15 * time.Second),
		Theme:        synth.DefaultTheme(false),
	}
}

// Load reads the YAML file over the defaults. A missing path returns the
// defaults untouched; a present but unreadable or invalid file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if tok := os.Getenv("SNAPCROP_BOT_TOKEN"); tok != "" {
		cfg.Telegram.Token = tok
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline depends on.
func (c Config) Validate() error {
	if !capture.Mode(c.Mode).Valid() {
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if capture.Mode(c.Mode) == capture.ModeHeading && c.HeadingPattern == "" {
		return fmt.Errorf("config: heading mode requires a heading_pattern")
	}
	if c.PaddingPx < 0 {
		return fmt.Errorf("config: padding_px must be >= 0")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("config: viewport must be positive")
	}
	if c.Viewport.Scale <= 0 {
		return fmt.Errorf("config: viewport scale must be > 0")
	}
	return nil
}

// CaptureOptions maps the configuration onto pipeline options.
func (c Config) CaptureOptions() capture.Options {
	return capture.Options{
		Mode:           capture.Mode(c.Mode),
		HeadingPattern: c.HeadingPattern,
		PaddingPx:      c.PaddingPx,
		ViewportWidth:  c.Viewport.Width,
		ViewportHeight: c.Viewport.Height,
		Scale:          c.Viewport.Scale,
		NavTimeout:     c.NavTimeout.Std(),
		SettleTime:     c.SettleTime.Std(),
		SynthTimeout:   c.SynthTimeout.Std(),
		Theme:          c.Theme,
		StripLinks:     c.StripLinks,
	}
}
