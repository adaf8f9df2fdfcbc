// Command snapcrop renders pages in headless Chrome, captures one
// meaningful region per page, and delivers the screenshots to a Telegram
// chat.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/snapcrop/internal/browser"
	"github.com/go-scripts/snapcrop/internal/capture"
	"github.com/go-scripts/snapcrop/internal/config"
	"github.com/go-scripts/snapcrop/internal/progress"
	"github.com/go-scripts/snapcrop/internal/synth"
	"github.com/go-scripts/snapcrop/internal/telegram"
)

// CLIFlags layer over the YAML config; a set flag wins over the file.
type CLIFlags struct {
	Config     string  `help:"Path to YAML configuration file."`
	URLs       string  `help:"Delimiter-separated target URLs (overrides the config list)." short:"u"`
	Mode       string  `help:"Capture mode: table, center, heading, synth." short:"m"`
	Heading    string  `help:"Heading pattern for heading mode (case-insensitive substring or regexp)."`
	Padding    float64 `help:"Padding in CSS pixels around the region." default:"-1"`
	Dark       bool    `help:"Use the dark theme for synthesized captures."`
	StripLinks bool    `help:"Replace anchors with plain text before synthesis."`
	Output     string  `help:"Directory to also write the PNG files into." short:"o"`
	Quiet      bool    `help:"Disable the spinner." short:"q"`
	Debug      bool    `help:"Enable debug logging."`
}

func main() {
	var flags CLIFlags
	kctx := kong.Parse(&flags,
		kong.Name("snapcrop"),
		kong.Description("Capture one meaningful region per page and deliver it to Telegram."))

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if flags.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	kctx.FatalIfErrorf(run(flags, logger))
}

func run(flags CLIFlags, logger *log.Logger) error {
	cfg, err := config.Load(flags.Config)
	if err != nil {
		return err
	}
	applyFlags(&cfg, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	urls := cfg.URLs
	if flags.URLs != "" {
		urls = capture.ParseURLList(flags.URLs)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no target URLs: pass --urls or set urls in the config file")
	}

	session, err := browser.NewSession(context.Background())
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer session.Close()

	var channel telegram.Channel
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != "" {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return err
		}
		channel = bot
	}
	if channel == nil && cfg.OutputDir == "" {
		return fmt.Errorf("no destination: configure telegram credentials or an output directory")
	}

	tracker := progress.New(!flags.Quiet)
	opts := cfg.CaptureOptions()
	opts.OnStage = tracker.Update
	pipeline := capture.New(session, opts, logger)

	failed := 0
	for _, u := range urls {
		tracker.Begin(u)
		if err := processURL(pipeline, channel, cfg.OutputDir, u, logger); err != nil {
			failed++
			logger.Error("capture failed", "url", u, "error", err)
		}
		tracker.End()
	}

	logger.Info("run finished", "urls", len(urls), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d captures failed", failed, len(urls))
	}
	return nil
}

// processURL runs one URL end to end: capture, optional local save,
// optional delivery. An error anywhere aborts only this URL.
func processURL(pipeline *capture.Pipeline, channel telegram.Channel, outputDir, rawURL string, logger *log.Logger) error {
	result, err := pipeline.Capture(rawURL)
	if err != nil {
		return err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		path := filepath.Join(outputDir, result.Filename)
		if err := os.WriteFile(path, result.PNG, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("saved capture", "path", path)
	}

	if channel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		err := channel.SendPhoto(ctx, telegram.Photo{
			Data:     result.PNG,
			Filename: result.Filename,
			Caption:  capture.Caption(result.URL, result.CapturedAt),
		})
		if err != nil {
			return err
		}
	}

	logger.Info("captured", "url", rawURL, "file", result.Filename, "bytes", len(result.PNG))
	return nil
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.Config, flags CLIFlags) {
	if flags.Mode != "" {
		cfg.Mode = flags.Mode
	}
	if flags.Heading != "" {
		cfg.HeadingPattern = flags.Heading
	}
	if flags.Padding >= 0 {
		cfg.PaddingPx = flags.Padding
	}
	if flags.Dark && !cfg.Theme.Dark {
		cfg.Theme = synth.DefaultTheme(true)
	}
	if flags.StripLinks {
		cfg.StripLinks = true
	}
	if flags.Output != "" {
		cfg.OutputDir = flags.Output
	}
}
