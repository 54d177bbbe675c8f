package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/ai"
	cfgpkg "github.com/MatheusDSantossi/data-analyses-automate/internal/config"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/normalize"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/pipeline"
)

var (
	// Global flags (wired later to config/viper)
	cfgFile string
	debug   bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "datalyze",
	Short: "Datalyze: turn spreadsheets into AI-recommended charts",
	Long:  `Datalyze ingests a CSV/TSV/XLSX file, infers its column structure, asks an AI model for chart recommendations and materializes them as ready-to-render chart payloads, with deterministic fallbacks when the AI is unavailable.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datalyze/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
}

// newLogger builds the process logger; --debug lowers the level.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newGenerator builds the AI client from config, or nil when no API key
// is configured (the pipeline then runs on fallback synthesis only).
func newGenerator() ai.Generator {
	if cfg == nil || cfg.APIKey == "" {
		return nil
	}
	return ai.NewClient(cfg.APIKey, ai.ClientOptions{
		BaseURL:     cfg.BaseURL,
		Model:       cfg.DefaultModel,
		Temperature: cfg.Temperature,
		HTTPTimeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		RetryMax:    cfg.RetryMaxAttempts,
		BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond,
	})
}

// pipelineOptions merges config defaults with per-command flags.
func pipelineOptions(sampleLimit, maxCharts, topN int, skipAI bool) pipeline.Options {
	opt := pipeline.Options{
		SampleLimit: sampleLimit,
		MaxCharts:   maxCharts,
		DefaultTopN: topN,
		SkipAI:      skipAI,
		DateHints:   normalize.DefaultDateHints(),
	}
	if cfg != nil {
		if opt.SampleLimit <= 0 {
			opt.SampleLimit = cfg.SampleLimit
		}
		if opt.MaxCharts <= 0 {
			opt.MaxCharts = cfg.MaxCharts
		}
		if opt.DefaultTopN <= 0 {
			opt.DefaultTopN = cfg.TopN
		}
		opt.Locale = cfg.Locale
		opt.DateHints = normalize.DateHints{MonthFirst: !cfg.DayFirst}
	}
	return opt
}
