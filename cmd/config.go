package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/MatheusDSantossi/data-analyses-automate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Datalyze configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("api_key: %s\n", mask(cfg.APIKey))
		fmt.Printf("default_model: %s\n", cfg.DefaultModel)
		fmt.Printf("base_url: %s\n", cfg.BaseURL)
		fmt.Printf("temperature: %.3f\n", cfg.Temperature)
		fmt.Printf("sample_limit: %d\n", cfg.SampleLimit)
		fmt.Printf("max_charts: %d\n", cfg.MaxCharts)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		fmt.Printf("locale: %s\n", cfg.Locale)
		fmt.Printf("day_first_dates: %v\n", cfg.DayFirst)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Printf("serve_addr: %s\n", cfg.ServeAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			cfg = &cfgpkg.Global{}
		}
		key, value := args[0], args[1]
		switch key {
		case "api_key":
			cfg.APIKey = value
		case "default_model":
			cfg.DefaultModel = value
		case "base_url":
			cfg.BaseURL = value
		case "temperature":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid temperature: %w", err)
			}
			cfg.Temperature = f
		case "sample_limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid sample_limit: %w", err)
			}
			cfg.SampleLimit = n
		case "max_charts":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid max_charts: %w", err)
			}
			cfg.MaxCharts = n
		case "top_n":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid top_n: %w", err)
			}
			cfg.TopN = n
		case "locale":
			cfg.Locale = value
		case "day_first_dates":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid day_first_dates: %w", err)
			}
			cfg.DayFirst = b
		case "http_timeout_sec":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid http_timeout_sec: %w", err)
			}
			cfg.HTTPTimeoutSec = n
		case "retry_max_attempts":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retry_max_attempts: %w", err)
			}
			cfg.RetryMaxAttempts = n
		case "retry_base_delay_ms":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retry_base_delay_ms: %w", err)
			}
			cfg.RetryBaseDelayMs = n
		case "retry_max_delay_ms":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retry_max_delay_ms: %w", err)
			}
			cfg.RetryMaxDelayMs = n
		case "serve_addr":
			cfg.ServeAddr = value
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func mask(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
