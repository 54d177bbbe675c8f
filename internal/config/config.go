package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey       string  `mapstructure:"api_key" yaml:"api_key"`
	DefaultModel string  `mapstructure:"default_model" yaml:"default_model"`
	BaseURL      string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature  float64 `mapstructure:"temperature" yaml:"temperature"`

	// Analysis defaults
	SampleLimit int    `mapstructure:"sample_limit" yaml:"sample_limit"`
	MaxCharts   int    `mapstructure:"max_charts" yaml:"max_charts"`
	TopN        int    `mapstructure:"top_n" yaml:"top_n"`
	Locale      string `mapstructure:"locale" yaml:"locale"`
	DayFirst    bool   `mapstructure:"day_first_dates" yaml:"day_first_dates"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// HTTP server
	ServeAddr string `mapstructure:"serve_addr" yaml:"serve_addr"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.datalyze/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datalyze")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATALYZE")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("default_model", "google/gemini-2.5-flash-lite")
	v.SetDefault("base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("temperature", 0.3)
	v.SetDefault("sample_limit", 200)
	v.SetDefault("max_charts", 4)
	v.SetDefault("top_n", 0)
	v.SetDefault("locale", "en-US")
	v.SetDefault("day_first_dates", true)
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("serve_addr", ":8080")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datalyze")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
