// Package config loads the tuinance YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for tuinance.
type Config struct {
	// Tickers is the ordered watchlist. Order drives list display and
	// selection; duplicates are rejected at load time.
	Tickers  []string `yaml:"tickers"`
	Provider Provider `yaml:"provider"`
	UI       UI       `yaml:"ui"`
	Logging  Logging  `yaml:"logging"`
}

// Provider selects and configures the market-data source.
type Provider struct {
	// Kind is "alpaca" or "replay".
	Kind            string `yaml:"kind"`
	APIKey          string `yaml:"api_key"`
	APISecret       string `yaml:"api_secret"`
	BaseURL         string `yaml:"base_url"`
	DataURL         string `yaml:"data_url"`
	Feed            string `yaml:"feed"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// UI holds render-loop settings.
type UI struct {
	// RefreshMs is the render cadence in milliseconds.
	RefreshMs int `yaml:"refresh_ms"`
	// DefaultInterval is the window new tickers start on, e.g. "6mo".
	DefaultInterval string `yaml:"default_interval"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File receives log output so it stays off the alternate screen.
	// Empty disables logging to disk.
	File string `yaml:"file"`
}

// Default returns the configuration used when no config file exists: a
// single-symbol watchlist on the offline replay provider.
func Default() *Config {
	return &Config{
		Tickers: []string{"MSFT"},
		Provider: Provider{
			Kind:            "replay",
			Feed:            "iex",
			RateLimitPerMin: 200,
		},
		UI: UI{
			RefreshMs:       1000,
			DefaultInterval: "6mo",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path, falling back to Default when the file
// does not exist. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file is a supported setup.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Tickers) == 0 {
		return fmt.Errorf("config: no tickers configured")
	}
	seen := make(map[string]bool, len(cfg.Tickers))
	for i, sym := range cfg.Tickers {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			return fmt.Errorf("config: empty ticker at index %d", i)
		}
		if seen[sym] {
			return fmt.Errorf("config: duplicate ticker %s", sym)
		}
		seen[sym] = true
		cfg.Tickers[i] = sym
	}

	switch cfg.Provider.Kind {
	case "alpaca", "replay":
	default:
		return fmt.Errorf("config: unknown provider kind %q", cfg.Provider.Kind)
	}

	if cfg.UI.RefreshMs <= 0 {
		cfg.UI.RefreshMs = 1000
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TUINANCE_TICKERS"); v != "" {
		cfg.Tickers = strings.Split(v, ",")
	}
	if v := os.Getenv("TUINANCE_PROVIDER"); v != "" {
		cfg.Provider.Kind = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical Alpaca env vars, the names the SDK itself reads.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Provider.APISecret = v
	}
}
