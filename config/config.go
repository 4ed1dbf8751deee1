// Package config loads the harness configuration from a YAML or JSON
// file. Values are handed to components explicitly at construction; no
// package reads configuration ambiently.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/stratlab/strategies"
)

// Config is the complete harness configuration.
type Config struct {
	Strategies []strategies.Config `json:"strategies" yaml:"strategies"`
	Journal    JournalConfig       `json:"journal" yaml:"journal"`
	Store      StoreConfig         `json:"store" yaml:"store"`
	Notify     NotifyConfig        `json:"notify" yaml:"notify"`
	Live       LiveConfig          `json:"live" yaml:"live"`
}

// JournalConfig selects where fills and equity marks are recorded.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or ""
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// StoreConfig selects the broker snapshot backend.
type StoreConfig struct {
	Type   string `json:"type" yaml:"type"` // "file", "sqlite" or ""
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// NotifyConfig configures the push notifier; an empty topic disables it.
type NotifyConfig struct {
	Topic string `json:"topic,omitempty" yaml:"topic,omitempty"`
}

// LiveConfig configures the polling loop.
type LiveConfig struct {
	Interval      string  `json:"interval,omitempty" yaml:"interval,omitempty"` // e.g. "1h", "60s"
	KillSwitchPct float64 `json:"kill_switch_pct,omitempty" yaml:"kill_switch_pct,omitempty"`
}

// ParseInterval converts the interval string to a duration, defaulting
// to one hour.
func (l LiveConfig) ParseInterval() (time.Duration, error) {
	if l.Interval == "" {
		return time.Hour, nil
	}
	return time.ParseDuration(l.Interval)
}

// LoadFromFile loads configuration from a file (YAML or JSON; YAML is
// tried first regardless of extension since JSON is a YAML subset).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}

	seen := make(map[string]bool)
	for i, sc := range c.Strategies {
		if sc.Policy == "" {
			return fmt.Errorf("strategies[%d]: policy is required", i)
		}
		name := sc.Name
		if name == "" {
			name = sc.Policy
		}
		if seen[name] {
			return fmt.Errorf("strategies[%d]: duplicate name %q", i, name)
		}
		seen[name] = true

		if sc.Balance < 0 {
			return fmt.Errorf("strategies[%d]: balance must not be negative", i)
		}
		if sc.VaultInstrument != "" && (sc.VaultFraction <= 0 || sc.VaultFraction >= 1) {
			return fmt.Errorf("strategies[%d]: vault_fraction must be in (0, 1)", i)
		}
	}

	if _, err := c.Live.ParseInterval(); err != nil {
		return fmt.Errorf("live.interval: %w", err)
	}
	return nil
}

// Default returns a runnable configuration: the classic five-policy
// battle with 1000 per strategy.
func Default() *Config {
	tickers := []string{"NVDA", "TSLA", "AAPL", "MSFT", "AMZN"}
	return &Config{
		Strategies: []strategies.Config{
			{Name: "TrendHunter", Policy: "trend", Balance: 1000, Instruments: tickers},
			{Name: "MeanRev", Policy: "mean-reversion", Balance: 1000, Instruments: tickers},
			{Name: "GridBot", Policy: "grid", Balance: 1000, Instruments: tickers},
			{Name: "SmartDCA", Policy: "dca", Balance: 1000, Instruments: tickers},
			{Name: "Momentum", Policy: "momentum", Balance: 1000, Instruments: tickers},
		},
		Live: LiveConfig{Interval: "1h", KillSwitchPct: 0.05},
	}
}

// BuildStrategies constructs the configured strategy set in order.
func (c *Config) BuildStrategies() ([]strategies.Strategy, error) {
	out := make([]strategies.Strategy, 0, len(c.Strategies))
	for i, sc := range c.Strategies {
		st, err := strategies.New(sc)
		if err != nil {
			return nil, fmt.Errorf("strategies[%d]: %w", i, err)
		}
		out = append(out, st)
	}
	return out, nil
}
