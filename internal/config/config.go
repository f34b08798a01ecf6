// Package config loads calculator settings from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/tier"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/pkg/utils"
)

// Config holds the application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Journal JournalConfig `yaml:"journal"`
	Tiers   []TierConfig  `yaml:"tiers"`
}

// LoggingConfig controls log level and the optional rotating log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// JournalConfig locates the saved-plan database.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// TierConfig is one maintenance margin bracket. Values are plain numbers
// in YAML and converted to decimals on use.
type TierConfig struct {
	NotionalLimit         float64 `yaml:"notional_limit"`
	MaintenanceMarginRate float64 `yaml:"maintenance_margin_rate"`
	Deduction             float64 `yaml:"deduction"`
}

// Default returns the built-in configuration: info logging to stderr,
// journal under the home directory, built-in margin brackets.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Journal: JournalConfig{
			Path: "~/.crypto-calculator/journal.db",
		},
	}
}

// Load reads the YAML file at path, applies environment overrides and
// validates. An empty path skips the file and uses defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(utils.ExpandHome(path))
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Logging.Level = getEnv("CALC_LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnv("CALC_LOG_FILE", c.Logging.File)
	c.Journal.Path = getEnv("CALC_JOURNAL_PATH", c.Journal.Path)
}

// Validate checks log level and margin brackets.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if _, err := c.Table(); err != nil {
		return err
	}
	return nil
}

// Table builds the maintenance margin table, falling back to the
// built-in brackets when the file defines none.
func (c *Config) Table() (*tier.Table, error) {
	if len(c.Tiers) == 0 {
		return tier.Default(), nil
	}

	tiers := make([]tier.Tier, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		tiers = append(tiers, tier.Tier{
			NotionalLimit:         decimal.NewFromFloat(t.NotionalLimit),
			MaintenanceMarginRate: decimal.NewFromFloat(t.MaintenanceMarginRate),
			Deduction:             decimal.NewFromFloat(t.Deduction),
		})
	}

	table, err := tier.NewTable(tiers)
	if err != nil {
		return nil, fmt.Errorf("invalid tiers: %w", err)
	}
	return table, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
