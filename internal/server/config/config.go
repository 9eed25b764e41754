// Package config handles configuration for the server component,
// including defaults, environment overlay, JSON overlay, and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the winsome server.
//
// Fields:
//   - EndpointAddr: bind address for the main TCP endpoint.
//   - CallbackAddr: bind address for the follower-callback listener.
//   - MulticastAddr: UDP group the reward engine announces on.
//   - RewardInterval: period between reward-engine passes.
//   - AuthorPercent / CuratorPercent: reward split, must sum to 100.
//   - SnapshotPath / SnapshotInterval: state snapshot file and cadence.
//   - TitleMaxLen / ContentMaxLen / MaxTags: content bounds.
//   - CurrencySingular / CurrencyPlural / CurrencyDecimals: wallet display.
type Config struct {
	EndpointAddr     string
	CallbackAddr     string
	MulticastAddr    string
	RewardInterval   time.Duration
	AuthorPercent    int
	CuratorPercent   int
	SnapshotPath     string
	SnapshotInterval time.Duration
	TitleMaxLen      int
	ContentMaxLen    int
	MaxTags          int
	CurrencySingular string
	CurrencyPlural   string
	CurrencyDecimals int
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":6789"
	c.CallbackAddr = ":6790"
	c.MulticastAddr = "239.255.32.32:4446"
	c.RewardInterval = 10 * time.Second
	c.AuthorPercent = 70
	c.CuratorPercent = 30
	c.SnapshotPath = "winsome.json"
	c.SnapshotInterval = 30 * time.Second
	c.TitleMaxLen = 20
	c.ContentMaxLen = 500
	c.MaxTags = 5
	c.CurrencySingular = "wincoin"
	c.CurrencyPlural = "wincoins"
	c.CurrencyDecimals = 4
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.EndpointAddr == "" || c.CallbackAddr == "" || c.MulticastAddr == "" {
		return errors.New("bind addresses must not be empty")
	}
	if c.AuthorPercent+c.CuratorPercent != 100 {
		return fmt.Errorf("reward split must sum to 100, got %d+%d",
			c.AuthorPercent, c.CuratorPercent)
	}
	if c.AuthorPercent < 0 || c.CuratorPercent < 0 {
		return errors.New("reward percentages must not be negative")
	}
	if c.RewardInterval <= 0 {
		return errors.New("reward interval must be positive")
	}
	if c.SnapshotInterval <= 0 {
		return errors.New("snapshot interval must be positive")
	}
	if c.SnapshotPath == "" {
		return errors.New("snapshot path must not be empty")
	}
	if c.TitleMaxLen <= 0 || c.ContentMaxLen <= 0 || c.MaxTags <= 0 {
		return errors.New("content bounds must be positive")
	}
	if c.CurrencyDecimals < 0 || c.CurrencyDecimals > 8 {
		return errors.New("currency decimals must be between 0 and 8")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, from an optional JSON file, and finally from
// command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
