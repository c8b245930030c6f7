// Package config loads and validates tradepost.yml.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openpost/tradepost/internal/reputation"
)

// DefaultPath is where the CLI looks for configuration when --config is not
// given.
const DefaultPath = "tradepost.yml"

// Config represents the top-level tradepost.yml configuration.
type Config struct {
	Version  string       `yaml:"version"`
	Instance string       `yaml:"instance,omitempty"`
	Redis    RedisConfig  `yaml:"redis,omitempty"`
	Market   MarketConfig `yaml:"market,omitempty"`
	Keys     KeysConfig   `yaml:"keys,omitempty"`
}

// RedisConfig locates the Redis server backing the ledger.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// MarketConfig holds marketplace policy parameters.
type MarketConfig struct {
	// MinReward is the smallest reward a task may carry (default 1)
	MinReward uint64 `yaml:"min_reward,omitempty"`

	// ReputationDelta is the completion reputation expression, evaluated with
	// `reward` bound to the task's reward (default "10")
	ReputationDelta string `yaml:"reputation_delta,omitempty"`
}

// KeysConfig locates the caller's signing key.
type KeysConfig struct {
	// File holds a hex-encoded ed25519 seed
	File string `yaml:"file,omitempty"`
}

// Default returns the configuration used when no tradepost.yml exists.
func Default() *Config {
	c := &Config{Version: "1.0"}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Instance == "" {
		c.Instance = "default"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Market.MinReward == 0 {
		c.Market.MinReward = 1
	}
	if c.Market.ReputationDelta == "" {
		c.Market.ReputationDelta = reputation.DefaultExpression
	}
	if c.Keys.File == "" {
		c.Keys.File = ".tradepost.key"
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Instance == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	// Reject broken policy expressions at load time, not mid-operation
	if _, err := reputation.NewPolicy(c.Market.ReputationDelta); err != nil {
		return err
	}

	return nil
}

// Load reads and validates tradepost.yml from the specified path.
// Defaults are applied before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path if it exists and falls back to Default when the
// file is absent. Any other read or validation failure is an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
