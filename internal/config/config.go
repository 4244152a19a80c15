// Package config loads the warden configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces warden environment overrides, e.g.
// WARDEN_HELD_THRESHOLD=5 or WARDEN_REMEDIATION__API_KEY=....
const envPrefix = "WARDEN_"

// Config is the full warden configuration.
type Config struct {
	PollIntervalSeconds      int    `koanf:"poll_interval_seconds"`
	DiscoveryIntervalSeconds int    `koanf:"discovery_interval_seconds"`
	HeldThreshold            int    `koanf:"held_threshold"`
	PollTimeoutSeconds       int    `koanf:"poll_timeout_seconds"`
	DatabasePath             string `koanf:"database_path"`
	StatusCommand            string `koanf:"status_command"`
	RemoveCommand            string `koanf:"remove_command"`
	MetricsListen            string `koanf:"metrics_listen"`
	LogLevel                 string `koanf:"log_level"`

	Remediation Remediation `koanf:"remediation"`
}

// Remediation configures the external remediation collaborator.
type Remediation struct {
	URL            string `koanf:"url"`
	APIKey         string `koanf:"api_key"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// Default returns the built-in configuration. The poll/discovery intervals
// and held threshold are hand-tuned operational defaults, preserved as
// configuration rather than constants.
func Default() Config {
	return Config{
		PollIntervalSeconds:      10,
		DiscoveryIntervalSeconds: 60,
		HeldThreshold:            3,
		PollTimeoutSeconds:       30,
		StatusCommand:            "pegasus-status",
		RemoveCommand:            "pegasus-remove",
		LogLevel:                 "info",
		Remediation: Remediation{
			TimeoutSeconds: 30,
		},
	}
}

// DefaultPath returns the default config file location (~/.warden/warden.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".warden", "warden.yaml"), nil
}

// Load reads the configuration from the given YAML file (DefaultPath when
// empty), then applies WARDEN_* environment overrides. A missing file is not
// an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Double underscore separates nested keys: WARDEN_REMEDIATION__URL.
	if err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSeconds)
	}
	if c.DiscoveryIntervalSeconds <= 0 {
		return fmt.Errorf("discovery_interval_seconds must be positive, got %d", c.DiscoveryIntervalSeconds)
	}
	if c.HeldThreshold < 1 {
		return fmt.Errorf("held_threshold must be at least 1, got %d", c.HeldThreshold)
	}
	if c.PollTimeoutSeconds <= 0 {
		return fmt.Errorf("poll_timeout_seconds must be positive, got %d", c.PollTimeoutSeconds)
	}
	if c.StatusCommand == "" {
		return fmt.Errorf("status_command must not be empty")
	}
	if c.RemoveCommand == "" {
		return fmt.Errorf("remove_command must not be empty")
	}
	return nil
}

// PollInterval returns the per-watcher poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// DiscoveryInterval returns the discovery scan interval.
func (c *Config) DiscoveryInterval() time.Duration {
	return time.Duration(c.DiscoveryIntervalSeconds) * time.Second
}

// PollTimeout returns the per-poll deadline.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

// RemediationTimeout returns the per-handoff deadline.
func (c *Config) RemediationTimeout() time.Duration {
	return time.Duration(c.Remediation.TimeoutSeconds) * time.Second
}
