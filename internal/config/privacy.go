package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPrivacyRetentionDays = "CHRONICLE_PRIVACY_RETENTION_DAYS"
	EnvPrivacySweepInterval = "CHRONICLE_PRIVACY_SWEEP_INTERVAL"

	// EnvVaultPassphrase is intentionally environment-only; the passphrase
	// never appears in config files.
	EnvVaultPassphrase = "CHRONICLE_VAULT_PASSPHRASE"
)

// PrivacyConfig holds audit retention and maintenance sweep settings. The
// vault passphrase is read from the environment at load time and is never
// serialized.
type PrivacyConfig struct {
	RetentionDays int    `toml:"retention_days"`
	SweepInterval string `toml:"sweep_interval"`

	passphrase string
}

// VaultPassphrase returns the passphrase read from the environment.
func (c *PrivacyConfig) VaultPassphrase() string {
	return c.passphrase
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *PrivacyConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PrivacyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PrivacyConfig) Merge(overlay *PrivacyConfig) {
	if overlay.RetentionDays != 0 {
		c.RetentionDays = overlay.RetentionDays
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
}

func (c *PrivacyConfig) loadDefaults() {
	if c.RetentionDays == 0 {
		c.RetentionDays = 90
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1h"
	}
}

func (c *PrivacyConfig) loadEnv() {
	if v := os.Getenv(EnvPrivacyRetentionDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetentionDays = n
		}
	}
	if v := os.Getenv(EnvPrivacySweepInterval); v != "" {
		c.SweepInterval = v
	}
	c.passphrase = os.Getenv(EnvVaultPassphrase)
}

func (c *PrivacyConfig) validate() error {
	if c.RetentionDays < 1 {
		return fmt.Errorf("invalid retention_days: %d", c.RetentionDays)
	}
	if _, err := time.ParseDuration(c.SweepInterval); err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	return nil
}
