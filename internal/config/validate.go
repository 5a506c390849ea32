package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Lastfm.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lastfm: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks LastfmConfig for errors. Credentials must be fully present
// or fully absent; whether absent credentials are acceptable depends on the
// command, so that check lives with the caller.
func (c *LastfmConfig) Validate() error {
	missing := c.missing()
	if len(missing) == 0 || len(missing) == 4 {
		return nil
	}
	return fmt.Errorf("incomplete credentials: missing %s", strings.Join(missing, ", "))
}

// Complete reports whether all four Last.fm credentials are set.
func (c *LastfmConfig) Complete() bool {
	return len(c.missing()) == 0
}

func (c *LastfmConfig) missing() []string {
	var m []string
	if c.Username == "" {
		m = append(m, "username")
	}
	if c.Password == "" {
		m = append(m, "password")
	}
	if c.APIKey == "" {
		m = append(m, "api_key")
	}
	if c.APISecret == "" {
		m = append(m, "api_secret")
	}
	return m
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return errors.New("rotation limits must be non-negative")
	}
	return nil
}
