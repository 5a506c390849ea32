package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Config is the root configuration structure.
type Config struct {
	Lastfm LastfmConfig `toml:"lastfm"`
	Poll   PollConfig   `toml:"poll"`
	Sonos  SonosConfig  `toml:"sonos"`
	State  StateConfig  `toml:"state"`
	Log    LogConfig    `toml:"log"`
}

// LastfmConfig holds Last.fm account and API settings.
type LastfmConfig struct {
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// PollConfig holds poll loop settings.
type PollConfig struct {
	IntervalSeconds    int `toml:"interval_seconds"`
	RediscoverySeconds int `toml:"rediscovery_seconds"`
	ThresholdPercent   int `toml:"threshold_percent"`
}

// SonosConfig holds speaker discovery and request settings.
type SonosConfig struct {
	DiscoveryTimeoutSeconds int `toml:"discovery_timeout_seconds"`
	RequestTimeoutSeconds   int `toml:"request_timeout_seconds"`
}

// StateConfig holds state persistence settings.
type StateConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Timeout returns the per-call report timeout.
func (c *LastfmConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Interval returns the poll cadence.
func (c *PollConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Rediscovery returns the cadence of background speaker sweeps.
func (c *PollConfig) Rediscovery() time.Duration {
	return time.Duration(c.RediscoverySeconds) * time.Second
}

// DiscoveryTimeout returns how long a single SSDP sweep listens for replies.
func (c *SonosConfig) DiscoveryTimeout() time.Duration {
	return time.Duration(c.DiscoveryTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-speaker request timeout.
func (c *SonosConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Path returns the state directory, defaulting to a scrobbled directory
// under the XDG data home.
func (c *StateConfig) Path() string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(xdg.DataHome, "scrobbled")
}
