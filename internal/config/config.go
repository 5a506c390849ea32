package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.scrobbledrc, $XDG_CONFIG_HOME/scrobbled/config.toml
func Load() (*Config, error) {
	// A .env in the working directory seeds the environment but never
	// overrides variables that are already set.
	_ = godotenv.Load()

	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment variables override the file; defaults fill whatever is
	// still unset.
	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()
	return cfg, nil
}

// FilePath returns the config file Load would read, or empty when none exists.
func FilePath() string {
	return findConfigFile()
}

// DefaultPath returns where `scrobbled config init` writes its template.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "scrobbled", "config.toml")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		rc := filepath.Join(home, ".scrobbledrc")
		if _, err := os.Stat(rc); err == nil {
			return rc
		}
	}

	p := filepath.Join(xdg.ConfigHome, "scrobbled", "config.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Last.fm
	if v := os.Getenv("LASTFM_USERNAME"); v != "" {
		cfg.Lastfm.Username = v
	}
	if v := os.Getenv("LASTFM_PASSWORD"); v != "" {
		cfg.Lastfm.Password = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		cfg.Lastfm.APIKey = v
	}
	if v := os.Getenv("LASTFM_API_SECRET"); v != "" {
		cfg.Lastfm.APISecret = v
	}

	// Poll
	if v := os.Getenv("SCROBBLE_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Poll.IntervalSeconds = i
		}
	}
	if v := os.Getenv("SPEAKER_REDISCOVERY_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Poll.RediscoverySeconds = i
		}
	}
	if v := os.Getenv("SCROBBLE_THRESHOLD_PERCENT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Poll.ThresholdPercent = i
		}
	}

	// State
	if v := os.Getenv("SCROBBLED_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}

	// Log
	if v := os.Getenv("SCROBBLED_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SCROBBLED_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
