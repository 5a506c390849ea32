package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every variable the loader consults so ambient values
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	names := []string{
		"LASTFM_USERNAME", "LASTFM_PASSWORD", "LASTFM_API_KEY", "LASTFM_API_SECRET",
		"SCROBBLE_INTERVAL", "SPEAKER_REDISCOVERY_INTERVAL", "SCROBBLE_THRESHOLD_PERCENT",
		"SCROBBLED_STATE_DIR", "SCROBBLED_LOG_LEVEL", "SCROBBLED_LOG_FILE",
	}
	for _, n := range names {
		t.Setenv(n, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[lastfm]\nusername = \"alice\"\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Poll.IntervalSeconds != 1 {
		t.Errorf("IntervalSeconds = %d, want 1", cfg.Poll.IntervalSeconds)
	}
	if cfg.Poll.RediscoverySeconds != 10 {
		t.Errorf("RediscoverySeconds = %d, want 10", cfg.Poll.RediscoverySeconds)
	}
	if cfg.Poll.ThresholdPercent != 25 {
		t.Errorf("ThresholdPercent = %d, want 25", cfg.Poll.ThresholdPercent)
	}
	if cfg.Sonos.DiscoveryTimeoutSeconds != 5 {
		t.Errorf("DiscoveryTimeoutSeconds = %d, want 5", cfg.Sonos.DiscoveryTimeoutSeconds)
	}
	if cfg.Lastfm.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want 10", cfg.Lastfm.TimeoutSeconds)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Lastfm.Username != "alice" {
		t.Errorf("Username = %q, want %q", cfg.Lastfm.Username, "alice")
	}
}

func TestLoadFromReadsAllSections(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[lastfm]
username = "alice"
password = "hunter2"
api_key = "key"
api_secret = "secret"
timeout_seconds = 3

[poll]
interval_seconds = 2
rediscovery_seconds = 30
threshold_percent = 50

[sonos]
discovery_timeout_seconds = 2
request_timeout_seconds = 4

[state]
dir = "/var/lib/scrobbled"

[log]
level = "debug"
file = "/var/log/scrobbled.log"
max_size_mb = 5
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if !cfg.Lastfm.Complete() {
		t.Error("Lastfm.Complete() = false, want true")
	}
	if cfg.Poll.IntervalSeconds != 2 {
		t.Errorf("IntervalSeconds = %d, want 2", cfg.Poll.IntervalSeconds)
	}
	if cfg.Poll.ThresholdPercent != 50 {
		t.Errorf("ThresholdPercent = %d, want 50", cfg.Poll.ThresholdPercent)
	}
	if cfg.State.Dir != "/var/lib/scrobbled" {
		t.Errorf("State.Dir = %q, want %q", cfg.State.Dir, "/var/lib/scrobbled")
	}
	if cfg.Log.File != "/var/log/scrobbled.log" {
		t.Errorf("Log.File = %q, want %q", cfg.Log.File, "/var/log/scrobbled.log")
	}
	if cfg.Log.MaxSizeMB != 5 {
		t.Errorf("Log.MaxSizeMB = %d, want 5", cfg.Log.MaxSizeMB)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LASTFM_USERNAME", "bob")
	t.Setenv("SCROBBLE_INTERVAL", "7")
	t.Setenv("SCROBBLED_LOG_LEVEL", "warn")

	path := writeConfig(t, `
[lastfm]
username = "alice"

[poll]
interval_seconds = 2
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Lastfm.Username != "bob" {
		t.Errorf("Username = %q, want %q", cfg.Lastfm.Username, "bob")
	}
	if cfg.Poll.IntervalSeconds != 7 {
		t.Errorf("IntervalSeconds = %d, want 7", cfg.Poll.IntervalSeconds)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
}

func TestThresholdFallsBackWhenOutOfRange(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 25},
		{-10, 25},
		{101, 25},
		{150, 25},
		{1, 1},
		{100, 100},
		{50, 50},
	}

	for _, tt := range tests {
		cfg := &Config{}
		cfg.Poll.ThresholdPercent = tt.in
		cfg.ApplyDefaults()
		if cfg.Poll.ThresholdPercent != tt.want {
			t.Errorf("ThresholdPercent %d after defaults = %d, want %d", tt.in, cfg.Poll.ThresholdPercent, tt.want)
		}
	}
}

func TestNonPositiveIntervalsFallBack(t *testing.T) {
	cfg := &Config{}
	cfg.Poll.IntervalSeconds = -1
	cfg.Sonos.RequestTimeoutSeconds = -5
	cfg.ApplyDefaults()

	if cfg.Poll.IntervalSeconds != 1 {
		t.Errorf("IntervalSeconds = %d, want 1", cfg.Poll.IntervalSeconds)
	}
	if cfg.Sonos.RequestTimeoutSeconds != 5 {
		t.Errorf("RequestTimeoutSeconds = %d, want 5", cfg.Sonos.RequestTimeoutSeconds)
	}
}

func TestValidatePartialCredentials(t *testing.T) {
	cfg := Default()
	cfg.Lastfm.Username = "alice"
	cfg.Lastfm.APIKey = "key"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error for partial credentials")
	}
	if !strings.Contains(err.Error(), "password") || !strings.Contains(err.Error(), "api_secret") {
		t.Errorf("Validate() error = %q, want it to name the missing fields", err)
	}
}

func TestValidateAcceptsAbsentCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for absent credentials", err)
	}
	if cfg.Lastfm.Complete() {
		t.Error("Complete() = true, want false")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for invalid log level")
	}
}

func TestStatePath(t *testing.T) {
	c := &StateConfig{Dir: "/tmp/custom"}
	if got := c.Path(); got != "/tmp/custom" {
		t.Errorf("Path() = %q, want %q", got, "/tmp/custom")
	}

	c = &StateConfig{}
	if got := c.Path(); filepath.Base(got) != "scrobbled" {
		t.Errorf("Path() = %q, want a scrobbled data directory", got)
	}
}
