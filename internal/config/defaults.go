package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Lastfm: LastfmConfig{
			TimeoutSeconds: 10,
		},
		Poll: PollConfig{
			IntervalSeconds:    1,
			RediscoverySeconds: 10,
			ThresholdPercent:   25,
		},
		Sonos: SonosConfig{
			DiscoveryTimeoutSeconds: 5,
			RequestTimeoutSeconds:   5,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// ApplyDefaults fills in unset values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Lastfm
	if c.Lastfm.TimeoutSeconds <= 0 {
		c.Lastfm.TimeoutSeconds = d.Lastfm.TimeoutSeconds
	}

	// Poll. Zero means unset; a threshold outside (0, 100] falls back to
	// the default.
	if c.Poll.IntervalSeconds <= 0 {
		c.Poll.IntervalSeconds = d.Poll.IntervalSeconds
	}
	if c.Poll.RediscoverySeconds <= 0 {
		c.Poll.RediscoverySeconds = d.Poll.RediscoverySeconds
	}
	if c.Poll.ThresholdPercent <= 0 || c.Poll.ThresholdPercent > 100 {
		c.Poll.ThresholdPercent = d.Poll.ThresholdPercent
	}

	// Sonos
	if c.Sonos.DiscoveryTimeoutSeconds <= 0 {
		c.Sonos.DiscoveryTimeoutSeconds = d.Sonos.DiscoveryTimeoutSeconds
	}
	if c.Sonos.RequestTimeoutSeconds <= 0 {
		c.Sonos.RequestTimeoutSeconds = d.Sonos.RequestTimeoutSeconds
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = d.Log.MaxBackups
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = d.Log.MaxAgeDays
	}
}
