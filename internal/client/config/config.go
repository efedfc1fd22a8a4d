package config

import "time"

// Config holds runtime settings for the Inkwell CLI.
//
// Units: OnlineCheckInterval and DrainDebounce are time.Durations
// (e.g., 3*time.Second).
type Config struct {
	// ServiceURL is the base URL of the hosted database service,
	// e.g. https://myproject.example.co.
	ServiceURL string

	// APIKey identifies the client application to the service. It is not a
	// user credential; the user's access token is entered at sign-in.
	APIKey string

	// DatabasePath is the local SQLite reservoir file.
	DatabasePath string

	// OnlineCheckInterval is how often the client probes service reachability.
	OnlineCheckInterval time.Duration

	// DrainDebounce suppresses repeated sync triggers on a flapping link.
	DrainDebounce time.Duration

	// OfflineEnabled selects the offline-capable storage backend. When false
	// the client runs in passthrough mode: no reservoir, no mutation log,
	// every operation goes straight to the service.
	OfflineEnabled bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServiceURL = "http://127.0.0.1:8000"
	c.DatabasePath = "inkwell.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.DrainDebounce = 5 * time.Second
	c.OfflineEnabled = true
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
