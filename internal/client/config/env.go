package config

import "os"

// parseEnv overlays Config with values from the environment. main loads a
// .env file via godotenv before calling LoadConfig, so both real environment
// variables and dotfile entries land here.
func parseEnv(cfg *Config) {
	if v := os.Getenv("INKWELL_SERVICE_URL"); v != "" {
		cfg.ServiceURL = v
	}
	if v := os.Getenv("INKWELL_API_KEY"); v != "" {
		cfg.APIKey = v
	}
}
