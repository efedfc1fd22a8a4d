// Package config loads runtime configuration for the Inkwell CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv); main loads a .env file first.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the hosted database service
//	-k string   service API key
//	-d string   path to the local reservoir database file
//	-i int      online status check interval (seconds)
//	-offline    enable the offline reservoir (=false for passthrough mode)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "service_url": "https://myproject.example.co",
//	  "api_key": "...",
//	  "database_path": "inkwell.db",
//	  "online_check_interval": "3s",
//	  "drain_debounce": "5s",
//	  "offline_enabled": true
//	}
//
// Environment variables
//
//	INKWELL_SERVICE_URL, INKWELL_API_KEY
//
// Secrets belong in the environment (or a .env file next to the binary),
// not in flags that end up in shell history.
package config
