// Package config loads, normalizes, and validates the TOML configuration
// shared by the clipforge daemon and CLI.
package config
