// Package config loads, validates, and defaults the TOML configuration for
// the ingester daemon and CLI.
package config
