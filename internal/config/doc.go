// Package config loads, normalizes and validates the TOML configuration
// for Stockpile.
package config
