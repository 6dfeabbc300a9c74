// Package config loads, normalizes, and validates Lithic's TOML
// configuration. Defaults are applied before validation so a missing file
// still yields a usable configuration.
package config
