// Package config loads, normalizes, and validates conlog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// CONLOG_SINKS and NO_COLOR. The Config type centralizes the sink selection and
// per-sink settings the CLI needs, so every sink is configured in one pass.
package config
