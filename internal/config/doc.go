// Package config loads, normalizes, and validates reel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ACOUSTID_API_KEY. The Config type centralizes every knob the CLI and the
// session workers need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical tier names, and clear validation errors.
package config
