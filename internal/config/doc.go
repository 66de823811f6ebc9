// Package config loads, normalizes, and validates discover configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as TMDB_TOKEN and
// BASE_URL. The Config type centralizes every knob the commands need so
// upstream credentials, cache backends and watchlist locations are discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
