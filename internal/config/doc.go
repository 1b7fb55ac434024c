// Package config loads, normalizes, and validates versionup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// VERSIONUP_TIMELINE and VERSIONUP_FFPROBE. The Config type centralizes every
// knob the resolver and CLI need: the version token grammar, scan behaviour,
// compatibility rules, and where plans and logs are kept.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
