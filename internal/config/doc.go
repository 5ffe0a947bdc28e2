// Package config loads, normalizes, and validates seedcat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// ingest pipeline and CLI need: dataset location, output and ledger paths, and
// the collection limits that bound each streaming pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
