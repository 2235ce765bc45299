// Package config loads, normalizes, and validates reelscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file from the working directory,
// and honours environment fallbacks such as OPENROUTER_API_KEY and
// ELEVENLABS_API_KEY. The Config type centralizes every knob the ingestion
// pipeline, the store, and the CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
