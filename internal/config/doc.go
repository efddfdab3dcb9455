// Package config loads, normalizes, and validates ps2id configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as PS2ID_DATABASE_DIR.
// The Config type gathers every knob the identification pipeline and the CLI
// need: where the region databases live, which file extensions are accepted,
// binary scan sizing, batch and watch behaviour, and log output.
package config
