// Package config loads, normalizes, and validates stitch configuration.
//
// Configuration lives in a TOML file. Defaults cover every field so a missing
// file still yields a usable config; Load applies the file over the defaults,
// expands paths, and validates the result.
package config
