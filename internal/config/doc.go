// Package config loads, normalizes, and validates imagemeta configuration.
//
// Settings come from a TOML file layered over Default(). Size limits are
// written in human form ("512KB", "4MiB") and parsed with go-units.
package config
