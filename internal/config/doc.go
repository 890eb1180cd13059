// Package config provides configuration structures and utilities for firedocs.
// It defines the crawl settings, their defaults, the YAML settings file with
// per-site overrides, and the XDG directories used for state.
package config
