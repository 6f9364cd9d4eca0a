// Package config handles configuration management for deftsilo.
// It layers embedded TOML defaults, the user's XDG config file, the
// dotfiles repository's .deftsilo.toml and DEFTSILO_* environment
// variables, then validates the merged result.
package config
