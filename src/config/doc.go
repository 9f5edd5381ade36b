// Package config defines the configuration of a tally node.
//
// The same Config object is populated from command-line flags, from an
// optional tally.toml in the data directory, or directly by code that embeds
// the engine.
package config
