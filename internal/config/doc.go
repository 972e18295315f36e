// Package config holds hintscan's runtime configuration.
//
// The Config struct is populated from CLI flags (and optionally a YAML
// config file) and passed through the application by dependency
// injection; there is no global state.
package config
