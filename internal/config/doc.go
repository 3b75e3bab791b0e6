// Package config loads, validates, and normalizes retempo configuration.
//
// Configuration is TOML, discovered at ~/.config/retempo/config.toml or a
// project-local retempo.toml, with every value carrying a sensible default so
// the tool runs without any file present. Path fields are expanded (~) and
// made absolute during normalization. A sample config is embedded for
// 'retempo config init'.
package config
