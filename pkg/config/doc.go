// Package config loads pkgmerge's layered configuration.
//
// Layers, lowest priority first: the embedded defaults, the user file
// ($XDG_CONFIG_HOME/pkgmerge/config.toml or an explicit path), PKGMERGE_
// environment variables, then programmatic overrides such as CLI flags.
// Environment keys use a double underscore between section and key:
// PKGMERGE_LDCONFIG__BINARY sets ldconfig.binary.
package config
