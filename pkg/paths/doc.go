// Package paths provides centralized path handling for pkgmerge.
//
// It covers two concerns:
//
//   - Canonical form for filesystem entry locations: absolute, cleaned,
//     and joined beneath an install offset (the root a transaction
//     targets, "/" for the live system).
//   - Tool locations following the XDG Base Directory specification:
//     configuration, state (logs) and the installed package database.
//
// # Environment Variables
//
//   - PKGMERGE_ROOT: default install offset (default: /)
//   - PKGMERGE_CONFIG_DIR: override XDG config directory (default: $XDG_CONFIG_HOME/pkgmerge)
//   - PKGMERGE_DB_DIR: override the package database (default: <root>/var/db/pkg)
package paths
