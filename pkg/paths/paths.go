package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
)

// Environment variable names
const (
	EnvRoot      = "PKGMERGE_ROOT"
	EnvConfigDir = "PKGMERGE_CONFIG_DIR"
	EnvDBDir     = "PKGMERGE_DB_DIR"
	EnvHome      = "HOME"
)

// Default directories and files
const (
	// ToolDirName is the directory name used under the XDG base dirs
	ToolDirName = "pkgmerge"

	// ConfigFileName is the user configuration file
	ConfigFileName = "config.toml"

	// DefaultDBDir is the package database, relative to the install root
	DefaultDBDir = "var/db/pkg"

	// RecordFileName is the content record kept per installed package
	RecordFileName = "CONTENTS"
)

// Paths resolves the directories pkgmerge reads and writes.
type Paths interface {
	Root() string
	ConfigDir() string
	ConfigFile() string
	StateDir() string
	DBDir() string
	RecordPath(pkg string) string
}

type paths struct {
	root      string
	configDir string
	stateDir  string
	dbDir     string
}

// New creates a Paths instance. An empty root falls back to PKGMERGE_ROOT
// and then "/".
func New(root string) (Paths, error) {
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		root = string(filepath.Separator)
	}
	abs, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to get absolute path for root %q", root)
	}

	xdg.Reload()
	p := &paths{root: filepath.Clean(abs)}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, ToolDirName)
	}
	p.stateDir = filepath.Join(xdg.StateHome, ToolDirName)

	if dir := os.Getenv(EnvDBDir); dir != "" {
		p.dbDir = ExpandHome(dir)
	} else {
		p.dbDir = JoinOffset(p.root, DefaultDBDir)
	}

	return p, nil
}

func (p *paths) Root() string       { return p.root }
func (p *paths) ConfigDir() string  { return p.configDir }
func (p *paths) ConfigFile() string { return filepath.Join(p.configDir, ConfigFileName) }
func (p *paths) StateDir() string   { return p.stateDir }
func (p *paths) DBDir() string      { return p.dbDir }

// RecordPath returns the content record location for a package, given as
// "category/name-version".
func (p *paths) RecordPath(pkg string) string {
	return filepath.Join(p.dbDir, filepath.FromSlash(pkg), RecordFileName)
}

// Canonical makes a location absolute and clean. Relative locations are
// resolved against the working directory.
func Canonical(location string) string {
	if location == "" {
		return location
	}
	if !filepath.IsAbs(location) {
		if abs, err := filepath.Abs(location); err == nil {
			return abs
		}
	}
	return filepath.Clean(location)
}

// JoinOffset places an absolute (or relative) location beneath offset.
func JoinOffset(offset, location string) string {
	trimmed := strings.TrimLeft(location, string(filepath.Separator))
	if offset == "" {
		offset = string(filepath.Separator)
	}
	return filepath.Join(offset, trimmed)
}

// TrimOffset is the inverse of JoinOffset. Locations outside offset are
// returned unchanged.
func TrimOffset(offset, location string) string {
	if offset == "" || offset == string(filepath.Separator) {
		return location
	}
	rel, err := filepath.Rel(offset, location)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return location
	}
	if rel == "." {
		return string(filepath.Separator)
	}
	return string(filepath.Separator) + rel
}

// Segments splits a location into its path components, dropping empty ones.
func Segments(location string) []string {
	parts := strings.Split(location, string(filepath.Separator))
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}
