package types

import (
	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
)

// Mode identifies the kind of package operation an engine is running.
type Mode string

const (
	ModeInstall   Mode = "install"
	ModeUninstall Mode = "uninstall"
	ModeReplace   Mode = "replace"
	ModeConfig    Mode = "config"
)

// Modes lists every valid mode in a stable order.
var Modes = []Mode{ModeInstall, ModeUninstall, ModeReplace, ModeConfig}

// InstallingModes are the modes that merge new content onto the filesystem.
var InstallingModes = []Mode{ModeInstall, ModeReplace}

// UninstallingModes are the modes that remove content from the filesystem.
var UninstallingModes = []Mode{ModeReplace, ModeUninstall}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown mode %q", s).WithDetail("mode", s)
}

// Hook names a phase at which triggers run.
type Hook string

const (
	HookPreMerge    Hook = "pre_merge"
	HookPostMerge   Hook = "post_merge"
	HookPreUnmerge  Hook = "pre_unmerge"
	HookPostUnmerge Hook = "post_unmerge"
	HookPreConfig   Hook = "pre_config"
	HookPostConfig  Hook = "post_config"
)

// AllHooks lists every hook in phase order.
var AllHooks = []Hook{
	HookPreMerge, HookPostMerge,
	HookPreUnmerge, HookPostUnmerge,
	HookPreConfig, HookPostConfig,
}

// IsPre reports whether the hook is the opening half of a phase pair.
func (h Hook) IsPre() bool {
	switch h {
	case HookPreMerge, HookPreUnmerge, HookPreConfig:
		return true
	}
	return false
}

// IsPost reports whether the hook is the closing half of a phase pair.
func (h Hook) IsPost() bool {
	switch h {
	case HookPostMerge, HookPostUnmerge, HookPostConfig:
		return true
	}
	return false
}

// Phases returns the fixed hook sequence a transaction in the given mode
// walks through.
func Phases(m Mode) []Hook {
	switch m {
	case ModeInstall:
		return []Hook{HookPreMerge, HookPostMerge}
	case ModeUninstall:
		return []Hook{HookPreUnmerge, HookPostUnmerge}
	case ModeReplace:
		return []Hook{HookPreMerge, HookPostMerge, HookPreUnmerge, HookPostUnmerge}
	case ModeConfig:
		return []Hook{HookPreConfig, HookPostConfig}
	}
	return nil
}

// Well known content set names handed to triggers.
const (
	CsetInstall   = "install"
	CsetUninstall = "uninstall"
	CsetExisting  = "existing"
)

// Csets maps content set names to the sets available in a transaction.
type Csets map[string]*contents.Set

// Observer receives non-fatal, user visible notices from triggers.
type Observer interface {
	Warn(message string)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(message string)

// Warn calls f(message).
func (f ObserverFunc) Warn(message string) { f(message) }
