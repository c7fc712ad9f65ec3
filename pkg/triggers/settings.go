package triggers

import (
	"time"

	"github.com/arthur-debert/pkgmerge/pkg/clock"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/mtime"
	"github.com/arthur-debert/pkgmerge/pkg/spawn"
)

// LdConfigSettings configures the library cache trigger.
type LdConfigSettings struct {
	// ConfPath is relative to the transaction offset.
	ConfPath     string
	Binary       string
	DefaultPaths []string
	Priority     int
}

// InfoRegenSettings configures the info index trigger.
type InfoRegenSettings struct {
	// Locations are absolute paths placed under the transaction offset.
	Locations []string
	Binary    string
	IndexName string
	Priority  int
}

// WatcherSettings configures the mtime watchers triggers create.
type WatcherSettings struct {
	ForcedPast time.Duration
	Subsecond  bool
}

// Settings groups the configuration of every bundled trigger.
type Settings struct {
	LdConfig LdConfigSettings
	Info     InfoRegenSettings
	Watcher  WatcherSettings
}

// DefaultSettings mirrors the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		LdConfig: LdConfigSettings{
			ConfPath:     "etc/ld.so.conf",
			Binary:       "ldconfig",
			DefaultPaths: []string{"usr/lib", "usr/lib64", "usr/lib32", "lib", "lib64", "lib32"},
			Priority:     10,
		},
		Info: InfoRegenSettings{
			Locations: []string{"/usr/share/info"},
			Binary:    "install-info",
			IndexName: "dir",
			Priority:  DefaultPriority,
		},
		Watcher: WatcherSettings{
			ForcedPast: 2 * time.Second,
			Subsecond:  true,
		},
	}
}

// Deps are the collaborators triggers use. Zero fields get OS defaults.
type Deps struct {
	FS     filesystem.FS
	Runner spawn.Runner
	Clock  clock.Clock
}

func (d Deps) withDefaults() Deps {
	if d.FS == nil {
		d.FS = filesystem.NewOS()
	}
	if d.Runner == nil {
		d.Runner = spawn.NewExecRunner()
	}
	if d.Clock == nil {
		d.Clock = clock.RealClock{}
	}
	return d
}

func (d Deps) newWatcher(s WatcherSettings) *mtime.Watcher {
	opts := []mtime.Option{mtime.WithClock(d.Clock), mtime.WithForcedPast(s.ForcedPast)}
	if !s.Subsecond {
		opts = append(opts, mtime.WithSecondResolution())
	}
	return mtime.New(d.FS, opts...)
}
