package config

import (
	"time"
)

// Config is the decoded configuration.
type Config struct {
	Triggers TriggersConfig `koanf:"triggers" toml:"triggers" yaml:"triggers"`
	LdConfig LdConfig       `koanf:"ldconfig" toml:"ldconfig" yaml:"ldconfig"`
	Info     Info           `koanf:"info" toml:"info" yaml:"info"`
	Contents Contents       `koanf:"contents" toml:"contents" yaml:"contents"`
	Watcher  Watcher        `koanf:"watcher" toml:"watcher" yaml:"watcher"`
	Logging  Logging        `koanf:"logging" toml:"logging" yaml:"logging"`
}

// TriggersConfig selects which bundled triggers a transaction registers.
type TriggersConfig struct {
	Enabled []string `koanf:"enabled" toml:"enabled" yaml:"enabled"`
}

// LdConfig configures the library cache trigger.
type LdConfig struct {
	// ConfPath is relative to the install root.
	ConfPath     string   `koanf:"conf_path" toml:"conf_path" yaml:"conf_path"`
	Binary       string   `koanf:"binary" toml:"binary" yaml:"binary"`
	DefaultPaths []string `koanf:"default_paths" toml:"default_paths" yaml:"default_paths"`
	Priority     int      `koanf:"priority" toml:"priority" yaml:"priority"`
}

// Info configures the info index trigger.
type Info struct {
	Locations []string `koanf:"locations" toml:"locations" yaml:"locations"`
	Binary    string   `koanf:"binary" toml:"binary" yaml:"binary"`
	IndexName string   `koanf:"index_name" toml:"index_name" yaml:"index_name"`
	Priority  int      `koanf:"priority" toml:"priority" yaml:"priority"`
}

// Contents configures content records and scans.
type Contents struct {
	RecordName string `koanf:"record_name" toml:"record_name" yaml:"record_name"`
	// Checksums are computed for every scanned file, md5 always included.
	Checksums []string `koanf:"checksums" toml:"checksums" yaml:"checksums"`
}

// Watcher configures the mtime watchers triggers use.
type Watcher struct {
	ForcedPast time.Duration `koanf:"forced_past" toml:"forced_past" yaml:"forced_past"`
	Subsecond  bool          `koanf:"subsecond" toml:"subsecond" yaml:"subsecond"`
}

// Logging holds the default verbosity; -v flags add to it.
type Logging struct {
	Verbosity int `koanf:"verbosity" toml:"verbosity" yaml:"verbosity"`
}
