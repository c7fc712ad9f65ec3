package config

import (
	"slices"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/triggers"
)

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	for _, name := range c.Triggers.Enabled {
		if !triggers.Factories().Has(name) {
			return errors.Newf(errors.ErrConfigValid, "unknown trigger %q", name).
				WithDetail("key", "triggers.enabled").
				WithDetail("known", triggers.Factories().List())
		}
	}
	for _, name := range c.Contents.Checksums {
		if _, err := chksum.Get(name); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "unknown checksum %q", name).
				WithDetail("key", "contents.checksums")
		}
	}
	if c.Contents.RecordName == "" {
		return errors.New(errors.ErrConfigValid, "contents.record_name must not be empty")
	}
	if c.Watcher.ForcedPast < 0 {
		return errors.New(errors.ErrConfigValid, "watcher.forced_past must not be negative")
	}
	return nil
}

// TriggerSettings converts the trigger sections.
func (c *Config) TriggerSettings() triggers.Settings {
	return triggers.Settings{
		LdConfig: triggers.LdConfigSettings{
			ConfPath:     c.LdConfig.ConfPath,
			Binary:       c.LdConfig.Binary,
			DefaultPaths: append([]string(nil), c.LdConfig.DefaultPaths...),
			Priority:     c.LdConfig.Priority,
		},
		Info: triggers.InfoRegenSettings{
			Locations: append([]string(nil), c.Info.Locations...),
			Binary:    c.Info.Binary,
			IndexName: c.Info.IndexName,
			Priority:  c.Info.Priority,
		},
		Watcher: triggers.WatcherSettings{
			ForcedPast: c.Watcher.ForcedPast,
			Subsecond:  c.Watcher.Subsecond,
		},
	}
}

// ScanOptions returns the scan settings for offset. md5 is always
// computed, so it is not repeated.
func (c *Config) ScanOptions(offset string) contents.ScanOptions {
	var sums []string
	for _, name := range c.Contents.Checksums {
		if name != chksum.Primary && !slices.Contains(sums, name) {
			sums = append(sums, name)
		}
	}
	return contents.ScanOptions{Offset: offset, Checksums: sums}
}
