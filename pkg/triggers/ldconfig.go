package triggers

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/mtime"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
	"github.com/arthur-debert/pkgmerge/pkg/spawn"
	"github.com/arthur-debert/pkgmerge/pkg/types"
	"github.com/rs/zerolog"
)

// LdConfigRegen regenerates the library cache for offset.
type LdConfigRegen func(ctx context.Context, e Engine, offset string) error

// LdConfig watches the library search directories and runs ldconfig when
// any of them changed across a merge or unmerge.
type LdConfig struct {
	Base
	settings LdConfigSettings
	fsys     filesystem.FS
	binary   *spawn.Binary
	watcher  *mtime.Watcher
	regen    LdConfigRegen
	logger   zerolog.Logger
}

// NewLdConfig builds the trigger. Base options apply after the defaults:
// priority from settings, every merge, unmerge and config hook, no content
// sets.
func NewLdConfig(s LdConfigSettings, d Deps, opts ...Option) *LdConfig {
	d = d.withDefaults()
	base := []Option{
		WithPriority(s.Priority),
		WithHooks(types.AllHooks...),
		WithRequiredCsets(NoCsets()),
	}
	t := &LdConfig{
		Base:     NewBase(append(base, opts...)...),
		settings: s,
		fsys:     d.FS,
		binary:   spawn.NewBinary(d.Runner, s.Binary),
		watcher:  d.newWatcher(WatcherSettings{Subsecond: true}),
		logger:   logging.GetLogger("triggers.ldconfig"),
	}
	t.regen = t.runLdconfig
	return t
}

// WithWatcher replaces the trigger's watcher.
func (t *LdConfig) WithWatcher(w *mtime.Watcher) *LdConfig {
	t.watcher = w
	return t
}

// SetRegen replaces the regeneration step.
func (t *LdConfig) SetRegen(fn LdConfigRegen) { t.regen = fn }

func (t *LdConfig) Localize(Engine) Trigger { return t }

// BinaryPath returns the resolved ldconfig path, or "" when absent.
func (t *LdConfig) BinaryPath() string {
	p, err := t.binary.Path()
	if err != nil {
		return ""
	}
	return p
}

// ReadLdSoConf returns the library directories under offset. A missing
// configuration file is created empty, together with its directory, and
// the default directories are used.
func (t *LdConfig) ReadLdSoConf(offset string) ([]string, error) {
	conf := paths.JoinOffset(offset, t.settings.ConfPath)
	data, err := t.fsys.ReadFile(conf)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, errors.ErrIO, "reading %s", conf).WithDetail("path", conf)
		}
		t.logger.Debug().Str("path", conf).Msg("ld.so.conf missing, creating it and using defaults")
		if err := t.fsys.MkdirAll(filepath.Dir(conf), 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "creating %s", filepath.Dir(conf))
		}
		if err := t.fsys.WriteFile(conf, nil, 0644); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "creating %s", conf)
		}
		return joinAll(offset, t.settings.DefaultPaths), nil
	}

	var dirs []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dirs = append(dirs, strings.TrimLeft(line, "/"))
	}
	return joinAll(offset, dirs), nil
}

func joinAll(offset string, locs []string) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = paths.JoinOffset(offset, l)
	}
	return out
}

// Trigger arms the watcher on pre hooks and regenerates on post hooks when
// a library directory changed. post_config always regenerates.
func (t *LdConfig) Trigger(ctx context.Context, e Engine, _ Args) error {
	phase := e.Phase()
	switch {
	case phase == types.HookPreConfig:
		return nil
	case phase.IsPre():
		dirs, err := t.ReadLdSoConf(e.Offset())
		if err != nil {
			return err
		}
		return t.watcher.SetState(dirs, nil)
	case phase == types.HookPostConfig:
		return t.regen(ctx, e, e.Offset())
	case phase.IsPost():
		changed := true
		if t.watcher.Armed() {
			var err error
			if changed, err = t.watcher.CheckState(); err != nil {
				return err
			}
		} else {
			t.logger.Debug().Str("phase", string(phase)).Msg("no saved state, regenerating unconditionally")
		}
		t.watcher.Reset()
		if !changed {
			t.logger.Debug().Msg("library directories unchanged")
			return nil
		}
		return t.regen(ctx, e, e.Offset())
	}
	return nil
}

func (t *LdConfig) runLdconfig(ctx context.Context, e Engine, offset string) error {
	if !t.binary.Available() {
		e.Observer().Warn("ldconfig: " + t.binary.Name() + " not found, library cache not regenerated")
		return nil
	}
	t.logger.Info().Str("offset", offset).Msg("regenerating library cache")
	res, err := t.binary.Run(ctx, "-r", offset)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTriggerFailed, "ldconfig failed: %s", strings.TrimSpace(res.Output))
	}
	return nil
}
