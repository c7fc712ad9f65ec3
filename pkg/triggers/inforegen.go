package triggers

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
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

// InfoRegenFunc rebuilds the index of one info directory and returns the
// files install-info rejected.
type InfoRegenFunc func(ctx context.Context, binary, dir string) ([]string, error)

// install-info complaints that do not mean the file is broken.
var benignInstallInfoOutput = []string{
	"already exists",
	"warning: no info dir entry",
}

// InfoRegen rebuilds info directory indexes for directories that changed,
// or that lack an index. During a replace it waits for the final phase so
// the work happens once.
type InfoRegen struct {
	Base
	settings InfoRegenSettings
	fsys     filesystem.FS
	binary   *spawn.Binary
	runner   spawn.Runner
	watcher  *mtime.Watcher
	regen    InfoRegenFunc
	logger   zerolog.Logger

	warnedMissing bool
}

// NewInfoRegen builds the trigger with every merge, unmerge and config hook
// and no content sets.
func NewInfoRegen(s InfoRegenSettings, d Deps, opts ...Option) *InfoRegen {
	d = d.withDefaults()
	base := []Option{
		WithPriority(s.Priority),
		WithHooks(types.AllHooks...),
		WithRequiredCsets(NoCsets()),
	}
	t := &InfoRegen{
		Base:     NewBase(append(base, opts...)...),
		settings: s,
		fsys:     d.FS,
		binary:   spawn.NewBinary(d.Runner, s.Binary),
		runner:   d.Runner,
		watcher:  d.newWatcher(WatcherSettings{Subsecond: true}),
		logger:   logging.GetLogger("triggers.inforegen"),
	}
	t.regen = t.RegenDir
	return t
}

// WithWatcher replaces the trigger's watcher.
func (t *InfoRegen) WithWatcher(w *mtime.Watcher) *InfoRegen {
	t.watcher = w
	return t
}

// SetRegen replaces the per-directory regeneration step.
func (t *InfoRegen) SetRegen(fn InfoRegenFunc) { t.regen = fn }

func (t *InfoRegen) Localize(Engine) Trigger { return t }

// BinaryPath returns the resolved install-info path, or "" when absent.
func (t *InfoRegen) BinaryPath() string {
	p, err := t.binary.Path()
	if err != nil {
		return ""
	}
	return p
}

func (t *InfoRegen) locations(offset string) []string {
	return joinAll(offset, t.settings.Locations)
}

// Trigger arms the watcher at the first pre hook and regenerates at post
// hooks. In replace mode only the final phase regenerates.
func (t *InfoRegen) Trigger(ctx context.Context, e Engine, _ Args) error {
	bin := t.BinaryPath()
	if bin == "" {
		if !t.warnedMissing {
			t.warnedMissing = true
			e.Observer().Warn("info_regen: " + t.binary.Name() + " not found, info indexes not regenerated")
		}
		return nil
	}
	phase := e.Phase()
	locs := t.locations(e.Offset())

	switch {
	case phase == types.HookPreConfig:
		return nil
	case phase.IsPre():
		if e.Mode() == types.ModeReplace && phase == types.HookPreUnmerge && t.watcher.Armed() {
			// Mid-replace: keep the snapshot taken before the merge.
			return nil
		}
		return t.watcher.SetState(locs, nil)
	case phase == types.HookPostConfig:
		return t.regenerate(ctx, e, bin, locs)
	case phase.IsPost():
		if e.Mode() == types.ModeReplace && !e.FinalPhase() {
			t.logger.Debug().Str("phase", string(phase)).Msg("replace in progress, deferring regeneration")
			return nil
		}
		dirs, err := t.changedDirs(locs)
		t.watcher.Reset()
		if err != nil {
			return err
		}
		return t.regenerate(ctx, e, bin, dirs)
	}
	return nil
}

// changedDirs returns the watched locations that changed plus any lacking
// an index file.
func (t *InfoRegen) changedDirs(locs []string) ([]string, error) {
	want := make(map[string]bool)
	if t.watcher.Armed() {
		changes, err := t.watcher.Changes()
		if err != nil {
			return nil, err
		}
		for _, c := range changes {
			want[c.Location] = true
		}
	}
	for _, loc := range locs {
		info, err := t.fsys.Stat(filepath.Join(loc, t.settings.IndexName))
		if err != nil || !info.Mode().IsRegular() {
			want[loc] = true
		}
	}
	var dirs []string
	for _, loc := range locs {
		if want[loc] {
			dirs = append(dirs, loc)
		}
	}
	return dirs, nil
}

func (t *InfoRegen) regenerate(ctx context.Context, e Engine, bin string, dirs []string) error {
	var bad []string
	for _, dir := range dirs {
		t.logger.Info().Str("dir", dir).Msg("regenerating info index")
		files, err := t.regen(ctx, bin, dir)
		if err != nil {
			return err
		}
		bad = append(bad, files...)
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		e.Observer().Warn("bad info files: " + strings.Join(bad, ", "))
	}
	return nil
}

// RegenDir wipes dir's index and re-adds every info file through binary.
// A missing directory is not an error.
func (t *InfoRegen) RegenDir(ctx context.Context, binary, dir string) ([]string, error) {
	entries, err := t.fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "listing %s", dir).WithDetail("path", dir)
	}

	index := filepath.Join(dir, t.settings.IndexName)
	ignored := map[string]bool{t.settings.IndexName: true, t.settings.IndexName + ".old": true}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if ignored[name] {
			if err := t.fsys.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrapf(err, errors.ErrIO, "removing old index %s", name)
			}
			continue
		}
		if strings.HasPrefix(name, ".") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	var bad []string
	for _, file := range files {
		res, err := t.runner.Run(ctx, binary, "--quiet", file, "--dir-file", index)
		if err != nil && res.ExitCode == 0 {
			// The helper did not run at all.
			return nil, err
		}
		if isBadInstallInfoOutput(res.Output) {
			bad = append(bad, file)
		}
	}
	return bad, nil
}

func isBadInstallInfoOutput(out string) bool {
	if strings.TrimSpace(out) == "" {
		return false
	}
	for _, benign := range benignInstallInfoOutput {
		if strings.Contains(out, benign) {
			return false
		}
	}
	return true
}

// Locations returns the watched directories under offset.
func (t *InfoRegen) Locations(offset string) []string {
	return t.locations(paths.Canonical(offset))
}
