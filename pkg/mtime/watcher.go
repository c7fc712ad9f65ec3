package mtime

import (
	"io/fs"
	"time"

	"github.com/arthur-debert/pkgmerge/pkg/clock"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
)

// StatFunc stats a location. Passing an Lstat variant records symlinks
// themselves instead of their targets.
type StatFunc func(name string) (fs.FileInfo, error)

// ChangeKind classifies a difference found by Changes.
type ChangeKind int

const (
	Modified ChangeKind = iota + 1
	Appeared
	Vanished
)

func (k ChangeKind) String() string {
	switch k {
	case Modified:
		return "modified"
	case Appeared:
		return "appeared"
	case Vanished:
		return "vanished"
	}
	return "unknown"
}

// Change describes one watched location that differs from the snapshot.
type Change struct {
	Location string
	Kind     ChangeKind
	Before   fsentry.Entry
	After    fsentry.Entry
}

// Watcher snapshots mtimes and diffs them later.
type Watcher struct {
	fsys       filesystem.FS
	clock      clock.Clock
	subsecond  bool
	forcedPast time.Duration

	stat      StatFunc
	locations []string
	saved     map[string]fsentry.Entry
	armed     bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSecondResolution truncates recorded mtimes to whole seconds, matching
// filesystems without sub-second timestamps.
func WithSecondResolution() Option {
	return func(w *Watcher) { w.subsecond = false }
}

// WithForcedPast makes SetState push any mtime newer than now-d back to
// now-d, on disk, before recording it. Zero disables it.
func WithForcedPast(d time.Duration) Option {
	return func(w *Watcher) { w.forcedPast = d }
}

// WithClock sets the time source used by WithForcedPast.
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// New returns an unarmed watcher over fsys.
func New(fsys filesystem.FS, opts ...Option) *Watcher {
	w := &Watcher{
		fsys:      fsys,
		clock:     clock.RealClock{},
		subsecond: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetState snapshots locations and arms the watcher. A nil stat follows
// symlinks. Locations that do not exist are skipped.
func (w *Watcher) SetState(locations []string, stat StatFunc) error {
	if stat == nil {
		stat = w.fsys.Stat
	}
	logger := logging.GetLogger("mtime")

	seen := make(map[string]bool, len(locations))
	locs := make([]string, 0, len(locations))
	for _, loc := range locations {
		loc = paths.Canonical(loc)
		if !seen[loc] {
			seen[loc] = true
			locs = append(locs, loc)
		}
	}

	saved := make(map[string]fsentry.Entry, len(locs))
	for _, loc := range locs {
		e, err := w.probe(loc, stat)
		if err != nil {
			return err
		}
		if e == nil {
			continue
		}
		if w.forcedPast > 0 {
			if e, err = w.pushIntoPast(loc, e, stat); err != nil {
				return err
			}
		}
		saved[loc] = e
	}

	w.stat = stat
	w.locations = locs
	w.saved = saved
	w.armed = true
	logger.Debug().
		Strs("locations", locs).
		Int("present", len(saved)).
		Msg("watcher armed")
	return nil
}

// CheckState reports whether any watched location changed since SetState.
func (w *Watcher) CheckState() (bool, error) {
	changes, err := w.Changes()
	if err != nil {
		return false, err
	}
	return len(changes) > 0, nil
}

// Changes lists every watched location that differs from the snapshot, in
// watch order.
func (w *Watcher) Changes() ([]Change, error) {
	if !w.armed {
		return nil, errors.New(errors.ErrState, "mtime watcher has no saved state")
	}
	var changes []Change
	for _, loc := range w.locations {
		after, err := w.probe(loc, w.stat)
		if err != nil {
			return nil, err
		}
		before, had := w.saved[loc]
		switch {
		case had && after == nil:
			changes = append(changes, Change{Location: loc, Kind: Vanished, Before: before})
		case !had && after != nil:
			changes = append(changes, Change{Location: loc, Kind: Appeared, After: after})
		case had && !before.Mtime().Equal(after.Mtime()):
			changes = append(changes, Change{Location: loc, Kind: Modified, Before: before, After: after})
		}
	}
	logger := logging.GetLogger("mtime")
	logger.Debug().Int("changes", len(changes)).Msg("watcher checked")
	return changes, nil
}

// Saved returns the recorded probe entries, sorted.
func (w *Watcher) Saved() []fsentry.Entry {
	out := make([]fsentry.Entry, 0, len(w.saved))
	for _, e := range w.saved {
		out = append(out, e)
	}
	fsentry.Sort(out)
	return out
}

// Locations returns the watched locations in the order given to SetState.
func (w *Watcher) Locations() []string {
	return append([]string(nil), w.locations...)
}

func (w *Watcher) Armed() bool { return w.armed }

// Reset drops the snapshot and disarms the watcher.
func (w *Watcher) Reset() {
	w.stat = nil
	w.locations = nil
	w.saved = nil
	w.armed = false
}

// probe returns nil without error when loc does not exist.
func (w *Watcher) probe(loc string, stat StatFunc) (fsentry.Entry, error) {
	info, err := stat(loc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "stat %s", loc).WithDetail("location", loc)
	}
	opts := []fsentry.Option{fsentry.NonStrict()}
	if !w.subsecond {
		opts = append(opts, fsentry.WithMtime(info.ModTime().Truncate(time.Second)))
	}
	return fsentry.FromFileInfo(loc, info, opts...)
}

func (w *Watcher) pushIntoPast(loc string, e fsentry.Entry, stat StatFunc) (fsentry.Entry, error) {
	past := w.clock.Now().Add(-w.forcedPast).Truncate(time.Second)
	if !e.Mtime().After(past) {
		return e, nil
	}
	if err := w.fsys.Chtimes(loc, past, past); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "resetting mtime of %s", loc).WithDetail("location", loc)
	}
	logger := logging.GetLogger("mtime")
	logger.Trace().Str("location", loc).Time("mtime", past).Msg("pushed mtime into the past")
	updated, err := w.probe(loc, stat)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return e, nil
	}
	return updated, nil
}

// SettleNextSecond blocks until the clock has crossed into the next whole
// second. Mutations made afterwards get an mtime in a later second than
// any snapshot taken before the call.
func SettleNextSecond(c clock.Clock) {
	now := c.Now()
	next := now.Truncate(time.Second).Add(time.Second)
	c.Sleep(next.Sub(now))
}
