// pkg/mtime/watcher_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: temp dirs, afero MemMapFs, fake clock
// PURPOSE: Test snapshot/diff semantics and sub-second race handling

package mtime_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/pkgmerge/pkg/clock"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/mtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longAgo = time.Unix(1000000000, 0)

func oldDir(t *testing.T, fsys filesystem.FS, path string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(path, 0755))
	require.NoError(t, fsys.Chtimes(path, longAgo, longAgo))
}

func TestUnarmedWatcher(t *testing.T) {
	w := mtime.New(filesystem.NewOS())
	assert.False(t, w.Armed())
	_, err := w.CheckState()
	assert.True(t, errors.IsErrorCode(err, errors.ErrState))
}

func TestNoChangeThenNewFile(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := filepath.Join(t.TempDir(), "lib")
	oldDir(t, fsys, dir)

	w := mtime.New(fsys)
	require.NoError(t, w.SetState([]string{dir}, nil))
	assert.True(t, w.Armed())

	changed, err := w.CheckState()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "libfoo.so"), nil, 0644))
	changed, err = w.CheckState()
	require.NoError(t, err)
	assert.True(t, changed)

	changes, err := w.Changes()
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, mtime.Modified, changes[0].Kind)
	assert.Equal(t, dir, changes[0].Location)
}

func TestMissingLocationsSkippedThenAppear(t *testing.T) {
	fsys := filesystem.NewMemory()
	oldDir(t, fsys, "/usr/lib")

	w := mtime.New(fsys)
	require.NoError(t, w.SetState([]string{"/usr/lib", "/usr/lib64", "/usr/lib"}, nil))
	assert.Equal(t, []string{"/usr/lib", "/usr/lib64"}, w.Locations())
	assert.Len(t, w.Saved(), 1)

	changed, err := w.CheckState()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, fsys.MkdirAll("/usr/lib64", 0755))
	changes, err := w.Changes()
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, mtime.Appeared, changes[0].Kind)
	assert.Equal(t, "appeared", changes[0].Kind.String())
}

func TestVanished(t *testing.T) {
	fsys := filesystem.NewMemory()
	oldDir(t, fsys, "/usr/share/info")

	w := mtime.New(fsys)
	require.NoError(t, w.SetState([]string{"/usr/share/info"}, nil))
	require.NoError(t, fsys.RemoveAll("/usr/share/info"))

	changes, err := w.Changes()
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, mtime.Vanished, changes[0].Kind)
	assert.NotNil(t, changes[0].Before)
}

func TestResetDisarms(t *testing.T) {
	fsys := filesystem.NewMemory()
	w := mtime.New(fsys)
	require.NoError(t, w.SetState([]string{"/nothing"}, nil))
	w.Reset()
	assert.False(t, w.Armed())
	assert.Empty(t, w.Locations())
}

func TestStatFuncControlsSymlinks(t *testing.T) {
	fsys := filesystem.NewOS()
	root := t.TempDir()
	link := filepath.Join(root, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), link))

	w := mtime.New(fsys)
	require.NoError(t, w.SetState([]string{link}, nil))
	assert.Empty(t, w.Saved(), "following a dead symlink finds nothing")

	require.NoError(t, w.SetState([]string{link}, fsys.Lstat))
	assert.Len(t, w.Saved(), 1)
}

func TestSecondResolutionHidesSameSecondChange(t *testing.T) {
	fsys := filesystem.NewMemory()
	base := time.Unix(1700000000, 0)
	require.NoError(t, fsys.MkdirAll("/lib", 0755))
	require.NoError(t, fsys.Chtimes("/lib", base, base.Add(300*time.Millisecond)))

	coarse := mtime.New(fsys, mtime.WithSecondResolution())
	fine := mtime.New(fsys)
	require.NoError(t, coarse.SetState([]string{"/lib"}, nil))
	require.NoError(t, fine.SetState([]string{"/lib"}, nil))

	require.NoError(t, fsys.Chtimes("/lib", base, base.Add(700*time.Millisecond)))

	changed, err := coarse.CheckState()
	require.NoError(t, err)
	assert.False(t, changed, "whole-second probe cannot see the change")

	changed, err = fine.CheckState()
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestForcedPastBackdatesRecentMtimes(t *testing.T) {
	fsys := filesystem.NewMemory()
	now := time.Unix(1700000000, 500*int64(time.Millisecond))
	future := now.Add(100 * time.Second)
	require.NoError(t, fsys.MkdirAll("/lib", 0755))
	require.NoError(t, fsys.Chtimes("/lib", future, future))
	oldDir(t, fsys, "/old")

	w := mtime.New(fsys,
		mtime.WithForcedPast(2*time.Second),
		mtime.WithClock(clock.NewFakeClock(now)))
	require.NoError(t, w.SetState([]string{"/lib", "/old"}, nil))

	want := time.Unix(1699999998, 0)
	info, err := fsys.Stat("/lib")
	require.NoError(t, err)
	assert.True(t, want.Equal(info.ModTime()), "got %v", info.ModTime())

	info, err = fsys.Stat("/old")
	require.NoError(t, err)
	assert.True(t, longAgo.Equal(info.ModTime()), "old mtimes are left alone")

	changed, err := w.CheckState()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSettleNextSecond(t *testing.T) {
	c := clock.NewFakeClock(time.Unix(100, 300*int64(time.Millisecond)))
	mtime.SettleNextSecond(c)
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, c.Slept())
	assert.True(t, c.Now().Equal(time.Unix(101, 0)))

	mtime.SettleNextSecond(c)
	assert.True(t, c.Now().Equal(time.Unix(102, 0)), "a whole-second instant still moves forward")
}
