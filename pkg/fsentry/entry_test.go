// pkg/fsentry/entry_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test entry construction, identity and derivation

package fsentry_test

import (
	"io/fs"
	"testing"
	"time"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func full(extra ...fsentry.Option) []fsentry.Option {
	return append([]fsentry.Option{
		fsentry.WithMode(0644),
		fsentry.WithMtimeUnix(100),
		fsentry.WithOwner(0, 0),
	}, extra...)
}

func TestStrictConstructionRequiresAttributes(t *testing.T) {
	_, err := fsentry.NewFile("/usr/bin/foo")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
	assert.ElementsMatch(t, []string{"mode", "mtime", "uid", "gid"}, errors.GetErrorDetails(err)["missing"])

	_, err = fsentry.NewFile("/usr/bin/foo", fsentry.WithMode(0755))
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"mtime", "uid", "gid"}, errors.GetErrorDetails(err)["missing"])

	f, err := fsentry.NewFile("/usr/bin/foo", fsentry.NonStrict())
	require.NoError(t, err)
	assert.False(t, f.Has(fsentry.FieldMode))
}

func TestEmptyLocationRejected(t *testing.T) {
	_, err := fsentry.NewDir("", fsentry.NonStrict())
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestLocationIsCanonical(t *testing.T) {
	d, err := fsentry.NewDir("/usr//lib/../lib64/", full()...)
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib64", d.Location())
	assert.Equal(t, "/usr/lib64", d.RealLocation())
}

func TestEqualityIgnoresKind(t *testing.T) {
	f, err := fsentry.NewFile("/a", fsentry.NonStrict())
	require.NoError(t, err)
	d, err := fsentry.NewDir("/a", full()...)
	require.NoError(t, err)
	other, err := fsentry.NewDir("/b", full()...)
	require.NoError(t, err)

	assert.True(t, fsentry.Equal(f, d))
	assert.False(t, fsentry.Equal(d, other))
	assert.True(t, fsentry.Equal(nil, nil))
	assert.False(t, fsentry.Equal(d, nil))
}

func TestSymlinkNeedsTarget(t *testing.T) {
	_, err := fsentry.NewSymlink("/lib/libc.so", "", full()...)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	s, err := fsentry.NewSymlink("/lib/libc.so", "libc.so.6", full()...)
	require.NoError(t, err)
	assert.Equal(t, "libc.so.6", s.Target())
	assert.Equal(t, "symlink:/lib/libc.so->libc.so.6", s.String())
}

func TestDeviceValidation(t *testing.T) {
	_, err := fsentry.NewDevice("/dev/null", full(fsentry.WithMode(fs.ModeDevice|fs.ModeCharDevice|0666))...)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), "missing major/minor")

	_, err = fsentry.NewDevice("/dev/null", full(fsentry.WithDevice(1, 3))...)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), "mode lacks device bits")

	d, err := fsentry.NewDevice("/dev/null",
		full(fsentry.WithMode(fs.ModeDevice|fs.ModeCharDevice|0666), fsentry.WithDevice(1, 3))...)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Major())
	assert.Equal(t, 3, d.Minor())
	assert.True(t, d.IsChar())
	assert.Equal(t, "/dev/null", d.RealPath())

	loose, err := fsentry.NewDevice("/dev/sda", fsentry.NonStrict())
	require.NoError(t, err)
	assert.Equal(t, -1, loose.Major())
}

func TestWithChangesCopiesAndOverrides(t *testing.T) {
	orig, err := fsentry.NewFile("/usr/bin/foo", full()...)
	require.NoError(t, err)

	changed := orig.WithChanges(fsentry.WithMode(0755), fsentry.WithLocation("/usr/bin/bar"))
	require.IsType(t, &fsentry.File{}, changed)
	assert.Equal(t, fs.FileMode(0755), changed.Mode())
	assert.Equal(t, "/usr/bin/bar", changed.Location())
	assert.Equal(t, orig.Mtime(), changed.Mtime())

	assert.Equal(t, fs.FileMode(0644), orig.Mode())
	assert.Equal(t, "/usr/bin/foo", orig.Location())
}

func TestWithChangesKeepsVariantFields(t *testing.T) {
	s, err := fsentry.NewSymlink("/a", "b", full()...)
	require.NoError(t, err)
	moved := s.WithChanges(fsentry.WithMtime(time.Unix(5, 0)))
	require.IsType(t, &fsentry.Symlink{}, moved)
	assert.Equal(t, "b", moved.(*fsentry.Symlink).Target())

	f, err := fsentry.NewFifo("/run/pipe", full(fsentry.WithRealPath("/tmp/pipe"))...)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pipe", f.WithChanges().(*fsentry.Fifo).RealPath())
}

func TestFileChecksumsComputedLazily(t *testing.T) {
	f, err := fsentry.NewFile("/etc/motd", full(fsentry.WithSource(fsentry.Bytes([]byte("hello"))))...)
	require.NoError(t, err)
	assert.False(t, f.HasChecksum("md5"))

	d, err := f.Checksum("md5")
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", chksum.Format(d))
	assert.True(t, f.HasChecksum("md5"))

	_, err = f.Checksum("crc-nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrLookup))
}

func TestFileChecksumCarryForward(t *testing.T) {
	sum := []byte{1, 2, 3}
	f, err := fsentry.NewFile("/a", full(fsentry.WithChecksum("md5", sum))...)
	require.NoError(t, err)

	same := f.WithChanges(fsentry.WithMode(0600)).(*fsentry.File)
	assert.Equal(t, sum, same.Checksums()["md5"])

	relocated := f.WithChanges(fsentry.WithLocation("/image/a")).(*fsentry.File)
	assert.Equal(t, "/image/a", relocated.Location())
	assert.Equal(t, sum, relocated.Checksums()["md5"], "a location move keeps known digests")

	added := f.WithChanges(fsentry.WithChecksum("sha1", sum)).(*fsentry.File)
	assert.True(t, added.HasChecksum("md5"))
	assert.True(t, added.HasChecksum("sha1"))

	moved := f.WithChanges(fsentry.WithRealLocation("/elsewhere")).(*fsentry.File)
	assert.False(t, moved.HasChecksum("md5"))

	explicit := f.WithChanges(fsentry.WithSource(fsentry.Bytes(nil)), fsentry.WithChecksum("sha1", sum)).(*fsentry.File)
	assert.True(t, explicit.HasChecksum("sha1"))
	assert.False(t, explicit.HasChecksum("md5"), "new content drops carried digests")
}

func TestFileChecksumMissingSource(t *testing.T) {
	f, err := fsentry.NewFile("/does/not/exist/anywhere", full()...)
	require.NoError(t, err)
	_, err = f.Checksum("md5")
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
}

func TestSortBySegments(t *testing.T) {
	mk := func(p string) fsentry.Entry {
		d, err := fsentry.NewDir(p, fsentry.NonStrict())
		require.NoError(t, err)
		return d
	}
	entries := []fsentry.Entry{mk("/usr/lib"), mk("/usr-local"), mk("/usr"), mk("/usr/bin")}
	fsentry.Sort(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.Location())
	}
	assert.Equal(t, []string{"/usr", "/usr/bin", "/usr/lib", "/usr-local"}, got)
}

func TestKindHelpers(t *testing.T) {
	f, _ := fsentry.NewFifo("/p", fsentry.NonStrict())
	assert.True(t, fsentry.IsFifo(f))
	assert.False(t, fsentry.IsDir(f))
	assert.Equal(t, "fifo", f.Kind().String())
	assert.Equal(t, "fifo:/p", f.String())
}
