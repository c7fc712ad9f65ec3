package testutil

import (
	"testing"

	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/stretchr/testify/assert"
)

// AssertFileContent checks that name exists on fsys and holds want.
func AssertFileContent(t *testing.T, fsys filesystem.FS, name, want string) bool {
	t.Helper()
	data, err := fsys.ReadFile(name)
	if !assert.NoError(t, err, "reading %s", name) {
		return false
	}
	return assert.Equal(t, want, string(data), "content of %s", name)
}

// AssertSymlink checks that name is a symlink pointing at target.
func AssertSymlink(t *testing.T, fsys filesystem.FS, name, target string) bool {
	t.Helper()
	got, err := fsys.Readlink(name)
	if !assert.NoError(t, err, "readlink %s", name) {
		return false
	}
	return assert.Equal(t, target, got, "target of %s", name)
}

func AssertMissing(t *testing.T, fsys filesystem.FS, name string) bool {
	t.Helper()
	return assert.False(t, filesystem.Exists(fsys, name), "%s should not exist", name)
}
