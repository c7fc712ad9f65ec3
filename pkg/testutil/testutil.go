// Package testutil holds fixture helpers shared by package tests.
//
// Trees are described as a list of Node values and materialized either in
// a temp dir (for tests that need real lstat and mtime behavior) or on any
// filesystem.FS such as the in-memory afero one.
package testutil

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/stretchr/testify/require"
)

// Node describes one entry of a fixture tree. Dir makes a directory, a
// non-empty Target a symlink, anything else a regular file.
type Node struct {
	Path    string
	Dir     bool
	Target  string
	Content string
	Mode    fs.FileMode
	Mtime   time.Time
}

func File(path, content string) Node { return Node{Path: path, Content: content} }

func Dir(path string) Node { return Node{Path: path, Dir: true} }

func Symlink(path, target string) Node { return Node{Path: path, Target: target} }

// Build materializes nodes under root on fsys, creating parents as needed.
func Build(t *testing.T, fsys filesystem.FS, root string, nodes ...Node) {
	t.Helper()
	for _, n := range nodes {
		p := filepath.Join(root, filepath.FromSlash(n.Path))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(p), 0755), "parent of %s", n.Path)

		switch {
		case n.Dir:
			require.NoError(t, fsys.MkdirAll(p, orDefault(n.Mode, 0755)), "dir %s", n.Path)
		case n.Target != "":
			require.NoError(t, fsys.Symlink(n.Target, p), "symlink %s", n.Path)
			continue
		default:
			require.NoError(t, fsys.WriteFile(p, []byte(n.Content), orDefault(n.Mode, 0644)), "file %s", n.Path)
		}

		if !n.Mtime.IsZero() {
			require.NoError(t, fsys.Chtimes(p, n.Mtime, n.Mtime), "chtimes %s", n.Path)
		}
	}
}

// TempTree builds nodes inside a fresh temp dir and returns the dir.
func TempTree(t *testing.T, nodes ...Node) string {
	t.Helper()
	root := t.TempDir()
	Build(t, filesystem.NewOS(), root, nodes...)
	return root
}

// MemTree builds nodes on a new in-memory filesystem rooted at "/".
func MemTree(t *testing.T, nodes ...Node) filesystem.FS {
	t.Helper()
	fsys := filesystem.NewMemory()
	Build(t, fsys, "/", nodes...)
	return fsys
}

func orDefault(m, def fs.FileMode) fs.FileMode {
	if m == 0 {
		return def
	}
	return m & fs.ModePerm
}
