package filesystem

import (
	"io"
	"io/fs"
	"path/filepath"
	"time"
)

// FS is the set of filesystem operations pkgmerge needs.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
	Chtimes(name string, atime, mtime time.Time) error
}

// WriteFileAtomic writes data to a sibling temp file and renames it over
// name, so readers see either the old or the new content.
func WriteFileAtomic(fsys FS, name string, data []byte, perm fs.FileMode) error {
	tmp := filepath.Join(filepath.Dir(name), "."+filepath.Base(name)+".tmp")
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	if err := fsys.Rename(tmp, name); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

// Exists reports whether name can be stat'ed without following symlinks.
func Exists(fsys FS, name string) bool {
	_, err := fsys.Lstat(name)
	return err == nil
}
