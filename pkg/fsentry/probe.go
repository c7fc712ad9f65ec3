package fsentry

import (
	"io/fs"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
)

// StatFS is the slice of a filesystem needed to probe live entries.
// filesystem.FS satisfies it.
type StatFS interface {
	Lstat(name string) (fs.FileInfo, error)
	Readlink(name string) (string, error)
}

// FromFileInfo builds an entry from stat results. Ownership and device
// numbers are taken from the platform stat data when available; when they
// are not, the entry is built non-strict. Symlinks need WithTarget in opts.
func FromFileInfo(location string, info fs.FileInfo, opts ...Option) (Entry, error) {
	mode := info.Mode()
	base := []Option{WithMode(mode), WithMtime(info.ModTime())}
	if uid, gid, ok := ownerOf(info); ok {
		base = append(base, WithOwner(uid, gid))
	} else {
		base = append(base, NonStrict())
	}

	switch {
	case mode.IsDir():
		return NewDir(location, append(base, opts...)...)
	case mode&fs.ModeSymlink != 0:
		return NewSymlink(location, "", append(base, opts...)...)
	case mode&fs.ModeDevice != 0:
		if major, minor, ok := deviceOf(info); ok {
			base = append(base, WithDevice(major, minor))
		} else {
			base = append(base, NonStrict())
		}
		return NewDevice(location, append(base, opts...)...)
	case mode&fs.ModeNamedPipe != 0:
		return NewFifo(location, append(base, opts...)...)
	case mode.IsRegular():
		return NewFile(location, append(base, opts...)...)
	}
	return nil, errors.Newf(errors.ErrValidation, "%s: unsupported file type %v", location, mode.Type()).
		WithDetail("location", location)
}

// Probe stats path without following symlinks and returns the matching
// entry. The entry's location is path unless opts override it.
func Probe(fsys StatFS, path string, opts ...Option) (Entry, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "stat %s", path).WithDetail("path", path)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := fsys.Readlink(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "readlink %s", path).WithDetail("path", path)
		}
		opts = append([]Option{WithTarget(target)}, opts...)
	}
	return FromFileInfo(path, info, opts...)
}

// LookupDevice returns the major and minor numbers of the node at path.
func LookupDevice(fsys StatFS, path string) (major, minor int, err error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return -1, -1, errors.Wrapf(err, errors.ErrIO, "stat %s", path).WithDetail("path", path)
	}
	if info.Mode()&fs.ModeDevice == 0 {
		return -1, -1, errors.Newf(errors.ErrValidation, "%s is not a device node", path).
			WithDetail("path", path)
	}
	major, minor, ok := deviceOf(info)
	if !ok {
		return -1, -1, errors.Newf(errors.ErrNotImplemented, "device numbers unavailable for %s", path)
	}
	return major, minor, nil
}
