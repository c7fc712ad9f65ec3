package fsentry

import (
	"io/fs"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
)

// Dir is a directory.
type Dir struct {
	Base
}

func NewDir(location string, opts ...Option) (*Dir, error) {
	return newDir(newAttrs(location, opts))
}

func newDir(a attrs) (*Dir, error) {
	if err := a.validate(KindDir); err != nil {
		return nil, err
	}
	return &Dir{Base: a.Base}, nil
}

func (d *Dir) Kind() Kind     { return KindDir }
func (d *Dir) String() string { return "dir:" + d.location }

func (d *Dir) WithChanges(opts ...Option) Entry {
	return mustDerive(newDir(derive(attrs{Base: d.Base}, opts)))
}

// Symlink is a symbolic link.
type Symlink struct {
	Base
	target string
}

func NewSymlink(location, target string, opts ...Option) (*Symlink, error) {
	return newSymlink(newAttrs(location, append([]Option{WithTarget(target)}, opts...)))
}

func newSymlink(a attrs) (*Symlink, error) {
	if err := a.validate(KindSymlink); err != nil {
		return nil, err
	}
	if a.strict && a.target == "" {
		return nil, errors.Newf(errors.ErrValidation, "symlink %s: missing target", a.location).
			WithDetail("location", a.location)
	}
	return &Symlink{Base: a.Base, target: a.target}, nil
}

func (s *Symlink) Kind() Kind     { return KindSymlink }
func (s *Symlink) Target() string { return s.target }
func (s *Symlink) String() string { return "symlink:" + s.location + "->" + s.target }

func (s *Symlink) WithChanges(opts ...Option) Entry {
	return mustDerive(newSymlink(derive(attrs{Base: s.Base, target: s.target}, opts)))
}

// Device is a block or character device node.
type Device struct {
	Base
	major    int
	minor    int
	realPath string
}

// NewDevice builds a device node. Strict construction needs WithDevice
// with non-negative numbers and a mode carrying fs.ModeDevice.
func NewDevice(location string, opts ...Option) (*Device, error) {
	return newDevice(newAttrs(location, opts))
}

func newDevice(a attrs) (*Device, error) {
	if err := a.validate(KindDevice); err != nil {
		return nil, err
	}
	if a.strict {
		if !a.hasDevice || a.major < 0 || a.minor < 0 {
			return nil, errors.Newf(errors.ErrValidation,
				"device %s: major/minor must be specified and non-negative", a.location).
				WithDetail("location", a.location)
		}
		if a.mode&fs.ModeDevice == 0 {
			return nil, errors.Newf(errors.ErrValidation,
				"device %s: mode %v does not specify a device type", a.location, a.mode).
				WithDetail("location", a.location)
		}
	}
	return &Device{Base: a.Base, major: a.major, minor: a.minor, realPath: a.realPath}, nil
}

func (d *Device) Kind() Kind     { return KindDevice }
func (d *Device) String() string { return "device:" + d.location }

// Major returns the major number, or -1 if unknown.
func (d *Device) Major() int { return d.major }

// Minor returns the minor number, or -1 if unknown.
func (d *Device) Minor() int { return d.minor }

// IsChar reports whether the mode marks a character device.
func (d *Device) IsChar() bool { return d.mode&fs.ModeCharDevice != 0 }

// RealPath is the node backing this entry; it defaults to Location.
func (d *Device) RealPath() string {
	if d.realPath != "" {
		return d.realPath
	}
	return d.location
}

func (d *Device) WithChanges(opts ...Option) Entry {
	a := attrs{Base: d.Base, major: d.major, minor: d.minor, realPath: d.realPath, hasDevice: d.major >= 0}
	return mustDerive(newDevice(derive(a, opts)))
}

// Fifo is a named pipe.
type Fifo struct {
	Base
	realPath string
}

func NewFifo(location string, opts ...Option) (*Fifo, error) {
	return newFifo(newAttrs(location, opts))
}

func newFifo(a attrs) (*Fifo, error) {
	if err := a.validate(KindFifo); err != nil {
		return nil, err
	}
	return &Fifo{Base: a.Base, realPath: a.realPath}, nil
}

func (f *Fifo) Kind() Kind     { return KindFifo }
func (f *Fifo) String() string { return "fifo:" + f.location }

// RealPath is the node backing this entry; it defaults to Location.
func (f *Fifo) RealPath() string {
	if f.realPath != "" {
		return f.realPath
	}
	return f.location
}

func (f *Fifo) WithChanges(opts ...Option) Entry {
	return mustDerive(newFifo(derive(attrs{Base: f.Base, realPath: f.realPath, major: -1, minor: -1}, opts)))
}
