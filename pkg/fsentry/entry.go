package fsentry

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
)

// Kind identifies an entry variant.
type Kind int

const (
	KindFile Kind = iota + 1
	KindDir
	KindSymlink
	KindDevice
	KindFifo
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindDevice:
		return "device"
	case KindFifo:
		return "fifo"
	}
	return "unknown"
}

// Field names an optional attribute whose presence is tracked.
type Field uint8

const (
	FieldMode Field = 1 << iota
	FieldMtime
	FieldUID
	FieldGID
	FieldRealLocation
)

// requiredFields must all be present for strict construction.
const requiredFields = FieldMode | FieldMtime | FieldUID | FieldGID

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldMode, "mode"},
	{FieldMtime, "mtime"},
	{FieldUID, "uid"},
	{FieldGID, "gid"},
}

// Entry is the closed set of filesystem entry variants: *File, *Dir,
// *Symlink, *Device and *Fifo.
type Entry interface {
	Location() string
	// RealLocation is where the entry's bytes live; it defaults to Location.
	RealLocation() string
	Kind() Kind
	Mode() fs.FileMode
	Mtime() time.Time
	UID() int
	GID() int
	// Has reports whether an optional attribute was supplied.
	Has(f Field) bool
	// WithChanges returns a new entry of the same kind with the given
	// attributes overridden. The result is always non-strict.
	WithChanges(opts ...Option) Entry
	String() string

	base() *Base
}

// Base holds the attributes common to every variant.
type Base struct {
	location     string
	realLocation string
	mode         fs.FileMode
	mtime        time.Time
	uid          int
	gid          int
	set          Field
}

func (b *Base) Location() string { return b.location }

func (b *Base) RealLocation() string {
	if b.realLocation != "" {
		return b.realLocation
	}
	return b.location
}

func (b *Base) Mode() fs.FileMode { return b.mode }
func (b *Base) Mtime() time.Time  { return b.mtime }
func (b *Base) UID() int          { return b.uid }
func (b *Base) GID() int          { return b.gid }
func (b *Base) Has(f Field) bool  { return b.set&f == f }
func (b *Base) base() *Base       { return b }

// attrs collects every attribute any variant may take. Constructors pick
// the ones relevant to their kind.
type attrs struct {
	Base
	strict bool

	target    string
	major     int
	minor     int
	hasDevice bool
	realPath  string

	checksums    map[string][]byte
	hasChecksums bool
	source       Source
	// contentMoved is set when WithChanges is given a new source or real
	// location.
	contentMoved bool
}

// Option sets an attribute during construction or WithChanges.
type Option func(*attrs)

// WithLocation overrides the location. Only meaningful for WithChanges.
func WithLocation(location string) Option {
	return func(a *attrs) { a.location = location }
}

// WithRealLocation sets where the entry's content actually lives.
func WithRealLocation(location string) Option {
	return func(a *attrs) {
		a.realLocation = location
		a.set |= FieldRealLocation
		a.contentMoved = true
	}
}

func WithMode(mode fs.FileMode) Option {
	return func(a *attrs) {
		a.mode = mode
		a.set |= FieldMode
	}
}

func WithMtime(mtime time.Time) Option {
	return func(a *attrs) {
		a.mtime = mtime
		a.set |= FieldMtime
	}
}

// WithMtimeUnix sets the mtime from whole seconds since the epoch.
func WithMtimeUnix(sec int64) Option {
	return WithMtime(time.Unix(sec, 0))
}

func WithUID(uid int) Option {
	return func(a *attrs) {
		a.uid = uid
		a.set |= FieldUID
	}
}

func WithGID(gid int) Option {
	return func(a *attrs) {
		a.gid = gid
		a.set |= FieldGID
	}
}

// WithOwner sets both uid and gid.
func WithOwner(uid, gid int) Option {
	return func(a *attrs) {
		WithUID(uid)(a)
		WithGID(gid)(a)
	}
}

// WithTarget sets a symlink's target.
func WithTarget(target string) Option {
	return func(a *attrs) { a.target = target }
}

// WithDevice sets a device node's major and minor numbers.
func WithDevice(major, minor int) Option {
	return func(a *attrs) {
		a.major = major
		a.minor = minor
		a.hasDevice = true
	}
}

// WithRealPath sets the on-disk node backing a device or fifo entry.
func WithRealPath(path string) Option {
	return func(a *attrs) { a.realPath = path }
}

// WithChecksums replaces a file's known digests.
func WithChecksums(sums map[string][]byte) Option {
	return func(a *attrs) {
		a.checksums = make(map[string][]byte, len(sums))
		for k, v := range sums {
			a.checksums[k] = v
		}
		a.hasChecksums = true
	}
}

// WithChecksum adds one known digest to a file.
func WithChecksum(name string, digest []byte) Option {
	return func(a *attrs) {
		if a.checksums == nil {
			a.checksums = make(map[string][]byte)
		}
		a.checksums[name] = digest
		a.hasChecksums = true
	}
}

// WithSource sets where a file's bytes are read from when digests are
// computed. Without it the file reads its RealLocation.
func WithSource(src Source) Option {
	return func(a *attrs) {
		a.source = src
		a.contentMoved = true
	}
}

// NonStrict allows construction with missing attributes.
func NonStrict() Option {
	return func(a *attrs) { a.strict = false }
}

func newAttrs(location string, opts []Option) attrs {
	a := attrs{strict: true, major: -1, minor: -1}
	a.location = location
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// validate canonicalizes locations and, when strict, checks that every
// required attribute is present.
func (a *attrs) validate(kind Kind) error {
	if a.location == "" {
		return errors.Newf(errors.ErrValidation, "%s entry requires a location", kind)
	}
	a.location = paths.Canonical(a.location)
	if a.realLocation != "" && !filepath.IsAbs(a.realLocation) {
		a.realLocation = paths.Canonical(a.realLocation)
	}
	if !a.strict {
		return nil
	}
	if missing := requiredFields &^ a.set; missing != 0 {
		var names []string
		for _, fn := range fieldNames {
			if missing&fn.f != 0 {
				names = append(names, fn.name)
			}
		}
		return errors.Newf(errors.ErrValidation, "%s %s: missing required attributes: %s",
			kind, a.location, strings.Join(names, ", ")).
			WithDetail("location", a.location).
			WithDetail("missing", names)
	}
	return nil
}

// mustDerive unwraps a constructor result inside WithChanges. Derived
// entries are non-strict and keep a location, so construction cannot fail.
func mustDerive[T Entry](e T, err error) Entry {
	if err != nil {
		panic("fsentry: deriving entry: " + err.Error())
	}
	return e
}

// derive applies opts on top of a copy of an existing entry's attributes.
// Derived entries are never strict.
func derive(a attrs, opts []Option) attrs {
	location := a.location
	for _, opt := range opts {
		opt(&a)
	}
	if a.location == "" {
		a.location = location
	}
	a.strict = false
	return a
}

// Equal reports whether two entries share a location. Kind and metadata
// are ignored.
func Equal(a, b Entry) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Location() == b.Location()
}

// Compare orders entries by their location's path segments, so a
// directory sorts before everything nested inside it.
func Compare(a, b Entry) int {
	return compareSegments(paths.Segments(a.Location()), paths.Segments(b.Location()))
}

// Less reports whether a sorts before b under Compare.
func Less(a, b Entry) bool {
	return Compare(a, b) < 0
}

// Sort orders entries in place using Compare. The sort is stable.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

func compareSegments(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// IsDir, IsFile and friends are convenience type checks.
func IsDir(e Entry) bool     { _, ok := e.(*Dir); return ok }
func IsFile(e Entry) bool    { _, ok := e.(*File); return ok }
func IsSymlink(e Entry) bool { _, ok := e.(*Symlink); return ok }
func IsDevice(e Entry) bool  { _, ok := e.(*Device); return ok }
func IsFifo(e Entry) bool    { _, ok := e.(*Fifo); return ok }
