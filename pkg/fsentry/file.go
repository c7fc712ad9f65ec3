package fsentry

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
)

// Source supplies a file's content.
type Source interface {
	Open() (io.ReadCloser, error)
}

// LocalSource reads content from a path on the local filesystem.
type LocalSource string

func (s LocalSource) Open() (io.ReadCloser, error) {
	return os.Open(string(s))
}

func (s LocalSource) String() string { return string(s) }

type bytesSource struct{ data []byte }

func (s *bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// Bytes returns a Source serving an in-memory copy of data.
func Bytes(data []byte) Source {
	return &bytesSource{data: append([]byte(nil), data...)}
}

// File is a regular file. Digests are computed on first request and
// cached for the lifetime of the instance.
type File struct {
	Base
	source Source
	sums   *checksumCache
}

// NewFile builds a regular file entry.
func NewFile(location string, opts ...Option) (*File, error) {
	return newFile(newAttrs(location, opts))
}

func newFile(a attrs) (*File, error) {
	if err := a.validate(KindFile); err != nil {
		return nil, err
	}
	return &File{
		Base:   a.Base,
		source: a.source,
		sums:   newChecksumCache(a.checksums),
	}, nil
}

func (f *File) Kind() Kind { return KindFile }

func (f *File) String() string { return "file:" + f.location }

// Source returns the explicit content source, or the real location.
func (f *File) Source() Source {
	if f.source != nil {
		return f.source
	}
	return LocalSource(f.RealLocation())
}

// Checksum returns the named digest, computing and caching it if needed.
func (f *File) Checksum(name string) ([]byte, error) {
	if d, ok := f.sums.get(name); ok {
		return d, nil
	}
	h, err := chksum.Get(name)
	if err != nil {
		return nil, err
	}
	rc, err := f.Source().Open()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "opening %s for %s", f.location, name).
			WithDetail("location", f.location)
	}
	defer rc.Close()

	d, err := h.Sum(rc)
	if err != nil {
		return nil, err
	}
	f.sums.put(name, d)
	return d, nil
}

// HasChecksum reports whether the named digest is already known, either
// supplied at construction or computed earlier.
func (f *File) HasChecksum(name string) bool {
	_, ok := f.sums.get(name)
	return ok
}

// Checksums returns a copy of the digests known so far.
func (f *File) Checksums() map[string][]byte {
	return f.sums.snapshot()
}

// WithChanges derives a new file. Known digests carry forward unless the
// content source or real location changes.
func (f *File) WithChanges(opts ...Option) Entry {
	a := attrs{Base: f.Base, source: f.source, major: -1, minor: -1}
	a = derive(a, opts)
	// Known digests follow the entry unless its content was pointed
	// elsewhere. Explicit checksums win over carried ones.
	if !a.contentMoved {
		carried := f.sums.snapshot()
		for k, v := range a.checksums {
			carried[k] = v
		}
		a.checksums = carried
	}
	return mustDerive(newFile(a))
}

type checksumCache struct {
	mu    sync.Mutex
	known map[string][]byte
}

func newChecksumCache(initial map[string][]byte) *checksumCache {
	c := &checksumCache{known: make(map[string][]byte, len(initial))}
	for k, v := range initial {
		c.known[k] = v
	}
	return c
}

func (c *checksumCache) get(name string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.known[name]
	return d, ok
}

func (c *checksumCache) put(name string, d []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[name] = d
}

func (c *checksumCache) snapshot() map[string][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]byte, len(c.known))
	for k, v := range c.known {
		out[k] = v
	}
	return out
}
