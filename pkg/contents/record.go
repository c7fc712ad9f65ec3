package contents

import (
	"io"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
)

// Backing is the byte store behind a Record.
type Backing interface {
	// Open returns the current content. A backing that has never been
	// written reports an error satisfying errors.Is(err, fs.ErrNotExist).
	Open() (io.ReadCloser, error)
	// Replace swaps in data atomically: on failure the prior content must
	// remain readable.
	Replace(data []byte) error
	// Delete removes the stored content.
	Delete() error
	String() string
}

type fileBacking struct {
	fsys filesystem.FS
	path string
}

// FileBacking stores a record at path, replacing it with a temp file and
// rename.
func FileBacking(fsys filesystem.FS, path string) Backing {
	return &fileBacking{fsys: fsys, path: path}
}

func (b *fileBacking) Open() (io.ReadCloser, error) { return b.fsys.Open(b.path) }

func (b *fileBacking) Replace(data []byte) error {
	if err := b.fsys.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(b.fsys, b.path, data, 0644)
}

func (b *fileBacking) Delete() error {
	err := b.fsys.Remove(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (b *fileBacking) String() string { return b.path }

// Record is a Set bound to a Backing.
type Record struct {
	*Set
	backing Backing
	decoder Decoder
}

// NewRecord returns an empty record that does not read its backing.
func NewRecord(b Backing) *Record {
	return &Record{Set: New(), backing: b}
}

// LoadRecord reads the backing through d. A missing backing yields an
// empty record.
func LoadRecord(b Backing, d Decoder) (*Record, error) {
	r := &Record{Set: New(), backing: b, decoder: d}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload discards the in-memory entries and re-reads the backing.
func (r *Record) Reload() error {
	logger := logging.GetLogger("contents.record")

	rc, err := r.backing.Open()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("record", r.backing.String()).Msg("no record on disk, starting empty")
			r.Set = New()
			return nil
		}
		return errors.Wrapf(err, errors.ErrIO, "opening record %s", r.backing).
			WithDetail("record", r.backing.String())
	}
	defer rc.Close()

	set, err := r.decoder.Decode(rc)
	if err != nil {
		return errors.Wrapf(err, errors.GetErrorCode(err), "loading record %s", r.backing).
			WithDetail("record", r.backing.String())
	}
	r.Set = set
	logger.Debug().Str("record", r.backing.String()).Int("entries", set.Len()).Msg("record loaded")
	return nil
}

// Flush persists the current entries. The previous content survives any
// failure.
func (r *Record) Flush() error {
	data, err := Serialize(r.Set)
	if err != nil {
		return err
	}
	if err := r.backing.Replace(data); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "writing record %s", r.backing).
			WithDetail("record", r.backing.String())
	}
	logger := logging.GetLogger("contents.record")
	logger.Debug().
		Str("record", r.backing.String()).
		Int("entries", r.Len()).
		Msg("record flushed")
	return nil
}

// Delete removes the backing content and empties the record.
func (r *Record) Delete() error {
	if err := r.backing.Delete(); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "removing record %s", r.backing).
			WithDetail("record", r.backing.String())
	}
	r.Set = New()
	return nil
}

// Clone returns a mutable record with the same backing. It never re-reads
// the backing; with empty set it starts with no entries.
func (r *Record) Clone(empty bool) *Record {
	return &Record{Set: r.Set.Clone(empty), backing: r.backing, decoder: r.decoder}
}

// Backing returns the store the record persists to.
func (r *Record) Backing() Backing { return r.backing }
