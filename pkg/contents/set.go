package contents

import (
	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
)

// Set is a unique-by-location collection of entries.
type Set struct {
	entries map[string]fsentry.Entry
	frozen  bool
}

// New returns an empty mutable set.
func New() *Set {
	return &Set{entries: make(map[string]fsentry.Entry)}
}

// FromEntries builds a mutable set, failing on the first entry Add rejects.
func FromEntries(entries ...fsentry.Entry) (*Set, error) {
	s := New()
	if err := s.Update(entries...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts e, replacing any entry at the same location. Files must
// already know their md5 digest.
func (s *Set) Add(e fsentry.Entry) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if e == nil {
		return errors.New(errors.ErrInvalidInput, "cannot add nil entry")
	}
	if f, ok := e.(*fsentry.File); ok && !f.HasChecksum(chksum.Primary) {
		return errors.Newf(errors.ErrValidation, "%s: file entries need a %s checksum", f.Location(), chksum.Primary).
			WithDetail("location", f.Location())
	}
	s.entries[e.Location()] = e
	return nil
}

// Update adds every entry in order, stopping at the first failure.
func (s *Set) Update(entries ...fsentry.Entry) error {
	for _, e := range entries {
		if err := s.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the entry at location. Removing an absent location is a
// lookup error.
func (s *Set) Remove(location string) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	key := paths.Canonical(location)
	if _, ok := s.entries[key]; !ok {
		return errors.Newf(errors.ErrLookup, "%s is not in the content set", key).
			WithDetail("location", key)
	}
	delete(s.entries, key)
	return nil
}

// RemoveEntry is Remove keyed by the entry's location.
func (s *Set) RemoveEntry(e fsentry.Entry) error {
	return s.Remove(e.Location())
}

// Discard removes location if present and reports whether it was.
func (s *Set) Discard(location string) (bool, error) {
	if err := s.checkMutable(); err != nil {
		return false, err
	}
	key := paths.Canonical(location)
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok, nil
}

// Clear removes every entry.
func (s *Set) Clear() error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.entries = make(map[string]fsentry.Entry)
	return nil
}

func (s *Set) Get(location string) (fsentry.Entry, bool) {
	e, ok := s.entries[paths.Canonical(location)]
	return e, ok
}

func (s *Set) Contains(location string) bool {
	_, ok := s.Get(location)
	return ok
}

func (s *Set) Len() int { return len(s.entries) }

// Entries returns the entries sorted so directories precede their content.
func (s *Set) Entries() []fsentry.Entry {
	out := make([]fsentry.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	fsentry.Sort(out)
	return out
}

// Locations returns the sorted locations held by the set.
func (s *Set) Locations() []string {
	entries := s.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Location()
	}
	return out
}

func (s *Set) Files() []*fsentry.File       { return ofKind[*fsentry.File](s) }
func (s *Set) Dirs() []*fsentry.Dir         { return ofKind[*fsentry.Dir](s) }
func (s *Set) Symlinks() []*fsentry.Symlink { return ofKind[*fsentry.Symlink](s) }
func (s *Set) Devices() []*fsentry.Device   { return ofKind[*fsentry.Device](s) }
func (s *Set) Fifos() []*fsentry.Fifo       { return ofKind[*fsentry.Fifo](s) }

func ofKind[T fsentry.Entry](s *Set) []T {
	var out []T
	for _, e := range s.Entries() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Freeze makes the set read-only. Later mutations fail with ErrFrozen.
func (s *Set) Freeze() { s.frozen = true }

func (s *Set) Frozen() bool { return s.frozen }

func (s *Set) checkMutable() error {
	if s.frozen {
		return errors.New(errors.ErrFrozen, "content set is frozen")
	}
	return nil
}

// Clone returns an independent mutable copy. With empty set it copies
// nothing.
func (s *Set) Clone(empty bool) *Set {
	c := New()
	if !empty {
		for k, v := range s.entries {
			c.entries[k] = v
		}
	}
	return c
}

// Difference returns the entries of s whose location is not in other.
func (s *Set) Difference(other *Set) *Set {
	out := New()
	for k, v := range s.entries {
		if _, ok := other.entries[k]; !ok {
			out.entries[k] = v
		}
	}
	return out
}

// Intersection returns the entries of s whose location is also in other.
func (s *Set) Intersection(other *Set) *Set {
	out := New()
	for k, v := range s.entries {
		if _, ok := other.entries[k]; ok {
			out.entries[k] = v
		}
	}
	return out
}

// Union returns every entry of both sets. Where both hold a location the
// entry from other wins.
func (s *Set) Union(other *Set) *Set {
	out := s.Clone(false)
	for k, v := range other.entries {
		out.entries[k] = v
	}
	return out
}

// SymmetricDifference returns the entries present in exactly one set.
func (s *Set) SymmetricDifference(other *Set) *Set {
	out := s.Difference(other)
	for k, v := range other.entries {
		if _, ok := s.entries[k]; !ok {
			out.entries[k] = v
		}
	}
	return out
}

// IsSubset reports whether every location in s is also in other.
func (s *Set) IsSubset(other *Set) bool {
	for k := range s.entries {
		if _, ok := other.entries[k]; !ok {
			return false
		}
	}
	return true
}

// Equal compares two sets by location only.
func (s *Set) Equal(other *Set) bool {
	return s.Len() == other.Len() && s.IsSubset(other)
}

// Rebase moves every entry from beneath oldOffset to beneath newOffset.
// Entries outside oldOffset keep their location. Known file digests are
// carried over.
func (s *Set) Rebase(oldOffset, newOffset string) *Set {
	out := New()
	rooted := oldOffset == "" || paths.Canonical(oldOffset) == "/"
	for _, e := range s.entries {
		rel := paths.TrimOffset(oldOffset, e.Location())
		if rel == e.Location() && !rooted {
			out.entries[e.Location()] = e
			continue
		}
		opts := []fsentry.Option{fsentry.WithLocation(paths.JoinOffset(newOffset, rel))}
		if f, ok := e.(*fsentry.File); ok {
			opts = append(opts, fsentry.WithChecksums(f.Checksums()))
		}
		moved := e.WithChanges(opts...)
		out.entries[moved.Location()] = moved
	}
	return out
}
