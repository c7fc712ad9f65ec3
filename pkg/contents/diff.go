package contents

import (
	"bytes"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
)

// Diff describes how one set turns into another.
type Diff struct {
	Added   []fsentry.Entry
	Removed []fsentry.Entry
	// Changed holds the new entry for locations present in both sets whose
	// kind, md5 or symlink target differ.
	Changed []fsentry.Entry
}

// Empty reports whether the sets hold the same content.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare diffs from against to. Entry metadata other than kind, content
// and target is ignored.
func Compare(from, to *Set) Diff {
	d := Diff{
		Added:   to.Difference(from).Entries(),
		Removed: from.Difference(to).Entries(),
	}
	for _, n := range to.Intersection(from).Entries() {
		o, _ := from.Get(n.Location())
		if contentDiffers(o, n) {
			d.Changed = append(d.Changed, n)
		}
	}
	return d
}

func contentDiffers(a, b fsentry.Entry) bool {
	if a.Kind() != b.Kind() {
		return true
	}
	switch x := a.(type) {
	case *fsentry.File:
		y := b.(*fsentry.File)
		if !x.HasChecksum(chksum.Primary) || !y.HasChecksum(chksum.Primary) {
			return false
		}
		xs, _ := x.Checksum(chksum.Primary)
		ys, _ := y.Checksum(chksum.Primary)
		return !bytes.Equal(xs, ys)
	case *fsentry.Symlink:
		return x.Target() != b.(*fsentry.Symlink).Target()
	}
	return false
}
