package contents

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
)

// ProblemKind classifies a mismatch between a record and the live system.
type ProblemKind int

const (
	ProblemMissing ProblemKind = iota + 1
	ProblemType
	ProblemChecksum
	ProblemTarget
	ProblemMtime
)

func (k ProblemKind) String() string {
	switch k {
	case ProblemMissing:
		return "missing"
	case ProblemType:
		return "type"
	case ProblemChecksum:
		return "checksum"
	case ProblemTarget:
		return "target"
	case ProblemMtime:
		return "mtime"
	}
	return "unknown"
}

// Problem is one failed check.
type Problem struct {
	Location string
	Kind     ProblemKind
	Expected string
	Actual   string
}

func (p Problem) String() string {
	if p.Kind == ProblemMissing {
		return fmt.Sprintf("%s: missing", p.Location)
	}
	return fmt.Sprintf("%s: %s differs (recorded %s, found %s)", p.Location, p.Kind, p.Expected, p.Actual)
}

// VerifyOptions controls Verify.
type VerifyOptions struct {
	// Root is where the recorded locations are installed. Defaults to /.
	Root string
	// Mtime also compares whole-second modification times.
	Mtime bool
}

// Verify compares every recorded entry against the filesystem under
// opts.Root. Files are compared by md5, symlinks by target.
func Verify(ctx context.Context, s *Set, fsys filesystem.FS, opts VerifyOptions) ([]Problem, error) {
	logger := logging.GetLogger("contents.verify")
	root := opts.Root
	if root == "" {
		root = "/"
	}

	var problems []Problem
	for _, want := range s.Entries() {
		if err := ctx.Err(); err != nil {
			return problems, errors.Wrap(err, errors.ErrState, "verification cancelled")
		}
		live := paths.JoinOffset(root, want.Location())
		got, err := fsentry.Probe(fsys, live,
			fsentry.WithLocation(want.Location()),
			fsentry.WithSource(fsSource{fsys: fsys, path: live}))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				problems = append(problems, Problem{Location: want.Location(), Kind: ProblemMissing})
				continue
			}
			return problems, err
		}
		p, err := compareEntry(want, got, opts)
		if err != nil {
			return problems, err
		}
		problems = append(problems, p...)
	}
	logger.Debug().Str("root", root).Int("entries", s.Len()).Int("problems", len(problems)).Msg("verification complete")
	return problems, nil
}

func compareEntry(want, got fsentry.Entry, opts VerifyOptions) ([]Problem, error) {
	loc := want.Location()
	if want.Kind() != got.Kind() {
		return []Problem{{Location: loc, Kind: ProblemType, Expected: want.Kind().String(), Actual: got.Kind().String()}}, nil
	}

	var out []Problem
	switch w := want.(type) {
	case *fsentry.File:
		expected, err := w.Checksum(chksum.Primary)
		if err != nil {
			return nil, err
		}
		actual, err := got.(*fsentry.File).Checksum(chksum.Primary)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(expected, actual) {
			out = append(out, Problem{Location: loc, Kind: ProblemChecksum,
				Expected: chksum.Format(expected), Actual: chksum.Format(actual)})
		}
	case *fsentry.Symlink:
		if actual := got.(*fsentry.Symlink).Target(); actual != w.Target() {
			out = append(out, Problem{Location: loc, Kind: ProblemTarget, Expected: w.Target(), Actual: actual})
		}
	}

	if opts.Mtime && want.Has(fsentry.FieldMtime) && !fsentry.IsDir(want) {
		if w, g := want.Mtime().Unix(), got.Mtime().Unix(); w != g {
			out = append(out, Problem{Location: loc, Kind: ProblemMtime,
				Expected: fmt.Sprint(w), Actual: fmt.Sprint(g)})
		}
	}
	return out, nil
}
