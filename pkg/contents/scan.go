package contents

import (
	"io"
	"path/filepath"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
)

// ScanOptions controls Scan.
type ScanOptions struct {
	// Offset is stripped from scanned paths to form locations. It defaults
	// to the scanned root, so an image directory yields /usr/... locations.
	Offset string
	// Checksums lists digests computed eagerly for every file. md5 is
	// always computed.
	Checksums []string
}

// fsSource reads file content through a filesystem.FS.
type fsSource struct {
	fsys filesystem.FS
	path string
}

func (s fsSource) Open() (io.ReadCloser, error) { return s.fsys.Open(s.path) }

// Scan walks root and returns a set holding everything beneath it. The
// root itself is not included.
func Scan(fsys filesystem.FS, root string, opts ScanOptions) (*Set, error) {
	logger := logging.GetLogger("contents.scan")
	offset := opts.Offset
	if offset == "" {
		offset = root
	}
	sums := append([]string{chksum.Primary}, opts.Checksums...)

	s := New()
	var walk func(dir string) error
	walk = func(dir string) error {
		children, err := fsys.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "reading %s", dir).WithDetail("path", dir)
		}
		for _, child := range children {
			full := filepath.Join(dir, child.Name())
			e, err := fsentry.Probe(fsys, full,
				fsentry.WithLocation(paths.TrimOffset(offset, full)),
				fsentry.WithRealLocation(full),
				fsentry.WithSource(fsSource{fsys: fsys, path: full}))
			if err != nil {
				return err
			}
			if f, ok := e.(*fsentry.File); ok {
				for _, name := range sums {
					if _, err := f.Checksum(name); err != nil {
						return err
					}
				}
			}
			if err := s.Add(e); err != nil {
				return err
			}
			if fsentry.IsDir(e) {
				if err := walk(full); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	logger.Debug().Str("root", root).Int("entries", s.Len()).Msg("scan complete")
	return s, nil
}
