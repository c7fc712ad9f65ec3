package contents

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
)

// Record line tags.
const (
	TagDir     = "dir"
	TagFifo    = "fif"
	TagDevice  = "dev"
	TagFile    = "obj"
	TagSymlink = "sym"

	symlinkArrow = "->"
)

// maxLineSize bounds a single record line.
const maxLineSize = 1 << 20

// Decoder reads the text record format.
type Decoder struct {
	// Lookup, when set, is used to fill in device numbers and mode for dev
	// records from the live node.
	Lookup fsentry.StatFS
	// Root is prefixed to record paths before live lookups.
	Root string
}

// Parse reads a record without live device lookups.
func Parse(r io.Reader) (*Set, error) {
	return Decoder{}.Decode(r)
}

// ParseBytes is Parse over an in-memory record.
func ParseBytes(data []byte) (*Set, error) {
	return Parse(bytes.NewReader(data))
}

// Decode parses every line of r into a new mutable set. It stops at the
// first malformed line or unknown tag.
func (d Decoder) Decode(r io.Reader) (*Set, error) {
	s := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		e, err := d.decodeLine(fields)
		if err != nil {
			return nil, parseError(lineNo, scanner.Text(), err)
		}
		if err := s.Add(e); err != nil {
			return nil, parseError(lineNo, scanner.Text(), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "reading content record")
	}
	return s, nil
}

func parseError(lineNo int, line string, err error) error {
	return errors.Wrapf(err, errors.ErrParse, "line %d: %q", lineNo, line).
		WithDetail("line", lineNo)
}

func (d Decoder) decodeLine(fields []string) (fsentry.Entry, error) {
	tag := fields[0]
	switch tag {
	case TagDir, TagFifo, TagDevice:
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s record without a path", tag)
		}
		location := strings.Join(fields[1:], " ")
		switch tag {
		case TagDir:
			return fsentry.NewDir(location, fsentry.NonStrict())
		case TagFifo:
			return fsentry.NewFifo(location, fsentry.NonStrict())
		}
		return d.device(location)

	case TagFile:
		if len(fields) < 4 {
			return nil, fmt.Errorf("obj record needs path, checksum and mtime")
		}
		n := len(fields)
		digest, err := chksum.ParseHex(chksum.Primary, fields[n-2])
		if err != nil {
			return nil, err
		}
		mtime, err := strconv.ParseInt(fields[n-1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad mtime %q", fields[n-1])
		}
		return fsentry.NewFile(strings.Join(fields[1:n-2], " "),
			fsentry.NonStrict(),
			fsentry.WithChecksum(chksum.Primary, digest),
			fsentry.WithMtimeUnix(mtime))

	case TagSymlink:
		n := len(fields)
		arrow := -1
		for i := 2; i < n-2; i++ {
			if fields[i] == symlinkArrow {
				arrow = i
				break
			}
		}
		if arrow < 0 {
			return nil, fmt.Errorf("sym record needs 'path -> target mtime'")
		}
		mtime, err := strconv.ParseInt(fields[n-1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad mtime %q", fields[n-1])
		}
		return fsentry.NewSymlink(strings.Join(fields[1:arrow], " "),
			strings.Join(fields[arrow+1:n-1], " "),
			fsentry.NonStrict(),
			fsentry.WithMtimeUnix(mtime))
	}
	return nil, fmt.Errorf("unknown entry type %q", tag)
}

// device builds a dev entry, taking numbers and mode from the live node
// when a lookup filesystem is configured and the node is a device.
func (d Decoder) device(location string) (fsentry.Entry, error) {
	if d.Lookup != nil {
		live := paths.JoinOffset(d.Root, location)
		if e, err := fsentry.Probe(d.Lookup, live, fsentry.WithLocation(location)); err == nil && fsentry.IsDevice(e) {
			return e, nil
		}
	}
	return fsentry.NewDevice(location, fsentry.NonStrict())
}

// Write emits s in record order: sorted by path segments, one line per
// entry.
func Write(w io.Writer, s *Set) error {
	bw := bufio.NewWriter(w)
	for _, e := range s.Entries() {
		line, err := encodeEntry(e)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return errors.Wrap(err, errors.ErrIO, "writing content record")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrIO, "writing content record")
	}
	return nil
}

// Serialize returns the record text for s.
func Serialize(s *Set) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeEntry(e fsentry.Entry) (string, error) {
	if strings.ContainsAny(e.Location(), "\n\r") {
		return "", errors.Newf(errors.ErrValidation, "location %q cannot be recorded", e.Location()).
			WithDetail("location", e.Location())
	}
	switch v := e.(type) {
	case *fsentry.File:
		digest, err := v.Checksum(chksum.Primary)
		if err != nil {
			return "", err
		}
		return strings.Join([]string{TagFile, v.Location(), chksum.Format(digest), mtimeField(v)}, " "), nil
	case *fsentry.Symlink:
		return strings.Join([]string{TagSymlink, v.Location(), symlinkArrow, v.Target(), mtimeField(v)}, " "), nil
	case *fsentry.Dir:
		return TagDir + " " + v.Location(), nil
	case *fsentry.Device:
		return TagDevice + " " + v.Location(), nil
	case *fsentry.Fifo:
		return TagFifo + " " + v.Location(), nil
	}
	return "", errors.Newf(errors.ErrValidation, "unknown entry type %T", e)
}

func mtimeField(e fsentry.Entry) string {
	if !e.Has(fsentry.FieldMtime) {
		return "0"
	}
	return strconv.FormatInt(e.Mtime().Unix(), 10)
}
