package style

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/pkgmerge/pkg/chksum"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EntryView is the encodable form of an entry.
type EntryView struct {
	Kind     string `yaml:"kind" toml:"kind" json:"kind"`
	Location string `yaml:"location" toml:"location" json:"location"`
	Mode     string `yaml:"mode,omitempty" toml:"mode,omitempty" json:"mode,omitempty"`
	Mtime    int64  `yaml:"mtime,omitempty" toml:"mtime,omitempty" json:"mtime,omitempty"`
	UID      *int   `yaml:"uid,omitempty" toml:"uid,omitempty" json:"uid,omitempty"`
	GID      *int   `yaml:"gid,omitempty" toml:"gid,omitempty" json:"gid,omitempty"`
	Target   string `yaml:"target,omitempty" toml:"target,omitempty" json:"target,omitempty"`
	Major    *int   `yaml:"major,omitempty" toml:"major,omitempty" json:"major,omitempty"`
	Minor    *int   `yaml:"minor,omitempty" toml:"minor,omitempty" json:"minor,omitempty"`
	MD5      string `yaml:"md5,omitempty" toml:"md5,omitempty" json:"md5,omitempty"`
}

// ViewOf converts e. Digests are reported only when already known.
func ViewOf(e fsentry.Entry) EntryView {
	v := EntryView{Kind: e.Kind().String(), Location: e.Location()}
	if e.Has(fsentry.FieldMode) {
		v.Mode = fmt.Sprintf("%04o", e.Mode().Perm())
	}
	if e.Has(fsentry.FieldMtime) {
		v.Mtime = e.Mtime().Unix()
	}
	if e.Has(fsentry.FieldUID) {
		uid := e.UID()
		v.UID = &uid
	}
	if e.Has(fsentry.FieldGID) {
		gid := e.GID()
		v.GID = &gid
	}
	switch x := e.(type) {
	case *fsentry.File:
		if x.HasChecksum(chksum.Primary) {
			sum, _ := x.Checksum(chksum.Primary)
			v.MD5 = chksum.Format(sum)
		}
	case *fsentry.Symlink:
		v.Target = x.Target()
	case *fsentry.Device:
		if x.Major() >= 0 {
			major, minor := x.Major(), x.Minor()
			v.Major, v.Minor = &major, &minor
		}
	}
	return v
}

// Views converts a list of entries.
func Views(entries []fsentry.Entry) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = ViewOf(e)
	}
	return out
}

// Encode marshals v in a structured format. TOML needs v to be a struct
// or map at the top level.
func Encode(f Format, v interface{}) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "encoding yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "encoding yaml")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "encoding toml")
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "encoding json")
		}
		return append(data, '\n'), nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a structured format", f)
}
