// Package chksum holds the table of checksum algorithms known to the
// merge engine. Handlers are looked up by name; md5 is the primary
// algorithm and the only one written to content records.
package chksum

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/registry"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// Primary is the algorithm every recorded file must carry.
const Primary = "md5"

// Handler computes one kind of digest.
type Handler interface {
	Name() string
	// Size is the digest length in bytes.
	Size() int
	Sum(r io.Reader) ([]byte, error)
}

var handlers = registry.New[Handler]("checksum handler")

func init() {
	registry.MustRegister[Handler](handlers, "md5", hashHandler{name: "md5", size: md5.Size, newHash: md5.New})
	registry.MustRegister[Handler](handlers, "sha1", hashHandler{name: "sha1", size: sha1.Size, newHash: sha1.New})
	registry.MustRegister[Handler](handlers, "sha256", hashHandler{name: "sha256", size: sha256.Size, newHash: sha256.New})
	registry.MustRegister[Handler](handlers, "blake3", hashHandler{name: "blake3", size: 32, newHash: func() hash.Hash { return blake3.New() }})
	registry.MustRegister[Handler](handlers, "xxh3", xxh3Handler{})
}

// Get returns the handler registered under name.
func Get(name string) (Handler, error) {
	return handlers.Get(name)
}

// Names lists the registered algorithms in sorted order.
func Names() []string {
	return handlers.List()
}

// Register adds a handler. It fails if the name is already taken.
func Register(h Handler) error {
	return handlers.Register(h.Name(), h)
}

// Sum runs the named algorithm over r.
func Sum(name string, r io.Reader) ([]byte, error) {
	h, err := Get(name)
	if err != nil {
		return nil, err
	}
	return h.Sum(r)
}

// SumBytes runs the named algorithm over data.
func SumBytes(name string, data []byte) ([]byte, error) {
	return Sum(name, bytes.NewReader(data))
}

// Format renders a digest as lowercase hex.
func Format(digest []byte) string {
	return hex.EncodeToString(digest)
}

// ParseHex decodes a hex digest for the named algorithm. Short input is
// left padded with zeros, since older records stored digests as integers
// and dropped leading zeros.
func ParseHex(name, s string) ([]byte, error) {
	h, err := Get(name)
	if err != nil {
		return nil, err
	}
	want := h.Size() * 2
	if len(s) > want {
		return nil, errors.Newf(errors.ErrParse, "%s digest %q is longer than %d hex digits", name, s, want)
	}
	if len(s) < want {
		s = strings.Repeat("0", want-len(s)) + s
	}
	digest, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrParse, "invalid %s digest %q", name, s)
	}
	return digest, nil
}

type hashHandler struct {
	name    string
	size    int
	newHash func() hash.Hash
}

func (h hashHandler) Name() string { return h.name }
func (h hashHandler) Size() int    { return h.size }

func (h hashHandler) Sum(r io.Reader) ([]byte, error) {
	hh := h.newHash()
	if _, err := io.Copy(hh, r); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "reading data for %s", h.name)
	}
	return hh.Sum(nil), nil
}

// xxh3Handler produces the 128 bit variant, big endian.
type xxh3Handler struct{}

func (xxh3Handler) Name() string { return "xxh3" }
func (xxh3Handler) Size() int    { return 16 }

func (xxh3Handler) Sum(r io.Reader) ([]byte, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "reading data for xxh3")
	}
	sum := h.Sum128()
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], sum.Hi)
	binary.BigEndian.PutUint64(out[8:], sum.Lo)
	return out, nil
}
