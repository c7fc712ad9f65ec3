package triggers

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/types"
)

// CsetShape is how a trigger receives content sets.
type CsetShape int

const (
	// ShapeAll passes the raw mapping through untouched.
	ShapeAll CsetShape = iota
	// ShapeNamed passes the named sets positionally.
	ShapeNamed
	// ShapeNone passes no sets.
	ShapeNone
)

// CsetRequest declares which content sets a trigger needs. The zero value
// requests the raw mapping.
type CsetRequest struct {
	shape CsetShape
	names []string
}

// AllCsets requests the raw mapping.
func AllCsets() CsetRequest { return CsetRequest{shape: ShapeAll} }

// NamedCsets requests the given sets in order. With no names it is NoCsets.
func NamedCsets(names ...string) CsetRequest {
	if len(names) == 0 {
		return NoCsets()
	}
	return CsetRequest{shape: ShapeNamed, names: append([]string(nil), names...)}
}

// NoCsets requests nothing.
func NoCsets() CsetRequest { return CsetRequest{shape: ShapeNone} }

func (r CsetRequest) Shape() CsetShape { return r.shape }

// Names returns the requested names; empty for ShapeAll and ShapeNone.
func (r CsetRequest) Names() []string { return append([]string(nil), r.names...) }

func (r CsetRequest) String() string {
	switch r.shape {
	case ShapeNamed:
		return "[" + strings.Join(r.names, ", ") + "]"
	case ShapeNone:
		return "[]"
	}
	return "all"
}

// Args is what a trigger receives. For ShapeAll, All is the caller's
// mapping itself. For ShapeNamed, Sets holds one set per requested name in
// declared order. For ShapeNone both are empty.
type Args struct {
	Shape CsetShape
	All   types.Csets
	Sets  []*contents.Set
}

// Resolve builds the Args for req from csets. A requested name missing from
// csets is a lookup error.
func Resolve(req CsetRequest, csets types.Csets) (Args, error) {
	switch req.shape {
	case ShapeAll:
		return Args{Shape: ShapeAll, All: csets}, nil
	case ShapeNone:
		return Args{Shape: ShapeNone}, nil
	}
	sets := make([]*contents.Set, 0, len(req.names))
	for _, name := range req.names {
		s, ok := csets[name]
		if !ok {
			return Args{}, errors.Newf(errors.ErrLookup, "content set %q is not available", name).
				WithDetail("cset", name)
		}
		sets = append(sets, s)
	}
	return Args{Shape: ShapeNamed, Sets: sets}, nil
}

// csetMap resolves per-hook requests with a fallback.
type csetMap struct {
	fallback CsetRequest
	byHook   map[types.Hook]CsetRequest
}

func (m csetMap) get(hook types.Hook) CsetRequest {
	if r, ok := m.byHook[hook]; ok {
		return r
	}
	return m.fallback
}

func (m csetMap) String() string {
	if len(m.byHook) == 0 {
		return m.fallback.String()
	}
	parts := make([]string, 0, len(m.byHook))
	for _, h := range types.AllHooks {
		if r, ok := m.byHook[h]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", h, r))
		}
	}
	return strings.Join(parts, " ") + " default=" + m.fallback.String()
}
