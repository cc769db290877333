package graph

import (
	"context"

	"typegraph/internal/attr"
)

// primitiveShortNames maps well-known fully qualified names onto their short
// display forms. A match short-circuits node construction: primitives never
// traverse members or attributes.
var primitiveShortNames = map[string]string{
	"bool":           "bool",
	"string":         "string",
	"int":            "int",
	"int8":           "int8",
	"int16":          "int16",
	"int32":          "int32",
	"int64":          "int64",
	"uint":           "uint",
	"uint8":          "uint8",
	"uint16":         "uint16",
	"uint32":         "uint32",
	"uint64":         "uint64",
	"uintptr":        "uintptr",
	"float32":        "float32",
	"float64":        "float64",
	"complex64":      "complex64",
	"complex128":     "complex128",
	"byte":           "byte",
	"rune":           "rune",
	"error":          "error",
	"interface {}":   "any",
	"any":            "any",
	"unsafe.Pointer": "unsafe.Pointer",
}

// IsPrimitiveName reports whether a fully qualified name denotes a built-in
// primitive, and returns its short form.
func IsPrimitiveName(fullName string) (string, bool) {
	short, ok := primitiveShortNames[fullName]
	return short, ok
}

// Registry owns all nodes of one introspection session. It is the only
// component permitted to construct or intern a node, and it deduplicates by
// fully qualified name, which makes name equality and reference identity the
// same relation.
//
// A registry is a single-writer structure: it assumes one logical flow of
// control. Hosts that share a registry across goroutines must serialize all
// access themselves.
type Registry struct {
	backend Backend
	objects map[string]*Object
	order   []string
}

// New creates an empty registry over one backend adapter.
func New(backend Backend) *Registry {
	return &Registry{
		backend: backend,
		objects: make(map[string]*Object),
	}
}

// Backend returns the adapter this registry was built over.
func (r *Registry) Backend() Backend { return r.backend }

// Intern returns the canonical node for a handle, allocating it on first
// sight. A nil handle interns as nil (absence, not error).
//
// Re-entrant: initializing one node may intern related handles.
// The table insert happens before anything that could recurse, so a
// self-referential type finds itself already present when construction loops
// back into it.
func (r *Registry) Intern(h Handle) *Object {
	if h == nil {
		return nil
	}
	fullName := r.backend.FullName(h)
	if o, ok := r.objects[fullName]; ok {
		return o
	}

	o := &Object{reg: r, handle: h, fullName: fullName}
	r.objects[fullName] = o
	r.order = append(r.order, fullName)

	if short, ok := primitiveShortNames[fullName]; ok {
		o.primitive = true
		o.shortName = short
	}
	o.kind = r.backend.Classify(h)
	o.position = r.backend.Position(h)
	return o
}

// InternAll interns a batch of handles, checking the context between nodes.
// Partial results are returned alongside the context error.
func (r *Registry) InternAll(ctx context.Context, handles []Handle) ([]*Object, error) {
	out := make([]*Object, 0, len(handles))
	for _, h := range handles {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if o := r.Intern(h); o != nil {
			out = append(out, o)
		}
	}
	return out, nil
}

// Lookup finds an already-interned node by its fully qualified name.
func (r *Registry) Lookup(fullName string) (*Object, bool) {
	o, ok := r.objects[fullName]
	return o, ok
}

// Objects returns all interned nodes in intern order.
func (r *Registry) Objects() []*Object {
	out := make([]*Object, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.objects[name])
	}
	return out
}

// Len reports the number of interned nodes.
func (r *Registry) Len() int { return len(r.objects) }

// Name-formatting services: pure functions of a handle, independent of node
// state, usable before a node is fully constructed.

func (r *Registry) ToFullName(h Handle) string     { return r.backend.FullName(h) }
func (r *Registry) ToSimpleName(h Handle) string   { return r.backend.SimpleName(h) }
func (r *Registry) ToLocalName(h Handle) string    { return r.backend.LocalName(h) }
func (r *Registry) ToRegionalName(h Handle) string { return r.backend.RegionalName(h) }

// levelMembers interns the members declared directly on one node of a base
// chain, applying the member-filtering rules. Declaration order is preserved.
func (r *Registry) levelMembers(level *Object) []*Object {
	var out []*Object
	for _, mh := range r.backend.Members(level.handle) {
		f := r.backend.Facts(mh)
		// An implicitly declared constructor (a value type's default one)
		// and constructors of platform types never surface as members.
		if f.IsConstructor && (f.IsImplicit || f.IsSystem) {
			continue
		}
		// Enums carry a synthesized constructor and a synthesized
		// underlying-value accessor; neither is a real member.
		if level.kind == KindEnum && f.IsImplicit {
			continue
		}
		if f.IsSystem {
			continue
		}

		h := mh
		// Generic type members intern through their unbound definition so
		// member identity stays stable across instantiations.
		if r.backend.Classify(mh).IsType() && r.backend.GenericsKind(mh) == ClosedGeneric {
			if def := r.backend.OriginalDefinition(mh); def != nil {
				h = def
			}
		}

		m := r.Intern(h)
		if m == nil || m.kind == KindNone {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MemberFilter narrows a member query. All set filters are ANDed; zero
// values mean "any".
type MemberFilter struct {
	// Kinds selects member kinds by mask; zero admits every kind.
	Kinds KindMask
	// Attribute requires the member to carry an attribute with this full
	// name.
	Attribute string
	// Interface requires the member's type object to implement the
	// interface with this full name.
	Interface string
}

// Members runs a filtered member query over a node.
func (r *Registry) Members(o *Object, filter MemberFilter) []*Object {
	var out []*Object
	for _, m := range o.Members() {
		if filter.Kinds != 0 && filter.Kinds&m.Kind().Mask() == 0 {
			continue
		}
		if filter.Attribute != "" && !attr.Contains(m.Attributes(), filter.Attribute) {
			continue
		}
		if filter.Interface != "" && !m.TypeObject().Implements(filter.Interface) {
			continue
		}
		out = append(out, m)
	}
	return out
}
