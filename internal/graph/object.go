package graph

import (
	"typegraph/internal/attr"
)

// memo is a tri-state lazy cell: not computed, computed-absent (done with a
// zero value), computed-present. The explicit done flag avoids sentinel
// collisions with legitimately absent results.
type memo[T any] struct {
	done bool
	v    T
}

func (m *memo[T]) get(compute func() T) T {
	if !m.done {
		m.v = compute()
		m.done = true
	}
	return m.v
}

// Object is one node of the symbol graph: the engine's canonical,
// deduplicated representation of one named program entity. Every derived
// property is computed lazily from the owning registry's backend and cached
// for the lifetime of the registry; recomputation is a correctness bug.
//
// Objects reference each other only through the registry, never by owning
// copies, so the result of related-node lookups is a single shared, possibly
// cyclic, directed graph.
type Object struct {
	reg      *Registry
	handle   Handle
	kind     Kind
	fullName string

	primitive bool
	shortName string

	position attr.Position

	facts        memo[Facts]
	simpleName   memo[string]
	localName    memo[string]
	regionalName memo[string]
	namespace    memo[string]

	base           memo[*Object]
	containing     memo[*Object]
	typeObject     memo[*Object]
	originalDef    memo[*Object]
	arrayElement   memo[*Object]
	arrayRank      memo[int]
	enumUnderlying memo[*Object]

	members    memo[[]*Object]
	interfaces memo[[]string]
	attributes memo[[]attr.Value]

	genericsKind memo[GenericsKind]
	genericArgs  memo[[]*Object]

	methodParams memo[[]string]
}

// Kind returns the node's classification, fixed at intern time.
func (o *Object) Kind() Kind { return o.kind }

// FullName is the node's identity key within its registry.
func (o *Object) FullName() string { return o.fullName }

// Position is the opaque source position, zero for metadata-only backends.
func (o *Object) Position() attr.Position { return o.position }

// Handle exposes the backing handle for collaborators that need to go back
// to the backend (nullability resolution, name services).
func (o *Object) Handle() Handle { return o.handle }

func (o *Object) Facts() Facts {
	return o.facts.get(func() Facts {
		return o.reg.backend.Facts(o.handle)
	})
}

func (o *Object) SimpleName() string {
	return o.simpleName.get(func() string {
		if o.primitive {
			return o.shortName
		}
		return o.reg.backend.SimpleName(o.handle)
	})
}

// LocalName is the simple name plus the generic suffix introduced at this
// nesting level. Primitives render as their well-known short form.
func (o *Object) LocalName() string {
	return o.localName.get(func() string {
		if o.primitive {
			return o.shortName
		}
		return o.reg.backend.LocalName(o.handle)
	})
}

// RegionalName qualifies the name by containing type but not namespace.
func (o *Object) RegionalName() string {
	return o.regionalName.get(func() string {
		if o.primitive {
			return o.shortName
		}
		return o.reg.backend.RegionalName(o.handle)
	})
}

func (o *Object) Namespace() string {
	return o.namespace.get(func() string {
		return o.reg.backend.Namespace(o.handle)
	})
}

func (o *Object) IsPrimitive() bool { return o.primitive }

func (o *Object) IsSystem() bool { return o.Facts().IsSystem }

func (o *Object) IsTuple() bool { return o.Facts().IsTuple }

func (o *Object) IsPartial() bool { return o.Facts().IsPartial }

func (o *Object) IsStatic() bool { return o.Facts().IsStatic }

func (o *Object) IsConstructor() bool { return o.Facts().IsConstructor }

// IsPublic folds declared accessibility with the accessor pair: for
// property-like members, visibility is the minimum accessibility of the
// accessors that exist.
func (o *Object) IsPublic() bool {
	f := o.Facts()
	acc := f.Accessibility
	if o.kind.IsMember() {
		levels := []Access{acc}
		if f.Getter != nil {
			levels = append(levels, *f.Getter)
		}
		if f.Setter != nil {
			levels = append(levels, *f.Setter)
		}
		acc = minAccess(levels...)
	}
	return acc == AccessPublic
}

// IsReadable reports whether the entity can be read from. For members the
// absence of a read accessor implies not-readable; type nodes are readable.
func (o *Object) IsReadable() bool {
	if o.kind.IsMember() {
		return o.Facts().Getter != nil
	}
	return true
}

// IsWritable reports whether the entity can be written to.
func (o *Object) IsWritable() bool {
	f := o.Facts()
	if f.ReadOnly {
		return false
	}
	if o.kind.IsMember() {
		return f.Setter != nil
	}
	return true
}

func (o *Object) IsReadOnly() bool { return !o.IsWritable() }

// IsSerializable means readable and writable.
func (o *Object) IsSerializable() bool { return o.IsReadable() && o.IsWritable() }

// Base returns the nearest supertype node, nil at the root.
func (o *Object) Base() *Object {
	return o.base.get(func() *Object {
		return o.reg.Intern(o.reg.backend.Base(o.handle))
	})
}

// Containing returns the lexical parent node, nil when not nested.
func (o *Object) Containing() *Object {
	return o.containing.get(func() *Object {
		return o.reg.Intern(o.reg.backend.Containing(o.handle))
	})
}

// TypeObject returns, for a field/property/method, the node of its declared
// or return type; a type node is its own type object.
func (o *Object) TypeObject() *Object {
	return o.typeObject.get(func() *Object {
		if !o.kind.IsMember() {
			return o
		}
		t := o.reg.Intern(o.reg.backend.TypeOf(o.handle))
		if t == nil {
			return o
		}
		return t
	})
}

// OriginalDefinition returns the unbound generic definition; a node that is
// not a generic instantiation is its own original definition.
func (o *Object) OriginalDefinition() *Object {
	return o.originalDef.get(func() *Object {
		def := o.reg.Intern(o.reg.backend.OriginalDefinition(o.handle))
		if def == nil {
			return o
		}
		return def
	})
}

// ArrayElement returns the element node of an array-like node, nil otherwise.
func (o *Object) ArrayElement() *Object {
	return o.arrayElement.get(func() *Object {
		elem, rank := o.reg.backend.ArrayInfo(o.handle)
		o.arrayRank.v, o.arrayRank.done = rank, true
		return o.reg.Intern(elem)
	})
}

// ArrayRank is the number of array dimensions, zero for non-arrays.
func (o *Object) ArrayRank() int {
	return o.arrayRank.get(func() int {
		_, rank := o.reg.backend.ArrayInfo(o.handle)
		return rank
	})
}

// EnumUnderlying returns the underlying-type node of an enum, nil otherwise.
func (o *Object) EnumUnderlying() *Object {
	return o.enumUnderlying.get(func() *Object {
		return o.reg.Intern(o.reg.backend.EnumUnderlying(o.handle))
	})
}

// Members is the flattened member sequence across the base chain, in
// declaration order, nearest level first. Shadowed names are not collapsed;
// members are distinguished by node identity, not simple name.
//
// Filtered out: implicit constructors (a value type's synthesized default
// constructor), platform-declared members, an enum's synthesized constructor
// and underlying-value accessor, and anything that interns as KindNone.
// System and primitive nodes expose no members at all.
func (o *Object) Members() []*Object {
	return o.members.get(func() []*Object {
		if o.primitive || o.IsSystem() {
			return nil
		}
		var out []*Object
		for cur := o; cur != nil; cur = cur.Base() {
			if cur.primitive || cur.IsSystem() {
				// The chain stops short of the universal root; platform
				// internals stay closed.
				break
			}
			out = append(out, o.reg.levelMembers(cur)...)
		}
		return out
	})
}

// Interfaces is the flattened transitive interface set, as fully qualified
// names. Strings rather than nodes: the set is only ever used for name
// matching, and keeping it flat avoids a second graph traversal.
func (o *Object) Interfaces() []string {
	return o.interfaces.get(func() []string {
		if o.primitive || o.IsSystem() {
			return nil
		}
		handles := o.reg.backend.Interfaces(o.handle)
		names := make([]string, 0, len(handles))
		seen := make(map[string]bool, len(handles))
		for _, h := range handles {
			name := o.reg.backend.FullName(h)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		return names
	})
}

// Attributes is the reified decoration list, in declaration order, with
// infrastructure-namespace applications dropped. System and primitive nodes
// expose none.
func (o *Object) Attributes() []attr.Value {
	return o.attributes.get(func() []attr.Value {
		if o.primitive || o.IsSystem() {
			return nil
		}
		return attr.Filter(o.reg.backend.Attributes(o.handle))
	})
}

// GenericsKind folds the containing chain into the classification: a type
// nested inside an open generic container is open even when it introduces no
// parameters of its own. Members keep the backend's answer as-is.
func (o *Object) GenericsKind() GenericsKind {
	return o.genericsKind.get(func() GenericsKind {
		gk := o.reg.backend.GenericsKind(o.handle)
		if gk == OpenGeneric || !o.kind.IsType() {
			return gk
		}
		if c := o.Containing(); c != nil && c.Kind().IsType() && c.GenericsKind() == OpenGeneric {
			return OpenGeneric
		}
		return gk
	})
}

// GenericArguments returns the argument nodes introduced at this nesting
// level only.
func (o *Object) GenericArguments() []*Object {
	return o.genericArgs.get(func() []*Object {
		handles := o.reg.backend.GenericArguments(o.handle)
		args := make([]*Object, 0, len(handles))
		for _, h := range handles {
			if a := o.reg.Intern(h); a != nil {
				args = append(args, a)
			}
		}
		return args
	})
}

// MethodParameters lists the parameter type names, by full name, of a
// method node.
func (o *Object) MethodParameters() []string {
	return o.methodParams.get(func() []string {
		handles := o.reg.backend.MethodParameters(o.handle)
		names := make([]string, 0, len(handles))
		for _, h := range handles {
			names = append(names, o.reg.backend.FullName(h))
		}
		return names
	})
}

// Nullable resolves the node's own use-site annotation and wraps it.
func (o *Object) Nullable() Nullable {
	return o.reg.ResolveNullable(o)
}

// Implements reports whether the interface name appears in the node's
// transitive interface set.
func (o *Object) Implements(fullName string) bool {
	for _, name := range o.Interfaces() {
		if name == fullName {
			return true
		}
	}
	return false
}
