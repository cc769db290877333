package graph

import "typegraph/internal/attr"

// Handle is a backend-specific opaque reference to a symbol or metadata
// entity. The engine never looks inside a handle; it only passes handles back
// to the backend that produced them. Handing a foreign handle to a backend is
// a programmer error at the boundary and backends panic on it rather than
// guessing.
type Handle = any

// Facts is the backend's scalar report about one handle. The node folds these
// raw predicates into its derived flags (isPublic, isReadable, isWritable,
// isReadOnly, isSerializable).
type Facts struct {
	IsSystem      bool // platform/built-in entity; internals are never traversed
	IsTuple       bool
	IsPartial     bool
	IsStatic      bool
	IsImplicit    bool // compiler-synthesized; candidates for member filtering
	IsConstructor bool
	ReadOnly      bool // init-only / no-mutation flag

	Accessibility Access
	// Getter and Setter describe the accessor pair of property-like members.
	// nil means the accessor is absent, which implies not-readable or
	// not-writable respectively. Plain fields report both accessors at the
	// field's own accessibility.
	Getter *Access
	Setter *Access
}

// Backend is the adapter contract between the engine and one information
// source. A registry holds exactly one backend and every node it interns is
// backed by it; the node-facing property surface must behave identically
// regardless of which backend answers.
type Backend interface {
	// Classify maps a handle onto a node kind, KindNone when unsupported.
	// Unsupported never means error: None-kind nodes intern fine and are
	// filtered out of member queries.
	Classify(h Handle) Kind

	// Name formatting. All four are pure functions of the handle, usable
	// before a node is fully constructed.
	FullName(h Handle) string
	SimpleName(h Handle) string
	// LocalName is the simple name plus the generic argument or parameter
	// suffix introduced at this nesting level.
	LocalName(h Handle) string
	// RegionalName qualifies by containing type but not namespace.
	RegionalName(h Handle) string
	Namespace(h Handle) string

	Facts(h Handle) Facts

	// Attributes returns the raw applications on the handle, in declaration
	// order, before infrastructure filtering.
	Attributes(h Handle) []attr.Value

	// Members returns the handles declared directly on this handle, in
	// declaration order, without walking any inheritance chain.
	Members(h Handle) []Handle
	// Base returns the nearest supertype handle, nil at the root.
	Base(h Handle) Handle
	// Containing returns the lexical parent handle, nil when not nested.
	Containing(h Handle) Handle
	// TypeOf returns the declared/return type handle for member handles,
	// nil for handles that are themselves types.
	TypeOf(h Handle) Handle
	// Interfaces returns the transitively reachable interface handles.
	Interfaces(h Handle) []Handle

	// GenericsKind classifies the handle from its own parameters and
	// arguments only; the node folds containment transitivity on top.
	GenericsKind(h Handle) GenericsKind
	// GenericArguments returns only the arguments introduced at this
	// nesting level, not the containing type's.
	GenericArguments(h Handle) []Handle
	// OriginalDefinition returns the unbound generic definition handle,
	// nil when the handle is not a generic instantiation.
	OriginalDefinition(h Handle) Handle

	// ArrayInfo reports the element handle and rank for array-like handles,
	// (nil, 0) otherwise.
	ArrayInfo(h Handle) (elem Handle, rank int)
	// EnumUnderlying returns the underlying-type handle of an enum, else nil.
	EnumUnderlying(h Handle) Handle

	// MethodParameters returns the parameter type handles of a method.
	MethodParameters(h Handle) []Handle

	// Nullability reports the use-site annotation of the handle itself;
	// ArgumentNullability reports the annotation of one generic argument
	// position, which is independent of the containing type's.
	Nullability(h Handle) Nullability
	ArgumentNullability(h Handle, index int) Nullability

	// Position returns the opaque source position, zero when the backend
	// has no location data.
	Position(h Handle) attr.Position
}
