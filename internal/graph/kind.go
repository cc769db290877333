package graph

// Kind classifies a graph node. KindNone marks a handle that failed to
// classify (backing fields, accessor methods, unsupported constructs); such
// nodes are filtered out of every member query.
type Kind int

const (
	KindNone Kind = iota
	KindClass
	KindInterface
	KindStruct
	KindRecord
	KindEnum
	KindTypeParameter
	KindField
	KindProperty
	KindMethod
)

var kindNames = map[Kind]string{
	KindNone:          "none",
	KindClass:         "class",
	KindInterface:     "interface",
	KindStruct:        "struct",
	KindRecord:        "record",
	KindEnum:          "enum",
	KindTypeParameter: "type_parameter",
	KindField:         "field",
	KindProperty:      "property",
	KindMethod:        "method",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsType reports whether the kind names a type-like entity.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindStruct, KindRecord, KindEnum, KindTypeParameter:
		return true
	}
	return false
}

// IsMember reports whether the kind names a member of a type.
func (k Kind) IsMember() bool {
	switch k {
	case KindField, KindProperty, KindMethod:
		return true
	}
	return false
}

// KindMask selects a set of kinds in member queries.
type KindMask uint16

// Mask returns the single-kind mask.
func (k Kind) Mask() KindMask {
	return 1 << uint(k)
}

const (
	MaskTypes   = KindMask(1<<KindClass | 1<<KindInterface | 1<<KindStruct | 1<<KindRecord | 1<<KindEnum | 1<<KindTypeParameter)
	MaskMembers = KindMask(1<<KindField | 1<<KindProperty | 1<<KindMethod)
)

// GenericsKind classifies a node's relationship to generic instantiation.
// A node is open when it still carries unbound parameters, its own or any
// containing type's.
type GenericsKind int

const (
	NotGeneric GenericsKind = iota
	OpenGeneric
	ClosedGeneric
)

func (g GenericsKind) String() string {
	switch g {
	case OpenGeneric:
		return "open"
	case ClosedGeneric:
		return "closed"
	default:
		return "not_generic"
	}
}

// Nullability is a per-use-site annotation. The same node is shared across
// many annotated and unannotated use sites, so the annotation lives in the
// Nullable wrapper, never on the node.
type Nullability int

const (
	NullabilityUnknown Nullability = iota
	NullabilityNotAnnotated
	NullabilityAnnotated
)

func (n Nullability) String() string {
	switch n {
	case NullabilityNotAnnotated:
		return "not_annotated"
	case NullabilityAnnotated:
		return "annotated"
	default:
		return "unknown"
	}
}

// suffix qualifies a name with the annotation; each state must stay distinct
// because wrapper equality hangs off the qualified name.
func (n Nullability) suffix() string {
	switch n {
	case NullabilityNotAnnotated:
		return "!"
	case NullabilityAnnotated:
		return "?"
	default:
		return ""
	}
}

// Access is a declared accessibility level, ordered from most restrictive to
// most open. AccessUnknown means the backend carries no accessibility data.
type Access int

const (
	AccessUnknown Access = iota
	AccessPrivate
	AccessProtected
	AccessInternal
	AccessPublic
)

func (a Access) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessProtected:
		return "protected"
	case AccessInternal:
		return "internal"
	case AccessPublic:
		return "public"
	default:
		return "unknown"
	}
}

// minAccess folds accessibility levels, ignoring unknowns. Used for
// property-like members whose visibility is the minimum of the accessor pair.
func minAccess(levels ...Access) Access {
	min := AccessUnknown
	for _, l := range levels {
		if l == AccessUnknown {
			continue
		}
		if min == AccessUnknown || l < min {
			min = l
		}
	}
	return min
}
