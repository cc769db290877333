// Package fixture holds the reference types that adapter tests introspect.
// The same declarations are visible to the source backend (loaded from this
// file) and to the mirror backend (via reflection on the compiled package),
// which is what makes cross-backend equivalence checks possible.
package fixture

// Identifier marks values that carry a stable identity.
type Identifier interface {
	ID() string
}

// Auditable extends Identifier with provenance data.
type Auditable interface {
	Identifier
	AuditTag() string
}

// Color is a small enumeration over an integer underlying type.
type Color int

const (
	Red Color = iota
	Green
	Blue
)

// Base carries bookkeeping shared by every record type.
type Base struct {
	CreatedAt int64 `json:"created_at"`
}

// Kind names the record family.
func (Base) Kind() string { return "base" }

// Node is self-referential through Next.
type Node struct {
	Value string `json:"value,omitempty"`
	Next  *Node  `json:"next"`
}

// Blob and Manifest are mutually recursive.
type Blob struct {
	Owner *Manifest
}

// Manifest points back into Blob.
type Manifest struct {
	Root *Blob
}

// Entity exercises embedding, interface embedding, tags, an enum-typed
// field, slices and an unexported member in one type.
type Entity struct {
	Base
	Identifier
	Title  string   `json:"title" yaml:"title"`
	Tags   []string `json:"tags"`
	Color  Color    `json:"color"`
	traced bool     `go.trace:"off"`
}

// Describe summarizes the entity.
func (Entity) Describe() string { return "entity" }

// Pair is an open generic definition.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// PairList closes Pair over concrete arguments.
type PairList struct {
	First Pair[string, int]
}
