package graph

import "strings"

// Nullable pairs a node with a per-use-site nullability annotation. Wrappers
// are not interned: distinct use sites of the same node produce distinct
// wrapper values. Generic argument positions carry their own wrappers,
// resolved from the backend's per-argument annotation rather than the
// containing type's.
type Nullable struct {
	Object     *Object
	Annotation Nullability
	Arguments  []Nullable
}

// ResolveNullable wraps a node with its own use-site annotation and resolves
// argument wrappers recursively. The node itself is never mutated.
func (r *Registry) ResolveNullable(o *Object) Nullable {
	if o == nil {
		return Nullable{}
	}
	return r.wrapNullable(o, r.backend.Nullability(o.handle))
}

func (r *Registry) wrapNullable(o *Object, ann Nullability) Nullable {
	n := Nullable{Object: o, Annotation: ann}
	args := o.GenericArguments()
	for i, a := range args {
		if a == o {
			// A pathological self-argument would never terminate; keep the
			// bare wrapper for that position.
			n.Arguments = append(n.Arguments, Nullable{Object: a, Annotation: r.backend.ArgumentNullability(o.handle, i)})
			continue
		}
		n.Arguments = append(n.Arguments, r.wrapNullable(a, r.backend.ArgumentNullability(o.handle, i)))
	}
	return n
}

// QualifiedName is the annotation-qualified name of the wrapped node,
// including argument annotations. Wrapper equality and hashing key off this
// string, not wrapper identity.
func (n Nullable) QualifiedName() string {
	if n.Object == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(n.Object.FullName())
	b.WriteString(n.Annotation.suffix())
	if len(n.Arguments) > 0 {
		b.WriteByte('[')
		for i, a := range n.Arguments {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.QualifiedName())
		}
		b.WriteByte(']')
	}
	return b.String()
}

// Equal compares wrappers by node full name and annotation-qualified name.
func (n Nullable) Equal(other Nullable) bool {
	if (n.Object == nil) != (other.Object == nil) {
		return false
	}
	if n.Object == nil {
		return n.Annotation == other.Annotation
	}
	return n.Object.FullName() == other.Object.FullName() &&
		n.QualifiedName() == other.QualifiedName()
}
