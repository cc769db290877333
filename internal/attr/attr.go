package attr

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Position is an opaque source position carried alongside attribute
// applications and graph nodes. The zero value means "unknown", which is
// what metadata-only backends report.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsKnown reports whether the position carries real location data.
func (p Position) IsKnown() bool {
	return p.File != "" || p.Line != 0
}

func (p Position) String() string {
	if !p.IsKnown() {
		return "<unknown>"
	}
	if p.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// NamedArg is one name-value pair of an attribute application.
type NamedArg struct {
	Name  string
	Value any
}

// Value is one applied decoration: a fully qualified attribute name plus the
// argument values it was applied with. Values are immutable once constructed;
// argument values are captured verbatim with no type coercion.
type Value struct {
	FullName  string
	CtorArgs  []any // positional; a nil entry is a hole left by the backend
	NamedArgs []NamedArg
	Position  Position
}

// Equal reports structural equality: same name, same positional arguments in
// order, same named arguments in order. Position is deliberately excluded so
// that the same application seen through different backends compares equal.
func (v Value) Equal(other Value) bool {
	if v.FullName != other.FullName {
		return false
	}
	if len(v.CtorArgs) != len(other.CtorArgs) || len(v.NamedArgs) != len(other.NamedArgs) {
		return false
	}
	for i := range v.CtorArgs {
		if !reflect.DeepEqual(v.CtorArgs[i], other.CtorArgs[i]) {
			return false
		}
	}
	for i := range v.NamedArgs {
		if v.NamedArgs[i].Name != other.NamedArgs[i].Name {
			return false
		}
		if !reflect.DeepEqual(v.NamedArgs[i].Value, other.NamedArgs[i].Value) {
			return false
		}
	}
	return true
}

// Argument returns the attribute argument for a zero-based constructor slot
// with an optional named fallback: the positional value wins when the index
// is in range and the slot is not a hole, otherwise the named argument wins
// when present, otherwise the result is absent (ok == false).
func (v Value) Argument(index int, name string) (any, bool) {
	if index >= 0 && index < len(v.CtorArgs) && v.CtorArgs[index] != nil {
		return v.CtorArgs[index], true
	}
	if name != "" {
		for _, na := range v.NamedArgs {
			if na.Name == name {
				return na.Value, true
			}
		}
	}
	return nil, false
}

// Named returns the named argument value, or absent.
func (v Value) Named(name string) (any, bool) {
	return v.Argument(-1, name)
}

// Sort orders attribute values lexicographically by fully qualified name.
// Ties keep their original relative order.
func Sort(values []Value) {
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].FullName < values[j].FullName
	})
}

// Contains reports whether any value in the list carries the given name.
func Contains(values []Value, fullName string) bool {
	for _, v := range values {
		if v.FullName == fullName {
			return true
		}
	}
	return false
}

// Find returns the first value with the given name, or absent.
func Find(values []Value, fullName string) (Value, bool) {
	for _, v := range values {
		if v.FullName == fullName {
			return v, true
		}
	}
	return Value{}, false
}

// EqualLists compares two attribute lists pairwise.
func EqualLists(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// infraPrefix marks decorations synthesized by tooling rather than written by
// the program under inspection. Applications under it never reach consumers.
const infraPrefix = "go."

// IsInfrastructure reports whether an attribute name belongs to the reserved
// tooling namespace and should be dropped during reification.
func IsInfrastructure(fullName string) bool {
	return strings.HasPrefix(fullName, infraPrefix)
}

// Filter returns the values that survive infrastructure filtering, in order.
func Filter(values []Value) []Value {
	out := make([]Value, 0, len(values))
	for _, v := range values {
		if IsInfrastructure(v.FullName) {
			continue
		}
		out = append(out, v)
	}
	return out
}
