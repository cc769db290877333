package graph

import (
	"sort"

	"typegraph/internal/attr"
)

type comparePair struct {
	a, b *Object
}

// DeepEqual compares two nodes structurally across every derived property,
// then recursively over sorted member lists and sorted generic argument
// lists. The nodes may come from different registries and different
// backends.
//
// Cycle handling: a stack of pairs currently being compared is threaded
// through the recursion; a pair already on the stack is treated as equal.
// This closes self-referential and mutually-recursive definitions, at the
// cost of reporting structurally different cycles that revisit the same node
// as equal. That approximation is intentional, documented behavior.
func DeepEqual(a, b *Object) bool {
	return deepEqual(a, b, nil)
}

func deepEqual(a, b *Object, stack []comparePair) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	for _, p := range stack {
		if p.a == a && p.b == b {
			// Cycle closure: assume equality for the pair being compared.
			return true
		}
	}
	stack = append(stack, comparePair{a, b})

	if a.Kind() != b.Kind() ||
		a.FullName() != b.FullName() ||
		a.SimpleName() != b.SimpleName() ||
		a.LocalName() != b.LocalName() ||
		a.GenericsKind() != b.GenericsKind() ||
		a.ArrayRank() != b.ArrayRank() {
		return false
	}

	if a.Facts().Accessibility != b.Facts().Accessibility {
		return false
	}
	if a.IsPrimitive() != b.IsPrimitive() ||
		a.IsSystem() != b.IsSystem() ||
		a.IsTuple() != b.IsTuple() ||
		a.IsPartial() != b.IsPartial() ||
		a.IsStatic() != b.IsStatic() ||
		a.IsPublic() != b.IsPublic() ||
		a.IsReadable() != b.IsReadable() ||
		a.IsWritable() != b.IsWritable() ||
		a.IsReadOnly() != b.IsReadOnly() ||
		a.IsSerializable() != b.IsSerializable() ||
		a.IsConstructor() != b.IsConstructor() {
		return false
	}

	if !attr.EqualLists(a.Attributes(), b.Attributes()) {
		return false
	}
	if !equalStringSets(a.Interfaces(), b.Interfaces()) {
		return false
	}
	if !equalStrings(a.MethodParameters(), b.MethodParameters()) {
		return false
	}
	if a.Nullable().Annotation != b.Nullable().Annotation {
		return false
	}

	if !deepEqual(a.Base(), b.Base(), stack) {
		return false
	}
	if !deepEqualTypeObject(a, b, stack) {
		return false
	}
	if !deepEqual(a.EnumUnderlying(), b.EnumUnderlying(), stack) {
		return false
	}

	if !deepEqualSorted(a.Members(), b.Members(), stack) {
		return false
	}
	return deepEqualSorted(a.GenericArguments(), b.GenericArguments(), stack)
}

func deepEqualTypeObject(a, b *Object, stack []comparePair) bool {
	ta, tb := a.TypeObject(), b.TypeObject()
	// A type node is its own type object; recursing there would only replay
	// the comparison already in flight.
	if ta == a && tb == b {
		return true
	}
	if (ta == a) != (tb == b) {
		return false
	}
	return deepEqual(ta, tb, stack)
}

func deepEqualSorted(a, b []*Object, stack []comparePair) bool {
	if len(a) != len(b) {
		return false
	}
	sa := sortedByName(a)
	sb := sortedByName(b)
	for i := range sa {
		if !deepEqual(sa[i], sb[i], stack) {
			return false
		}
	}
	return true
}

func sortedByName(objects []*Object) []*Object {
	out := make([]*Object, len(objects))
	copy(out, objects)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FullName() < out[j].FullName()
	})
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	return equalStrings(sa, sb)
}
