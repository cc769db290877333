package graph

import (
	"fmt"

	"typegraph/internal/attr"
)

// stubHandle is a fully scripted handle for engine tests. Every fact the
// backend contract can report is an explicit field.
type stubHandle struct {
	kind         Kind
	fullName     string
	simpleName   string
	localName    string
	regionalName string
	namespace    string

	facts Facts
	attrs []attr.Value

	members    []*stubHandle
	base       *stubHandle
	containing *stubHandle
	typeOf     *stubHandle
	interfaces []*stubHandle

	genKind     GenericsKind
	genArgs     []*stubHandle
	argNulls    []Nullability
	originalDef *stubHandle

	arrayElem *stubHandle
	arrayRank int

	enumUnderlying *stubHandle
	params         []*stubHandle

	nullability Nullability
	pos         attr.Position
}

func newStubType(fullName string, kind Kind) *stubHandle {
	simple := fullName
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '.' {
			simple = fullName[i+1:]
			break
		}
	}
	return &stubHandle{
		kind:         kind,
		fullName:     fullName,
		simpleName:   simple,
		localName:    simple,
		regionalName: simple,
		facts:        Facts{Accessibility: AccessPublic},
	}
}

func newStubField(owner *stubHandle, name string, typeOf *stubHandle) *stubHandle {
	acc := AccessPublic
	h := &stubHandle{
		kind:         KindField,
		fullName:     owner.fullName + "." + name,
		simpleName:   name,
		localName:    name,
		regionalName: owner.simpleName + "." + name,
		typeOf:       typeOf,
		containing:   owner,
		facts: Facts{
			Accessibility: AccessPublic,
			Getter:        &acc,
			Setter:        &acc,
		},
		nullability: NullabilityNotAnnotated,
	}
	owner.members = append(owner.members, h)
	return h
}

// stubBackend serves scripted handles and counts every call per method and
// handle, so tests can observe how often the engine consulted it.
type stubBackend struct {
	calls map[string]int
}

func newStubBackend() *stubBackend {
	return &stubBackend{calls: make(map[string]int)}
}

func (b *stubBackend) count(method string, h *stubHandle) {
	b.calls[method+":"+h.fullName]++
}

func (b *stubBackend) callCount(method, fullName string) int {
	return b.calls[method+":"+fullName]
}

func (b *stubBackend) handle(h Handle) *stubHandle {
	sh, ok := h.(*stubHandle)
	if !ok {
		panic(fmt.Sprintf("stub backend got foreign handle %T", h))
	}
	return sh
}

func (b *stubBackend) Classify(h Handle) Kind {
	sh := b.handle(h)
	b.count("Classify", sh)
	return sh.kind
}

func (b *stubBackend) FullName(h Handle) string {
	sh := b.handle(h)
	b.count("FullName", sh)
	return sh.fullName
}

func (b *stubBackend) SimpleName(h Handle) string {
	sh := b.handle(h)
	b.count("SimpleName", sh)
	return sh.simpleName
}

func (b *stubBackend) LocalName(h Handle) string {
	sh := b.handle(h)
	b.count("LocalName", sh)
	return sh.localName
}

func (b *stubBackend) RegionalName(h Handle) string {
	sh := b.handle(h)
	b.count("RegionalName", sh)
	return sh.regionalName
}

func (b *stubBackend) Namespace(h Handle) string {
	sh := b.handle(h)
	b.count("Namespace", sh)
	return sh.namespace
}

func (b *stubBackend) Facts(h Handle) Facts {
	sh := b.handle(h)
	b.count("Facts", sh)
	return sh.facts
}

func (b *stubBackend) Attributes(h Handle) []attr.Value {
	sh := b.handle(h)
	b.count("Attributes", sh)
	return sh.attrs
}

func (b *stubBackend) Members(h Handle) []Handle {
	sh := b.handle(h)
	b.count("Members", sh)
	out := make([]Handle, len(sh.members))
	for i, m := range sh.members {
		out[i] = m
	}
	return out
}

func (b *stubBackend) Base(h Handle) Handle {
	sh := b.handle(h)
	b.count("Base", sh)
	if sh.base == nil {
		return nil
	}
	return sh.base
}

func (b *stubBackend) Containing(h Handle) Handle {
	sh := b.handle(h)
	b.count("Containing", sh)
	if sh.containing == nil {
		return nil
	}
	return sh.containing
}

func (b *stubBackend) TypeOf(h Handle) Handle {
	sh := b.handle(h)
	b.count("TypeOf", sh)
	if sh.typeOf == nil {
		return nil
	}
	return sh.typeOf
}

func (b *stubBackend) Interfaces(h Handle) []Handle {
	sh := b.handle(h)
	b.count("Interfaces", sh)
	out := make([]Handle, len(sh.interfaces))
	for i, iface := range sh.interfaces {
		out[i] = iface
	}
	return out
}

func (b *stubBackend) GenericsKind(h Handle) GenericsKind {
	sh := b.handle(h)
	b.count("GenericsKind", sh)
	return sh.genKind
}

func (b *stubBackend) GenericArguments(h Handle) []Handle {
	sh := b.handle(h)
	b.count("GenericArguments", sh)
	out := make([]Handle, len(sh.genArgs))
	for i, a := range sh.genArgs {
		out[i] = a
	}
	return out
}

func (b *stubBackend) OriginalDefinition(h Handle) Handle {
	sh := b.handle(h)
	b.count("OriginalDefinition", sh)
	if sh.originalDef == nil {
		return nil
	}
	return sh.originalDef
}

func (b *stubBackend) ArrayInfo(h Handle) (Handle, int) {
	sh := b.handle(h)
	b.count("ArrayInfo", sh)
	if sh.arrayElem == nil {
		return nil, 0
	}
	return sh.arrayElem, sh.arrayRank
}

func (b *stubBackend) EnumUnderlying(h Handle) Handle {
	sh := b.handle(h)
	b.count("EnumUnderlying", sh)
	if sh.enumUnderlying == nil {
		return nil
	}
	return sh.enumUnderlying
}

func (b *stubBackend) MethodParameters(h Handle) []Handle {
	sh := b.handle(h)
	b.count("MethodParameters", sh)
	out := make([]Handle, len(sh.params))
	for i, p := range sh.params {
		out[i] = p
	}
	return out
}

func (b *stubBackend) Nullability(h Handle) Nullability {
	sh := b.handle(h)
	b.count("Nullability", sh)
	return sh.nullability
}

func (b *stubBackend) ArgumentNullability(h Handle, index int) Nullability {
	sh := b.handle(h)
	b.count("ArgumentNullability", sh)
	if index < 0 || index >= len(sh.argNulls) {
		return NullabilityUnknown
	}
	return sh.argNulls[index]
}

func (b *stubBackend) Position(h Handle) attr.Position {
	sh := b.handle(h)
	b.count("Position", sh)
	return sh.pos
}
