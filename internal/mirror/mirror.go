// Package mirror adapts runtime reflection metadata to the engine's adapter
// contract. It answers the same questions as the source backend, from
// reflect.Type alone: no source positions exist here, and Go reflection does
// not expose generic definitions, so generic instantiations are recognized by
// name only, with their arguments unavailable.
package mirror

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"typegraph/internal/attr"
	"typegraph/internal/graph"
)

type typeHandle struct {
	t reflect.Type
}

type fieldHandle struct {
	owner reflect.Type
	index int
}

type methodHandle struct {
	owner reflect.Type
	index int
}

// Backend serves engine handles out of runtime type metadata.
type Backend struct{}

// NewBackend creates a mirror backend.
func NewBackend() *Backend { return &Backend{} }

// TypeHandle wraps a runtime type as an engine handle.
func (b *Backend) TypeHandle(t reflect.Type) graph.Handle {
	if t == nil {
		return nil
	}
	return typeHandle{t: t}
}

// TypeHandleOf wraps the dynamic type of a value.
func (b *Backend) TypeHandleOf(v any) graph.Handle {
	return b.TypeHandle(reflect.TypeOf(v))
}

func (h fieldHandle) field() reflect.StructField {
	return h.owner.Field(h.index)
}

func (h methodHandle) method() reflect.Method {
	return h.owner.Method(h.index)
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeName(t.Elem())
	case reflect.Slice:
		return "[]" + typeName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), typeName(t.Elem()))
	case reflect.Map:
		return "map[" + typeName(t.Key()) + "]" + typeName(t.Elem())
	case reflect.Chan:
		return "chan " + typeName(t.Elem())
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	if t.Name() != "" {
		return t.Name()
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return "any"
	}
	return t.String()
}

func exported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// systemPath is the shared platform-package rule; an empty path here means
// a predeclared type, which is platform by definition.
func systemPath(path string) bool {
	if path == "" {
		return true
	}
	return graph.IsSystemPackagePath(path)
}

// simpleTypeName strips the instantiation suffix reflect appends to generic
// type names.
func simpleTypeName(t reflect.Type) string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

// baseFieldIndex picks the embedded field that plays the base-type role: the
// first anonymous named struct or interface.
func baseFieldIndex(t reflect.Type) int {
	if t.Kind() != reflect.Struct {
		return -1
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := deref(f.Type)
		if ft.Name() == "" {
			continue
		}
		if ft.Kind() == reflect.Struct || ft.Kind() == reflect.Interface {
			return i
		}
	}
	return -1
}

// promoted reports whether a method of t is visible only through promotion
// from an embedded field rather than declared on t itself. Reflection does
// not record the declaring type, so this is inferred from the embedded
// fields' method sets.
func promoted(t reflect.Type, name string) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if _, ok := deref(f.Type).MethodByName(name); ok {
			return true
		}
		if f.Type.Kind() == reflect.Interface {
			if _, ok := f.Type.MethodByName(name); ok {
				return true
			}
		}
	}
	return false
}

func (b *Backend) handle(h graph.Handle) any {
	switch h.(type) {
	case typeHandle, fieldHandle, methodHandle:
		return h
	default:
		panic(fmt.Sprintf("mirror: foreign handle %T", h))
	}
}

func (b *Backend) Classify(h graph.Handle) graph.Kind {
	switch v := b.handle(h).(type) {
	case fieldHandle:
		return graph.KindField
	case methodHandle:
		return graph.KindMethod
	case typeHandle:
		return classifyType(v.t)
	}
	return graph.KindNone
}

func classifyType(t reflect.Type) graph.Kind {
	if t.Kind() == reflect.Pointer {
		return classifyType(t.Elem())
	}
	if t.PkgPath() != "" {
		switch t.Kind() {
		case reflect.Struct:
			return graph.KindStruct
		case reflect.Interface:
			return graph.KindInterface
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return graph.KindEnum
		default:
			return graph.KindClass
		}
	}
	if t.Name() != "" {
		// Predeclared types: int, string, error, ...
		if t.Kind() == reflect.Interface {
			return graph.KindInterface
		}
		return graph.KindStruct
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return graph.KindClass
	case reflect.Interface:
		return graph.KindInterface
	default:
		return graph.KindNone
	}
}

func (b *Backend) FullName(h graph.Handle) string {
	switch v := b.handle(h).(type) {
	case typeHandle:
		return typeName(v.t)
	case fieldHandle:
		return typeName(v.owner) + "." + v.field().Name
	case methodHandle:
		return typeName(v.owner) + "." + v.method().Name
	}
	return ""
}

func (b *Backend) SimpleName(h graph.Handle) string {
	switch v := b.handle(h).(type) {
	case typeHandle:
		if name := simpleTypeName(v.t); name != "" {
			return name
		}
		return typeName(v.t)
	case fieldHandle:
		return v.field().Name
	case methodHandle:
		return v.method().Name
	}
	return ""
}

func (b *Backend) LocalName(h graph.Handle) string {
	switch v := b.handle(h).(type) {
	case typeHandle:
		if name := v.t.Name(); name != "" {
			return name
		}
		return typeName(v.t)
	case fieldHandle:
		return v.field().Name
	case methodHandle:
		return v.method().Name
	}
	return ""
}

func (b *Backend) RegionalName(h graph.Handle) string {
	switch v := b.handle(h).(type) {
	case typeHandle:
		return b.LocalName(h)
	case fieldHandle:
		return simpleTypeName(v.owner) + "." + v.field().Name
	case methodHandle:
		return simpleTypeName(v.owner) + "." + v.method().Name
	}
	return ""
}

func (b *Backend) Namespace(h graph.Handle) string {
	switch v := b.handle(h).(type) {
	case typeHandle:
		return v.t.PkgPath()
	case fieldHandle:
		return v.owner.PkgPath()
	case methodHandle:
		return v.owner.PkgPath()
	}
	return ""
}

func (b *Backend) Facts(h graph.Handle) graph.Facts {
	switch v := b.handle(h).(type) {
	case typeHandle:
		t := deref(v.t)
		if t.PkgPath() == "" && t.Name() != "" {
			return graph.Facts{Accessibility: graph.AccessPublic, IsSystem: true}
		}
		acc := graph.AccessPrivate
		if t.Name() == "" || exported(t.Name()) {
			acc = graph.AccessPublic
		}
		return graph.Facts{
			Accessibility: acc,
			IsSystem:      t.PkgPath() != "" && systemPath(t.PkgPath()),
		}
	case fieldHandle:
		f := v.field()
		acc := graph.AccessPrivate
		if f.IsExported() {
			acc = graph.AccessPublic
		}
		a := acc
		return graph.Facts{
			Accessibility: acc,
			IsSystem:      systemPath(v.owner.PkgPath()),
			Getter:        &a,
			Setter:        &a,
		}
	case methodHandle:
		m := v.method()
		acc := graph.AccessPrivate
		if exported(m.Name) {
			acc = graph.AccessPublic
		}
		a := acc
		return graph.Facts{
			Accessibility: acc,
			IsSystem:      systemPath(v.owner.PkgPath()),
			Getter:        &a,
		}
	}
	return graph.Facts{}
}

func (b *Backend) Attributes(h graph.Handle) []attr.Value {
	fh, ok := b.handle(h).(fieldHandle)
	if !ok {
		return nil
	}
	tag := string(fh.field().Tag)
	if tag == "" {
		return nil
	}
	// Metadata carries no source positions; attribute positions stay unknown.
	return attr.ParseStructTag(tag, attr.Position{})
}

func (b *Backend) Members(h graph.Handle) []graph.Handle {
	th, ok := b.handle(h).(typeHandle)
	if !ok {
		return nil
	}
	t := deref(th.t)
	if t.Name() == "" || t.PkgPath() == "" {
		return nil
	}

	var out []graph.Handle
	if t.Kind() == reflect.Struct {
		baseIdx := baseFieldIndex(t)
		for i := 0; i < t.NumField(); i++ {
			if i == baseIdx {
				continue
			}
			out = append(out, fieldHandle{owner: t, index: i})
		}
	}
	for i := 0; i < t.NumMethod(); i++ {
		if promoted(t, t.Method(i).Name) {
			continue
		}
		out = append(out, methodHandle{owner: t, index: i})
	}
	return out
}

func (b *Backend) Base(h graph.Handle) graph.Handle {
	th, ok := b.handle(h).(typeHandle)
	if !ok {
		return nil
	}
	t := deref(th.t)
	if i := baseFieldIndex(t); i >= 0 {
		return typeHandle{t: deref(t.Field(i).Type)}
	}
	return nil
}

func (b *Backend) Containing(h graph.Handle) graph.Handle {
	switch v := b.handle(h).(type) {
	case fieldHandle:
		return typeHandle{t: v.owner}
	case methodHandle:
		return typeHandle{t: v.owner}
	}
	return nil
}

func (b *Backend) TypeOf(h graph.Handle) graph.Handle {
	switch v := b.handle(h).(type) {
	case fieldHandle:
		return typeHandle{t: deref(v.field().Type)}
	case methodHandle:
		mt := v.method().Type
		if mt.NumOut() != 1 {
			return nil
		}
		return typeHandle{t: deref(mt.Out(0))}
	}
	return nil
}

func (b *Backend) Interfaces(h graph.Handle) []graph.Handle {
	th, ok := b.handle(h).(typeHandle)
	if !ok {
		return nil
	}
	seen := make(map[reflect.Type]bool)
	var out []graph.Handle
	collectInterfaces(deref(th.t), seen, &out)
	return out
}

// collectInterfaces gathers named interfaces reachable through struct
// embedding. Reflection flattens interface-to-interface embedding, so an
// interface's own embeddeds are not recoverable here.
func collectInterfaces(t reflect.Type, seen map[reflect.Type]bool, out *[]graph.Handle) {
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := deref(f.Type)
		if ft.Kind() == reflect.Interface && ft.Name() != "" {
			if !seen[ft] {
				seen[ft] = true
				*out = append(*out, graph.Handle(typeHandle{t: ft}))
			}
			continue
		}
		if ft.Kind() == reflect.Struct {
			collectInterfaces(ft, seen, out)
		}
	}
}

func (b *Backend) GenericsKind(h graph.Handle) graph.GenericsKind {
	th, ok := b.handle(h).(typeHandle)
	if !ok {
		return graph.NotGeneric
	}
	// Reflection only ever sees instantiated generics, recognizable by the
	// bracketed name suffix. Their arguments are not recoverable.
	if strings.IndexByte(deref(th.t).Name(), '[') >= 0 {
		return graph.ClosedGeneric
	}
	return graph.NotGeneric
}

func (b *Backend) GenericArguments(h graph.Handle) []graph.Handle {
	return nil
}

func (b *Backend) OriginalDefinition(h graph.Handle) graph.Handle {
	return nil
}

func (b *Backend) ArrayInfo(h graph.Handle) (graph.Handle, int) {
	th, ok := b.handle(h).(typeHandle)
	if !ok {
		return nil, 0
	}
	t := deref(th.t)
	rank := 0
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		rank++
		t = t.Elem()
	}
	if rank == 0 {
		return nil, 0
	}
	return typeHandle{t: t}, rank
}

func (b *Backend) EnumUnderlying(h graph.Handle) graph.Handle {
	th, ok := b.handle(h).(typeHandle)
	if !ok {
		return nil
	}
	t := deref(th.t)
	if t.PkgPath() == "" {
		return nil
	}
	if under, ok := integerKinds[t.Kind()]; ok {
		return typeHandle{t: under}
	}
	return nil
}

var integerKinds = map[reflect.Kind]reflect.Type{
	reflect.Int:     reflect.TypeOf(int(0)),
	reflect.Int8:    reflect.TypeOf(int8(0)),
	reflect.Int16:   reflect.TypeOf(int16(0)),
	reflect.Int32:   reflect.TypeOf(int32(0)),
	reflect.Int64:   reflect.TypeOf(int64(0)),
	reflect.Uint:    reflect.TypeOf(uint(0)),
	reflect.Uint8:   reflect.TypeOf(uint8(0)),
	reflect.Uint16:  reflect.TypeOf(uint16(0)),
	reflect.Uint32:  reflect.TypeOf(uint32(0)),
	reflect.Uint64:  reflect.TypeOf(uint64(0)),
	reflect.Uintptr: reflect.TypeOf(uintptr(0)),
}

func (b *Backend) MethodParameters(h graph.Handle) []graph.Handle {
	mh, ok := b.handle(h).(methodHandle)
	if !ok {
		return nil
	}
	mt := mh.method().Type
	start := 0
	if mh.owner.Kind() != reflect.Interface {
		start = 1 // skip the receiver
	}
	var out []graph.Handle
	for i := start; i < mt.NumIn(); i++ {
		out = append(out, graph.Handle(typeHandle{t: mt.In(i)}))
	}
	return out
}

func (b *Backend) Nullability(h graph.Handle) graph.Nullability {
	switch v := b.handle(h).(type) {
	case typeHandle:
		return graph.NullabilityNotAnnotated
	case fieldHandle:
		if v.field().Type.Kind() == reflect.Pointer {
			return graph.NullabilityAnnotated
		}
		return graph.NullabilityNotAnnotated
	case methodHandle:
		mt := v.method().Type
		if mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Pointer {
			return graph.NullabilityAnnotated
		}
		return graph.NullabilityNotAnnotated
	}
	return graph.NullabilityUnknown
}

func (b *Backend) ArgumentNullability(h graph.Handle, index int) graph.Nullability {
	return graph.NullabilityUnknown
}

func (b *Backend) Position(h graph.Handle) attr.Position {
	// Metadata has no location data: positions are always unknown.
	return attr.Position{}
}

var _ graph.Backend = (*Backend)(nil)
