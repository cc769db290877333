package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"typegraph/internal/attr"
	"typegraph/internal/graph"
)

// typeHandle wraps a declared type.
type typeHandle struct {
	pkg  *Package
	decl *typeDecl
}

// refHandle wraps a type reference by its source text, pointer prefix already
// stripped. References to declared types never appear as refHandles; resolve
// turns those into typeHandles.
type refHandle struct {
	pkg  *Package
	text string
}

type fieldHandle struct {
	pkg   *Package
	owner *typeDecl
	f     *fieldDecl
}

type methodHandle struct {
	pkg   *Package
	owner *typeDecl
	m     *methodDecl
}

type typeParamHandle struct {
	pkg  *Package
	name string
}

// Backend serves engine handles out of a parsed declaration table.
type Backend struct {
	pkg *Package
}

func (b *Backend) check(h graph.Handle) graph.Handle {
	switch h.(type) {
	case typeHandle, refHandle, fieldHandle, methodHandle, typeParamHandle:
		return h
	default:
		panic(fmt.Sprintf("syntax: foreign handle %T", h))
	}
}

func exported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// resolve turns a type reference text into a handle: pointer prefixes are
// stripped (they live in the nullability channel), declared names become type
// handles, everything else stays a reference.
func (b *Backend) resolve(text string) graph.Handle {
	text = strings.TrimSpace(text)
	for strings.HasPrefix(text, "*") {
		text = text[1:]
	}
	if text == "" {
		return nil
	}
	if d, ok := b.pkg.decls[text]; ok {
		return typeHandle{pkg: b.pkg, decl: d}
	}
	return refHandle{pkg: b.pkg, text: text}
}

// instantiation splits "Name[a,b]" into its base name and argument texts;
// ok is false for anything else, including slice types.
func instantiation(text string) (base string, args []string, ok bool) {
	i := strings.IndexByte(text, '[')
	if i <= 0 || !strings.HasSuffix(text, "]") {
		return "", nil, false
	}
	return text[:i], splitTopLevel(text[i+1 : len(text)-1]), true
}

// splitTopLevel splits on commas outside any bracket nesting.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// refFullName renders a reference text as a fully qualified name, resolving
// local names against the package path and qualified names against the file's
// imports. Unresolvable texts pass through verbatim.
func (b *Backend) refFullName(text string) string {
	text = strings.TrimSpace(text)
	for strings.HasPrefix(text, "*") {
		text = text[1:]
	}
	if strings.HasPrefix(text, "[]") {
		return "[]" + b.refFullName(text[2:])
	}
	if _, ok := graph.IsPrimitiveName(text); ok {
		return text
	}
	if base, args, ok := instantiation(text); ok {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = b.refFullName(a)
		}
		return b.refFullName(base) + "[" + strings.Join(parts, ",") + "]"
	}
	if pkg, name, ok := strings.Cut(text, "."); ok {
		if path, known := b.pkg.imports[pkg]; known {
			return path + "." + name
		}
		return text
	}
	if _, ok := b.pkg.decls[text]; ok {
		return b.pkg.path + "." + text
	}
	return text
}

func (b *Backend) Classify(h graph.Handle) graph.Kind {
	switch v := b.check(h).(type) {
	case typeHandle:
		return v.decl.kind
	case fieldHandle:
		return graph.KindField
	case methodHandle:
		return graph.KindMethod
	case typeParamHandle:
		return graph.KindTypeParameter
	case refHandle:
		return classifyRef(v.text)
	}
	return graph.KindNone
}

func classifyRef(text string) graph.Kind {
	switch {
	case text == "any" || text == "error":
		return graph.KindInterface
	case strings.HasPrefix(text, "[]"), strings.HasPrefix(text, "map["),
		strings.HasPrefix(text, "chan "):
		return graph.KindClass
	case strings.HasPrefix(text, "func("), strings.HasPrefix(text, "func "):
		return graph.KindNone
	case strings.HasPrefix(text, "interface{"), strings.HasPrefix(text, "struct{"):
		return graph.KindNone
	}
	if _, ok := graph.IsPrimitiveName(text); ok {
		return graph.KindStruct
	}
	// A named reference the table cannot resolve: the underlying shape is a
	// semantic fact, so the classification stays at the generic class kind.
	return graph.KindClass
}

func (b *Backend) FullName(h graph.Handle) string {
	switch v := b.check(h).(type) {
	case typeHandle:
		return v.pkg.path + "." + v.decl.name
	case refHandle:
		return b.refFullName(v.text)
	case fieldHandle:
		return v.pkg.path + "." + v.owner.name + "." + v.f.name
	case methodHandle:
		return v.pkg.path + "." + v.owner.name + "." + v.m.name
	case typeParamHandle:
		return v.name
	}
	return ""
}

func (b *Backend) SimpleName(h graph.Handle) string {
	switch v := b.check(h).(type) {
	case typeHandle:
		return v.decl.name
	case refHandle:
		if base, _, ok := instantiation(v.text); ok {
			return embeddedName(base)
		}
		return b.refFullName(v.text)
	case fieldHandle:
		return v.f.name
	case methodHandle:
		return v.m.name
	case typeParamHandle:
		return v.name
	}
	return ""
}

func (b *Backend) LocalName(h graph.Handle) string {
	switch v := b.check(h).(type) {
	case typeHandle:
		if len(v.decl.typeParams) > 0 {
			return v.decl.name + "[" + strings.Join(v.decl.typeParams, ",") + "]"
		}
		return v.decl.name
	case refHandle:
		if base, args, ok := instantiation(v.text); ok {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = b.refFullName(a)
			}
			return embeddedName(base) + "[" + strings.Join(parts, ",") + "]"
		}
		return b.refFullName(v.text)
	default:
		return b.SimpleName(h)
	}
}

func (b *Backend) RegionalName(h graph.Handle) string {
	switch v := b.check(h).(type) {
	case fieldHandle:
		return v.owner.name + "." + v.f.name
	case methodHandle:
		return v.owner.name + "." + v.m.name
	default:
		return b.LocalName(h)
	}
}

func (b *Backend) Namespace(h graph.Handle) string {
	switch v := b.check(h).(type) {
	case typeHandle:
		return v.pkg.path
	case fieldHandle:
		return v.pkg.path
	case methodHandle:
		return v.pkg.path
	case refHandle:
		if pkg, _, ok := strings.Cut(v.text, "."); ok {
			if path, known := v.pkg.imports[pkg]; known {
				return path
			}
		}
		return ""
	}
	return ""
}

func (b *Backend) Facts(h graph.Handle) graph.Facts {
	switch v := b.check(h).(type) {
	case typeHandle:
		acc := graph.AccessPrivate
		if exported(v.decl.name) {
			acc = graph.AccessPublic
		}
		return graph.Facts{Accessibility: acc}
	case refHandle:
		return refFacts(b, v.text)
	case fieldHandle:
		acc := graph.AccessPrivate
		if exported(v.f.name) {
			acc = graph.AccessPublic
		}
		a := acc
		return graph.Facts{Accessibility: acc, Getter: &a, Setter: &a}
	case methodHandle:
		acc := graph.AccessPrivate
		if exported(v.m.name) {
			acc = graph.AccessPublic
		}
		a := acc
		return graph.Facts{Accessibility: acc, Getter: &a}
	case typeParamHandle:
		return graph.Facts{Accessibility: graph.AccessPublic}
	}
	return graph.Facts{}
}

func refFacts(b *Backend, text string) graph.Facts {
	if _, ok := graph.IsPrimitiveName(text); ok {
		return graph.Facts{Accessibility: graph.AccessPublic, IsSystem: true}
	}
	if pkg, name, ok := strings.Cut(text, "."); ok {
		f := graph.Facts{Accessibility: graph.AccessPrivate}
		if exported(name) {
			f.Accessibility = graph.AccessPublic
		}
		if path, known := b.pkg.imports[pkg]; known {
			f.IsSystem = graph.IsSystemPackagePath(path)
		}
		return f
	}
	return graph.Facts{Accessibility: graph.AccessPublic}
}

func (b *Backend) Attributes(h graph.Handle) []attr.Value {
	fh, ok := b.check(h).(fieldHandle)
	if !ok || fh.f.tag == "" {
		return nil
	}
	return attr.ParseStructTag(fh.f.tag, fh.f.pos)
}

func (b *Backend) Members(h graph.Handle) []graph.Handle {
	th, ok := b.check(h).(typeHandle)
	if !ok {
		return nil
	}
	d := th.decl
	baseIdx := b.baseFieldIndex(d)
	var out []graph.Handle
	for i, f := range d.fields {
		if i == baseIdx {
			continue
		}
		out = append(out, fieldHandle{pkg: th.pkg, owner: d, f: f})
	}
	for _, m := range d.methods {
		out = append(out, methodHandle{pkg: th.pkg, owner: d, m: m})
	}
	return out
}

// baseFieldIndex picks the embedded field that plays the base-type role: the
// first one whose type resolves to a declared struct or interface. Embedded
// foreign types stay ordinary members; syntax alone cannot vouch for their
// shape.
func (b *Backend) baseFieldIndex(d *typeDecl) int {
	for i, f := range d.fields {
		if !f.embedded {
			continue
		}
		if h, ok := b.resolve(f.typeText).(typeHandle); ok {
			switch h.decl.kind {
			case graph.KindStruct, graph.KindInterface:
				return i
			}
		}
	}
	return -1
}

func (b *Backend) Base(h graph.Handle) graph.Handle {
	th, ok := b.check(h).(typeHandle)
	if !ok {
		return nil
	}
	d := th.decl
	if d.kind == graph.KindInterface {
		for _, e := range d.embedded {
			if eh, ok := b.resolve(e).(typeHandle); ok {
				return eh
			}
		}
		return nil
	}
	if i := b.baseFieldIndex(d); i >= 0 {
		return b.resolve(d.fields[i].typeText)
	}
	return nil
}

func (b *Backend) Containing(h graph.Handle) graph.Handle {
	switch v := b.check(h).(type) {
	case fieldHandle:
		return typeHandle{pkg: v.pkg, decl: v.owner}
	case methodHandle:
		return typeHandle{pkg: v.pkg, decl: v.owner}
	}
	return nil
}

func (b *Backend) TypeOf(h graph.Handle) graph.Handle {
	switch v := b.check(h).(type) {
	case fieldHandle:
		return b.resolve(v.f.typeText)
	case methodHandle:
		return b.resolve(singleResult(v.m.resultText))
	}
	return nil
}

// singleResult narrows a result clause to its lone type text, empty when the
// method returns nothing or more than one value.
func singleResult(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		inner := splitTopLevel(text[1 : len(text)-1])
		if len(inner) != 1 {
			return ""
		}
		// A lone parenthesized result may still carry a name.
		parts := strings.Fields(inner[0])
		return parts[len(parts)-1]
	}
	return text
}

func (b *Backend) Interfaces(h graph.Handle) []graph.Handle {
	th, ok := b.check(h).(typeHandle)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []graph.Handle
	b.collectInterfaces(th.decl, seen, &out)
	return out
}

func (b *Backend) collectInterfaces(d *typeDecl, seen map[string]bool, out *[]graph.Handle) {
	addRef := func(text string) {
		h := b.resolve(text)
		name := b.FullName(h)
		if name == "" || seen[name] {
			return
		}
		if th, ok := h.(typeHandle); ok {
			if th.decl.kind != graph.KindInterface {
				return
			}
			seen[name] = true
			*out = append(*out, h)
			b.collectInterfaces(th.decl, seen, out)
			return
		}
		// Foreign reference: recorded by name, nothing further to walk.
		seen[name] = true
		*out = append(*out, h)
	}

	if d.kind == graph.KindInterface {
		for _, e := range d.embedded {
			addRef(e)
		}
		return
	}
	for _, f := range d.fields {
		if !f.embedded {
			continue
		}
		if th, ok := b.resolve(f.typeText).(typeHandle); ok && th.decl.kind == graph.KindStruct {
			b.collectInterfaces(th.decl, seen, out)
			continue
		}
		addRef(f.typeText)
	}
}

func (b *Backend) GenericsKind(h graph.Handle) graph.GenericsKind {
	switch v := b.check(h).(type) {
	case typeHandle:
		if len(v.decl.typeParams) > 0 {
			return graph.OpenGeneric
		}
		return graph.NotGeneric
	case typeParamHandle:
		return graph.OpenGeneric
	case refHandle:
		if _, _, ok := instantiation(v.text); ok {
			return graph.ClosedGeneric
		}
		return graph.NotGeneric
	}
	return graph.NotGeneric
}

func (b *Backend) GenericArguments(h graph.Handle) []graph.Handle {
	switch v := b.check(h).(type) {
	case typeHandle:
		out := make([]graph.Handle, 0, len(v.decl.typeParams))
		for _, name := range v.decl.typeParams {
			out = append(out, graph.Handle(typeParamHandle{pkg: v.pkg, name: name}))
		}
		return out
	case refHandle:
		_, args, ok := instantiation(v.text)
		if !ok {
			return nil
		}
		out := make([]graph.Handle, 0, len(args))
		for _, a := range args {
			if ah := b.resolve(a); ah != nil {
				out = append(out, ah)
			}
		}
		return out
	}
	return nil
}

func (b *Backend) OriginalDefinition(h graph.Handle) graph.Handle {
	v, ok := b.check(h).(refHandle)
	if !ok {
		return nil
	}
	base, _, ok := instantiation(v.text)
	if !ok {
		return nil
	}
	return b.resolve(base)
}

func (b *Backend) ArrayInfo(h graph.Handle) (graph.Handle, int) {
	v, ok := b.check(h).(refHandle)
	if !ok {
		return nil, 0
	}
	text, rank := v.text, 0
	for strings.HasPrefix(text, "[]") {
		rank++
		text = text[2:]
	}
	if rank == 0 {
		return nil, 0
	}
	return b.resolve(text), rank
}

func (b *Backend) EnumUnderlying(h graph.Handle) graph.Handle {
	th, ok := b.check(h).(typeHandle)
	if !ok || th.decl.kind != graph.KindEnum {
		return nil
	}
	return b.resolve(th.decl.underlying)
}

func (b *Backend) MethodParameters(h graph.Handle) []graph.Handle {
	mh, ok := b.check(h).(methodHandle)
	if !ok {
		return nil
	}
	out := make([]graph.Handle, 0, len(mh.m.paramTypes))
	for _, t := range mh.m.paramTypes {
		if ph := b.resolve(t); ph != nil {
			out = append(out, ph)
		}
	}
	return out
}

func (b *Backend) Nullability(h graph.Handle) graph.Nullability {
	switch v := b.check(h).(type) {
	case fieldHandle:
		if strings.HasPrefix(strings.TrimSpace(v.f.typeText), "*") {
			return graph.NullabilityAnnotated
		}
		return graph.NullabilityNotAnnotated
	case methodHandle:
		if strings.HasPrefix(singleResult(v.m.resultText), "*") {
			return graph.NullabilityAnnotated
		}
		return graph.NullabilityNotAnnotated
	case typeHandle, refHandle, typeParamHandle:
		return graph.NullabilityNotAnnotated
	}
	return graph.NullabilityUnknown
}

func (b *Backend) ArgumentNullability(h graph.Handle, index int) graph.Nullability {
	v, ok := b.check(h).(refHandle)
	if !ok {
		return graph.NullabilityUnknown
	}
	_, args, ok := instantiation(v.text)
	if !ok || index < 0 || index >= len(args) {
		return graph.NullabilityUnknown
	}
	if strings.HasPrefix(args[index], "*") {
		return graph.NullabilityAnnotated
	}
	return graph.NullabilityNotAnnotated
}

func (b *Backend) Position(h graph.Handle) attr.Position {
	switch v := b.check(h).(type) {
	case typeHandle:
		return v.decl.pos
	case fieldHandle:
		return v.f.pos
	case methodHandle:
		return v.m.pos
	}
	return attr.Position{}
}

var _ graph.Backend = (*Backend)(nil)
