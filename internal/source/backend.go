package source

import (
	"fmt"
	"go/token"
	"go/types"
	"strings"

	"typegraph/internal/attr"
	"typegraph/internal/graph"
)

// Backend adapts the go/types semantic model to the engine's adapter
// contract. Handles are produced by a Loader (or taken from any type-checked
// package) and answered purely from checker output; no source re-parsing
// happens here.
//
// Go mappings: struct → Struct, interface → Interface, named type with an
// integer underlying → Enum, other named types → Class, type parameters →
// TypeParameter; the nearest embedded named type plays the base role, and
// pointer-ness at a use site becomes the nullability annotation.
type Backend struct {
	fset *token.FileSet
}

// NewBackend creates a source backend. The file set is used only for source
// positions and may be nil, in which case positions are unknown.
func NewBackend(fset *token.FileSet) *Backend {
	return &Backend{fset: fset}
}

// TypeHandle wraps a checked type as an engine handle.
func (b *Backend) TypeHandle(t types.Type) graph.Handle {
	if t == nil {
		return nil
	}
	return typeHandle{t: t}
}

func pathQualifier(p *types.Package) string {
	return p.Path()
}

func typeName(t types.Type) string {
	s := types.TypeString(t, pathQualifier)
	if s == "interface{}" {
		return "any"
	}
	return s
}

func (b *Backend) Classify(h graph.Handle) graph.Kind {
	th, mh, isType := b.anyHandle(h)
	if !isType {
		switch mh.obj.(type) {
		case *types.Var:
			return graph.KindField
		case *types.Func:
			return graph.KindMethod
		default:
			return graph.KindNone
		}
	}
	return classifyType(th.t)
}

func classifyType(t types.Type) graph.Kind {
	switch tt := types.Unalias(t).(type) {
	case *types.TypeParam:
		return graph.KindTypeParameter
	case *types.Named:
		switch under := tt.Underlying().(type) {
		case *types.Struct:
			return graph.KindStruct
		case *types.Interface:
			return graph.KindInterface
		case *types.Basic:
			if under.Info()&types.IsInteger != 0 {
				return graph.KindEnum
			}
			return graph.KindClass
		default:
			return graph.KindClass
		}
	case *types.Basic:
		if tt.Kind() == types.Invalid {
			return graph.KindNone
		}
		return graph.KindStruct
	case *types.Interface:
		return graph.KindInterface
	case *types.Slice, *types.Array, *types.Map, *types.Chan:
		return graph.KindClass
	case *types.Pointer:
		return classifyType(tt.Elem())
	default:
		// Signatures, tuples, anonymous structs: unsupported constructs
		// intern as None and vanish from member queries.
		return graph.KindNone
	}
}

func (b *Backend) FullName(h graph.Handle) string {
	th, mh, isType := b.anyHandle(h)
	if !isType {
		return typeName(mh.owner) + "." + mh.obj.Name()
	}
	return typeName(th.t)
}

func (b *Backend) SimpleName(h graph.Handle) string {
	th, mh, isType := b.anyHandle(h)
	if !isType {
		return mh.obj.Name()
	}
	if named, ok := types.Unalias(th.t).(*types.Named); ok {
		return named.Obj().Name()
	}
	return typeName(th.t)
}

func (b *Backend) LocalName(h graph.Handle) string {
	th, mh, isType := b.anyHandle(h)
	if !isType {
		return mh.obj.Name()
	}
	named, ok := types.Unalias(th.t).(*types.Named)
	if !ok {
		return typeName(th.t)
	}
	name := named.Obj().Name()
	if args := named.TypeArgs(); args != nil && args.Len() > 0 {
		parts := make([]string, args.Len())
		for i := 0; i < args.Len(); i++ {
			parts[i] = typeName(args.At(i))
		}
		return name + "[" + strings.Join(parts, ",") + "]"
	}
	if params := named.TypeParams(); params != nil && params.Len() > 0 {
		parts := make([]string, params.Len())
		for i := 0; i < params.Len(); i++ {
			parts[i] = params.At(i).Obj().Name()
		}
		return name + "[" + strings.Join(parts, ",") + "]"
	}
	return name
}

func (b *Backend) RegionalName(h graph.Handle) string {
	th, mh, isType := b.anyHandle(h)
	if !isType {
		return mh.owner.Obj().Name() + "." + mh.obj.Name()
	}
	// Go has no nested named types; the regional name collapses to the
	// local one.
	_ = th
	return b.LocalName(h)
}

func (b *Backend) Namespace(h graph.Handle) string {
	th, mh, isType := b.anyHandle(h)
	if !isType {
		if pkg := mh.obj.Pkg(); pkg != nil {
			return pkg.Path()
		}
		return ""
	}
	if named, ok := types.Unalias(th.t).(*types.Named); ok {
		if pkg := named.Obj().Pkg(); pkg != nil {
			return pkg.Path()
		}
	}
	return ""
}

// systemPackage reports whether a package belongs to the platform: the
// universe scope or the standard library. The rule is shared with the mirror
// backend so the system flag stays backend-equivalent.
func systemPackage(pkg *types.Package) bool {
	if pkg == nil {
		return true
	}
	return graph.IsSystemPackagePath(pkg.Path())
}

func (b *Backend) Facts(h graph.Handle) graph.Facts {
	th, mh, isType := b.anyHandle(h)
	if !isType {
		acc := graph.AccessPrivate
		if mh.obj.Exported() {
			acc = graph.AccessPublic
		}
		f := graph.Facts{
			Accessibility: acc,
			IsSystem:      systemPackage(mh.obj.Pkg()),
		}
		switch mh.obj.(type) {
		case *types.Var:
			a := acc
			f.Getter, f.Setter = &a, &a
		case *types.Func:
			a := acc
			f.Getter = &a
		}
		return f
	}

	switch tt := types.Unalias(th.t).(type) {
	case *types.Named:
		obj := tt.Obj()
		acc := graph.AccessPrivate
		if obj.Exported() {
			acc = graph.AccessPublic
		}
		return graph.Facts{
			Accessibility: acc,
			IsSystem:      systemPackage(obj.Pkg()),
		}
	case *types.Basic:
		return graph.Facts{Accessibility: graph.AccessPublic, IsSystem: true}
	case *types.Tuple:
		return graph.Facts{IsTuple: true}
	default:
		return graph.Facts{Accessibility: graph.AccessPublic}
	}
}

func (b *Backend) Attributes(h graph.Handle) []attr.Value {
	_, mh, isType := b.anyHandle(h)
	if isType || mh.tag == "" {
		return nil
	}
	return attr.ParseStructTag(mh.tag, b.Position(h))
}

func (b *Backend) Members(h graph.Handle) []graph.Handle {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return nil
	}
	named, ok := types.Unalias(th.t).(*types.Named)
	if !ok {
		return nil
	}

	var out []graph.Handle
	baseIdx := -1
	switch under := named.Underlying().(type) {
	case *types.Struct:
		baseIdx = embeddedBaseIndex(under)
		for i := 0; i < under.NumFields(); i++ {
			if i == baseIdx {
				continue // surfaced as the base, not as a member
			}
			out = append(out, memberHandle{obj: under.Field(i), owner: named, tag: under.Tag(i)})
		}
	case *types.Interface:
		for i := 0; i < under.NumExplicitMethods(); i++ {
			out = append(out, memberHandle{obj: under.ExplicitMethod(i), owner: named})
		}
	}

	// Named.Method enumerates only methods declared at this level, which is
	// exactly what the engine's base-chain walk needs.
	for i := 0; i < named.NumMethods(); i++ {
		out = append(out, memberHandle{obj: named.Method(i), owner: named})
	}
	return out
}

// embeddedBaseIndex picks the field that plays the base-type role: the first
// embedded named struct or interface.
func embeddedBaseIndex(st *types.Struct) int {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		t := types.Unalias(derefType(f.Type()))
		if named, ok := t.(*types.Named); ok {
			switch named.Underlying().(type) {
			case *types.Struct, *types.Interface:
				return i
			}
		}
	}
	return -1
}

func derefType(t types.Type) types.Type {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}

func (b *Backend) Base(h graph.Handle) graph.Handle {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return nil
	}
	named, ok := types.Unalias(th.t).(*types.Named)
	if !ok {
		return nil
	}
	switch under := named.Underlying().(type) {
	case *types.Struct:
		if i := embeddedBaseIndex(under); i >= 0 {
			return typeHandle{t: derefType(under.Field(i).Type())}
		}
	case *types.Interface:
		if under.NumEmbeddeds() > 0 {
			if base := types.Unalias(under.EmbeddedType(0)); base != nil {
				if _, ok := base.(*types.Named); ok {
					return typeHandle{t: base}
				}
			}
		}
	}
	return nil
}

func (b *Backend) Containing(h graph.Handle) graph.Handle {
	_, mh, isType := b.anyHandle(h)
	if isType {
		return nil
	}
	return typeHandle{t: mh.owner}
}

func (b *Backend) TypeOf(h graph.Handle) graph.Handle {
	_, mh, isType := b.anyHandle(h)
	if isType {
		return nil
	}
	switch obj := mh.obj.(type) {
	case *types.Var:
		return typeHandle{t: derefType(obj.Type())}
	case *types.Func:
		sig, ok := obj.Type().(*types.Signature)
		if !ok {
			return nil
		}
		switch sig.Results().Len() {
		case 0:
			return nil
		case 1:
			return typeHandle{t: derefType(sig.Results().At(0).Type())}
		default:
			return typeHandle{t: sig.Results()}
		}
	}
	return nil
}

func (b *Backend) Interfaces(h graph.Handle) []graph.Handle {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return nil
	}
	seen := make(map[*types.Named]bool)
	var out []graph.Handle
	collectInterfaces(th.t, seen, &out)
	return out
}

// collectInterfaces walks embedded types transitively, gathering every named
// interface reachable through embedding.
func collectInterfaces(t types.Type, seen map[*types.Named]bool, out *[]graph.Handle) {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return
	}
	switch under := named.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < under.NumFields(); i++ {
			f := under.Field(i)
			if !f.Embedded() {
				continue
			}
			et := types.Unalias(derefType(f.Type()))
			en, ok := et.(*types.Named)
			if !ok {
				continue
			}
			if _, isIface := en.Underlying().(*types.Interface); isIface {
				addInterface(en, seen, out)
			} else {
				collectInterfaces(en, seen, out)
			}
		}
	case *types.Interface:
		for i := 0; i < under.NumEmbeddeds(); i++ {
			if en, ok := types.Unalias(under.EmbeddedType(i)).(*types.Named); ok {
				addInterface(en, seen, out)
			}
		}
	}
}

func addInterface(n *types.Named, seen map[*types.Named]bool, out *[]graph.Handle) {
	if seen[n] {
		return
	}
	seen[n] = true
	*out = append(*out, graph.Handle(typeHandle{t: n}))
	collectInterfaces(n, seen, out)
}

func (b *Backend) GenericsKind(h graph.Handle) graph.GenericsKind {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return graph.NotGeneric
	}
	switch tt := types.Unalias(th.t).(type) {
	case *types.TypeParam:
		return graph.OpenGeneric
	case *types.Named:
		if args := tt.TypeArgs(); args != nil && args.Len() > 0 {
			for i := 0; i < args.Len(); i++ {
				if containsTypeParam(args.At(i)) {
					return graph.OpenGeneric
				}
			}
			return graph.ClosedGeneric
		}
		if params := tt.TypeParams(); params != nil && params.Len() > 0 {
			return graph.OpenGeneric
		}
	}
	return graph.NotGeneric
}

func containsTypeParam(t types.Type) bool {
	switch tt := types.Unalias(t).(type) {
	case *types.TypeParam:
		return true
	case *types.Pointer:
		return containsTypeParam(tt.Elem())
	case *types.Slice:
		return containsTypeParam(tt.Elem())
	case *types.Array:
		return containsTypeParam(tt.Elem())
	case *types.Map:
		return containsTypeParam(tt.Key()) || containsTypeParam(tt.Elem())
	case *types.Chan:
		return containsTypeParam(tt.Elem())
	case *types.Named:
		if args := tt.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				if containsTypeParam(args.At(i)) {
					return true
				}
			}
		}
	}
	return false
}

func (b *Backend) GenericArguments(h graph.Handle) []graph.Handle {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return nil
	}
	named, ok := types.Unalias(th.t).(*types.Named)
	if !ok {
		return nil
	}
	if args := named.TypeArgs(); args != nil && args.Len() > 0 {
		out := make([]graph.Handle, args.Len())
		for i := 0; i < args.Len(); i++ {
			out[i] = typeHandle{t: derefType(args.At(i))}
		}
		return out
	}
	if params := named.TypeParams(); params != nil && params.Len() > 0 {
		out := make([]graph.Handle, params.Len())
		for i := 0; i < params.Len(); i++ {
			out[i] = typeHandle{t: params.At(i)}
		}
		return out
	}
	return nil
}

func (b *Backend) OriginalDefinition(h graph.Handle) graph.Handle {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return nil
	}
	named, ok := types.Unalias(th.t).(*types.Named)
	if !ok {
		return nil
	}
	if args := named.TypeArgs(); args != nil && args.Len() > 0 {
		return typeHandle{t: named.Origin()}
	}
	return nil
}

func (b *Backend) ArrayInfo(h graph.Handle) (graph.Handle, int) {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return nil, 0
	}
	t := types.Unalias(th.t)
	rank := 0
	for {
		switch tt := t.(type) {
		case *types.Slice:
			rank++
			t = types.Unalias(tt.Elem())
		case *types.Array:
			rank++
			t = types.Unalias(tt.Elem())
		default:
			if rank == 0 {
				return nil, 0
			}
			return typeHandle{t: t}, rank
		}
	}
}

func (b *Backend) EnumUnderlying(h graph.Handle) graph.Handle {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return nil
	}
	named, ok := types.Unalias(th.t).(*types.Named)
	if !ok {
		return nil
	}
	if basic, ok := named.Underlying().(*types.Basic); ok && basic.Info()&types.IsInteger != 0 {
		return typeHandle{t: basic}
	}
	return nil
}

func (b *Backend) MethodParameters(h graph.Handle) []graph.Handle {
	_, mh, isType := b.anyHandle(h)
	if isType {
		return nil
	}
	fn, ok := mh.obj.(*types.Func)
	if !ok {
		return nil
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return nil
	}
	params := sig.Params()
	out := make([]graph.Handle, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		out = append(out, graph.Handle(typeHandle{t: params.At(i).Type()}))
	}
	return out
}

func (b *Backend) Nullability(h graph.Handle) graph.Nullability {
	_, mh, isType := b.anyHandle(h)
	if isType {
		return graph.NullabilityNotAnnotated
	}
	if v, ok := mh.obj.(*types.Var); ok {
		if _, isPtr := types.Unalias(v.Type()).(*types.Pointer); isPtr {
			return graph.NullabilityAnnotated
		}
		return graph.NullabilityNotAnnotated
	}
	if fn, ok := mh.obj.(*types.Func); ok {
		if sig, ok := fn.Type().(*types.Signature); ok && sig.Results().Len() == 1 {
			if _, isPtr := types.Unalias(sig.Results().At(0).Type()).(*types.Pointer); isPtr {
				return graph.NullabilityAnnotated
			}
		}
		return graph.NullabilityNotAnnotated
	}
	return graph.NullabilityUnknown
}

func (b *Backend) ArgumentNullability(h graph.Handle, index int) graph.Nullability {
	th, _, isType := b.anyHandle(h)
	if !isType {
		return graph.NullabilityUnknown
	}
	named, ok := types.Unalias(th.t).(*types.Named)
	if !ok {
		return graph.NullabilityUnknown
	}
	args := named.TypeArgs()
	if args == nil || index < 0 || index >= args.Len() {
		return graph.NullabilityUnknown
	}
	if _, isPtr := types.Unalias(args.At(index)).(*types.Pointer); isPtr {
		return graph.NullabilityAnnotated
	}
	return graph.NullabilityNotAnnotated
}

func (b *Backend) Position(h graph.Handle) attr.Position {
	if b.fset == nil {
		return attr.Position{}
	}
	var pos token.Pos
	th, mh, isType := b.anyHandle(h)
	if isType {
		if named, ok := types.Unalias(th.t).(*types.Named); ok {
			pos = named.Obj().Pos()
		}
	} else {
		pos = mh.obj.Pos()
	}
	if !pos.IsValid() {
		return attr.Position{}
	}
	p := b.fset.Position(pos)
	return attr.Position{File: p.Filename, Line: p.Line, Column: p.Column}
}

var _ graph.Backend = (*Backend)(nil)

func (b *Backend) String() string {
	return fmt.Sprintf("source backend (%d files)", fileCount(b.fset))
}

func fileCount(fset *token.FileSet) int {
	if fset == nil {
		return 0
	}
	n := 0
	fset.Iterate(func(*token.File) bool {
		n++
		return true
	})
	return n
}
