// Package syntax adapts a tree-sitter parse tree to the engine's adapter
// contract. It exists for sources that do not type-check: everything here is
// derived from syntax alone, so the backend answers what the tree shows
// (kinds, names, exported-ness, the embedded base, struct tags, use-site
// pointers) and reports the semantic facts it cannot know as absent.
package syntax

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"typegraph/internal/attr"
	"typegraph/internal/graph"
)

// declQuery captures the declarations the backend serves: named types and
// their methods, plus imports for resolving qualified references.
const declQuery = `
	(type_spec) @type
	(method_declaration) @method
	(import_spec) @import
`

type fieldDecl struct {
	name     string
	typeText string
	tag      string
	embedded bool
	pos      attr.Position
}

type methodDecl struct {
	name       string
	paramTypes []string
	resultText string
	pos        attr.Position
}

type typeDecl struct {
	name       string
	kind       graph.Kind
	typeParams []string
	fields     []*fieldDecl  // struct levels
	methods    []*methodDecl // declared methods; interface elems included
	embedded   []string      // embedded interface texts of an interface
	underlying string        // non-struct, non-interface underlying text
	pos        attr.Position
}

// Package is the parsed declaration table of one directory's worth of files,
// plus the backend that serves handles out of it.
type Package struct {
	path    string
	decls   map[string]*typeDecl
	order   []string
	imports map[string]string // local identifier -> import path
	backend *Backend
}

// Load parses a list of Go files with tree-sitter and builds the declaration
// table. Files that fail to type-check parse fine here; that is the point.
func Load(importPath string, files []string) (*Package, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("syntax load %s: no files", importPath)
	}
	p := &Package{
		path:    importPath,
		decls:   make(map[string]*typeDecl),
		imports: make(map[string]string),
	}
	p.backend = &Backend{pkg: p}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		tree, err := parser.ParseCtx(context.Background(), nil, src)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := p.collect(tree.RootNode(), src, path); err != nil {
			return nil, fmt.Errorf("collect %s: %w", path, err)
		}
	}
	return p, nil
}

// Backend returns the adapter that serves this package's handles.
func (p *Package) Backend() *Backend { return p.backend }

// Path returns the package path used as the namespace.
func (p *Package) Path() string { return p.path }

// TypeHandle looks a declared type up by simple name.
func (p *Package) TypeHandle(name string) (graph.Handle, bool) {
	d, ok := p.decls[name]
	if !ok {
		return nil, false
	}
	return typeHandle{pkg: p, decl: d}, true
}

// TypeHandles returns handles for every declared type, in declaration order.
func (p *Package) TypeHandles() []graph.Handle {
	out := make([]graph.Handle, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, graph.Handle(typeHandle{pkg: p, decl: p.decls[name]}))
	}
	return out
}

func (p *Package) collect(root *sitter.Node, src []byte, file string) error {
	query, err := sitter.NewQuery([]byte(declQuery), golang.GetLanguage())
	if err != nil {
		return fmt.Errorf("declaration query: %w", err)
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(query, root)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "type":
				p.collectType(c.Node, src, file)
			case "method":
				p.collectMethod(c.Node, src, file)
			case "import":
				p.collectImport(c.Node, src)
			}
		}
	}
	return nil
}

func nodePos(n *sitter.Node, file string) attr.Position {
	return attr.Position{
		File:   file,
		Line:   int(n.StartPoint().Row) + 1,
		Column: int(n.StartPoint().Column) + 1,
	}
}

func (p *Package) collectType(node *sitter.Node, src []byte, file string) {
	nameNode := node.ChildByFieldName("name")
	typeNode := node.ChildByFieldName("type")
	if nameNode == nil || typeNode == nil {
		return
	}
	d := &typeDecl{
		name: nameNode.Content(src),
		pos:  nodePos(node, file),
	}
	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		d.typeParams = parameterNames(tp, src)
	}

	switch typeNode.Type() {
	case "struct_type":
		d.kind = graph.KindStruct
		p.collectStructFields(d, typeNode, src, file)
	case "interface_type":
		d.kind = graph.KindInterface
		p.collectInterfaceElems(d, typeNode, src, file)
	default:
		d.underlying = typeNode.Content(src)
		if integerText(d.underlying) {
			d.kind = graph.KindEnum
		} else {
			d.kind = graph.KindClass
		}
	}

	if prev, ok := p.decls[d.name]; ok {
		// A method declaration seen earlier parked a shell for this name;
		// fill the shell in and keep its methods.
		prev.kind = d.kind
		prev.typeParams = d.typeParams
		prev.fields = d.fields
		prev.embedded = d.embedded
		prev.underlying = d.underlying
		prev.pos = d.pos
		return
	}
	p.decls[d.name] = d
	p.order = append(p.order, d.name)
}

func (p *Package) collectStructFields(d *typeDecl, structNode *sitter.Node, src []byte, file string) {
	var fieldList *sitter.Node
	for i := 0; i < int(structNode.ChildCount()); i++ {
		if c := structNode.Child(i); c.Type() == "field_declaration_list" {
			fieldList = c
			break
		}
	}
	if fieldList == nil {
		return
	}

	for i := 0; i < int(fieldList.NamedChildCount()); i++ {
		decl := fieldList.NamedChild(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		typeText := ""
		if tn := decl.ChildByFieldName("type"); tn != nil {
			typeText = tn.Content(src)
		}
		tag := ""
		if tn := decl.ChildByFieldName("tag"); tn != nil {
			tag = strings.Trim(tn.Content(src), "`")
		}

		named := false
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			c := decl.NamedChild(j)
			if c.Type() != "field_identifier" {
				continue
			}
			named = true
			d.fields = append(d.fields, &fieldDecl{
				name:     c.Content(src),
				typeText: typeText,
				tag:      tag,
				pos:      nodePos(c, file),
			})
		}
		if !named && typeText != "" {
			d.fields = append(d.fields, &fieldDecl{
				name:     embeddedName(typeText),
				typeText: typeText,
				tag:      tag,
				embedded: true,
				pos:      nodePos(decl, file),
			})
		}
	}
}

// embeddedName derives the implicit field name of an embedded type: the last
// path segment, pointer and instantiation stripped.
func embeddedName(typeText string) string {
	name := strings.TrimPrefix(typeText, "*")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (p *Package) collectInterfaceElems(d *typeDecl, ifaceNode *sitter.Node, src []byte, file string) {
	cursor := sitter.NewTreeCursor(ifaceNode)
	defer cursor.Close()

	var visit func(*sitter.TreeCursor)
	visit = func(c *sitter.TreeCursor) {
		n := c.CurrentNode()
		switch n.Type() {
		case "method_elem", "method_spec":
			m := &methodDecl{pos: nodePos(n, file)}
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				m.name = nameNode.Content(src)
			}
			if params := n.ChildByFieldName("parameters"); params != nil {
				m.paramTypes = parameterTypes(params, src)
			}
			if result := n.ChildByFieldName("result"); result != nil {
				m.resultText = result.Content(src)
			}
			if m.name != "" {
				d.methods = append(d.methods, m)
			}
			return
		case "type_identifier", "qualified_type":
			parent := ""
			if n.Parent() != nil {
				parent = n.Parent().Type()
			}
			if parent == "interface_type" || parent == "method_spec_list" || parent == "type_elem" {
				d.embedded = append(d.embedded, n.Content(src))
				return
			}
		}
		if c.GoToFirstChild() {
			visit(c)
			for c.GoToNextSibling() {
				visit(c)
			}
			c.GoToParent()
		}
	}
	visit(cursor)
}

func (p *Package) collectMethod(node *sitter.Node, src []byte, file string) {
	nameNode := node.ChildByFieldName("name")
	recvNode := node.ChildByFieldName("receiver")
	if nameNode == nil || recvNode == nil {
		return
	}
	recv := receiverTypeName(recvNode, src)
	if recv == "" {
		return
	}
	d, ok := p.decls[recv]
	if !ok {
		// Method declarations can precede the type in query order; park the
		// shell declaration and let the type spec fill it in.
		d = &typeDecl{name: recv, kind: graph.KindClass}
		p.decls[recv] = d
		p.order = append(p.order, recv)
	}
	m := &methodDecl{
		name: nameNode.Content(src),
		pos:  nodePos(node, file),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.paramTypes = parameterTypes(params, src)
	}
	if result := node.ChildByFieldName("result"); result != nil {
		m.resultText = result.Content(src)
	}
	d.methods = append(d.methods, m)
}

// receiverTypeName extracts the receiver's base type identifier, pointer and
// type arguments stripped.
func receiverTypeName(recv *sitter.Node, src []byte) string {
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		decl := recv.NamedChild(i)
		if decl.Type() != "parameter_declaration" {
			continue
		}
		tn := decl.ChildByFieldName("type")
		if tn == nil {
			continue
		}
		return embeddedName(tn.Content(src))
	}
	return ""
}

func (p *Package) collectImport(node *sitter.Node, src []byte) {
	alias := ""
	path := ""
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		switch c.Type() {
		case "package_identifier":
			alias = c.Content(src)
		case "interpreted_string_literal", "raw_string_literal":
			path = strings.Trim(c.Content(src), "\"`")
		}
	}
	if path == "" || alias == "." || alias == "_" {
		return
	}
	if alias == "" {
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			alias = path[i+1:]
		} else {
			alias = path
		}
	}
	p.imports[alias] = path
}

// parameterNames collects the identifiers of a parameter or type-parameter
// list, in order.
func parameterNames(list *sitter.Node, src []byte) []string {
	var names []string
	cursor := sitter.NewTreeCursor(list)
	defer cursor.Close()
	var visit func(*sitter.TreeCursor)
	visit = func(c *sitter.TreeCursor) {
		if c.CurrentNode().Type() == "identifier" {
			names = append(names, c.CurrentNode().Content(src))
			return
		}
		if c.GoToFirstChild() {
			visit(c)
			for c.GoToNextSibling() {
				visit(c)
			}
			c.GoToParent()
		}
	}
	visit(cursor)
	return names
}

// parameterTypes collects one type text per declared parameter name, or one
// per unnamed declaration.
func parameterTypes(list *sitter.Node, src []byte) []string {
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		if decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration" {
			continue
		}
		typeText := ""
		if tn := decl.ChildByFieldName("type"); tn != nil {
			typeText = tn.Content(src)
		}
		names := 0
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			if decl.NamedChild(j).Type() == "identifier" {
				names++
			}
		}
		if names == 0 {
			names = 1
		}
		for n := 0; n < names; n++ {
			out = append(out, typeText)
		}
	}
	return out
}

// integerText reports whether an underlying-type text denotes one of the
// built-in integer types, which is what makes a named type an enum here.
func integerText(text string) bool {
	switch text {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"byte", "rune":
		return true
	}
	return false
}
