package source

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"typegraph/internal/graph"
)

// Package is one type-checked compilation unit plus the backend that serves
// handles out of it.
type Package struct {
	fset    *token.FileSet
	pkg     *types.Package
	backend *Backend
}

// Load parses and type-checks a fixed list of Go files as one package and
// returns it ready for interning. importPath becomes the package path, which
// the backend uses as the namespace of every type in it.
//
// Type checking is best effort: check errors are logged and partial
// information is kept, matching the engine's policy that unresolvable
// constructs classify as None instead of failing the session.
func Load(importPath string, files []string) (*Package, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("load %s: no files", importPath)
	}

	fset := token.NewFileSet()
	parsed := make([]*ast.File, 0, len(files))
	for _, path := range files {
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		parsed = append(parsed, f)
	}

	conf := &types.Config{
		Importer: importer.Default(),
		Error:    func(error) {},
	}
	pkg, err := conf.Check(importPath, fset, parsed, nil)
	if err != nil {
		slog.Debug("type check incomplete, keeping partial results",
			"package", importPath, "err", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("load %s: no package produced", importPath)
	}

	return &Package{
		fset:    fset,
		pkg:     pkg,
		backend: NewBackend(fset),
	}, nil
}

// LoadDir loads every non-test .go file in one directory as a package. The
// keep filter, when non-nil, decides per relative filename whether a file
// participates.
func LoadDir(importPath, dir string, keep func(name string) bool) (*Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if keep != nil && !keep(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return Load(importPath, files)
}

// Backend returns the adapter that serves this package's handles.
func (p *Package) Backend() *Backend { return p.backend }

// Path returns the package path used as the namespace.
func (p *Package) Path() string { return p.pkg.Path() }

// TypeHandles returns handles for every package-level named type, in name
// order.
func (p *Package) TypeHandles() []graph.Handle {
	scope := p.pkg.Scope()
	names := scope.Names()
	sort.Strings(names)
	var out []graph.Handle
	for _, name := range names {
		if tn, ok := scope.Lookup(name).(*types.TypeName); ok {
			out = append(out, p.backend.TypeHandle(tn.Type()))
		}
	}
	return out
}

// TypeHandle looks one package-level type up by simple name.
func (p *Package) TypeHandle(name string) (graph.Handle, bool) {
	tn, ok := p.pkg.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		return nil, false
	}
	return p.backend.TypeHandle(tn.Type()), true
}
