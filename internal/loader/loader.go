// Package loader resolves `import` declarations into a graph of module
// namespaces (C4), grounded on ast.Package/ast.Loc/ast.File.Imports
// (teacher) for "a module groups files and an import table" and on
// original_source/roc/loader.py's load_module for DFS grey-node cycle
// detection (an explicit ancestry slice threaded through the recursion) and
// its module-name/import-name mismatch check.
package loader

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/parser"
	"github.com/lumen-lang/lumen/internal/token"
)

// SourceProvider resolves a sibling module name to its source text, per
// spec.md §6 ("import foo; resolves to foo.<ext> in the same directory as
// the importing file"). The core only knows about module names; turning a
// name into a file path is the host's job.
type SourceProvider func(moduleName string) (source string, ok bool)

// ImportBinding records how a module is visible inside an importer: the
// name it is bound to (alias or the module's own name) and the module it
// refers to.
type ImportBinding struct {
	BoundName string
	Target    *Module
}

// Module is one loaded, parsed source file together with its resolved
// imports and export set.
type Module struct {
	Name     string
	File     *ast.File
	Imports  map[string]*ImportBinding // keyed by BoundName
	Exported map[string]bool           // nil/empty: nothing exported (spec.md §4.3)
}

// EnumDef looks up an enum definition declared directly in this module
// (not through an import).
func (m *Module) EnumDef(name string) (*ast.EnumDef, bool) {
	for _, e := range m.File.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// FnDef looks up a function declared directly in this module.
func (m *Module) FnDef(name string) (*ast.FnDef, bool) {
	for _, f := range m.File.Fns {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// IsExported reports whether name is visible to importers of m.
func (m *Module) IsExported(name string) bool {
	return m.Exported[name]
}

// Loader builds the module graph for one compilation, caching every module
// it loads by name (spec.md §5: "the loader is scoped to a single
// compilation").
type Loader struct {
	collector *diagnostics.Collector
	provider  SourceProvider
	allErrors bool
	modules   map[string]*Module
	sources   map[string]string
}

// New builds a Loader. allErrors mirrors the parser's own flag: when false,
// parsing (and hence loading) of a module stops at its first diagnostic.
func New(collector *diagnostics.Collector, provider SourceProvider, allErrors bool) *Loader {
	return &Loader{
		collector: collector,
		provider:  provider,
		allErrors: allErrors,
		modules:   map[string]*Module{},
		sources:   map[string]string{},
	}
}

// Sources returns every source text loaded, keyed by module name, so a
// caller can render diagnostics that point into an imported module.
func (l *Loader) Sources() map[string]string {
	return l.sources
}

// Load parses rootSource under rootName and resolves its import graph
// transitively via the Loader's SourceProvider.
func (l *Loader) Load(rootName, rootSource string) (*Module, error) {
	return l.load(rootName, rootSource, nil, token.Span{})
}

func (l *Loader) load(name, source string, ancestry []string, importSpan token.Span) (*Module, error) {
	for _, a := range ancestry {
		if a == name {
			chain := append(append([]string{}, ancestry...), name)
			l.reportResolve(importSpan, fmt.Sprintf("cyclic import detected: %s", strings.Join(chain, " -> ")))
			return nil, diagnostics.ErrHasDiagnostics
		}
	}
	if m, ok := l.modules[name]; ok {
		return m, nil
	}

	l.sources[name] = source

	lex := lexer.New(name, []byte(source), l.collector)
	p := parser.New(lex, l.collector, name, l.allErrors)
	file := p.ParseFile()
	if l.collector.HasErrors() {
		return nil, diagnostics.ErrHasDiagnostics
	}

	declared := file.ModuleName()
	if file.Module != nil && declared != name {
		l.reportResolve(file.Module.Span(), fmt.Sprintf("module declares name %q but was imported as %q", declared, name))
		return nil, diagnostics.ErrHasDiagnostics
	}

	module := &Module{Name: name, File: file, Imports: map[string]*ImportBinding{}}
	l.modules[name] = module

	nextAncestry := append(append([]string{}, ancestry...), name)
	boundNames := map[string]bool{}
	for _, decl := range file.Enums {
		boundNames[decl.Name] = true
	}
	for _, decl := range file.Fns {
		boundNames[decl.Name] = true
	}

	for _, imp := range file.Imports {
		bound := imp.BoundName()
		if boundNames[bound] {
			l.reportResolve(imp.Span(), fmt.Sprintf("import %q collides with a local top-level name", bound))
			return nil, diagnostics.ErrHasDiagnostics
		}
		boundNames[bound] = true

		src, ok := l.provider(imp.Name)
		if !ok {
			l.reportResolve(imp.Span(), fmt.Sprintf("module %q not found", imp.Name))
			return nil, diagnostics.ErrHasDiagnostics
		}
		target, err := l.load(imp.Name, src, nextAncestry, imp.Span())
		if err != nil {
			return nil, err
		}
		module.Imports[bound] = &ImportBinding{BoundName: bound, Target: target}
	}

	module.Exported = map[string]bool{}
	if file.Export != nil {
		for _, name := range file.Export.Names {
			if !boundNames[name] {
				l.reportResolve(file.Export.Span(), fmt.Sprintf("export of undefined name %q", name))
				return nil, diagnostics.ErrHasDiagnostics
			}
			module.Exported[name] = true
		}
	}

	return module, nil
}

func (l *Loader) reportResolve(span token.Span, message string) {
	l.collector.Report(diagnostics.Diag{
		Phase:    diagnostics.Resolve,
		Severity: diagnostics.Error,
		Span:     span,
		Message:  message,
	})
}
