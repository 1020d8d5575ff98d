package ast

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/token"
)

// Item is satisfied by every top-level declaration (data model §3:
// ModuleDecl, Import, EnumDef, FnDef, Export).
type Item interface {
	Node
	itemNode()
}

type ModuleDecl struct {
	Name string
	span token.Span
}

func NewModuleDecl(name string, span token.Span) *ModuleDecl { return &ModuleDecl{Name: name, span: span} }
func (d *ModuleDecl) Span() token.Span                        { return d.span }
func (d *ModuleDecl) String() string                          { return fmt.Sprintf("module %s;", d.Name) }
func (d *ModuleDecl) itemNode()                               {}

// ImportDecl is `import NAME;` or `import NAME as ALIAS;` (spec.md §4.3).
type ImportDecl struct {
	Name  string
	Alias string // "" when no `as` clause was given
	span  token.Span
}

func NewImportDecl(name, alias string, span token.Span) *ImportDecl {
	return &ImportDecl{Name: name, Alias: alias, span: span}
}
func (d *ImportDecl) Span() token.Span { return d.span }
func (d *ImportDecl) String() string {
	if d.Alias != "" {
		return fmt.Sprintf("import %s as %s;", d.Name, d.Alias)
	}
	return fmt.Sprintf("import %s;", d.Name)
}
func (d *ImportDecl) itemNode() {}

// BoundName is the name through which an import is accessed: the alias if
// one was given, else the module's own name (spec.md §4.3).
func (d *ImportDecl) BoundName() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name
}

type EnumVariant struct {
	Name    string
	Payload []TypeExpr // nil for a payload-less variant
}

type EnumDef struct {
	Name     string
	Variants []EnumVariant
	span     token.Span
}

func NewEnumDef(name string, variants []EnumVariant, span token.Span) *EnumDef {
	return &EnumDef{Name: name, Variants: variants, span: span}
}
func (d *EnumDef) Span() token.Span { return d.span }
func (d *EnumDef) String() string {
	names := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		names[i] = v.Name
	}
	return fmt.Sprintf("enum %s { %s }", d.Name, strings.Join(names, ", "))
}
func (d *EnumDef) itemNode() {}

type Param struct {
	Name string
	Type TypeExpr // nil when absent (defaults to Unknown, spec.md §4.4)
}

type FnDef struct {
	Name       string
	Params     []Param
	ReturnType TypeExpr // nil when absent (defaults to Unit, spec.md §4.4)
	Body       *BlockStmt
	span       token.Span
}

func NewFnDef(name string, params []Param, ret TypeExpr, body *BlockStmt, span token.Span) *FnDef {
	return &FnDef{Name: name, Params: params, ReturnType: ret, Body: body, span: span}
}
func (d *FnDef) Span() token.Span { return d.span }
func (d *FnDef) String() string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("fn %s(%s) %s", d.Name, strings.Join(names, ", "), d.Body)
}
func (d *FnDef) itemNode() {}

// ExportDecl is `export { a, b, ... };` (spec.md §4.3). A module with no
// ExportDecl exposes nothing (strict visibility).
type ExportDecl struct {
	Names []string
	span  token.Span
}

func NewExportDecl(names []string, span token.Span) *ExportDecl {
	return &ExportDecl{Names: names, span: span}
}
func (d *ExportDecl) Span() token.Span { return d.span }
func (d *ExportDecl) String() string   { return "export { " + strings.Join(d.Names, ", ") + " };" }
func (d *ExportDecl) itemNode()        {}

// File is the parsed result of one source buffer: an optional module
// declaration, its imports, and its remaining top-level items, grounded on
// ast.Package/ast.File (teacher) which groups a module's files and import
// table.
type File struct {
	Filename string
	Module   *ModuleDecl // nil when no `module` declaration was present
	Imports  []*ImportDecl
	Enums    []*EnumDef
	Fns      []*FnDef
	Export   *ExportDecl // nil when no `export` declaration was present
}

// ModuleName returns the declared module name, or the filename (without
// extension) when no `module` declaration is present (spec.md §4.3: "a
// module name ... inferred from filename").
func (f *File) ModuleName() string {
	if f.Module != nil {
		return f.Module.Name
	}
	return f.Filename
}
