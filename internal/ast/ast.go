// Package ast defines the abstract syntax tree produced by the parser.
//
// Every node interface follows the teacher's idiom (ast/expr.go,
// frontend/ast/stmt.go): a small marker interface embedded in every
// concrete struct, one struct per variant, and a String() for debugging.
package ast

import "github.com/lumen-lang/lumen/internal/token"

// Node is the root interface satisfied by every AST node.
type Node interface {
	Span() token.Span
	String() string
}

// TypeExpr is the syntax for a type annotation, e.g. `Int`, `[Int]`,
// `{x: Int, y: Int}`. It is distinct from internal/types.Type, which is the
// semantic type the checker computes.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedTypeExpr is a bare identifier used as a type, e.g. `Int`, `Bool`, or
// a qualified enum name like `shapes.Color`.
type NamedTypeExpr struct {
	Qualifier string // "" when unqualified
	Name      string
	span      token.Span
}

func NewNamedTypeExpr(qualifier, name string, span token.Span) *NamedTypeExpr {
	return &NamedTypeExpr{Qualifier: qualifier, Name: name, span: span}
}

func (t *NamedTypeExpr) Span() token.Span { return t.span }
func (t *NamedTypeExpr) String() string {
	if t.Qualifier != "" {
		return t.Qualifier + "." + t.Name
	}
	return t.Name
}
func (t *NamedTypeExpr) typeExprNode() {}

// ListTypeExpr is `[T]`.
type ListTypeExpr struct {
	Elem TypeExpr
	span token.Span
}

func NewListTypeExpr(elem TypeExpr, span token.Span) *ListTypeExpr {
	return &ListTypeExpr{Elem: elem, span: span}
}

func (t *ListTypeExpr) Span() token.Span { return t.span }
func (t *ListTypeExpr) String() string   { return "[" + t.Elem.String() + "]" }
func (t *ListTypeExpr) typeExprNode()    {}

// RecordTypeExpr is `{x: Int, y: Int}`.
type RecordTypeExpr struct {
	Fields []RecordTypeField
	span   token.Span
}

type RecordTypeField struct {
	Name string
	Type TypeExpr
}

func NewRecordTypeExpr(fields []RecordTypeField, span token.Span) *RecordTypeExpr {
	return &RecordTypeExpr{Fields: fields, span: span}
}

func (t *RecordTypeExpr) Span() token.Span { return t.span }
func (t *RecordTypeExpr) String() string   { return "{record}" }
func (t *RecordTypeExpr) typeExprNode()    {}
