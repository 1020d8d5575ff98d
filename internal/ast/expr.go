package ast

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/token"
)

// Expr is satisfied by every expression node (data model §3: Int, Str,
// Bool, Ident, Record, List, Unary, Binary, FieldAccess, Index, If, Match,
// Call, Paren).
type Expr interface {
	Node
	exprNode()
}

type IntLit struct {
	Value int64
	span  token.Span
}

func NewIntLit(value int64, span token.Span) *IntLit { return &IntLit{Value: value, span: span} }
func (e *IntLit) Span() token.Span                   { return e.span }
func (e *IntLit) String() string                     { return fmt.Sprintf("%d", e.Value) }
func (e *IntLit) exprNode()                          {}

type StrLit struct {
	Value string
	span  token.Span
}

func NewStrLit(value string, span token.Span) *StrLit { return &StrLit{Value: value, span: span} }
func (e *StrLit) Span() token.Span                     { return e.span }
func (e *StrLit) String() string                       { return fmt.Sprintf("%q", e.Value) }
func (e *StrLit) exprNode()                            {}

type BoolLit struct {
	Value bool
	span  token.Span
}

func NewBoolLit(value bool, span token.Span) *BoolLit { return &BoolLit{Value: value, span: span} }
func (e *BoolLit) Span() token.Span                   { return e.span }
func (e *BoolLit) String() string                     { return fmt.Sprintf("%t", e.Value) }
func (e *BoolLit) exprNode()                          {}

// IdentExpr is a bare name or a module-qualified name (`alias.name`).
type IdentExpr struct {
	Qualifier string // "" when unqualified
	Name      string
	span      token.Span
}

func NewIdentExpr(qualifier, name string, span token.Span) *IdentExpr {
	return &IdentExpr{Qualifier: qualifier, Name: name, span: span}
}
func (e *IdentExpr) Span() token.Span { return e.span }
func (e *IdentExpr) String() string {
	if e.Qualifier != "" {
		return e.Qualifier + "." + e.Name
	}
	return e.Name
}
func (e *IdentExpr) exprNode() {}

// QualifiedName returns the identifier as written, e.g. "m.f" or "f".
func (e *IdentExpr) QualifiedName() string { return e.String() }

type RecordField struct {
	Name  string
	Value Expr
}

type RecordExpr struct {
	Fields []RecordField
	span   token.Span
}

func NewRecordExpr(fields []RecordField, span token.Span) *RecordExpr {
	return &RecordExpr{Fields: fields, span: span}
}
func (e *RecordExpr) Span() token.Span { return e.span }
func (e *RecordExpr) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (e *RecordExpr) exprNode() {}

type ListExpr struct {
	Elems []Expr
	span  token.Span
}

func NewListExpr(elems []Expr, span token.Span) *ListExpr {
	return &ListExpr{Elems: elems, span: span}
}
func (e *ListExpr) Span() token.Span { return e.span }
func (e *ListExpr) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (e *ListExpr) exprNode() {}

type UnaryExpr struct {
	Op      token.Kind
	Operand Expr
	span    token.Span
}

func NewUnaryExpr(op token.Kind, operand Expr, span token.Span) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand, span: span}
}
func (e *UnaryExpr) Span() token.Span { return e.span }
func (e *UnaryExpr) String() string   { return fmt.Sprintf("(%s%s)", e.Op, e.Operand) }
func (e *UnaryExpr) exprNode()        {}

type BinaryExpr struct {
	Left  Expr
	Op    token.Kind
	Right Expr
	span  token.Span
}

func NewBinaryExpr(left Expr, op token.Kind, right Expr, span token.Span) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right, span: span}
}
func (e *BinaryExpr) Span() token.Span { return e.span }
func (e *BinaryExpr) String() string   { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }
func (e *BinaryExpr) exprNode()        {}

type FieldAccessExpr struct {
	Target Expr
	Field  string
	span   token.Span
}

func NewFieldAccessExpr(target Expr, field string, span token.Span) *FieldAccessExpr {
	return &FieldAccessExpr{Target: target, Field: field, span: span}
}
func (e *FieldAccessExpr) Span() token.Span { return e.span }
func (e *FieldAccessExpr) String() string   { return fmt.Sprintf("%s.%s", e.Target, e.Field) }
func (e *FieldAccessExpr) exprNode()        {}

type IndexExpr struct {
	Target Expr
	Index  Expr
	span   token.Span
}

func NewIndexExpr(target, index Expr, span token.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}
func (e *IndexExpr) Span() token.Span { return e.span }
func (e *IndexExpr) String() string   { return fmt.Sprintf("%s[%s]", e.Target, e.Index) }
func (e *IndexExpr) exprNode()        {}

type IfExpr struct {
	Cond Expr
	Then *BlockStmt
	// Else is nil when no else branch is present; the checker/evaluator
	// then treat the whole expression as Unit-typed/Unit-valued.
	Else *BlockStmt
	span token.Span
}

func NewIfExpr(cond Expr, then, els *BlockStmt, span token.Span) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els, span: span}
}
func (e *IfExpr) Span() token.Span { return e.span }
func (e *IfExpr) String() string   { return fmt.Sprintf("if %s %s else %s", e.Cond, e.Then, e.Else) }
func (e *IfExpr) exprNode()        {}

// Pattern is satisfied by every match-arm pattern (data model §3, grammar
// §4.2): integer/string/boolean literals, `_`, a bare identifier binding,
// and (qualified) enum-variant patterns with optional sub-patterns.
type Pattern interface {
	Node
	patternNode()
}

type WildcardPattern struct{ span token.Span }

func NewWildcardPattern(span token.Span) *WildcardPattern { return &WildcardPattern{span: span} }
func (p *WildcardPattern) Span() token.Span               { return p.span }
func (p *WildcardPattern) String() string                 { return "_" }
func (p *WildcardPattern) patternNode()                   {}

type LiteralPattern struct {
	Value Expr // *IntLit, *StrLit, or *BoolLit
	span  token.Span
}

func NewLiteralPattern(value Expr, span token.Span) *LiteralPattern {
	return &LiteralPattern{Value: value, span: span}
}
func (p *LiteralPattern) Span() token.Span { return p.span }
func (p *LiteralPattern) String() string   { return p.Value.String() }
func (p *LiteralPattern) patternNode()     {}

// BindPattern binds the subject (or an enum payload element) to Name. It
// also doubles as a bare-identifier variant pattern when Name matches a
// zero-argument enum variant in context; the checker disambiguates.
type BindPattern struct {
	Name string
	span token.Span
}

func NewBindPattern(name string, span token.Span) *BindPattern {
	return &BindPattern{Name: name, span: span}
}
func (p *BindPattern) Span() token.Span { return p.span }
func (p *BindPattern) String() string   { return p.Name }
func (p *BindPattern) patternNode()     {}

// VariantPattern matches an enum variant, optionally module-qualified, with
// optional payload sub-patterns, e.g. `G`, `m.G`, `Some(x)`, `m.Pair(a, b)`.
type VariantPattern struct {
	Qualifier string // "" when unqualified
	Variant   string
	Payload   []Pattern // nil when the variant takes no payload pattern
	span      token.Span
}

func NewVariantPattern(qualifier, variant string, payload []Pattern, span token.Span) *VariantPattern {
	return &VariantPattern{Qualifier: qualifier, Variant: variant, Payload: payload, span: span}
}
func (p *VariantPattern) Span() token.Span { return p.span }
func (p *VariantPattern) String() string {
	name := p.Variant
	if p.Qualifier != "" {
		name = p.Qualifier + "." + name
	}
	if p.Payload == nil {
		return name
	}
	parts := make([]string, len(p.Payload))
	for i, sub := range p.Payload {
		parts[i] = sub.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
func (p *VariantPattern) patternNode() {}

type MatchArm struct {
	Pattern Pattern
	Body    *BlockStmt
}

type MatchExpr struct {
	Subject Expr
	Arms    []MatchArm
	span    token.Span
}

func NewMatchExpr(subject Expr, arms []MatchArm, span token.Span) *MatchExpr {
	return &MatchExpr{Subject: subject, Arms: arms, span: span}
}
func (e *MatchExpr) Span() token.Span { return e.span }
func (e *MatchExpr) String() string   { return fmt.Sprintf("match %s { ... }", e.Subject) }
func (e *MatchExpr) exprNode()        {}

type CallExpr struct {
	Callee Expr
	Args   []Expr
	span   token.Span
}

func NewCallExpr(callee Expr, args []Expr, span token.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}
func (e *CallExpr) Span() token.Span { return e.span }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(parts, ", "))
}
func (e *CallExpr) exprNode() {}

type ParenExpr struct {
	Inner Expr
	span  token.Span
}

func NewParenExpr(inner Expr, span token.Span) *ParenExpr {
	return &ParenExpr{Inner: inner, span: span}
}
func (e *ParenExpr) Span() token.Span { return e.span }
func (e *ParenExpr) String() string   { return "(" + e.Inner.String() + ")" }
func (e *ParenExpr) exprNode()        {}
