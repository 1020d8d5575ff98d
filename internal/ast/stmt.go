package ast

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/token"
)

// Stmt is satisfied by every statement node (data model §3: Let, Set,
// Return, While, For, Break, Continue, ExprStmt).
type Stmt interface {
	Node
	stmtNode()
}

// BlockStmt is a brace-delimited sequence of statements. Its value (when
// used as an expression, e.g. an if/else branch or function body) is the
// value of its last ExprStmt, or Unit otherwise (spec.md §4.2).
type BlockStmt struct {
	Stmts []Stmt
	span  token.Span
}

func NewBlockStmt(stmts []Stmt, span token.Span) *BlockStmt {
	return &BlockStmt{Stmts: stmts, span: span}
}
func (b *BlockStmt) Span() token.Span { return b.span }
func (b *BlockStmt) String() string {
	parts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

type LetStmt struct {
	Name string
	Type TypeExpr // nil when no annotation was given
	Expr Expr
	span token.Span
}

func NewLetStmt(name string, typ TypeExpr, expr Expr, span token.Span) *LetStmt {
	return &LetStmt{Name: name, Type: typ, Expr: expr, span: span}
}
func (s *LetStmt) Span() token.Span { return s.span }
func (s *LetStmt) String() string   { return fmt.Sprintf("let %s = %s;", s.Name, s.Expr) }
func (s *LetStmt) stmtNode()        {}

type SetStmt struct {
	Name string
	Expr Expr
	span token.Span
}

func NewSetStmt(name string, expr Expr, span token.Span) *SetStmt {
	return &SetStmt{Name: name, Expr: expr, span: span}
}
func (s *SetStmt) Span() token.Span { return s.span }
func (s *SetStmt) String() string   { return fmt.Sprintf("set %s = %s;", s.Name, s.Expr) }
func (s *SetStmt) stmtNode()        {}

type ReturnStmt struct {
	Expr Expr // nil for a bare `return;`
	span token.Span
}

func NewReturnStmt(expr Expr, span token.Span) *ReturnStmt {
	return &ReturnStmt{Expr: expr, span: span}
}
func (s *ReturnStmt) Span() token.Span { return s.span }
func (s *ReturnStmt) String() string   { return fmt.Sprintf("return %s;", s.Expr) }
func (s *ReturnStmt) stmtNode()        {}

type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	span token.Span
}

func NewWhileStmt(cond Expr, body *BlockStmt, span token.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, span: span}
}
func (s *WhileStmt) Span() token.Span { return s.span }
func (s *WhileStmt) String() string   { return fmt.Sprintf("while %s %s", s.Cond, s.Body) }
func (s *WhileStmt) stmtNode()        {}

// ForStmt is `for NAME in START .. END (by STEP)? { ... }` (spec.md §4.5);
// Inclusive distinguishes `..` from `..=`.
type ForStmt struct {
	Var       string
	Start     Expr
	End       Expr
	Inclusive bool
	Step      Expr // nil when no `by` clause was given
	Body      *BlockStmt
	span      token.Span
}

func NewForStmt(v string, start, end Expr, inclusive bool, step Expr, body *BlockStmt, span token.Span) *ForStmt {
	return &ForStmt{Var: v, Start: start, End: end, Inclusive: inclusive, Step: step, Body: body, span: span}
}
func (s *ForStmt) Span() token.Span { return s.span }
func (s *ForStmt) String() string {
	op := ".."
	if s.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("for %s in %s%s%s %s", s.Var, s.Start, op, s.End, s.Body)
}
func (s *ForStmt) stmtNode() {}

type BreakStmt struct{ span token.Span }

func NewBreakStmt(span token.Span) *BreakStmt { return &BreakStmt{span: span} }
func (s *BreakStmt) Span() token.Span         { return s.span }
func (s *BreakStmt) String() string           { return "break;" }
func (s *BreakStmt) stmtNode()                {}

type ContinueStmt struct{ span token.Span }

func NewContinueStmt(span token.Span) *ContinueStmt { return &ContinueStmt{span: span} }
func (s *ContinueStmt) Span() token.Span            { return s.span }
func (s *ContinueStmt) String() string              { return "continue;" }
func (s *ContinueStmt) stmtNode()                   {}

type ExprStmt struct {
	Expr Expr
	span token.Span
}

func NewExprStmt(expr Expr, span token.Span) *ExprStmt { return &ExprStmt{Expr: expr, span: span} }
func (s *ExprStmt) Span() token.Span                   { return s.span }
func (s *ExprStmt) String() string                     { return s.Expr.String() + ";" }
func (s *ExprStmt) stmtNode()                          {}

// ErrStmt is the error-recovery sentinel (spec.md §4.2, design notes §9):
// the parser substitutes it for any statement it could not parse after
// recording a diagnostic, so downstream passes stay total. sema and eval
// treat it as a Unit no-op.
type ErrStmt struct{ span token.Span }

func NewErrStmt(span token.Span) *ErrStmt { return &ErrStmt{span: span} }
func (s *ErrStmt) Span() token.Span       { return s.span }
func (s *ErrStmt) String() string         { return "<error>" }
func (s *ErrStmt) stmtNode()              {}
