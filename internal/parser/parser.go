// Package parser implements Lumen's recursive-descent, precedence-climbing
// parser with error recovery (C3), grounded on the teacher's
// frontend/parser/parser.go (the parseLogical -> parseComparasion ->
// parseTerm -> parseFactor -> parseUnary -> parsePrimary precedence chain,
// and the "record a diagnostic, then keep going" shape of p.expect) and on
// spec.md §4.2's resync token set and ErrStmt sentinel.
package parser

import (
	"fmt"
	"strconv"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/token"
)

// Parser consumes tokens lazily from a Lexer (one token of lookahead,
// buffered on demand) and builds an ast.File, recovering from malformed
// statements rather than aborting (spec.md §8 property 2).
type Parser struct {
	lex       *lexer.Lexer
	collector *diagnostics.Collector
	filename  string
	allErrors bool

	cur    token.Token
	peeked *token.Token

	// stopped is set once a diagnostic has been recorded in "first only"
	// parsing mode (AllErrors == false), telling block/item loops to stop
	// parsing further siblings (spec.md §4.2: "otherwise stop after the
	// first diagnostic").
	stopped bool

	// noRecordLiteral suppresses treating a bare `{` as the start of a
	// record literal; set while parsing if/while conditions and match/for
	// subjects so `if {x:1}.x {...}` cannot be confused with the
	// statement's own block, mirroring how Go forbids bare composite
	// literals in control-clause position.
	noRecordLiteral bool
}

func New(lex *lexer.Lexer, collector *diagnostics.Collector, filename string, allErrors bool) *Parser {
	p := &Parser{lex: lex, collector: collector, filename: filename, allErrors: allErrors}
	p.advance()
	return p
}

func (p *Parser) advance() {
	if p.peeked != nil {
		p.cur = *p.peeked
		p.peeked = nil
		return
	}
	p.cur = p.lex.Next()
}

func (p *Parser) peek() token.Token {
	if p.peeked == nil {
		t := p.lex.Next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) recordError(span token.Span, message string) {
	if p.stopped {
		return
	}
	p.collector.Report(diagnostics.Diag{
		Phase:    diagnostics.Parse,
		Severity: diagnostics.Error,
		Span:     span,
		Message:  message,
	})
	if !p.allErrors {
		p.stopped = true
	}
}

// expect consumes cur if it matches kind, else records a diagnostic and
// returns ok=false without advancing or resynchronizing (resync happens
// once, at statement/item granularity).
func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.cur.Kind == kind {
		t := p.cur
		p.advance()
		return t, true
	}
	p.recordError(p.cur.Span, fmt.Sprintf("expected %s, got %s", kind, p.cur.Kind))
	return token.Token{}, false
}

// resynchronize skips tokens until a statement terminator, a block-level
// '}' at the current nesting depth, or a top-level keyword, per spec.md
// §4.2. It consumes a terminating ';' but leaves a terminating '}' or
// keyword unconsumed so the caller's own loop can act on it.
func (p *Parser) resynchronize() {
	depth := 0
	for {
		switch p.cur.Kind {
		case token.EOF:
			return
		case token.SEMICOLON:
			if depth == 0 {
				p.advance()
				return
			}
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case token.FN, token.ENUM, token.IMPORT, token.MODULE, token.EXPORT:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

// ParseFile parses one complete source buffer into an ast.File, grounded on
// the teacher's Parser.parseFile/Next dispatch loop.
func (p *Parser) ParseFile() *ast.File {
	file := &ast.File{Filename: p.filename}

	if p.cur.Kind == token.MODULE {
		file.Module = p.parseModuleDecl()
	}

	for p.cur.Kind != token.EOF {
		if p.stopped {
			break
		}
		switch p.cur.Kind {
		case token.IMPORT:
			file.Imports = append(file.Imports, p.parseImportDecl())
		case token.ENUM:
			file.Enums = append(file.Enums, p.parseEnumDef())
		case token.FN:
			file.Fns = append(file.Fns, p.parseFnDef())
		case token.EXPORT:
			decl := p.parseExportDecl()
			if file.Export != nil {
				p.recordError(decl.Span(), "duplicate export declaration")
			} else {
				file.Export = decl
			}
		default:
			p.recordError(p.cur.Span, fmt.Sprintf("unexpected %s at top level", p.cur.Kind))
			p.resynchronize()
		}
	}
	return file
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	start := p.cur.Span
	p.advance() // 'module'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.resynchronize()
		return ast.NewModuleDecl("", start)
	}
	p.expectSemicolon(name.Span)
	return ast.NewModuleDecl(name.Lexeme, spanFrom(start, name.Span))
}

func (p *Parser) expectSemicolon(fallback token.Span) token.Span {
	if p.cur.Kind == token.SEMICOLON {
		s := p.cur.Span
		p.advance()
		return s
	}
	p.recordError(p.cur.Span, fmt.Sprintf("expected %s, got %s", token.SEMICOLON, p.cur.Kind))
	p.resynchronize()
	return fallback
}

func spanFrom(start, end token.Span) token.Span {
	return token.Span{Start: start.Start, End: end.End}
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	start := p.cur.Span
	p.advance() // 'import'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.resynchronize()
		return ast.NewImportDecl("", "", start)
	}
	alias := ""
	if p.cur.Kind == token.AS {
		p.advance()
		aliasTok, ok := p.expect(token.IDENT)
		if !ok {
			p.resynchronize()
			return ast.NewImportDecl(name.Lexeme, "", spanFrom(start, name.Span))
		}
		alias = aliasTok.Lexeme
	}
	end := p.expectSemicolon(name.Span)
	return ast.NewImportDecl(name.Lexeme, alias, spanFrom(start, end))
}

func (p *Parser) parseExportDecl() *ast.ExportDecl {
	start := p.cur.Span
	p.advance() // 'export'
	if _, ok := p.expect(token.LBRACE); !ok {
		p.resynchronize()
		return ast.NewExportDecl(nil, start)
	}
	var names []string
	if p.cur.Kind != token.RBRACE {
		for {
			name, ok := p.expect(token.IDENT)
			if !ok {
				p.resynchronize()
				return ast.NewExportDecl(names, start)
			}
			names = append(names, name.Lexeme)
			if p.cur.Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expect(token.RBRACE); !ok {
		p.resynchronize()
		return ast.NewExportDecl(names, start)
	}
	end := p.expectSemicolon(start)
	return ast.NewExportDecl(names, spanFrom(start, end))
}

func (p *Parser) parseEnumDef() *ast.EnumDef {
	start := p.cur.Span
	p.advance() // 'enum'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.resynchronize()
		return ast.NewEnumDef("", nil, start)
	}
	if _, ok := p.expect(token.LBRACE); !ok {
		p.resynchronize()
		return ast.NewEnumDef(name.Lexeme, nil, start)
	}
	var variants []ast.EnumVariant
	if p.cur.Kind != token.RBRACE {
		for {
			vname, ok := p.expect(token.IDENT)
			if !ok {
				p.resynchronize()
				return ast.NewEnumDef(name.Lexeme, variants, start)
			}
			var payload []ast.TypeExpr
			if p.cur.Kind == token.LPAREN {
				p.advance()
				if p.cur.Kind != token.RPAREN {
					for {
						t, ok := p.parseTypeExpr()
						if !ok {
							p.resynchronize()
							return ast.NewEnumDef(name.Lexeme, variants, start)
						}
						payload = append(payload, t)
						if p.cur.Kind != token.COMMA {
							break
						}
						p.advance()
					}
				}
				if _, ok := p.expect(token.RPAREN); !ok {
					p.resynchronize()
					return ast.NewEnumDef(name.Lexeme, variants, start)
				}
			}
			variants = append(variants, ast.EnumVariant{Name: vname.Lexeme, Payload: payload})
			if p.cur.Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	end := p.cur.Span
	if _, ok := p.expect(token.RBRACE); !ok {
		p.resynchronize()
		return ast.NewEnumDef(name.Lexeme, variants, start)
	}
	return ast.NewEnumDef(name.Lexeme, variants, spanFrom(start, end))
}

func (p *Parser) parseTypeExpr() (ast.TypeExpr, bool) {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.LBRACKET:
		p.advance()
		elem, ok := p.parseTypeExpr()
		if !ok {
			return nil, false
		}
		end, ok := p.expect(token.RBRACKET)
		if !ok {
			return nil, false
		}
		return ast.NewListTypeExpr(elem, spanFrom(start, end.Span)), true
	case token.LBRACE:
		p.advance()
		var fields []ast.RecordTypeField
		if p.cur.Kind != token.RBRACE {
			for {
				name, ok := p.expect(token.IDENT)
				if !ok {
					return nil, false
				}
				if _, ok := p.expect(token.COLON); !ok {
					return nil, false
				}
				fieldType, ok := p.parseTypeExpr()
				if !ok {
					return nil, false
				}
				fields = append(fields, ast.RecordTypeField{Name: name.Lexeme, Type: fieldType})
				if p.cur.Kind != token.COMMA {
					break
				}
				p.advance()
			}
		}
		end, ok := p.expect(token.RBRACE)
		if !ok {
			return nil, false
		}
		return ast.NewRecordTypeExpr(fields, spanFrom(start, end.Span)), true
	case token.IDENT:
		name, _ := p.expect(token.IDENT)
		if p.cur.Kind == token.DOT {
			p.advance()
			member, ok := p.expect(token.IDENT)
			if !ok {
				return nil, false
			}
			return ast.NewNamedTypeExpr(name.Lexeme, member.Lexeme, spanFrom(start, member.Span)), true
		}
		return ast.NewNamedTypeExpr("", name.Lexeme, name.Span), true
	default:
		p.recordError(p.cur.Span, fmt.Sprintf("expected a type, got %s", p.cur.Kind))
		return nil, false
	}
}

func (p *Parser) parseFnDef() *ast.FnDef {
	start := p.cur.Span
	p.advance() // 'fn'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.resynchronize()
		return ast.NewFnDef("", nil, nil, nil, start)
	}
	if _, ok := p.expect(token.LPAREN); !ok {
		p.resynchronize()
		return ast.NewFnDef(name.Lexeme, nil, nil, nil, start)
	}
	var params []ast.Param
	if p.cur.Kind != token.RPAREN {
		for {
			pname, ok := p.expect(token.IDENT)
			if !ok {
				p.resynchronize()
				return ast.NewFnDef(name.Lexeme, params, nil, nil, start)
			}
			var ptype ast.TypeExpr
			if p.cur.Kind == token.COLON {
				p.advance()
				t, ok := p.parseTypeExpr()
				if !ok {
					p.resynchronize()
					return ast.NewFnDef(name.Lexeme, params, nil, nil, start)
				}
				ptype = t
			}
			params = append(params, ast.Param{Name: pname.Lexeme, Type: ptype})
			if p.cur.Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		p.resynchronize()
		return ast.NewFnDef(name.Lexeme, params, nil, nil, start)
	}
	var ret ast.TypeExpr
	if p.cur.Kind == token.ARROW {
		p.advance()
		t, ok := p.parseTypeExpr()
		if !ok {
			p.resynchronize()
			return ast.NewFnDef(name.Lexeme, params, nil, nil, start)
		}
		ret = t
	}
	body, ok := p.parseBlockStmt()
	if !ok {
		return ast.NewFnDef(name.Lexeme, params, ret, ast.NewBlockStmt(nil, start), start)
	}
	return ast.NewFnDef(name.Lexeme, params, ret, body, spanFrom(start, body.Span()))
}

// parseBlockStmt consumes `{ ... }`. On failure to find the opening brace
// it records the diagnostic but does not resynchronize itself — the caller
// (already mid-resync-eligible context) does that.
func (p *Parser) parseBlockStmt() (*ast.BlockStmt, bool) {
	start, ok := p.expect(token.LBRACE)
	if !ok {
		return nil, false
	}
	var stmts []ast.Stmt
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		if p.stopped {
			break
		}
		stmts = append(stmts, p.parseStmt())
	}
	end := p.cur.Span
	if p.cur.Kind == token.RBRACE {
		p.advance()
	} else {
		p.recordError(p.cur.Span, fmt.Sprintf("expected %s, got %s", token.RBRACE, p.cur.Kind))
	}
	return ast.NewBlockStmt(stmts, spanFrom(start.Span, end)), true
}

// parseStmt parses one statement, substituting ast.ErrStmt and
// resynchronizing on any internal parse failure so the block stays total
// (spec.md §4.2, design notes §9).
func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.LET:
		if s, ok := p.parseLetStmt(); ok {
			return s
		}
	case token.SET:
		if s, ok := p.parseSetStmt(); ok {
			return s
		}
	case token.RETURN:
		if s, ok := p.parseReturnStmt(); ok {
			return s
		}
	case token.WHILE:
		if s, ok := p.parseWhileStmt(); ok {
			return s
		}
	case token.FOR:
		if s, ok := p.parseForStmt(); ok {
			return s
		}
	case token.BREAK:
		p.advance()
		end := p.expectSemicolon(start)
		return ast.NewBreakStmt(spanFrom(start, end))
	case token.CONTINUE:
		p.advance()
		end := p.expectSemicolon(start)
		return ast.NewContinueStmt(spanFrom(start, end))
	default:
		if s, ok := p.parseExprStmt(); ok {
			return s
		}
	}
	p.resynchronize()
	return ast.NewErrStmt(start)
}

func (p *Parser) parseLetStmt() (ast.Stmt, bool) {
	start := p.cur.Span
	p.advance() // 'let'
	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil, false
	}
	var typ ast.TypeExpr
	if p.cur.Kind == token.COLON {
		p.advance()
		t, ok := p.parseTypeExpr()
		if !ok {
			return nil, false
		}
		typ = t
	}
	if _, ok := p.expect(token.ASSIGN); !ok {
		return nil, false
	}
	expr, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	end := p.expectSemicolon(start)
	return ast.NewLetStmt(name.Lexeme, typ, expr, spanFrom(start, end)), true
}

func (p *Parser) parseSetStmt() (ast.Stmt, bool) {
	start := p.cur.Span
	p.advance() // 'set'
	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.ASSIGN); !ok {
		return nil, false
	}
	expr, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	end := p.expectSemicolon(start)
	return ast.NewSetStmt(name.Lexeme, expr, spanFrom(start, end)), true
}

func (p *Parser) parseReturnStmt() (ast.Stmt, bool) {
	start := p.cur.Span
	p.advance() // 'return'
	if p.cur.Kind == token.SEMICOLON {
		end := p.cur.Span
		p.advance()
		return ast.NewReturnStmt(nil, spanFrom(start, end)), true
	}
	expr, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	end := p.expectSemicolon(start)
	return ast.NewReturnStmt(expr, spanFrom(start, end)), true
}

func (p *Parser) parseWhileStmt() (ast.Stmt, bool) {
	start := p.cur.Span
	p.advance() // 'while'
	p.noRecordLiteral = true
	cond, ok := p.parseExpr()
	p.noRecordLiteral = false
	if !ok {
		return nil, false
	}
	body, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}
	return ast.NewWhileStmt(cond, body, spanFrom(start, body.Span())), true
}

func (p *Parser) parseForStmt() (ast.Stmt, bool) {
	start := p.cur.Span
	p.advance() // 'for'
	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.IN); !ok {
		return nil, false
	}
	p.noRecordLiteral = true
	from, ok := p.parseExpr()
	if !ok {
		p.noRecordLiteral = false
		return nil, false
	}
	var inclusive bool
	switch p.cur.Kind {
	case token.RANGE:
		p.advance()
	case token.RANGE_INC:
		inclusive = true
		p.advance()
	default:
		p.noRecordLiteral = false
		p.recordError(p.cur.Span, fmt.Sprintf("expected '..' or '..=', got %s", p.cur.Kind))
		return nil, false
	}
	to, ok := p.parseExpr()
	if !ok {
		p.noRecordLiteral = false
		return nil, false
	}
	var step ast.Expr
	if p.cur.Kind == token.BY {
		p.advance()
		s, ok := p.parseExpr()
		if !ok {
			p.noRecordLiteral = false
			return nil, false
		}
		step = s
	}
	p.noRecordLiteral = false
	body, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}
	return ast.NewForStmt(name.Lexeme, from, to, inclusive, step, body, spanFrom(start, body.Span())), true
}

func (p *Parser) parseExprStmt() (ast.Stmt, bool) {
	start := p.cur.Span
	expr, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	// An if/match used as a statement, and a block's final expression
	// (its value), need no terminating ';'.
	switch expr.(type) {
	case *ast.IfExpr, *ast.MatchExpr:
		if p.cur.Kind != token.SEMICOLON {
			return ast.NewExprStmt(expr, expr.Span()), true
		}
	}
	if p.cur.Kind == token.RBRACE {
		return ast.NewExprStmt(expr, expr.Span()), true
	}
	end := p.expectSemicolon(start)
	return ast.NewExprStmt(expr, spanFrom(start, end)), true
}

// Expressions, lowest to highest precedence (spec.md §4.2):
// ||, &&, == !=, < <= > >=, + -, * /, unary (- !), postfix (. [] call).

func (p *Parser) parseExpr() (ast.Expr, bool) {
	switch p.cur.Kind {
	case token.IF:
		return p.parseIfExpr()
	case token.MATCH:
		return p.parseMatchExpr()
	default:
		return p.parseOr()
	}
}

func (p *Parser) parseIfExpr() (ast.Expr, bool) {
	start := p.cur.Span
	p.advance() // 'if'
	p.noRecordLiteral = true
	cond, ok := p.parseExpr()
	p.noRecordLiteral = false
	if !ok {
		return nil, false
	}
	then, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}
	var els *ast.BlockStmt
	end := then.Span()
	if p.cur.Kind == token.ELSE {
		p.advance()
		if p.cur.Kind == token.IF {
			// `else if` desugars to `else { if ... }`, following
			// original_source/roc/parser.py::parse_if_expr.
			innerStart := p.cur.Span
			inner, ok := p.parseIfExpr()
			if !ok {
				return nil, false
			}
			els = ast.NewBlockStmt([]ast.Stmt{ast.NewExprStmt(inner, inner.Span())}, innerStart)
		} else {
			b, ok := p.parseBlockStmt()
			if !ok {
				return nil, false
			}
			els = b
		}
		end = els.Span()
	}
	return ast.NewIfExpr(cond, then, els, spanFrom(start, end)), true
}

func (p *Parser) parseMatchExpr() (ast.Expr, bool) {
	start := p.cur.Span
	p.advance() // 'match'
	p.noRecordLiteral = true
	subject, ok := p.parseExpr()
	p.noRecordLiteral = false
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LBRACE); !ok {
		return nil, false
	}
	var arms []ast.MatchArm
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		pat, ok := p.parsePattern()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.FATARROW); !ok {
			return nil, false
		}
		body, ok := p.parseBlockStmt()
		if !ok {
			return nil, false
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
		if p.cur.Kind == token.SEMICOLON {
			p.advance() // trailing ';' after a match arm is optional
		}
	}
	end, ok := p.expect(token.RBRACE)
	if !ok {
		return nil, false
	}
	return ast.NewMatchExpr(subject, arms, spanFrom(start, end.Span)), true
}

func (p *Parser) parsePattern() (ast.Pattern, bool) {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.UNDERSCORE:
		p.advance()
		return ast.NewWildcardPattern(start), true
	case token.INT:
		lit, ok := p.parseIntLit()
		if !ok {
			return nil, false
		}
		return ast.NewLiteralPattern(lit, lit.Span()), true
	case token.STRING:
		lit := ast.NewStrLit(p.cur.Lexeme, p.cur.Span)
		p.advance()
		return ast.NewLiteralPattern(lit, lit.Span()), true
	case token.BOOL:
		lit := ast.NewBoolLit(p.cur.Lexeme == "true", p.cur.Span)
		p.advance()
		return ast.NewLiteralPattern(lit, lit.Span()), true
	case token.IDENT:
		name := p.cur.Lexeme
		nameEnd := start
		p.advance()
		qualifier := ""
		if p.cur.Kind == token.DOT {
			p.advance()
			variant, ok := p.expect(token.IDENT)
			if !ok {
				return nil, false
			}
			qualifier = name
			name = variant.Lexeme
			nameEnd = variant.Span
		}
		if p.cur.Kind == token.LPAREN {
			p.advance()
			var payload []ast.Pattern
			if p.cur.Kind != token.RPAREN {
				for {
					sub, ok := p.parsePattern()
					if !ok {
						return nil, false
					}
					payload = append(payload, sub)
					if p.cur.Kind != token.COMMA {
						break
					}
					p.advance()
				}
			}
			end, ok := p.expect(token.RPAREN)
			if !ok {
				return nil, false
			}
			return ast.NewVariantPattern(qualifier, name, payload, spanFrom(start, end.Span)), true
		}
		if qualifier != "" {
			return ast.NewVariantPattern(qualifier, name, nil, spanFrom(start, nameEnd)), true
		}
		return ast.NewBindPattern(name, start), true
	default:
		p.recordError(p.cur.Span, fmt.Sprintf("unexpected %s in pattern", p.cur.Kind))
		return nil, false
	}
}

func (p *Parser) parseOr() (ast.Expr, bool) {
	left, ok := p.parseAnd()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == token.OR {
		p.advance()
		right, ok := p.parseAnd()
		if !ok {
			return nil, false
		}
		left = ast.NewBinaryExpr(left, token.OR, right, spanFrom(left.Span(), right.Span()))
	}
	return left, true
}

func (p *Parser) parseAnd() (ast.Expr, bool) {
	left, ok := p.parseEquality()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == token.AND {
		p.advance()
		right, ok := p.parseEquality()
		if !ok {
			return nil, false
		}
		left = ast.NewBinaryExpr(left, token.AND, right, spanFrom(left.Span(), right.Span()))
	}
	return left, true
}

func (p *Parser) parseEquality() (ast.Expr, bool) {
	left, ok := p.parseRelational()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == token.EQ || p.cur.Kind == token.NEQ {
		op := p.cur.Kind
		p.advance()
		right, ok := p.parseRelational()
		if !ok {
			return nil, false
		}
		left = ast.NewBinaryExpr(left, op, right, spanFrom(left.Span(), right.Span()))
	}
	return left, true
}

func (p *Parser) parseRelational() (ast.Expr, bool) {
	left, ok := p.parseAdditive()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == token.LT || p.cur.Kind == token.LE || p.cur.Kind == token.GT || p.cur.Kind == token.GE {
		op := p.cur.Kind
		p.advance()
		right, ok := p.parseAdditive()
		if !ok {
			return nil, false
		}
		left = ast.NewBinaryExpr(left, op, right, spanFrom(left.Span(), right.Span()))
	}
	return left, true
}

func (p *Parser) parseAdditive() (ast.Expr, bool) {
	left, ok := p.parseMultiplicative()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == token.PLUS || p.cur.Kind == token.MINUS {
		op := p.cur.Kind
		p.advance()
		right, ok := p.parseMultiplicative()
		if !ok {
			return nil, false
		}
		left = ast.NewBinaryExpr(left, op, right, spanFrom(left.Span(), right.Span()))
	}
	return left, true
}

func (p *Parser) parseMultiplicative() (ast.Expr, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == token.STAR || p.cur.Kind == token.SLASH {
		op := p.cur.Kind
		p.advance()
		right, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		left = ast.NewBinaryExpr(left, op, right, spanFrom(left.Span(), right.Span()))
	}
	return left, true
}

func (p *Parser) parseUnary() (ast.Expr, bool) {
	if p.cur.Kind == token.MINUS || p.cur.Kind == token.NOT {
		op := p.cur.Kind
		start := p.cur.Span
		p.advance()
		operand, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		return ast.NewUnaryExpr(op, operand, spanFrom(start, operand.Span())), true
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for {
		switch p.cur.Kind {
		case token.DOT:
			p.advance()
			field, ok := p.expect(token.IDENT)
			if !ok {
				return nil, false
			}
			expr = ast.NewFieldAccessExpr(expr, field.Lexeme, spanFrom(expr.Span(), field.Span))
		case token.LBRACKET:
			p.advance()
			saved := p.noRecordLiteral
			p.noRecordLiteral = false
			idx, ok := p.parseExpr()
			p.noRecordLiteral = saved
			if !ok {
				return nil, false
			}
			end, ok := p.expect(token.RBRACKET)
			if !ok {
				return nil, false
			}
			expr = ast.NewIndexExpr(expr, idx, spanFrom(expr.Span(), end.Span))
		case token.LPAREN:
			p.advance()
			saved := p.noRecordLiteral
			p.noRecordLiteral = false
			var args []ast.Expr
			if p.cur.Kind != token.RPAREN {
				for {
					arg, ok := p.parseExpr()
					if !ok {
						p.noRecordLiteral = saved
						return nil, false
					}
					args = append(args, arg)
					if p.cur.Kind != token.COMMA {
						break
					}
					p.advance()
				}
			}
			p.noRecordLiteral = saved
			end, ok := p.expect(token.RPAREN)
			if !ok {
				return nil, false
			}
			expr = ast.NewCallExpr(expr, args, spanFrom(expr.Span(), end.Span))
		default:
			return expr, true
		}
	}
}

func (p *Parser) parseIntLit() (*ast.IntLit, bool) {
	start := p.cur.Span
	lexeme := p.cur.Lexeme
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		p.recordError(start, fmt.Sprintf("invalid integer literal %q", lexeme))
		return nil, false
	}
	p.advance()
	return ast.NewIntLit(v, start), true
}

func (p *Parser) parsePrimary() (ast.Expr, bool) {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.INT:
		return p.parseIntLit()
	case token.STRING:
		s := ast.NewStrLit(p.cur.Lexeme, start)
		p.advance()
		return s, true
	case token.BOOL:
		b := ast.NewBoolLit(p.cur.Lexeme == "true", start)
		p.advance()
		return b, true
	case token.IDENT:
		name := p.cur.Lexeme
		end := start
		p.advance()
		qualifier := ""
		if p.cur.Kind == token.DOT {
			// Lookahead-free: a qualified name is IDENT DOT IDENT, not
			// IDENT DOT followed by anything else. If what follows DOT
			// isn't an identifier this falls through expect()'s error.
			p.advance()
			member, ok := p.expect(token.IDENT)
			if !ok {
				return nil, false
			}
			qualifier = name
			name = member.Lexeme
			end = member.Span
		}
		return ast.NewIdentExpr(qualifier, name, spanFrom(start, end)), true
	case token.LPAREN:
		p.advance()
		saved := p.noRecordLiteral
		p.noRecordLiteral = false
		inner, ok := p.parseExpr()
		p.noRecordLiteral = saved
		if !ok {
			return nil, false
		}
		end, ok := p.expect(token.RPAREN)
		if !ok {
			return nil, false
		}
		return ast.NewParenExpr(inner, spanFrom(start, end.Span)), true
	case token.LBRACKET:
		return p.parseListExpr()
	case token.LBRACE:
		if p.noRecordLiteral {
			p.recordError(start, "record literal not allowed here; wrap it in parentheses")
			return nil, false
		}
		return p.parseRecordExpr()
	default:
		p.recordError(start, fmt.Sprintf("unexpected %s", p.cur.Kind))
		return nil, false
	}
}

func (p *Parser) parseListExpr() (ast.Expr, bool) {
	start := p.cur.Span
	p.advance() // '['
	saved := p.noRecordLiteral
	p.noRecordLiteral = false
	var elems []ast.Expr
	if p.cur.Kind != token.RBRACKET {
		for {
			e, ok := p.parseExpr()
			if !ok {
				p.noRecordLiteral = saved
				return nil, false
			}
			elems = append(elems, e)
			if p.cur.Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	p.noRecordLiteral = saved
	end, ok := p.expect(token.RBRACKET)
	if !ok {
		return nil, false
	}
	return ast.NewListExpr(elems, spanFrom(start, end.Span)), true
}

func (p *Parser) parseRecordExpr() (ast.Expr, bool) {
	start := p.cur.Span
	p.advance() // '{'
	var fields []ast.RecordField
	if p.cur.Kind != token.RBRACE {
		for {
			name, ok := p.expect(token.IDENT)
			if !ok {
				return nil, false
			}
			if _, ok := p.expect(token.COLON); !ok {
				return nil, false
			}
			val, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			fields = append(fields, ast.RecordField{Name: name.Lexeme, Value: val})
			if p.cur.Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	end, ok := p.expect(token.RBRACE)
	if !ok {
		return nil, false
	}
	return ast.NewRecordExpr(fields, spanFrom(start, end.Span)), true
}
