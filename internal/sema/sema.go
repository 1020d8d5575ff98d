// Package sema implements Lumen's type checker (C5), grounded on
// middleend/sema/sema.go's shape: a checker struct holding a
// *diagnostics.Collector, one analyze-style method per AST node kind, and
// diagnostics reported in place rather than returned as errors, generalized
// to spec.md §4.4's full structural-type rule table.
package sema

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/loader"
	"github.com/lumen-lang/lumen/internal/scope"
	"github.com/lumen-lang/lumen/internal/token"
	"github.com/lumen-lang/lumen/internal/types"
)

// Checker walks a module graph, checking every function body it finds.
type Checker struct {
	collector *diagnostics.Collector
	strict    bool
	checked   map[string]bool

	currentReturn types.Type
	loopDepth     int
}

// Check type-checks root and every module it transitively imports. strict
// mirrors the `strict_types` config toggle (spec.md §6): when true, a value
// of Unknown type reaching an operation is itself a type error rather than
// a silently-permitted placeholder.
func Check(collector *diagnostics.Collector, root *loader.Module, strict bool) {
	c := &Checker{collector: collector, strict: strict, checked: map[string]bool{}}
	c.checkModule(root)
}

func (c *Checker) report(span token.Span, format string, args ...any) {
	c.collector.Report(diagnostics.Diag{
		Phase:    diagnostics.Typecheck,
		Severity: diagnostics.Error,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *Checker) checkModule(mod *loader.Module) {
	if c.checked[mod.Name] {
		return
	}
	c.checked[mod.Name] = true
	for _, imp := range mod.Imports {
		c.checkModule(imp.Target)
	}
	c.checkDuplicateTopLevelNames(mod)
	for _, enumDef := range mod.File.Enums {
		c.checkEnumDef(mod, enumDef)
	}
	for _, fn := range mod.File.Fns {
		c.checkFnDef(mod, fn)
	}
}

// checkDuplicateTopLevelNames reports a second fn or enum declared with a
// name already used by an earlier one in the same module, mirroring
// typechecker.py's _collect_functions ("Function '%s' already defined").
func (c *Checker) checkDuplicateTopLevelNames(mod *loader.Module) {
	seen := map[string]token.Span{}
	for _, fn := range mod.File.Fns {
		if first, ok := seen[fn.Name]; ok {
			c.report(fn.Span(), "function %q already defined (first defined at %s)", fn.Name, first)
			continue
		}
		seen[fn.Name] = fn.Span()
	}
	for _, enumDef := range mod.File.Enums {
		if first, ok := seen[enumDef.Name]; ok {
			c.report(enumDef.Span(), "enum %q already defined (first defined at %s)", enumDef.Name, first)
			continue
		}
		seen[enumDef.Name] = enumDef.Span()
	}
}

func (c *Checker) checkEnumDef(mod *loader.Module, enumDef *ast.EnumDef) {
	for _, v := range enumDef.Variants {
		for _, te := range v.Payload {
			c.resolveTypeExpr(mod, te)
		}
	}
}

func (c *Checker) checkFnDef(mod *loader.Module, fn *ast.FnDef) {
	sc := scope.New[types.Type](nil)
	for _, p := range fn.Params {
		t := c.resolveParamType(mod, p.Type)
		if err := sc.Insert(p.Name, t); err != nil {
			c.report(fn.Span(), "parameter %q declared more than once", p.Name)
		}
	}
	retType := c.resolveReturnType(mod, fn.ReturnType)

	prevRet, prevDepth := c.currentReturn, c.loopDepth
	c.currentReturn, c.loopDepth = retType, 0
	c.checkBlock(mod, sc, fn.Body)
	c.currentReturn, c.loopDepth = prevRet, prevDepth
}

// checkBlock type-checks every statement in a block and returns the block's
// value type: the last ExprStmt's type, or Unit if the block is empty or
// ends in any other statement kind (spec.md §4.2).
func (c *Checker) checkBlock(mod *loader.Module, parent *scope.Scope[types.Type], block *ast.BlockStmt) types.Type {
	sc := scope.New(parent)
	last := types.Type(types.Unit)
	for _, stmt := range block.Stmts {
		last = c.checkStmt(mod, sc, stmt)
	}
	return last
}

func (c *Checker) checkStmt(mod *loader.Module, sc *scope.Scope[types.Type], stmt ast.Stmt) types.Type {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		exprType := c.checkExpr(mod, sc, s.Expr)
		declared := exprType
		if s.Type != nil {
			declared = c.resolveTypeExpr(mod, s.Type)
			if !c.compatible(declared, exprType) {
				c.report(s.Span(), "cannot assign value of type %s to %s (declared %s)", exprType, s.Name, declared)
			}
		}
		if err := sc.Insert(s.Name, declared); err != nil {
			c.report(s.Span(), "%q is already declared in this scope", s.Name)
		}
		return types.Unit
	case *ast.SetStmt:
		existing, err := sc.Lookup(s.Name)
		if err != nil {
			c.report(s.Span(), "%q is not declared", s.Name)
			c.checkExpr(mod, sc, s.Expr)
			return types.Unit
		}
		exprType := c.checkExpr(mod, sc, s.Expr)
		if !c.compatible(existing, exprType) {
			c.report(s.Span(), "cannot assign value of type %s to %q of type %s", exprType, s.Name, existing)
		}
		return types.Unit
	case *ast.ReturnStmt:
		retType := types.Type(types.Unit)
		if s.Expr != nil {
			retType = c.checkExpr(mod, sc, s.Expr)
		}
		if !c.compatible(c.currentReturn, retType) {
			c.report(s.Span(), "return type %s does not match declared return type %s", retType, c.currentReturn)
		}
		return types.Unit
	case *ast.WhileStmt:
		condType := c.checkExpr(mod, sc, s.Cond)
		c.expectBoolish(condType, s.Cond.Span())
		c.loopDepth++
		c.checkBlock(mod, sc, s.Body)
		c.loopDepth--
		return types.Unit
	case *ast.ForStmt:
		c.expectInt(c.checkExpr(mod, sc, s.Start), s.Start.Span())
		c.expectInt(c.checkExpr(mod, sc, s.End), s.End.Span())
		if s.Step != nil {
			c.expectInt(c.checkExpr(mod, sc, s.Step), s.Step.Span())
		}
		loopScope := scope.New(sc)
		if err := loopScope.Insert(s.Var, types.Int); err != nil {
			c.report(s.Span(), "%q is already declared in this scope", s.Var)
		}
		c.loopDepth++
		c.checkBlock(mod, loopScope, s.Body)
		c.loopDepth--
		return types.Unit
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			c.report(s.Span(), "break used outside of a loop")
		}
		return types.Unit
	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			c.report(s.Span(), "continue used outside of a loop")
		}
		return types.Unit
	case *ast.ExprStmt:
		return c.checkExpr(mod, sc, s.Expr)
	case *ast.ErrStmt:
		return types.Unit
	default:
		return types.Unit
	}
}

func (c *Checker) checkExpr(mod *loader.Module, sc *scope.Scope[types.Type], expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.IntLit:
		return types.Int
	case *ast.StrLit:
		return types.String
	case *ast.BoolLit:
		return types.Bool
	case *ast.IdentExpr:
		if e.Qualifier != "" {
			// `p.x` where p is a local binding is a record field access,
			// not a module-qualified name.
			if _, err := sc.Lookup(e.Qualifier); err == nil {
				return c.checkFieldAccess(mod, sc, ast.NewFieldAccessExpr(ast.NewIdentExpr("", e.Qualifier, e.Span()), e.Name, e.Span()))
			}
		}
		if t, ok := c.resolveValueIdent(mod, sc, e.Qualifier, e.Name); ok {
			return t
		}
		c.report(e.Span(), "undefined name %q", e.String())
		return types.Unknown
	case *ast.RecordExpr:
		fields := make(map[string]types.Type, len(e.Fields))
		for _, f := range e.Fields {
			fields[f.Name] = c.checkExpr(mod, sc, f.Value)
		}
		return types.NewRecordType(fields)
	case *ast.ListExpr:
		if len(e.Elems) == 0 {
			return types.NewListType(types.Unknown)
		}
		elem := c.checkExpr(mod, sc, e.Elems[0])
		for _, el := range e.Elems[1:] {
			t := c.checkExpr(mod, sc, el)
			if !c.compatible(elem, t) {
				c.report(el.Span(), "list elements must share a type: %s vs %s", elem, t)
			}
		}
		return types.NewListType(elem)
	case *ast.UnaryExpr:
		operand := c.checkExpr(mod, sc, e.Operand)
		return c.unaryOpType(e.Op, operand, e.Span())
	case *ast.BinaryExpr:
		left := c.checkExpr(mod, sc, e.Left)
		right := c.checkExpr(mod, sc, e.Right)
		return c.binaryOpType(e.Op, left, right, e.Span())
	case *ast.FieldAccessExpr:
		return c.checkFieldAccess(mod, sc, e)
	case *ast.IndexExpr:
		return c.checkIndex(mod, sc, e)
	case *ast.IfExpr:
		return c.checkIf(mod, sc, e)
	case *ast.MatchExpr:
		return c.checkMatch(mod, sc, e)
	case *ast.CallExpr:
		return c.checkCall(mod, sc, e)
	case *ast.ParenExpr:
		return c.checkExpr(mod, sc, e.Inner)
	default:
		return types.Unknown
	}
}

func (c *Checker) unaryOpType(op token.Kind, operand types.Type, span token.Span) types.Type {
	if types.IsUnknown(operand) {
		if c.strict {
			c.report(span, "strict mode forbids an operand of unknown type")
		}
		return types.Unknown
	}
	switch op {
	case token.MINUS:
		if types.Equal(operand, types.Int) {
			return types.Int
		}
		c.report(span, "no unary operator - for %s", operand)
		return types.Unknown
	case token.NOT:
		if types.Equal(operand, types.Bool) {
			return types.Bool
		}
		c.report(span, "no unary operator ! for %s", operand)
		return types.Unknown
	default:
		return types.Unknown
	}
}

func (c *Checker) checkFieldAccess(mod *loader.Module, sc *scope.Scope[types.Type], e *ast.FieldAccessExpr) types.Type {
	targetType := c.checkExpr(mod, sc, e.Target)
	if types.IsUnknown(targetType) {
		return types.Unknown
	}
	rec, ok := targetType.(types.RecordType)
	if !ok {
		c.report(e.Span(), "cannot access field %q on non-record type %s", e.Field, targetType)
		return types.Unknown
	}
	ft, ok := rec.Fields[e.Field]
	if !ok {
		c.report(e.Span(), "record type %s has no field %q", targetType, e.Field)
		return types.Unknown
	}
	return ft
}

func (c *Checker) checkIndex(mod *loader.Module, sc *scope.Scope[types.Type], e *ast.IndexExpr) types.Type {
	targetType := c.checkExpr(mod, sc, e.Target)
	indexType := c.checkExpr(mod, sc, e.Index)
	c.expectInt(indexType, e.Index.Span())
	if types.IsUnknown(targetType) {
		return types.Unknown
	}
	lt, ok := targetType.(types.ListType)
	if !ok {
		c.report(e.Span(), "cannot index non-list type %s", targetType)
		return types.Unknown
	}
	return lt.Elem
}

func (c *Checker) checkIf(mod *loader.Module, sc *scope.Scope[types.Type], e *ast.IfExpr) types.Type {
	condType := c.checkExpr(mod, sc, e.Cond)
	c.expectBoolish(condType, e.Cond.Span())
	thenType := c.checkBlock(mod, sc, e.Then)
	if e.Else == nil {
		return types.Unit
	}
	elseType := c.checkBlock(mod, sc, e.Else)
	// spec's if/else join is permissive by design: mismatched branch types
	// are not a type error, the whole expression just degrades to Unit.
	if types.Equal(thenType, elseType) {
		return thenType
	}
	return types.Unit
}

func (c *Checker) checkMatch(mod *loader.Module, sc *scope.Scope[types.Type], e *ast.MatchExpr) types.Type {
	subjType := c.checkExpr(mod, sc, e.Subject)
	result := types.Type(types.Unit)
	for i, arm := range e.Arms {
		armScope := scope.New(sc)
		c.bindPattern(mod, armScope, arm.Pattern, subjType)
		armType := c.checkBlock(mod, armScope, arm.Body)
		if i == 0 {
			result = armType
			continue
		}
		if !types.Equal(result, armType) {
			c.report(arm.Body.Span(), "match arm has type %s, first arm has type %s", armType, result)
		}
	}
	return result
}

func (c *Checker) checkCall(mod *loader.Module, sc *scope.Scope[types.Type], call *ast.CallExpr) types.Type {
	ident, ok := call.Callee.(*ast.IdentExpr)
	if !ok {
		c.report(call.Span(), "call target must be a function or enum variant name")
		for _, a := range call.Args {
			c.checkExpr(mod, sc, a)
		}
		return types.Unknown
	}
	if ident.Qualifier == "" && ident.Name == "print" {
		for _, a := range call.Args {
			c.checkExpr(mod, sc, a)
		}
		return types.Unit
	}
	if params, ret, ok := c.findFn(mod, ident.Qualifier, ident.Name); ok {
		c.checkArgs(mod, sc, call, params)
		return ret
	}
	if enumType, payload, ok := c.findVariant(mod, ident.Qualifier, ident.Name); ok {
		c.checkArgs(mod, sc, call, payload)
		return enumType
	}
	c.report(call.Span(), "%q is not a function or enum variant", ident.String())
	for _, a := range call.Args {
		c.checkExpr(mod, sc, a)
	}
	return types.Unknown
}

func (c *Checker) checkArgs(mod *loader.Module, sc *scope.Scope[types.Type], call *ast.CallExpr, expected []types.Type) {
	if len(call.Args) != len(expected) {
		c.report(call.Span(), "expected %d argument(s), got %d", len(expected), len(call.Args))
	}
	for i, arg := range call.Args {
		at := c.checkExpr(mod, sc, arg)
		if i < len(expected) && !c.compatible(expected[i], at) {
			c.report(arg.Span(), "argument %d: expected %s, got %s", i+1, expected[i], at)
		}
	}
}

// resolveValueIdent resolves a bare or qualified identifier used as a
// value: a local variable, an imported or local function (first-class, as
// an FnType), or a zero-payload enum variant constructor.
func (c *Checker) resolveValueIdent(mod *loader.Module, sc *scope.Scope[types.Type], qualifier, name string) (types.Type, bool) {
	if qualifier == "" {
		if t, err := sc.Lookup(name); err == nil {
			return t, true
		}
	}
	if params, ret, ok := c.findFn(mod, qualifier, name); ok {
		return types.NewFnType(params, ret), true
	}
	if enumType, payload, ok := c.findVariant(mod, qualifier, name); ok && len(payload) == 0 {
		return enumType, true
	}
	return nil, false
}

func (c *Checker) findFn(mod *loader.Module, qualifier, name string) ([]types.Type, types.Type, bool) {
	target := mod
	if qualifier != "" {
		binding, ok := mod.Imports[qualifier]
		if !ok {
			return nil, nil, false
		}
		target = binding.Target
	}
	fn, ok := target.FnDef(name)
	if !ok {
		return nil, nil, false
	}
	if qualifier != "" && !target.IsExported(name) {
		return nil, nil, false
	}
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = c.resolveParamType(target, p.Type)
	}
	return params, c.resolveReturnType(target, fn.ReturnType), true
}

func (c *Checker) findVariant(mod *loader.Module, qualifier, name string) (types.EnumType, []types.Type, bool) {
	target := mod
	if qualifier != "" {
		binding, ok := mod.Imports[qualifier]
		if !ok {
			return types.EnumType{}, nil, false
		}
		target = binding.Target
	}
	for _, enumDef := range target.File.Enums {
		for _, v := range enumDef.Variants {
			if v.Name != name {
				continue
			}
			if qualifier != "" && !target.IsExported(enumDef.Name) {
				return types.EnumType{}, nil, false
			}
			payload := make([]types.Type, len(v.Payload))
			for i, te := range v.Payload {
				payload[i] = c.resolveTypeExpr(target, te)
			}
			return types.NewEnumType(target.Name, enumDef.Name), payload, true
		}
	}
	return types.EnumType{}, nil, false
}

// enumDefFor locates the EnumDef/module backing an EnumType reachable from
// mod (itself or a direct import), used to disambiguate a bare BindPattern
// that might actually name a zero-payload variant (spec.md §4.2: "a bare
// identifier pattern doubles as a variant match when it names one").
func (c *Checker) enumDefFor(mod *loader.Module, et types.EnumType) (*ast.EnumDef, *loader.Module, bool) {
	candidates := []*loader.Module{mod}
	for _, imp := range mod.Imports {
		candidates = append(candidates, imp.Target)
	}
	for _, m := range candidates {
		if m.Name != et.Qualifier {
			continue
		}
		if def, ok := m.EnumDef(et.Name); ok {
			return def, m, true
		}
	}
	return nil, nil, false
}

func (c *Checker) bindPattern(mod *loader.Module, into *scope.Scope[types.Type], pat ast.Pattern, subjectType types.Type) {
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.LiteralPattern:
		// nothing to bind
	case *ast.BindPattern:
		if et, ok := subjectType.(types.EnumType); ok {
			if def, _, found := c.enumDefFor(mod, et); found {
				for _, v := range def.Variants {
					if v.Name == p.Name && len(v.Payload) == 0 {
						return
					}
				}
			}
		}
		if err := into.Insert(p.Name, subjectType); err != nil {
			c.report(p.Span(), "%q is already bound in this pattern", p.Name)
		}
	case *ast.VariantPattern:
		enumType, payloadTypes, ok := c.findVariant(mod, p.Qualifier, p.Variant)
		if !ok {
			c.report(p.Span(), "unknown enum variant %q", p.Variant)
			return
		}
		if !types.IsUnknown(subjectType) && !types.Equal(subjectType, enumType) {
			c.report(p.Span(), "pattern matches %s but subject has type %s", enumType, subjectType)
		}
		if len(p.Payload) != len(payloadTypes) {
			c.report(p.Span(), "variant %q takes %d payload value(s), pattern has %d", p.Variant, len(payloadTypes), len(p.Payload))
			return
		}
		for i, sub := range p.Payload {
			c.bindPattern(mod, into, sub, payloadTypes[i])
		}
	}
}

func (c *Checker) resolveParamType(mod *loader.Module, te ast.TypeExpr) types.Type {
	if te == nil {
		return types.Unknown
	}
	return c.resolveTypeExpr(mod, te)
}

func (c *Checker) resolveReturnType(mod *loader.Module, te ast.TypeExpr) types.Type {
	if te == nil {
		return types.Unit
	}
	return c.resolveTypeExpr(mod, te)
}

func (c *Checker) resolveTypeExpr(mod *loader.Module, te ast.TypeExpr) types.Type {
	switch t := te.(type) {
	case *ast.NamedTypeExpr:
		if t.Qualifier == "" {
			switch t.Name {
			case "Int":
				return types.Int
			case "Bool":
				return types.Bool
			case "String":
				return types.String
			case "Unit":
				return types.Unit
			}
			if _, ok := mod.EnumDef(t.Name); ok {
				return types.NewEnumType(mod.Name, t.Name)
			}
			c.report(t.Span(), "unknown type %q", t.Name)
			return types.Unknown
		}
		binding, ok := mod.Imports[t.Qualifier]
		if !ok {
			c.report(t.Span(), "unknown module %q", t.Qualifier)
			return types.Unknown
		}
		if _, ok := binding.Target.EnumDef(t.Name); !ok {
			c.report(t.Span(), "unknown type %s.%s", t.Qualifier, t.Name)
			return types.Unknown
		}
		if !binding.Target.IsExported(t.Name) {
			c.report(t.Span(), "type %s.%s is not exported", t.Qualifier, t.Name)
			return types.Unknown
		}
		return types.NewEnumType(binding.Target.Name, t.Name)
	case *ast.ListTypeExpr:
		return types.NewListType(c.resolveTypeExpr(mod, t.Elem))
	case *ast.RecordTypeExpr:
		fields := make(map[string]types.Type, len(t.Fields))
		for _, f := range t.Fields {
			fields[f.Name] = c.resolveTypeExpr(mod, f.Type)
		}
		return types.NewRecordType(fields)
	default:
		return types.Unknown
	}
}

// compatible reports whether a value of type actual may be used where
// expected is required. Unknown is permissive unless strict mode is on
// (spec.md §6's strict_types toggle).
func (c *Checker) compatible(expected, actual types.Type) bool {
	if types.Equal(expected, actual) {
		return true
	}
	if c.strict {
		return false
	}
	return types.IsUnknown(expected) || types.IsUnknown(actual)
}

func (c *Checker) expectBoolish(t types.Type, span token.Span) {
	if types.IsUnknown(t) {
		if c.strict {
			c.report(span, "strict mode forbids a condition of unknown type")
		}
		return
	}
	if !types.Equal(t, types.Bool) {
		c.report(span, "condition must be Bool, got %s", t)
	}
}

func (c *Checker) expectInt(t types.Type, span token.Span) {
	if types.IsUnknown(t) {
		if c.strict {
			c.report(span, "strict mode forbids a value of unknown type here")
		}
		return
	}
	if !types.Equal(t, types.Int) {
		c.report(span, "expected Int, got %s", t)
	}
}

func (c *Checker) binaryOpType(op token.Kind, left, right types.Type, span token.Span) types.Type {
	if types.IsUnknown(left) || types.IsUnknown(right) {
		if c.strict {
			c.report(span, "strict mode forbids an operand of unknown type")
		}
		return types.Unknown
	}
	switch op {
	case token.PLUS:
		if types.Equal(left, types.Int) && types.Equal(right, types.Int) {
			return types.Int
		}
		if types.Equal(left, types.String) || types.Equal(right, types.String) {
			return types.String
		}
		c.report(span, "no operator + for %s and %s", left, right)
		return types.Unknown
	case token.MINUS, token.STAR, token.SLASH:
		if types.Equal(left, types.Int) && types.Equal(right, types.Int) {
			return types.Int
		}
		c.report(span, "no operator %s for %s and %s", op, left, right)
		return types.Unknown
	case token.LT, token.LE, token.GT, token.GE:
		if types.Equal(left, types.Int) && types.Equal(right, types.Int) {
			return types.Bool
		}
		c.report(span, "no operator %s for %s and %s", op, left, right)
		return types.Unknown
	case token.EQ, token.NEQ:
		if types.Equal(left, right) {
			return types.Bool
		}
		c.report(span, "cannot compare %s and %s", left, right)
		return types.Unknown
	case token.AND, token.OR:
		if types.Equal(left, types.Bool) && types.Equal(right, types.Bool) {
			return types.Bool
		}
		c.report(span, "no operator %s for %s and %s", op, left, right)
		return types.Unknown
	default:
		return types.Unknown
	}
}
