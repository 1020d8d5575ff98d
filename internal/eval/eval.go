// Package eval implements Lumen's tree-walking evaluator (C6), grounded on
// spec.md §4.5/§9 for the signal-based non-local-exit design and on
// original_source/roc/interpreter.py for the exact arithmetic, comparison,
// and truthiness rules where the distilled spec is silent on the algorithm
// (truncating integer division, `+`'s string-coercion rule, the closed
// truthiness table).
package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/loader"
	"github.com/lumen-lang/lumen/internal/scope"
	"github.com/lumen-lang/lumen/internal/token"
	"github.com/lumen-lang/lumen/internal/types"
	"github.com/lumen-lang/lumen/internal/value"
)

// binding is a scope entry: a value plus the mutability flag spec.md's data
// model calls for (every binding Lumen ever creates is mutable via `set`;
// the flag is carried for fidelity with that data model rather than to gate
// any current restriction).
type binding struct {
	Value   value.Value
	Mutable bool
}

// Namespace is eval's concrete implementation of value.Namespace: a handle
// to the module whose top-level names a Function's free identifiers resolve
// against (spec.md §9: "closures only capture the immutable module
// namespace handle, never caller scopes").
type Namespace struct {
	mod *loader.Module
}

func (n *Namespace) Name() string { return n.mod.Name }

// signals implement error so they can be propagated through eval's
// (value, error) return convention alongside genuine runtime errors; a
// signal that reaches evalBlock's caller is unwrapped by whichever catcher
// the design calls for (loop body: Break/Continue; function body: Return).
type breakSignal struct{}

func (breakSignal) Error() string { return "break outside of a loop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue outside of a loop" }

type returnSignal struct{ Value value.Value }

func (returnSignal) Error() string { return "return outside of a function" }

type callFrame struct {
	Name string
	Span token.Span
}

// Evaluator runs one compiled module graph to completion, writing `print`
// output to Out and accumulating runtime diagnostics into Collector.
type Evaluator struct {
	collector *diagnostics.Collector
	out       io.Writer
	maxSteps  int
	steps     int
	callStack []callFrame
}

// New builds an Evaluator. maxSteps <= 0 means no ceiling (spec.md §6's
// `max_steps: none` default).
func New(collector *diagnostics.Collector, out io.Writer, maxSteps int) *Evaluator {
	return &Evaluator{collector: collector, out: out, maxSteps: maxSteps}
}

// Run calls root's zero-argument `main` function (spec.md §6).
func (e *Evaluator) Run(root *loader.Module) error {
	main, ok := root.FnDef("main")
	if !ok {
		return e.runtimeError(token.Span{}, "no 'main' function defined in %s", root.Name)
	}
	if len(main.Params) != 0 {
		return e.runtimeError(main.Span(), "'main' must take zero arguments")
	}
	_, err := e.callFunction(root, main, nil, main.Span())
	return err
}

func (e *Evaluator) runtimeError(span token.Span, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if len(e.callStack) > 0 {
		parts := make([]string, len(e.callStack))
		for i, f := range e.callStack {
			parts[i] = fmt.Sprintf("%s (%s)", f.Name, f.Span)
		}
		msg = msg + " [call chain: " + strings.Join(parts, " -> ") + "]"
	}
	e.collector.Report(diagnostics.Diag{
		Phase:    diagnostics.Runtime,
		Severity: diagnostics.Error,
		Span:     span,
		Message:  msg,
	})
	return diagnostics.ErrHasDiagnostics
}

// tickStep enforces the step ceiling (spec.md §5's "optional step-count
// ceiling"). Called once per statement, once per loop iteration, and once
// per expression evaluated.
func (e *Evaluator) tickStep(span token.Span) error {
	if e.maxSteps <= 0 {
		return nil
	}
	e.steps++
	if e.steps > e.maxSteps {
		return e.runtimeError(span, "exceeded maximum step count (%d)", e.maxSteps)
	}
	return nil
}

// evalBlock is the single block-evaluator used for function bodies, loop
// bodies, and if/match arm bodies alike. Its return value is the value of
// the block's last ExprStmt, or Unit (spec.md §4.2). Break/Continue/Return
// signals are returned unchanged so the caller (loop, function, or a
// transparently-passing if/match arm) decides whether to catch them.
func (e *Evaluator) evalBlock(ns *Namespace, parent *scope.Scope[binding], block *ast.BlockStmt) (value.Value, error) {
	sc := scope.New(parent)
	last := value.Value(value.Unit{})
	for _, stmt := range block.Stmts {
		v, err := e.execStmt(ns, sc, stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (e *Evaluator) execStmt(ns *Namespace, sc *scope.Scope[binding], stmt ast.Stmt) (value.Value, error) {
	if err := e.tickStep(stmt.Span()); err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v, err := e.evalExpr(ns, sc, s.Expr)
		if err != nil {
			return nil, err
		}
		if err := sc.Insert(s.Name, binding{Value: v, Mutable: true}); err != nil {
			return nil, e.runtimeError(s.Span(), "%q is already defined in this scope", s.Name)
		}
		return value.Unit{}, nil
	case *ast.SetStmt:
		v, err := e.evalExpr(ns, sc, s.Expr)
		if err != nil {
			return nil, err
		}
		if err := sc.Assign(s.Name, binding{Value: v, Mutable: true}); err != nil {
			return nil, e.runtimeError(s.Span(), "undefined variable %q", s.Name)
		}
		return value.Unit{}, nil
	case *ast.ReturnStmt:
		v := value.Value(value.Unit{})
		if s.Expr != nil {
			var err error
			v, err = e.evalExpr(ns, sc, s.Expr)
			if err != nil {
				return nil, err
			}
		}
		return nil, returnSignal{Value: v}
	case *ast.WhileStmt:
		return e.execWhile(ns, sc, s)
	case *ast.ForStmt:
		return e.execFor(ns, sc, s)
	case *ast.BreakStmt:
		return nil, breakSignal{}
	case *ast.ContinueStmt:
		return nil, continueSignal{}
	case *ast.ExprStmt:
		return e.evalExpr(ns, sc, s.Expr)
	case *ast.ErrStmt:
		return value.Unit{}, nil
	default:
		return value.Unit{}, nil
	}
}

func (e *Evaluator) execWhile(ns *Namespace, sc *scope.Scope[binding], s *ast.WhileStmt) (value.Value, error) {
	for {
		if err := e.tickStep(s.Span()); err != nil {
			return nil, err
		}
		cond, err := e.evalExpr(ns, sc, s.Cond)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(cond) {
			return value.Unit{}, nil
		}
		_, err = e.evalBlock(ns, sc, s.Body)
		if err == nil {
			continue
		}
		if _, ok := err.(breakSignal); ok {
			return value.Unit{}, nil
		}
		if _, ok := err.(continueSignal); ok {
			continue
		}
		return nil, err
	}
}

func (e *Evaluator) execFor(ns *Namespace, sc *scope.Scope[binding], s *ast.ForStmt) (value.Value, error) {
	startVal, err := e.evalExpr(ns, sc, s.Start)
	if err != nil {
		return nil, err
	}
	start, err := e.asInt(startVal, s.Start.Span())
	if err != nil {
		return nil, err
	}
	endVal, err := e.evalExpr(ns, sc, s.End)
	if err != nil {
		return nil, err
	}
	end, err := e.asInt(endVal, s.End.Span())
	if err != nil {
		return nil, err
	}

	var step int64
	explicitStep := s.Step != nil
	if explicitStep {
		stepVal, err := e.evalExpr(ns, sc, s.Step)
		if err != nil {
			return nil, err
		}
		step, err = e.asInt(stepVal, s.Step.Span())
		if err != nil {
			return nil, err
		}
		if step == 0 {
			return nil, e.runtimeError(s.Step.Span(), "for step cannot be zero")
		}
		if start <= end && step < 0 {
			return nil, e.runtimeError(s.Step.Span(), "for step must be positive for an increasing range")
		}
		if start > end && step > 0 {
			return nil, e.runtimeError(s.Step.Span(), "for step must be negative for a decreasing range")
		}
	} else if start <= end {
		step = 1
	} else {
		step = -1
	}

	inRange := func(cur int64) bool {
		if step > 0 {
			if s.Inclusive {
				return cur <= end
			}
			return cur < end
		}
		if s.Inclusive {
			return cur >= end
		}
		return cur > end
	}

	for cur := start; inRange(cur); cur += step {
		if err := e.tickStep(s.Span()); err != nil {
			return nil, err
		}
		loopScope := scope.New(sc)
		loopScope.Insert(s.Var, binding{Value: value.Integer(cur), Mutable: true})
		_, err := e.evalBlock(ns, loopScope, s.Body)
		if err == nil {
			continue
		}
		if _, ok := err.(breakSignal); ok {
			return value.Unit{}, nil
		}
		if _, ok := err.(continueSignal); ok {
			continue
		}
		return nil, err
	}
	return value.Unit{}, nil
}

func (e *Evaluator) evalExpr(ns *Namespace, sc *scope.Scope[binding], expr ast.Expr) (value.Value, error) {
	if err := e.tickStep(expr.Span()); err != nil {
		return nil, err
	}
	switch ex := expr.(type) {
	case *ast.IntLit:
		return value.Integer(ex.Value), nil
	case *ast.StrLit:
		return value.String(ex.Value), nil
	case *ast.BoolLit:
		return value.Boolean(ex.Value), nil
	case *ast.IdentExpr:
		return e.evalIdent(ns, sc, ex)
	case *ast.RecordExpr:
		return e.evalRecord(ns, sc, ex)
	case *ast.ListExpr:
		return e.evalList(ns, sc, ex)
	case *ast.UnaryExpr:
		return e.evalUnary(ns, sc, ex)
	case *ast.BinaryExpr:
		return e.evalBinary(ns, sc, ex)
	case *ast.FieldAccessExpr:
		return e.evalFieldAccess(ns, sc, ex)
	case *ast.IndexExpr:
		return e.evalIndex(ns, sc, ex)
	case *ast.IfExpr:
		return e.evalIf(ns, sc, ex)
	case *ast.MatchExpr:
		return e.evalMatch(ns, sc, ex)
	case *ast.CallExpr:
		return e.evalCall(ns, sc, ex)
	case *ast.ParenExpr:
		return e.evalExpr(ns, sc, ex.Inner)
	default:
		return nil, e.runtimeError(expr.Span(), "cannot evaluate %s", expr)
	}
}

func (e *Evaluator) evalIdent(ns *Namespace, sc *scope.Scope[binding], ex *ast.IdentExpr) (value.Value, error) {
	if ex.Qualifier == "" {
		if b, err := sc.Lookup(ex.Name); err == nil {
			return b.Value, nil
		}
	}
	if ex.Qualifier != "" {
		// `p.x` where p is a local binding is a record field access, not a
		// module-qualified name.
		if _, err := sc.Lookup(ex.Qualifier); err == nil {
			return e.evalFieldAccess(ns, sc, ast.NewFieldAccessExpr(ast.NewIdentExpr("", ex.Qualifier, ex.Span()), ex.Name, ex.Span()))
		}
	}
	target := ns.mod
	if ex.Qualifier != "" {
		imp, ok := ns.mod.Imports[ex.Qualifier]
		if !ok {
			return nil, e.runtimeError(ex.Span(), "unknown module %q", ex.Qualifier)
		}
		target = imp.Target
	}
	if fn, ok := target.FnDef(ex.Name); ok {
		if ex.Qualifier != "" && !target.IsExported(ex.Name) {
			return nil, e.runtimeError(ex.Span(), "%s is not exported by %s", ex.Name, target.Name)
		}
		return e.makeFunction(target, fn), nil
	}
	if enumDef, variant, ok := findVariantDef(target, ex.Name); ok && len(variant.Payload) == 0 {
		if ex.Qualifier != "" && !target.IsExported(enumDef.Name) {
			return nil, e.runtimeError(ex.Span(), "%s is not exported by %s", enumDef.Name, target.Name)
		}
		return value.NewEnumVariant(types.NewEnumType(target.Name, enumDef.Name), variant.Name, nil), nil
	}
	return nil, e.runtimeError(ex.Span(), "undefined name %q", ex.String())
}

func (e *Evaluator) makeFunction(mod *loader.Module, fn *ast.FnDef) *value.Function {
	params := make([]types.Type, len(fn.Params))
	for i := range params {
		params[i] = types.Unknown
	}
	return &value.Function{Def: fn, ParamTypes: params, RetType: types.Unknown, Namespace: &Namespace{mod: mod}}
}

// findVariantDef looks up a variant by name among mod's own enum
// definitions, regardless of its payload arity; callers decide what arity
// they expect.
func findVariantDef(mod *loader.Module, name string) (*ast.EnumDef, *ast.EnumVariant, bool) {
	for _, enumDef := range mod.File.Enums {
		for i := range enumDef.Variants {
			if enumDef.Variants[i].Name == name {
				return enumDef, &enumDef.Variants[i], true
			}
		}
	}
	return nil, nil, false
}

func (e *Evaluator) evalRecord(ns *Namespace, sc *scope.Scope[binding], ex *ast.RecordExpr) (value.Value, error) {
	order := make([]string, 0, len(ex.Fields))
	fields := make(map[string]value.Value, len(ex.Fields))
	for _, f := range ex.Fields {
		if _, exists := fields[f.Name]; exists {
			return nil, e.runtimeError(ex.Span(), "duplicate field %q in record literal", f.Name)
		}
		v, err := e.evalExpr(ns, sc, f.Value)
		if err != nil {
			return nil, err
		}
		order = append(order, f.Name)
		fields[f.Name] = v
	}
	return value.NewRecord(order, fields), nil
}

func (e *Evaluator) evalList(ns *Namespace, sc *scope.Scope[binding], ex *ast.ListExpr) (value.Value, error) {
	elems := make([]value.Value, len(ex.Elems))
	for i, el := range ex.Elems {
		v, err := e.evalExpr(ns, sc, el)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	elemType := types.Type(types.Unknown)
	if len(elems) > 0 {
		elemType = elems[0].Type()
	}
	return value.NewList(elems, elemType), nil
}

func (e *Evaluator) evalUnary(ns *Namespace, sc *scope.Scope[binding], ex *ast.UnaryExpr) (value.Value, error) {
	v, err := e.evalExpr(ns, sc, ex.Operand)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case token.MINUS:
		i, err := e.asInt(v, ex.Span())
		if err != nil {
			return nil, err
		}
		return value.Integer(-i), nil
	case token.NOT:
		b, err := e.asBool(v, ex.Span())
		if err != nil {
			return nil, err
		}
		return value.Boolean(!b), nil
	default:
		return nil, e.runtimeError(ex.Span(), "unknown unary operator %s", ex.Op)
	}
}

func (e *Evaluator) evalBinary(ns *Namespace, sc *scope.Scope[binding], ex *ast.BinaryExpr) (value.Value, error) {
	if ex.Op == token.AND || ex.Op == token.OR {
		return e.evalShortCircuit(ns, sc, ex)
	}
	left, err := e.evalExpr(ns, sc, ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(ns, sc, ex.Right)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case token.PLUS:
		_, leftIsStr := left.(value.String)
		_, rightIsStr := right.(value.String)
		if leftIsStr || rightIsStr {
			return value.String(left.Display() + right.Display()), nil
		}
		li, err := e.asInt(left, ex.Left.Span())
		if err != nil {
			return nil, err
		}
		ri, err := e.asInt(right, ex.Right.Span())
		if err != nil {
			return nil, err
		}
		return value.Integer(li + ri), nil
	case token.MINUS, token.STAR, token.SLASH:
		li, err := e.asInt(left, ex.Left.Span())
		if err != nil {
			return nil, err
		}
		ri, err := e.asInt(right, ex.Right.Span())
		if err != nil {
			return nil, err
		}
		switch ex.Op {
		case token.MINUS:
			return value.Integer(li - ri), nil
		case token.STAR:
			return value.Integer(li * ri), nil
		case token.SLASH:
			if ri == 0 {
				return nil, e.runtimeError(ex.Span(), "division by zero")
			}
			return value.Integer(li / ri), nil
		}
	case token.LT, token.LE, token.GT, token.GE:
		li, err := e.asInt(left, ex.Left.Span())
		if err != nil {
			return nil, err
		}
		ri, err := e.asInt(right, ex.Right.Span())
		if err != nil {
			return nil, err
		}
		switch ex.Op {
		case token.LT:
			return value.Boolean(li < ri), nil
		case token.LE:
			return value.Boolean(li <= ri), nil
		case token.GT:
			return value.Boolean(li > ri), nil
		case token.GE:
			return value.Boolean(li >= ri), nil
		}
	case token.EQ:
		return value.Boolean(e.valuesEqual(left, right)), nil
	case token.NEQ:
		return value.Boolean(!e.valuesEqual(left, right)), nil
	}
	return nil, e.runtimeError(ex.Span(), "unknown operator %s", ex.Op)
}

func (e *Evaluator) evalShortCircuit(ns *Namespace, sc *scope.Scope[binding], ex *ast.BinaryExpr) (value.Value, error) {
	left, err := e.evalExpr(ns, sc, ex.Left)
	if err != nil {
		return nil, err
	}
	lb, err := e.asBool(left, ex.Left.Span())
	if err != nil {
		return nil, err
	}
	if ex.Op == token.AND && !lb {
		return value.Boolean(false), nil
	}
	if ex.Op == token.OR && lb {
		return value.Boolean(true), nil
	}
	right, err := e.evalExpr(ns, sc, ex.Right)
	if err != nil {
		return nil, err
	}
	rb, err := e.asBool(right, ex.Right.Span())
	if err != nil {
		return nil, err
	}
	return value.Boolean(rb), nil
}

func (e *Evaluator) valuesEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Integer:
		bv, ok := b.(value.Integer)
		return ok && av == bv
	case value.String:
		bv, ok := b.(value.String)
		return ok && av == bv
	case value.Boolean:
		bv, ok := b.(value.Boolean)
		return ok && av == bv
	case value.Unit:
		_, ok := b.(value.Unit)
		return ok
	case *value.Record:
		bv, ok := b.(*value.Record)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, v := range av.Fields {
			ov, ok := bv.Fields[name]
			if !ok || !e.valuesEqual(v, ov) {
				return false
			}
		}
		return true
	case *value.List:
		bv, ok := b.(*value.List)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !e.valuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *value.EnumVariant:
		bv, ok := b.(*value.EnumVariant)
		if !ok || av.Variant != bv.Variant || !types.Equal(av.Enum, bv.Enum) || len(av.Payload) != len(bv.Payload) {
			return false
		}
		for i := range av.Payload {
			if !e.valuesEqual(av.Payload[i], bv.Payload[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (e *Evaluator) evalFieldAccess(ns *Namespace, sc *scope.Scope[binding], ex *ast.FieldAccessExpr) (value.Value, error) {
	target, err := e.evalExpr(ns, sc, ex.Target)
	if err != nil {
		return nil, err
	}
	rec, ok := target.(*value.Record)
	if !ok {
		return nil, e.runtimeError(ex.Span(), "cannot access field %q on a non-record value", ex.Field)
	}
	v, ok := rec.Fields[ex.Field]
	if !ok {
		return nil, e.runtimeError(ex.Span(), "record has no field %q", ex.Field)
	}
	return v, nil
}

func (e *Evaluator) evalIndex(ns *Namespace, sc *scope.Scope[binding], ex *ast.IndexExpr) (value.Value, error) {
	target, err := e.evalExpr(ns, sc, ex.Target)
	if err != nil {
		return nil, err
	}
	idxVal, err := e.evalExpr(ns, sc, ex.Index)
	if err != nil {
		return nil, err
	}
	idx, err := e.asInt(idxVal, ex.Index.Span())
	if err != nil {
		return nil, err
	}
	lst, ok := target.(*value.List)
	if !ok {
		return nil, e.runtimeError(ex.Span(), "cannot index a non-list value")
	}
	if idx < 0 || idx >= int64(len(lst.Elems)) {
		return nil, e.runtimeError(ex.Span(), "index %d out of bounds (length %d)", idx, len(lst.Elems))
	}
	return lst.Elems[idx], nil
}

func (e *Evaluator) evalIf(ns *Namespace, sc *scope.Scope[binding], ex *ast.IfExpr) (value.Value, error) {
	cond, err := e.evalExpr(ns, sc, ex.Cond)
	if err != nil {
		return nil, err
	}
	if value.Truthy(cond) {
		return e.evalBlock(ns, sc, ex.Then)
	}
	if ex.Else == nil {
		return value.Unit{}, nil
	}
	return e.evalBlock(ns, sc, ex.Else)
}

func (e *Evaluator) evalMatch(ns *Namespace, sc *scope.Scope[binding], ex *ast.MatchExpr) (value.Value, error) {
	subject, err := e.evalExpr(ns, sc, ex.Subject)
	if err != nil {
		return nil, err
	}
	for _, arm := range ex.Arms {
		armScope := scope.New(sc)
		matched, err := e.matchPattern(ns, armScope, arm.Pattern, subject)
		if err != nil {
			return nil, err
		}
		if matched {
			return e.evalBlock(ns, armScope, arm.Body)
		}
	}
	return nil, e.runtimeError(ex.Span(), "no match arm matched %s", subject.Display())
}

func (e *Evaluator) matchPattern(ns *Namespace, into *scope.Scope[binding], pat ast.Pattern, subject value.Value) (bool, error) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true, nil
	case *ast.LiteralPattern:
		litVal, err := e.evalExpr(ns, into, p.Value)
		if err != nil {
			return false, err
		}
		return e.valuesEqual(litVal, subject), nil
	case *ast.BindPattern:
		// A bare name that is a zero-payload variant of the subject's enum
		// is a variant match, not a binding.
		if ev, ok := subject.(*value.EnumVariant); ok {
			owners := []*loader.Module{ns.mod}
			for _, imp := range ns.mod.Imports {
				owners = append(owners, imp.Target)
			}
			for _, m := range owners {
				if def, found := m.EnumDef(ev.Enum.Name); found && m.Name == ev.Enum.Qualifier {
					for _, v := range def.Variants {
						if v.Name == p.Name && len(v.Payload) == 0 {
							return ev.Variant == p.Name, nil
						}
					}
				}
			}
		}
		into.Insert(p.Name, binding{Value: subject, Mutable: true})
		return true, nil
	case *ast.VariantPattern:
		ev, ok := subject.(*value.EnumVariant)
		if !ok || ev.Variant != p.Variant {
			return false, nil
		}
		if len(p.Payload) != len(ev.Payload) {
			return false, e.runtimeError(p.Span(), "variant %q has %d payload value(s), pattern has %d", p.Variant, len(ev.Payload), len(p.Payload))
		}
		for i, sub := range p.Payload {
			matched, err := e.matchPattern(ns, into, sub, ev.Payload[i])
			if err != nil {
				return false, err
			}
			if !matched {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

func (e *Evaluator) evalCall(ns *Namespace, sc *scope.Scope[binding], call *ast.CallExpr) (value.Value, error) {
	ident, ok := call.Callee.(*ast.IdentExpr)
	if !ok {
		return nil, e.runtimeError(call.Span(), "call target must be a function or enum variant name")
	}
	if ident.Qualifier == "" && ident.Name == "print" {
		return e.callPrint(ns, sc, call)
	}
	if ident.Qualifier == "" {
		if b, err := sc.Lookup(ident.Name); err == nil {
			return e.invoke(b.Value, ns, sc, call)
		}
	}
	target := ns.mod
	if ident.Qualifier != "" {
		imp, ok := ns.mod.Imports[ident.Qualifier]
		if !ok {
			return nil, e.runtimeError(call.Span(), "unknown module %q", ident.Qualifier)
		}
		target = imp.Target
	}
	if fn, ok := target.FnDef(ident.Name); ok {
		if ident.Qualifier != "" && !target.IsExported(ident.Name) {
			return nil, e.runtimeError(call.Span(), "%s is not exported by %s", ident.Name, target.Name)
		}
		args, err := e.evalArgs(ns, sc, call.Args)
		if err != nil {
			return nil, err
		}
		if len(args) != len(fn.Params) {
			return nil, e.runtimeError(call.Span(), "function %q expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
		}
		return e.callFunction(target, fn, args, call.Span())
	}
	if enumDef, variant, ok := findVariantDef(target, ident.Name); ok {
		if ident.Qualifier != "" && !target.IsExported(enumDef.Name) {
			return nil, e.runtimeError(call.Span(), "%s is not exported by %s", enumDef.Name, target.Name)
		}
		args, err := e.evalArgs(ns, sc, call.Args)
		if err != nil {
			return nil, err
		}
		if len(args) != len(variant.Payload) {
			return nil, e.runtimeError(call.Span(), "variant %q expects %d argument(s), got %d", variant.Name, len(variant.Payload), len(args))
		}
		return value.NewEnumVariant(types.NewEnumType(target.Name, enumDef.Name), variant.Name, args), nil
	}
	return nil, e.runtimeError(call.Span(), "%q is not a function or enum variant", ident.String())
}

func (e *Evaluator) invoke(v value.Value, ns *Namespace, sc *scope.Scope[binding], call *ast.CallExpr) (value.Value, error) {
	switch fv := v.(type) {
	case *value.Function:
		args, err := e.evalArgs(ns, sc, call.Args)
		if err != nil {
			return nil, err
		}
		if len(args) != len(fv.Def.Params) {
			return nil, e.runtimeError(call.Span(), "function %q expects %d argument(s), got %d", fv.Def.Name, len(fv.Def.Params), len(args))
		}
		mod := fv.Namespace.(*Namespace).mod
		return e.callFunction(mod, fv.Def, args, call.Span())
	case *value.Builtin:
		args, err := e.evalArgs(ns, sc, call.Args)
		if err != nil {
			return nil, err
		}
		return fv.Fn(args)
	default:
		return nil, e.runtimeError(call.Span(), "value is not callable")
	}
}

func (e *Evaluator) evalArgs(ns *Namespace, sc *scope.Scope[binding], args []ast.Expr) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := e.evalExpr(ns, sc, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Evaluator) callPrint(ns *Namespace, sc *scope.Scope[binding], call *ast.CallExpr) (value.Value, error) {
	args, err := e.evalArgs(ns, sc, call.Args)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Display()
	}
	fmt.Fprintln(e.out, strings.Join(parts, " "))
	return value.Unit{}, nil
}

// callFunction pushes a call frame and a fresh function-local scope whose
// parent is nil: free names inside the body fall through to the module
// namespace via evalIdent's own two-tier lookup, never to the caller's
// scope (spec.md §4.5: "not the caller's scope — lexical, not dynamic").
func (e *Evaluator) callFunction(mod *loader.Module, fn *ast.FnDef, args []value.Value, callSpan token.Span) (value.Value, error) {
	e.callStack = append(e.callStack, callFrame{Name: fn.Name, Span: callSpan})
	defer func() { e.callStack = e.callStack[:len(e.callStack)-1] }()

	fnScope := scope.New[binding](nil)
	for i, p := range fn.Params {
		fnScope.Insert(p.Name, binding{Value: args[i], Mutable: true})
	}
	v, err := e.evalBlock(&Namespace{mod: mod}, fnScope, fn.Body)
	if err == nil {
		return v, nil
	}
	if rs, ok := err.(returnSignal); ok {
		return rs.Value, nil
	}
	if _, ok := err.(breakSignal); ok {
		return nil, e.runtimeError(fn.Span(), "break used outside of a loop")
	}
	if _, ok := err.(continueSignal); ok {
		return nil, e.runtimeError(fn.Span(), "continue used outside of a loop")
	}
	return nil, err
}

func (e *Evaluator) asInt(v value.Value, span token.Span) (int64, error) {
	i, ok := v.(value.Integer)
	if !ok {
		return 0, e.runtimeError(span, "expected Int, got %s", v.Type())
	}
	return int64(i), nil
}

func (e *Evaluator) asBool(v value.Value, span token.Span) (bool, error) {
	b, ok := v.(value.Boolean)
	if !ok {
		return false, e.runtimeError(span, "expected Bool, got %s", v.Type())
	}
	return bool(b), nil
}
