package parser

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/lexer"
)

func parse(t *testing.T, src string, allErrors bool) (*ast.File, *diagnostics.Collector) {
	t.Helper()
	collector := diagnostics.New(diagnostics.ModeAll)
	lex := lexer.New("test.lum", []byte(src), collector)
	p := New(lex, collector, "test.lum", allErrors)
	return p.ParseFile(), collector
}

func TestModuleDecl(t *testing.T) {
	file, col := parse(t, "module shapes;", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	if file.Module == nil || file.Module.Name != "shapes" {
		t.Fatalf("got module decl %v", file.Module)
	}
}

func TestImportWithAlias(t *testing.T) {
	file, col := parse(t, "import shapes as s;", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	if len(file.Imports) != 1 {
		t.Fatalf("got %d imports, want 1", len(file.Imports))
	}
	imp := file.Imports[0]
	if imp.Name != "shapes" || imp.Alias != "s" || imp.BoundName() != "s" {
		t.Errorf("got %+v", imp)
	}
}

func TestEnumDefWithPayload(t *testing.T) {
	file, col := parse(t, "enum Shape { Circle(Int), Square(Int, Int), Point }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	if len(file.Enums) != 1 {
		t.Fatalf("got %d enums, want 1", len(file.Enums))
	}
	e := file.Enums[0]
	if e.Name != "Shape" || len(e.Variants) != 3 {
		t.Fatalf("got %+v", e)
	}
	if len(e.Variants[0].Payload) != 1 || len(e.Variants[1].Payload) != 2 || e.Variants[2].Payload != nil {
		t.Errorf("got payload shapes %v %v %v", e.Variants[0].Payload, e.Variants[1].Payload, e.Variants[2].Payload)
	}
}

func TestFnDefWithParamsAndReturnType(t *testing.T) {
	file, col := parse(t, "fn add(a: Int, b: Int) -> Int { return a + b; }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	if len(file.Fns) != 1 {
		t.Fatalf("got %d fns, want 1", len(file.Fns))
	}
	fn := file.Fns[0]
	if fn.Name != "add" || len(fn.Params) != 2 || fn.ReturnType == nil {
		t.Fatalf("got %+v", fn)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("got %d body stmts, want 1", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.ReturnStmt", fn.Body.Stmts[0])
	}
	bin, ok := ret.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", ret.Expr)
	}
	if _, ok := bin.Left.(*ast.IdentExpr); !ok {
		t.Errorf("got left operand %T", bin.Left)
	}
}

func TestExportDecl(t *testing.T) {
	file, col := parse(t, "fn f() {} export { f };", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	if file.Export == nil || len(file.Export.Names) != 1 || file.Export.Names[0] != "f" {
		t.Fatalf("got %+v", file.Export)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	file, col := parse(t, "fn f() { return 1 + 2 * 3 == 7 && true; }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	ret := file.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	and, ok := ret.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("top-level op: got %T", ret.Expr)
	}
	eq, ok := and.Left.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected == nested under &&, got %T", and.Left)
	}
	add, ok := eq.Left.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected + nested under ==, got %T", eq.Left)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected * to bind tighter than +, got %T", add.Right)
	}
	if lit, ok := mul.Left.(*ast.IntLit); !ok || lit.Value != 2 {
		t.Errorf("got %v", mul.Left)
	}
}

func TestQualifiedCallAndFieldAccessAndIndex(t *testing.T) {
	file, col := parse(t, "fn f() { return shapes.area(r).width[0]; }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	ret := file.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	idx, ok := ret.Expr.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.IndexExpr", ret.Expr)
	}
	field, ok := idx.Target.(*ast.FieldAccessExpr)
	if !ok || field.Field != "width" {
		t.Fatalf("got %+v", idx.Target)
	}
	call, ok := field.Target.(*ast.CallExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CallExpr", field.Target)
	}
	callee, ok := call.Callee.(*ast.IdentExpr)
	if !ok || callee.Qualifier != "shapes" || callee.Name != "area" {
		t.Fatalf("got %+v", call.Callee)
	}
}

func TestIfElseIfDesugarsToNestedElseBlock(t *testing.T) {
	file, col := parse(t, "fn f() { return if true { 1 } else if false { 2 } else { 3 }; }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	ret := file.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	outer, ok := ret.Expr.(*ast.IfExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.IfExpr", ret.Expr)
	}
	if outer.Else == nil || len(outer.Else.Stmts) != 1 {
		t.Fatalf("expected else-if desugared into a one-statement block, got %+v", outer.Else)
	}
	inner, ok := outer.Else.Stmts[0].(*ast.ExprStmt).Expr.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected nested if inside the else block, got %T", outer.Else.Stmts[0])
	}
	if inner.Else == nil {
		t.Fatal("expected the innermost else branch to survive desugaring")
	}
}

func TestMatchExprWithVariantAndWildcard(t *testing.T) {
	src := `fn f() {
		return match shapes.classify(x) {
			Circle(r) => { 1 }
			Point => { 2 }
			_ => { 3 }
		};
	}`
	file, col := parse(t, src, true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	ret := file.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	match, ok := ret.Expr.(*ast.MatchExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.MatchExpr", ret.Expr)
	}
	if len(match.Arms) != 3 {
		t.Fatalf("got %d arms, want 3", len(match.Arms))
	}
	variant, ok := match.Arms[0].Pattern.(*ast.VariantPattern)
	if !ok || variant.Variant != "Circle" || len(variant.Payload) != 1 {
		t.Fatalf("got %+v", match.Arms[0].Pattern)
	}
	if _, ok := match.Arms[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("got %T, want wildcard", match.Arms[2].Pattern)
	}
}

func TestForLoopWithStep(t *testing.T) {
	file, col := parse(t, "fn f() { for i in 0..=10 by 2 { print(i); } }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	forStmt, ok := file.Fns[0].Body.Stmts[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.ForStmt", file.Fns[0].Body.Stmts[0])
	}
	if !forStmt.Inclusive || forStmt.Step == nil {
		t.Errorf("got %+v", forStmt)
	}
}

func TestRecordAndListLiterals(t *testing.T) {
	file, col := parse(t, "fn f() { let p = {x: 1, y: 2}; let xs = [1, 2, 3]; }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	let0 := file.Fns[0].Body.Stmts[0].(*ast.LetStmt)
	rec, ok := let0.Expr.(*ast.RecordExpr)
	if !ok || len(rec.Fields) != 2 {
		t.Fatalf("got %+v", let0.Expr)
	}
	let1 := file.Fns[0].Body.Stmts[1].(*ast.LetStmt)
	list, ok := let1.Expr.(*ast.ListExpr)
	if !ok || len(list.Elems) != 3 {
		t.Fatalf("got %+v", let1.Expr)
	}
}

func TestRecordLiteralRejectedInIfCondition(t *testing.T) {
	_, col := parse(t, "fn f() { if {x: 1}.x { } }", true)
	if !col.Recorded() {
		t.Fatal("expected a diagnostic for a bare record literal in an if condition")
	}
}

func TestParenthesizedRecordLiteralAllowedInIfCondition(t *testing.T) {
	_, col := parse(t, "fn f() { if ({x: true}).x { } }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestMalformedStatementBecomesErrStmtAndRecovers(t *testing.T) {
	file, col := parse(t, "fn f() { let ; let y = 1; }", true)
	if !col.Recorded() {
		t.Fatal("expected a diagnostic for the malformed let")
	}
	stmts := file.Fns[0].Body.Stmts
	if len(stmts) != 2 {
		t.Fatalf("got %d stmts, want 2 (ErrStmt + recovered let y)", len(stmts))
	}
	if _, ok := stmts[0].(*ast.ErrStmt); !ok {
		t.Errorf("got %T, want *ast.ErrStmt", stmts[0])
	}
	y, ok := stmts[1].(*ast.LetStmt)
	if !ok || y.Name != "y" {
		t.Errorf("parser did not recover to parse the following statement: %+v", stmts[1])
	}
}

func TestFirstOnlyModeStopsAfterFirstDiagnostic(t *testing.T) {
	file, col := parse(t, "fn f() { let ; let ; let z = 1; }", false)
	diags := col.Raw()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics in first-only mode, want 1: %v", len(diags), diags)
	}
	stmts := file.Fns[0].Body.Stmts
	if len(stmts) != 1 {
		t.Fatalf("expected parsing to stop after the first error, got %d stmts", len(stmts))
	}
}

func TestAllErrorsModeCollectsMultipleDiagnostics(t *testing.T) {
	_, col := parse(t, "fn f() { let ; let ; let z = 1; }", true)
	if len(col.Raw()) < 2 {
		t.Fatalf("got %d diagnostics in all-errors mode, want at least 2", len(col.Raw()))
	}
}

func TestBreakAndContinue(t *testing.T) {
	file, col := parse(t, "fn f() { while true { break; continue; } }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	while := file.Fns[0].Body.Stmts[0].(*ast.WhileStmt)
	if len(while.Body.Stmts) != 2 {
		t.Fatalf("got %d stmts, want 2", len(while.Body.Stmts))
	}
	if _, ok := while.Body.Stmts[0].(*ast.BreakStmt); !ok {
		t.Errorf("got %T, want *ast.BreakStmt", while.Body.Stmts[0])
	}
	if _, ok := while.Body.Stmts[1].(*ast.ContinueStmt); !ok {
		t.Errorf("got %T, want *ast.ContinueStmt", while.Body.Stmts[1])
	}
}

func TestSetStmt(t *testing.T) {
	file, col := parse(t, "fn f() { let x = 1; set x = 2; }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	set, ok := file.Fns[0].Body.Stmts[1].(*ast.SetStmt)
	if !ok || set.Name != "x" {
		t.Fatalf("got %+v", file.Fns[0].Body.Stmts[1])
	}
}

func TestBareReturnWithNoExpr(t *testing.T) {
	file, col := parse(t, "fn f() { return; }", true)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
	ret := file.Fns[0].Body.Stmts[0].(*ast.ReturnStmt)
	if ret.Expr != nil {
		t.Errorf("got %v, want nil", ret.Expr)
	}
}
