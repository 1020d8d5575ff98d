package sema

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/loader"
)

func checkSource(t *testing.T, src string, strict bool) (*loader.Module, *diagnostics.Collector) {
	t.Helper()
	col := diagnostics.New(diagnostics.ModeAll)
	ld := loader.New(col, noModules, true)
	mod, err := ld.Load("test", src)
	if err != nil {
		t.Fatalf("load failed: %v (%v)", err, col.Raw())
	}
	Check(col, mod, strict)
	return mod, col
}

func checkWithImport(t *testing.T, rootSrc, importName, importSrc string, strict bool) (*loader.Module, *diagnostics.Collector) {
	t.Helper()
	col := diagnostics.New(diagnostics.ModeAll)
	provider := func(name string) (string, bool) {
		if name == importName {
			return importSrc, true
		}
		return "", false
	}
	ld := loader.New(col, provider, true)
	mod, err := ld.Load("test", rootSrc)
	if err != nil {
		t.Fatalf("load failed: %v (%v)", err, col.Raw())
	}
	Check(col, mod, strict)
	return mod, col
}

func noModules(string) (string, bool) { return "", false }

func TestArithmeticIsWellTyped(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { return 1 + 2 * 3; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestStringConcatenation(t *testing.T) {
	_, col := checkSource(t, `fn f() -> String { return "a" + "b"; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestMismatchedArithmeticOperandsIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { return 1 - true; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic, got none")
	}
}

func TestPlusCoercesNonStringOperandToString(t *testing.T) {
	_, col := checkSource(t, `fn f() -> String { return "n=" + 5; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestReturnTypeMismatch(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { return true; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for return type mismatch")
	}
}

func TestLetTypeAnnotationMismatch(t *testing.T) {
	_, col := checkSource(t, `fn f() { let x: Int = "nope"; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for let annotation mismatch")
	}
}

func TestSetUndeclaredNameIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() { set x = 1; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for set of an undeclared name")
	}
}

func TestSetTypeMismatchIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() { let x = 1; set x = "now a string"; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for set type mismatch")
	}
}

func TestLetShadowingInNestedScopeIsAllowed(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { let x = 1; if true { let x = 2; } return x; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestLetRedeclarationInSameScopeIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() { let x = 1; let x = 2; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for let redeclaration")
	}
}

func TestDuplicateTopLevelFunctionIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() {} fn f() {}`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for duplicate top-level function")
	}
}

func TestDuplicateTopLevelEnumIsAnError(t *testing.T) {
	_, col := checkSource(t, `enum Shape { Circle } enum Shape { Square } fn f() {}`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for duplicate top-level enum")
	}
}

func TestMismatchedIfBranchesJoinToUnitWithoutError(t *testing.T) {
	_, col := checkSource(t, `fn f() { let x: Unit = if true { 1 } else { "two" }; }`, false)
	if col.Recorded() {
		t.Fatalf("mismatched if/else branches should join to Unit, not error: %v", col.Raw())
	}
}

func TestIfWithoutElseIsUnit(t *testing.T) {
	_, col := checkSource(t, `fn f() { if true { let x = 1; } }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestWhileConditionMustBeBool(t *testing.T) {
	_, col := checkSource(t, `fn f() { while 1 { break; } }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for non-Bool while condition")
	}
}

func TestForLoopBindsIntVariable(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { let total = 0; for i in 0..10 { set total = total + i; } return total; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() { break; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for break outside a loop")
	}
}

func TestContinueOutsideLoopIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() { continue; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for continue outside a loop")
	}
}

func TestRecordFieldAccess(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { let p = {x: 1, y: 2}; return p.x; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestRecordFieldAccessOnUnknownFieldIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { let p = {x: 1}; return p.y; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for unknown record field")
	}
}

func TestListIndexing(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { let xs = [1, 2, 3]; return xs[0]; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestIndexingNonListIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { return 1[0]; }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for indexing a non-list")
	}
}

func TestEnumVariantConstruction(t *testing.T) {
	_, col := checkSource(t, `
		enum Shape { Circle(Int), Square(Int) }
		fn area(s: Shape) -> Int { return 0; }
		fn f() -> Int { return area(Circle(5)); }
	`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestMatchOnEnumWithVariantAndWildcard(t *testing.T) {
	_, col := checkSource(t, `
		enum Shape { Circle(Int), Point }
		fn describe(s: Shape) -> String {
			return match s {
				Circle(r) => { "circle" }
				Point => { "point" }
				_ => { "other" }
			};
		}
	`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestMatchVariantArityMismatchIsAnError(t *testing.T) {
	_, col := checkSource(t, `
		enum Shape { Circle(Int) }
		fn f(s: Shape) -> Int {
			return match s { Circle(a, b) => { 1 } };
		}
	`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for variant payload arity mismatch")
	}
}

func TestCallArityMismatchIsAnError(t *testing.T) {
	_, col := checkSource(t, `
		fn add(a: Int, b: Int) -> Int { return a + b; }
		fn f() -> Int { return add(1); }
	`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for call arity mismatch")
	}
}

func TestCallArgumentTypeMismatchIsAnError(t *testing.T) {
	_, col := checkSource(t, `
		fn add(a: Int, b: Int) -> Int { return a + b; }
		fn f() -> Int { return add(1, "two"); }
	`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for call argument type mismatch")
	}
}

func TestCallToUndefinedNameIsAnError(t *testing.T) {
	_, col := checkSource(t, `fn f() -> Int { return nope(1); }`, false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for an undefined callee")
	}
}

func TestUnannotatedParamIsPermissiveByDefault(t *testing.T) {
	_, col := checkSource(t, `fn f(x) -> Int { return x + 1; }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics in non-strict mode: %v", col.Raw())
	}
}

func TestUnannotatedParamIsAnErrorInStrictMode(t *testing.T) {
	_, col := checkSource(t, `fn f(x) -> Int { return x + 1; }`, true)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for unknown-typed operand in strict mode")
	}
}

func TestPrintAcceptsAnyArgumentTypes(t *testing.T) {
	_, col := checkSource(t, `fn f() { print(1); print("a"); print(true); print({x: 1}); }`, false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestQualifiedCallAcrossModules(t *testing.T) {
	_, col := checkWithImport(t,
		`import shapes; fn f() -> Int { return shapes.area(3); }`,
		"shapes",
		`module shapes; export { area }; fn area(r: Int) -> Int { return r * r; }`,
		false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}

func TestQualifiedCallToUnexportedFnIsAnError(t *testing.T) {
	_, col := checkWithImport(t,
		`import shapes; fn f() -> Int { return shapes.area(3); }`,
		"shapes",
		`module shapes; fn area(r: Int) -> Int { return r * r; }`,
		false)
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for calling an unexported function")
	}
}

func TestQualifiedEnumTypeAcrossModules(t *testing.T) {
	_, col := checkWithImport(t,
		`import shapes; fn f(s: shapes.Shape) -> Int { return 0; }`,
		"shapes",
		`module shapes; export { Shape }; enum Shape { Circle(Int) }`,
		false)
	if col.Recorded() {
		t.Fatalf("unexpected diagnostics: %v", col.Raw())
	}
}
