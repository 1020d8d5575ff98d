package loader

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/diagnostics"
)

func TestLoadSingleModule(t *testing.T) {
	col := diagnostics.New(diagnostics.ModeAll)
	ld := New(col, func(string) (string, bool) { return "", false }, true)
	mod, err := ld.Load("main", `fn main() { print("hi"); }`)
	if err != nil {
		t.Fatalf("unexpected error: %v (%v)", err, col.Raw())
	}
	if mod.Name != "main" {
		t.Fatalf("got module name %q", mod.Name)
	}
}

func TestLoadResolvesImport(t *testing.T) {
	col := diagnostics.New(diagnostics.ModeAll)
	provider := func(name string) (string, bool) {
		if name == "shapes" {
			return `module shapes; export { area }; fn area(r: Int) -> Int { return r * r; }`, true
		}
		return "", false
	}
	ld := New(col, provider, true)
	mod, err := ld.Load("main", `import shapes; fn main() { print(shapes.area(3)); }`)
	if err != nil {
		t.Fatalf("unexpected error: %v (%v)", err, col.Raw())
	}
	if _, ok := mod.Imports["shapes"]; !ok {
		t.Fatalf("expected an import binding for %q", "shapes")
	}
}

func TestCyclicImportIsAnError(t *testing.T) {
	col := diagnostics.New(diagnostics.ModeAll)
	provider := func(name string) (string, bool) {
		switch name {
		case "a":
			return `module a; import b;`, true
		case "b":
			return `module b; import a;`, true
		}
		return "", false
	}
	ld := New(col, provider, true)
	_, err := ld.Load("a", `module a; import b;`)
	if err == nil {
		t.Fatalf("expected a cyclic import error")
	}
	if !col.Recorded() {
		t.Fatalf("expected a diagnostic for the cycle")
	}
}

func TestModuleNameMismatchIsAnError(t *testing.T) {
	col := diagnostics.New(diagnostics.ModeAll)
	provider := func(name string) (string, bool) {
		if name == "shapes" {
			return `module wrongname;`, true
		}
		return "", false
	}
	ld := New(col, provider, true)
	_, err := ld.Load("main", `import shapes;`)
	if err == nil {
		t.Fatalf("expected an error for mismatched module declaration")
	}
}

func TestExportOfUndefinedNameIsAnError(t *testing.T) {
	col := diagnostics.New(diagnostics.ModeAll)
	ld := New(col, func(string) (string, bool) { return "", false }, true)
	_, err := ld.Load("main", `export { nope };`)
	if err == nil {
		t.Fatalf("expected an error for exporting an undefined name")
	}
}

func TestImportCollidingWithLocalNameIsAnError(t *testing.T) {
	col := diagnostics.New(diagnostics.ModeAll)
	provider := func(name string) (string, bool) {
		if name == "area" {
			return `module area;`, true
		}
		return "", false
	}
	ld := New(col, provider, true)
	_, err := ld.Load("main", `import area; fn area() {}`)
	if err == nil {
		t.Fatalf("expected an error for an import colliding with a local name")
	}
}

func TestUnresolvedImportIsAnError(t *testing.T) {
	col := diagnostics.New(diagnostics.ModeAll)
	ld := New(col, func(string) (string, bool) { return "", false }, true)
	_, err := ld.Load("main", `import missing;`)
	if err == nil {
		t.Fatalf("expected an error for an unresolved import")
	}
}
