// Package lumen is the public entry point wiring the lexer, parser, module
// loader, type checker, and evaluator into one pipeline, grounded on
// main.go's pipeline shape (collector threaded through every stage) with
// the LLVM backend stage replaced by the evaluator.
package lumen

import (
	"io"
	"strings"

	"github.com/lumen-lang/lumen/internal/config"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/eval"
	"github.com/lumen-lang/lumen/internal/loader"
	"github.com/lumen-lang/lumen/internal/sema"
)

// CompileResult bundles a successfully (or unsuccessfully) loaded module
// graph with everything needed to render whatever diagnostics came out of
// it: the collector, and every source text the loader pulled in, keyed by
// module name, since a diagnostic may point into an imported module rather
// than the root.
type CompileResult struct {
	Module    *loader.Module
	Collector *diagnostics.Collector
	Sources   map[string]string
}

// Compile loads rootName/rootSource (and transitively, every module it
// imports via provider) and type-checks the result. Module is nil if
// loading itself failed; check Collector.HasErrors() either way.
func Compile(rootName, rootSource string, provider loader.SourceProvider, cfg config.Config) CompileResult {
	col := diagnostics.New(collectorMode(cfg))
	ld := loader.New(col, provider, cfg.AllErrors)
	mod, err := ld.Load(rootName, rootSource)
	if err != nil {
		return CompileResult{Collector: col, Sources: ld.Sources()}
	}
	sema.Check(col, mod, cfg.StrictTypes)
	return CompileResult{Module: mod, Collector: col, Sources: ld.Sources()}
}

// Run compiles rootName/rootSource and, if checking produced no errors,
// evaluates its `main` function, writing `print` output to out.
func Run(rootName, rootSource string, provider loader.SourceProvider, cfg config.Config, out io.Writer) CompileResult {
	result := Compile(rootName, rootSource, provider, cfg)
	if result.Module == nil || result.Collector.HasErrors() {
		return result
	}
	eval.New(result.Collector, out, cfg.Steps()).Run(result.Module)
	return result
}

func collectorMode(cfg config.Config) diagnostics.Mode {
	if cfg.AllErrors {
		return diagnostics.ModeAll
	}
	return diagnostics.ModeFirst
}

// Render formats every diagnostic a CompileResult carries, looking up each
// one's source text by the filename recorded in its span.
func (r CompileResult) Render() string {
	var b strings.Builder
	for i, d := range r.Collector.All() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Render(r.Sources[d.Span.Start.Filename]))
	}
	return b.String()
}
