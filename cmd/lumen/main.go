package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumen-lang/lumen"
	"github.com/lumen-lang/lumen/internal/config"
	"github.com/lumen-lang/lumen/internal/loader"
)

func main() {
	args := cli()

	switch args.Command {
	case COMMAND_HELP:
		fmt.Print(HELP_COMMAND)
	case COMMAND_RUN:
		run(args)
	}
}

func run(args CliResult) {
	source, err := os.ReadFile(args.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dir := filepath.Dir(args.Path)
	name := strings.TrimSuffix(filepath.Base(args.Path), filepath.Ext(args.Path))

	provider := loader.SourceProvider(func(moduleName string) (string, bool) {
		src, err := os.ReadFile(filepath.Join(dir, moduleName+".lum"))
		if err != nil {
			return "", false
		}
		return string(src), true
	})

	cfg := config.Default()
	cfg.AllErrors = args.AllErrors
	if args.NoStrict {
		cfg.StrictTypes = false
	}
	if args.MaxSteps > 0 {
		steps := args.MaxSteps
		cfg.MaxSteps = &steps
	}

	result := lumen.Run(name, string(source), provider, cfg, os.Stdout)
	if result.Collector.Recorded() {
		fmt.Fprintln(os.Stderr, result.Render())
	}
	if result.Collector.HasErrors() {
		os.Exit(1)
	}
}
