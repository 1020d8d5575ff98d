package main

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Command int

const (
	COMMAND_RUN Command = iota
	COMMAND_HELP
)

type CliResult struct {
	Command   Command
	Path      string
	AllErrors bool
	NoStrict  bool
	MaxSteps  int // 0 means unset
}

var HELP_COMMAND string = `Lumen - a small, statically-checked interpreted language.

Usage:
  lumen <command> [arguments]

Available Commands:
  run <file.lum> [-all-errors] [-no-strict] [-max-steps=N]   Runs a Lumen program
      -all-errors   Keep checking past the first diagnostic instead of stopping there
      -no-strict    Let Unknown types pass permissively instead of flagging them
      -max-steps=N  Abort with a runtime error after N evaluator steps

  help                                                        Show this help message

Examples:
  lumen run hello.lum
  lumen run hello.lum -all-errors
  lumen run hello.lum -max-steps=100000
`

func cli() CliResult {
	result := CliResult{}

	args := os.Args[1:]
	if len(args) == 0 {
		result.Command = COMMAND_HELP
		return result
	}

	switch args[0] {
	case "help":
		result.Command = COMMAND_HELP
	case "run":
		result.Command = COMMAND_RUN

		if len(args) < 2 {
			log.Fatal("run requires a path to a .lum file")
		}
		result.Path = args[1]

		for _, arg := range args[2:] {
			switch {
			case arg == "-all-errors":
				result.AllErrors = true
			case arg == "-no-strict":
				result.NoStrict = true
			case strings.HasPrefix(arg, "-max-steps="):
				n, err := strconv.Atoi(strings.TrimPrefix(arg, "-max-steps="))
				if err != nil {
					log.Fatalf("invalid -max-steps value: %s\n", arg)
				}
				result.MaxSteps = n
			default:
				log.Fatalf("unknown flag: %s\n", arg)
			}
		}
	default:
		result.Command = COMMAND_HELP
	}

	return result
}
