package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = handleRun(os.Args[2:])
	case "analyze":
		err = handleAnalyze(os.Args[2:])
	case "validate":
		err = handleValidate(os.Args[2:])
	case "init":
		err = handleInit(os.Args[2:])
	case "demo":
		err = handleDemo()
	case "version":
		fmt.Printf("capeval v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`capeval - constraint-audited evaluation pilot runner

Usage:
  capeval run      [--mode=manual|from-file] [--tasks=dir] [--retries=N] [--inputs=file] [--out=file]
  capeval analyze  [--in=file] [--all-attempts] [--tasks=dir]
  capeval validate [--tasks=dir]
  capeval init     [--output=dir]
  capeval demo
  capeval version

Commands:
  run       Evaluate every catalog task, up to N attempts each, writing a results CSV.
  analyze   Summarize a results CSV: pass rates and failure-mode counts.
  validate  Lint a task catalog without running it.
  init      Scaffold a tasks directory with sample task files.
  demo      Run a built-in catalog against canned outputs end to end.

Run modes:
  manual     Prompts for each task and reads pasted outputs from the terminal (default).
  from-file  Reads pre-recorded outputs from a JSONL file (--inputs required);
             a missing (task, attempt) entry is a fatal configuration error.

Configuration defaults are read from .capeval/config.yaml when present.`)
}

func configPath() string {
	return filepath.Join(".capeval", "config.yaml")
}

// stringFlag extracts a --name=value flag, returning def when absent.
func stringFlag(args []string, name, def string) string {
	prefix := "--" + name + "="
	for _, a := range args {
		if strings.HasPrefix(a, prefix) {
			return strings.TrimPrefix(a, prefix)
		}
	}
	return def
}

// boolFlag reports whether a bare --name flag is present.
func boolFlag(args []string, name string, def bool) bool {
	for _, a := range args {
		if a == "--"+name {
			return true
		}
	}
	return def
}

// intFlag extracts a --name=value integer flag, returning def when absent.
func intFlag(args []string, name string, def int) (int, error) {
	s := stringFlag(args, name, "")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("--%s: %q is not an integer", name, s)
	}
	return n, nil
}
