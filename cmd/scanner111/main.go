// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package main implements the scanner111 CLI: a batch crash-log
// analyzer for Bethesda-style games (Buffout 4 / Crash Logger
// generated logs).
//
// Usage:
//
//	scanner111 scan <paths...> [options]   Scan one or more crash logs
//	scanner111 --version                   Show version and exit
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scanner111/internal/errors"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output machine-readable JSON")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress bars and informational output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		verbose     = flag.CountP("verbose", "v", "Increase logging verbosity (repeatable)")
		configPath  = flag.String("config", "", "Path to scanner111.yaml (default: ./scanner111.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `scanner111 - Crash log analyzer for Bethesda-style games

Usage:
  scanner111 <command> [options]

Commands:
  scan    Scan one or more crash log files and print a report

Global Options:
  --json        Output machine-readable JSON
  -q, --quiet   Suppress progress bars and informational output
  --no-color    Disable colored output
  -v            Increase logging verbosity (repeatable)
  --config      Path to scanner111.yaml
  --version     Show version and exit

Examples:
  scanner111 scan crash-2026-07-31-12-00-00.log
  scanner111 scan logs/*.log --max-concurrency 4 --progress
  scanner111 scan crash.log --fcx --json

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("scanner111 version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(errors.ExitSuccess)
	}

	globals := GlobalFlags{
		JSON:       *jsonOutput,
		Quiet:      *quiet || *jsonOutput,
		NoColor:    *noColor,
		Verbose:    *verbose,
		ConfigPath: *configPath,
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(errors.ExitInput)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "scan":
		runScan(cmdArgs, globals.ConfigPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(errors.ExitInput)
	}
}
