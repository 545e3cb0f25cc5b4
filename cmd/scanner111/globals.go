// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

// GlobalFlags carries the flags every subcommand accepts, parsed once
// by main() ahead of the subcommand's own flag set.
type GlobalFlags struct {
	// JSON switches result/error output to machine-readable JSON.
	// Implies Quiet (progress bars don't mix with JSON on the same stream).
	JSON bool

	// Quiet suppresses progress bars and informational (ui.Info) lines.
	Quiet bool

	// NoColor disables ANSI color in human-facing output.
	NoColor bool

	// Verbose raises log/slog's level; each repeat drops it one level
	// (0 = Info, 1 = Debug).
	Verbose int

	// ConfigPath overrides the default scanner111.yaml discovery path.
	ConfigPath string
}
