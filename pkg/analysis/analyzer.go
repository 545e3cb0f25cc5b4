// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package analysis defines the analyzer contract (spec §4.3) and the
// eight analyzers that extract suspects, plugin mentions, records,
// settings issues, and version/environment findings from a parsed
// CrashLog.
package analysis

import (
	"context"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// Analyzer is the contract every analyzer implements (spec §4.3). The
// Scan Pipeline (C8) orders analyzers by (Priority asc, Name asc),
// dispatches ParallelSafe ones concurrently, and runs the rest inline.
type Analyzer interface {
	// Name is stable and used for de-duplication and cache keys.
	Name() string

	// Priority orders analyzers; lower runs earlier. Ties break on Name.
	Priority() int

	// ParallelSafe reports whether this analyzer may run concurrently
	// with others in the same pipeline run.
	ParallelSafe() bool

	// Analyze inspects log and returns its findings. It must not mutate
	// log, must tolerate missing/empty segments, and must honor ctx
	// cancellation (spec §4.3).
	Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error)
}

// ByPriority sorts a slice of Analyzer by (Priority asc, Name asc),
// the ordering the Scan Pipeline relies on (spec §4.14 step 3, §5).
type ByPriority []Analyzer

func (a ByPriority) Len() int      { return len(a) }
func (a ByPriority) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a ByPriority) Less(i, j int) bool {
	if a[i].Priority() != a[j].Priority() {
		return a[i].Priority() < a[j].Priority()
	}
	return a[i].Name() < a[j].Name()
}
