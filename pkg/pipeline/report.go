// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"strings"

	"github.com/kraklabs/scanner111/pkg/analysis"
)

// WriteReport is the Report Writer (C10, spec §4.16): it concatenates
// every result's report lines, in analyzer order, with no separators of
// its own — analyzers own their trailing newlines.
func WriteReport(results []analysis.AnalysisResult) string {
	var b strings.Builder
	for _, r := range results {
		for _, line := range r.ReportLines() {
			b.WriteString(line)
		}
	}
	return b.String()
}
