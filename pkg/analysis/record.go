// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// RecordPriority runs after Plugin.
const RecordPriority = 50

const rspTruncateAt = 30

// RecordAnalyzer groups call-stack lines referencing configured game
// record substrings, excluding configured ignore substrings (spec §4.9).
type RecordAnalyzer struct {
	Records []string
	Ignore  []string
}

// NewRecordAnalyzer builds a RecordAnalyzer from the configured target
// and exclusion substring sets.
func NewRecordAnalyzer(records, ignore []string) *RecordAnalyzer {
	return &RecordAnalyzer{Records: records, Ignore: ignore}
}

func (a *RecordAnalyzer) Name() string       { return "Record" }
func (a *RecordAnalyzer) Priority() int      { return RecordPriority }
func (a *RecordAnalyzer) ParallelSafe() bool { return true }

func (a *RecordAnalyzer) Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	default:
	}

	counts := make(map[string]int)

	for _, line := range log.CallStack {
		lower := strings.ToLower(line)
		if !containsAny(lower, a.Records...) {
			continue
		}
		if containsAny(lower, a.Ignore...) {
			continue
		}

		var text string
		if strings.Contains(line, "[RSP+") && len(line) > rspTruncateAt {
			text = strings.TrimSpace(line[rspTruncateAt:])
		} else {
			text = strings.TrimSpace(line)
		}
		if text != "" {
			counts[text]++
		}
	}

	if len(counts) == 0 {
		return NewGenericResult(a.Name(), true, false, nil, nil, nil), nil
	}

	records := make([]string, 0, len(counts))
	for r := range counts {
		records = append(records, r)
	}
	sort.Strings(records)

	lines := make([]string, 0, len(records)+1)
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s | %d\n", r, counts[r]))
	}
	lines = append(lines, "These records were all found in the crash stack and may be involved.\n")

	return NewGenericResult(a.Name(), true, true, lines, map[string]any{"records": records}, nil), nil
}
