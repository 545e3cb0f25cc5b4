// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

func TestSuspectAnalyzer_ErrorTableMatch(t *testing.T) {
	log := &crashlog.CrashLog{MainError: "EXCEPTION_ACCESS_VIOLATION at 0x12345"}
	a := NewSuspectAnalyzer([]ErrorRule{
		{Key: "High | Access Violation", Signal: "EXCEPTION_ACCESS_VIOLATION"},
	}, nil)
	res, err := a.Analyze(context.Background(), log)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.HasFindings() {
		t.Fatal("expected a suspect match")
	}
	joined := strings.Join(res.ReportLines(), "")
	if !strings.Contains(joined, "Severity : High") {
		t.Errorf("report lines missing severity: %s", joined)
	}
}

func TestSuspectAnalyzer_StackRuleRequired(t *testing.T) {
	log := &crashlog.CrashLog{
		MainError: "EXCEPTION_STACK_OVERFLOW",
		CallStack: []string{"frame1 ntdll.dll"},
	}
	a := NewSuspectAnalyzer(nil, []StackRule{
		{Key: "Critical | Stack Overflow", Signals: []string{"ME-REQ|STACK_OVERFLOW"}},
	})
	res, err := a.Analyze(context.Background(), log)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.HasFindings() {
		t.Fatal("expected the required-signal rule to match")
	}
}

func TestSuspectAnalyzer_StackRuleNotAborts(t *testing.T) {
	log := &crashlog.CrashLog{
		MainError: "EXCEPTION_ACCESS_VIOLATION",
		CallStack: []string{"safe_function_called"},
	}
	a := NewSuspectAnalyzer(nil, []StackRule{
		{Key: "Low | False Positive", Signals: []string{"function", "NOT|safe_function_called"}},
	})
	res, err := a.Analyze(context.Background(), log)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.HasFindings() {
		t.Fatal("NOT signal should have aborted this rule")
	}
}

func TestSuspectAnalyzer_CountSignal(t *testing.T) {
	log := &crashlog.CrashLog{
		CallStack: []string{"leak", "leak", "leak"},
	}
	a := NewSuspectAnalyzer(nil, []StackRule{
		{Key: "Medium | Memory Leak", Signals: []string{"3|leak"}},
	})
	res, err := a.Analyze(context.Background(), log)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.HasFindings() {
		t.Fatal("expected count-threshold rule to match")
	}
}

func TestSuspectAnalyzer_DLLCrashNotice(t *testing.T) {
	log := &crashlog.CrashLog{MainError: "EXCEPTION_ACCESS_VIOLATION in SomeMod.dll"}
	a := NewSuspectAnalyzer(nil, nil)
	res, err := a.Analyze(context.Background(), log)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	joined := strings.Join(res.ReportLines(), "")
	if !strings.Contains(joined, "DLL") {
		t.Errorf("expected a DLL crash notice: %s", joined)
	}
}

func TestSuspectAnalyzer_TbbmallocExcluded(t *testing.T) {
	log := &crashlog.CrashLog{MainError: "EXCEPTION in tbbmalloc.dll"}
	a := NewSuspectAnalyzer(nil, nil)
	res, err := a.Analyze(context.Background(), log)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	joined := strings.Join(res.ReportLines(), "")
	if strings.Contains(joined, "DLL outside") {
		t.Errorf("tbbmalloc should be excluded from the DLL crash notice: %s", joined)
	}
}
