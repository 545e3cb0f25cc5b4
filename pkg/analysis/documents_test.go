// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

func TestDocumentsAnalyzer_DisabledWithoutFcxMode(t *testing.T) {
	a := NewDocumentsAnalyzer(false, "", "")
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.HasFindings() {
		t.Fatal("disabled analyzer should report no findings")
	}
	joined := strings.Join(res.ReportLines(), "")
	if !strings.Contains(joined, "disabled") {
		t.Errorf("expected a disabled notice: %s", joined)
	}
}

func TestDocumentsAnalyzer_OneDriveDetection(t *testing.T) {
	root := filepath.Join(t.TempDir(), "OneDrive", "Documents", "My Games")
	a := NewDocumentsAnalyzer(true, root, "Documents folder is on OneDrive; this can cause crashes.")
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{GameType: "Fallout4"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.HasFindings() {
		t.Fatal("expected a OneDrive finding")
	}
	if !res.Documents.OneDriveDetected {
		t.Fatal("OneDriveDetected should be true")
	}
}

func TestDocumentsAnalyzer_CustomIniArchiveValidation(t *testing.T) {
	root := t.TempDir()
	gameDir := filepath.Join(root, "Fallout4")
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		t.Fatal(err)
	}
	customPath := filepath.Join(gameDir, "Fallout4Custom.ini")
	content := "[Archive]\nbInvalidateOlderFiles=0\nsResourceDataDirsFinal=STRINGS\\\n"
	if err := os.WriteFile(customPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewDocumentsAnalyzer(true, root, "")
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{GameType: "Fallout4"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.HasFindings() {
		t.Fatal("expected archive-invalidation findings")
	}
	var custom *IniValidationResult
	for i := range res.Documents.IniResults {
		if strings.HasSuffix(res.Documents.IniResults[i].Path, "Fallout4Custom.ini") {
			custom = &res.Documents.IniResults[i]
		}
	}
	if custom == nil {
		t.Fatal("expected a Fallout4Custom.ini result")
	}
	if custom.HasArchiveInvalidation {
		t.Fatal("bInvalidateOlderFiles=0 should not count as archive invalidation enabled")
	}
	if len(custom.Issues) == 0 {
		t.Fatal("expected issues for the misconfigured Custom.ini")
	}
}

func TestDocumentsAnalyzer_MissingFile(t *testing.T) {
	root := t.TempDir()
	a := NewDocumentsAnalyzer(true, root, "")
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{GameType: "Fallout4"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.HasFindings() {
		t.Fatal("missing ini files should be findings")
	}
}
