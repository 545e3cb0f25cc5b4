// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// DocumentsPriority runs with the other FCX-mode analyzer, just before
// File Integrity.
const DocumentsPriority = 60

// DocumentsAnalyzer validates the per-game Documents folder's INI files
// (spec §4.10). It only runs content checks when FcxMode is enabled.
type DocumentsAnalyzer struct {
	FcxMode         bool
	MyGamesRoot     string
	OneDriveWarning string
}

// NewDocumentsAnalyzer builds a DocumentsAnalyzer. myGamesRoot is the
// absolute path to "<MyDocuments>/My Games" on the host running the scan.
func NewDocumentsAnalyzer(fcxMode bool, myGamesRoot, oneDriveWarning string) *DocumentsAnalyzer {
	return &DocumentsAnalyzer{FcxMode: fcxMode, MyGamesRoot: myGamesRoot, OneDriveWarning: oneDriveWarning}
}

func (a *DocumentsAnalyzer) Name() string       { return "DocumentsValidation" }
func (a *DocumentsAnalyzer) Priority() int      { return DocumentsPriority }
func (a *DocumentsAnalyzer) ParallelSafe() bool { return true }

func (a *DocumentsAnalyzer) Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	default:
	}

	if !a.FcxMode {
		return AnalysisResult{
			Kind: KindDocuments,
			Documents: &DocumentsResult{
				common: common{AnalyzerName: a.Name(), Success: true, HasFindings: false, ReportLines: []string{"FCX Mode is disabled; Documents validation skipped.\n"}},
			},
		}, nil
	}

	game := log.GameType
	if game == "" {
		game = "Game"
	}
	docPath := filepath.Join(a.MyGamesRoot, game)
	oneDrive := strings.Contains(strings.ToLower(docPath), "onedrive")

	var lines []string
	var errs []string
	if oneDrive && a.OneDriveWarning != "" {
		lines = append(lines, a.OneDriveWarning+"\n")
	}

	filenames := []string{game + ".ini", game + "Custom.ini", game + "Prefs.ini"}
	results := make([]IniValidationResult, 0, len(filenames))
	hasFindings := oneDrive

	for _, fname := range filenames {
		path := filepath.Join(docPath, fname)
		res := validateIniFile(path, fname == game+"Custom.ini")
		results = append(results, res)
		if len(res.Issues) > 0 {
			hasFindings = true
			for _, issue := range res.Issues {
				lines = append(lines, fmt.Sprintf("* NOTICE: %s — %s *\n", fname, issue))
			}
		}
	}

	return AnalysisResult{
		Kind: KindDocuments,
		Documents: &DocumentsResult{
			common:           common{AnalyzerName: a.Name(), Success: true, HasFindings: hasFindings, ReportLines: lines, Errors: errs},
			OneDriveDetected: oneDrive,
			IniResults:       results,
			DocumentsPath:    docPath,
		},
	}, nil
}

func validateIniFile(path string, isCustomINI bool) IniValidationResult {
	result := IniValidationResult{Path: path}

	info, statErr := os.Stat(path)
	if statErr != nil {
		result.Exists = false
		result.Issues = append(result.Issues, "file not found")
		return result
	}
	result.Exists = true
	result.IsReadOnly = info.Mode().Perm()&0o200 == 0

	if result.IsReadOnly {
		result.Issues = append(result.Issues, "file is read-only")
	}
	if info.Size() == 0 {
		result.Issues = append(result.Issues, "file is empty")
		return result
	}

	cfg, err := ini.Load(path)
	if err != nil {
		result.Issues = append(result.Issues, "file could not be parsed as INI (possibly corrupt)")
		return result
	}
	result.IsValid = true

	if isCustomINI {
		archive := cfg.Section("Archive")
		invalidateOlder := archive.Key("bInvalidateOlderFiles").String()
		resourceDirs := strings.TrimSpace(archive.Key("sResourceDataDirsFinal").String())

		result.HasArchiveInvalidation = invalidateOlder == "1"
		if !result.HasArchiveInvalidation {
			result.Issues = append(result.Issues, "[Archive] bInvalidateOlderFiles is not set to 1")
		}
		if resourceDirs != "" {
			result.Issues = append(result.Issues, "[Archive] sResourceDataDirsFinal should be empty")
		}
	}

	return result
}
