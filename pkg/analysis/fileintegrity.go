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

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// FileIntegrityPriority runs alongside Documents Validation, last.
const FileIntegrityPriority = 70

// Platform is the detected game installation platform (spec §4.11).
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformSteam
	PlatformGOG
)

func detectPlatform(path string) Platform {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "steamapps"):
		return PlatformSteam
	case strings.Contains(lower, "gog"):
		return PlatformGOG
	default:
		return PlatformUnknown
	}
}

// ExecutableHasher computes a content hash for the game executable. A
// real implementation (SHA-256 over the file) lives in pkg/pipeline so
// this package stays free of I/O-heavy defaults that tests would need
// to stub out.
type ExecutableHasher interface {
	HashFile(path string) (string, error)
}

// ModManagerStaging is the optional external mod-manager probe result
// (spec §4.11: "Optionally probe a mod-manager service (external) for
// staging folder, enabled mod count, and plugin-count limit").
type ModManagerStaging struct {
	StagingFolder    string
	EnabledModCount  int
	PluginCountLimit int
}

// ModManagerProbe is implemented by an external collaborator; the core
// never depends on a specific mod manager (spec §1 Non-goals).
type ModManagerProbe interface {
	Probe() (ModManagerStaging, error)
}

const pluginCountHardLimit = 254

// FileIntegrityAnalyzer validates the game installation (spec §4.11).
// It only runs when FcxMode is enabled.
type FileIntegrityAnalyzer struct {
	FcxMode        bool
	GameRoot       string
	ExecutableName string
	KnownHashes    map[string]string // sha256 hex -> version label
	CoreModFiles   []string
	XSELoaderNames [2]string

	Hasher     ExecutableHasher
	ModManager ModManagerProbe
}

// NewFileIntegrityAnalyzer builds a FileIntegrityAnalyzer.
func NewFileIntegrityAnalyzer(fcxMode bool, gameRoot, executableName string, knownHashes map[string]string, coreModFiles []string, xseLoaderNames [2]string, hasher ExecutableHasher, modManager ModManagerProbe) *FileIntegrityAnalyzer {
	return &FileIntegrityAnalyzer{
		FcxMode:        fcxMode,
		GameRoot:       gameRoot,
		ExecutableName: executableName,
		KnownHashes:    knownHashes,
		CoreModFiles:   coreModFiles,
		XSELoaderNames: xseLoaderNames,
		Hasher:         hasher,
		ModManager:     modManager,
	}
}

func (a *FileIntegrityAnalyzer) Name() string       { return "FileIntegrity" }
func (a *FileIntegrityAnalyzer) Priority() int      { return FileIntegrityPriority }
func (a *FileIntegrityAnalyzer) ParallelSafe() bool { return true }

func (a *FileIntegrityAnalyzer) Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	default:
	}

	if !a.FcxMode {
		return AnalysisResult{
			Kind: KindFcx,
			Fcx: &FcxResult{
				common:     common{AnalyzerName: a.Name(), Success: true, ReportLines: []string{"FCX Mode is disabled; File Integrity checks skipped.\n"}},
				GameStatus: GameStatusGood,
			},
		}, nil
	}

	var lines []string
	var versionWarnings, fixes []string
	status := GameStatusGood

	platform := detectPlatform(a.GameRoot)
	lines = append(lines, fmt.Sprintf("Detected platform: %s\n", platformLabel(platform)))

	execPath := filepath.Join(a.GameRoot, a.ExecutableName)
	var hashValidations []HashValidation
	execOK := a.checkExecutable(execPath, &hashValidations, &versionWarnings, &lines)
	if !execOK {
		status = GameStatusCritical
	}

	var fileChecks []FileCheck
	for _, name := range a.XSELoaderNames {
		if name == "" {
			continue
		}
		check := statFileCheck(filepath.Join(a.GameRoot, name))
		fileChecks = append(fileChecks, check)
		if !check.Exists && status != GameStatusCritical {
			status = GameStatusWarning
			lines = append(lines, fmt.Sprintf("* ⚠️ XSE loader %s not found. *\n", name))
			fixes = append(fixes, fmt.Sprintf("Install %s alongside the game executable.", name))
		}
	}

	for _, rel := range a.CoreModFiles {
		check := statFileCheck(filepath.Join(a.GameRoot, rel))
		fileChecks = append(fileChecks, check)
		if !check.Exists && status == GameStatusGood {
			status = GameStatusWarning
		}
	}

	if a.ModManager != nil {
		staging, err := a.ModManager.Probe()
		if err != nil {
			lines = append(lines, fmt.Sprintf("* NOTICE: mod manager probe failed: %s *\n", err.Error()))
		} else {
			limit := staging.PluginCountLimit
			if limit == 0 {
				limit = pluginCountHardLimit
			}
			if staging.EnabledModCount > limit {
				if status != GameStatusCritical {
					status = GameStatusWarning
				}
				lines = append(lines, fmt.Sprintf("* ⚠️ %d plugins enabled, exceeding the %d limit. *\n", staging.EnabledModCount, limit))
				fixes = append(fixes, "Disable plugins until you are under the hard limit, or merge/ESL-flag some.")
			}
		}
	}

	return AnalysisResult{
		Kind: KindFcx,
		Fcx: &FcxResult{
			common:           common{AnalyzerName: a.Name(), Success: true, HasFindings: status != GameStatusGood, ReportLines: lines},
			GameStatus:       status,
			FileChecks:       fileChecks,
			HashValidations:  hashValidations,
			VersionWarnings:  versionWarnings,
			RecommendedFixes: fixes,
		},
	}, nil
}

func (a *FileIntegrityAnalyzer) checkExecutable(path string, hashValidations *[]HashValidation, versionWarnings *[]string, lines *[]string) bool {
	if _, err := os.Stat(path); err != nil {
		*lines = append(*lines, fmt.Sprintf("* ❌ Game executable not found at %s. *\n", path))
		return false
	}
	if a.Hasher == nil {
		*lines = append(*lines, "Executable present; hash validation skipped (no hashing service configured).\n")
		return true
	}

	hash, err := a.Hasher.HashFile(path)
	if err != nil {
		*lines = append(*lines, fmt.Sprintf("* ❌ Could not hash game executable: %s *\n", err.Error()))
		return false
	}

	label, known := a.KnownHashes[hash]
	if !known {
		*versionWarnings = append(*versionWarnings, "unknown executable version")
		*hashValidations = append(*hashValidations, HashValidation{Label: "unknown", Matched: false, Note: "hash not found in the known-version table"})
		*lines = append(*lines, "* NOTICE: executable version is unknown (not in the known-hash table). *\n")
		return true
	}

	*hashValidations = append(*hashValidations, HashValidation{Label: label, Matched: true})
	*lines = append(*lines, fmt.Sprintf("Detected executable version: %s\n", label))
	return true
}

func statFileCheck(path string) FileCheck {
	info, err := os.Stat(path)
	if err != nil {
		return FileCheck{Path: path, Exists: false}
	}
	return FileCheck{
		Path:         path,
		Exists:       true,
		SizeBytes:    info.Size(),
		LastModified: info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func platformLabel(p Platform) string {
	switch p {
	case PlatformSteam:
		return "Steam"
	case PlatformGOG:
		return "GOG"
	default:
		return "Unknown"
	}
}
