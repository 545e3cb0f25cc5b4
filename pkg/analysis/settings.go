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

// SettingsPriority is the lowest numeric value in the pipeline: the
// Settings analyzer is the single writer for cross-setting messages and
// must run before Plugin/Record (spec §4.7).
const SettingsPriority = 0

var xCellDLLs = []string{"x-cell-fo4.dll", "x-cell-og.dll", "x-cell-ng2.dll"}

const (
	bakaScrapHeapDLL = "bakascrapheap.dll"
	looksMenuDLL     = "f4ee.dll"
)

// xCellAllocatorSettings are the four extra X-Cell-specific allocator
// settings reported only when X-Cell is detected (spec §4.7).
var xCellAllocatorSettings = []string{
	"ScaleformAllocator",
	"HavokMemorySystem",
	"BSTextureStreamerLocalHeap",
	"SmallBlockAllocator",
}

// SettingsAnalyzer cross-checks crashgen_settings against detected XSE
// plugins (spec §4.7). It is serial-only: ParallelSafe always reports
// false.
type SettingsAnalyzer struct {
	IgnoreList map[string]struct{}
}

// NewSettingsAnalyzer builds a SettingsAnalyzer with a case-insensitive
// ignore list of setting names never flagged as "disabled" notices.
func NewSettingsAnalyzer(ignore []string) *SettingsAnalyzer {
	m := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		m[strings.ToLower(name)] = struct{}{}
	}
	return &SettingsAnalyzer{IgnoreList: m}
}

func (a *SettingsAnalyzer) Name() string       { return "Settings" }
func (a *SettingsAnalyzer) Priority() int      { return SettingsPriority }
func (a *SettingsAnalyzer) ParallelSafe() bool { return false }

func (a *SettingsAnalyzer) Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	default:
	}

	hasXCell := false
	for _, dll := range xCellDLLs {
		if log.HasXSEModule(dll) {
			hasXCell = true
			break
		}
	}
	hasBaka := log.HasXSEModule(bakaScrapHeapDLL)
	hasF4EE := log.HasXSEModule(looksMenuDLL)

	var lines []string
	hasFindings := false

	lines = append(lines, a.checkBoolSetting(log, "Achievements", "Achievements")...)
	lines = append(lines, a.memoryManagerLines(log, hasXCell, hasBaka)...)
	lines = append(lines, a.checkBoolSetting(log, "ArchiveLimit", "ArchiveLimit")...)

	if hasF4EE {
		lines = append(lines, a.checkBoolSetting(log, "F4EE", "Looks Menu (F4EE)")...)
	}

	if hasXCell {
		for _, setting := range xCellAllocatorSettings {
			lines = append(lines, a.checkBoolSetting(log, setting, setting)...)
		}
	}

	notices := a.disabledNotices(log)
	if len(notices) > 0 {
		hasFindings = true
		lines = append(lines, notices...)
	}

	return NewGenericResult(a.Name(), true, hasFindings, lines, map[string]any{
		"x_cell": hasXCell, "baka_scrap_heap": hasBaka, "f4ee": hasF4EE,
	}, nil), nil
}

func (a *SettingsAnalyzer) checkBoolSetting(log *crashlog.CrashLog, key, label string) []string {
	v, ok := log.CrashgenSettings[key]
	if !ok {
		return []string{fmt.Sprintf("* NOTICE: %s setting not found in crash log. *\n", label)}
	}
	if v.Kind == crashlog.ScalarBool && v.B {
		return []string{fmt.Sprintf("* ✔️ %s is enabled. *\n", label)}
	}
	return []string{fmt.Sprintf("# ⚠️ %s is disabled. #\n", label)}
}

func (a *SettingsAnalyzer) memoryManagerLines(log *crashlog.CrashLog, hasXCell, hasBaka bool) []string {
	lines := a.checkBoolSetting(log, "MemoryManager", "Memory Manager")
	if hasXCell && hasBaka {
		lines = append(lines, "# ⚠️ X-Cell and Baka ScrapHeap are both installed; they conflict. Remove one. #\n")
	}
	return lines
}

// disabledNotices enumerates every crashgen_settings entry whose value
// is literal false and is not in the ignore list (spec §4.7).
func (a *SettingsAnalyzer) disabledNotices(log *crashlog.CrashLog) []string {
	var keys []string
	for k, v := range log.CrashgenSettings {
		if !v.IsFalse() {
			continue
		}
		if _, ignored := a.IgnoreList[strings.ToLower(k)]; ignored {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("* NOTICE: %s is disabled in your settings. Was this intentional? *\n", k))
	}
	return lines
}
