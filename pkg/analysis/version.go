// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// VersionPriority runs early: later analyzers' report lines often read
// more naturally after the version banner.
const VersionPriority = 10

var crashgenVersionLine = regexp.MustCompile(`^Buffout 4 v(\d+)\.(\d+)\.(\d+)(?:\s+(.+))?$`)

// versionTuple is a comparable (major, minor, patch) triple.
type versionTuple [3]int

func (v versionTuple) less(o versionTuple) bool {
	for i := 0; i < 3; i++ {
		if v[i] != o[i] {
			return v[i] < o[i]
		}
	}
	return false
}

func (v versionTuple) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// Channel is one product line's known-latest version (spec §4.4
// "two product channels (original, next-gen)").
type Channel struct {
	Name          string
	LatestVersion string
	UpgradeURL    string
}

// VersionAnalyzer reports whether the crash generator that produced the
// log is up to date (spec §4.4).
type VersionAnalyzer struct {
	Channels []Channel
}

// NewVersionAnalyzer builds a VersionAnalyzer from the configured
// channel table.
func NewVersionAnalyzer(channels []Channel) *VersionAnalyzer {
	return &VersionAnalyzer{Channels: channels}
}

func (a *VersionAnalyzer) Name() string     { return "Version" }
func (a *VersionAnalyzer) Priority() int    { return VersionPriority }
func (a *VersionAnalyzer) ParallelSafe() bool { return true }

func (a *VersionAnalyzer) Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	default:
	}

	var raw string
	if log.Header != nil {
		raw = log.Header.CrashgenVersion
	}

	lines := []string{fmt.Sprintf("Main Error: %s\n", log.MainError)}

	current, ok := parseCrashgenVersion(raw)
	if !ok {
		lines = append(lines, fmt.Sprintf("Detected Crash Generator Version: unknown (raw: %q)\n", raw))
		return NewGenericResult(a.Name(), true, false, lines, nil, nil), nil
	}
	lines = append(lines, fmt.Sprintf("Detected Crash Generator Version: %s\n", current))

	latest, ok := a.highestLatest()
	if !ok {
		lines = append(lines, "WARNING: no version channels configured; cannot confirm latest.\n")
		return NewGenericResult(a.Name(), true, false, lines, map[string]any{"current": current.String()}, nil), nil
	}

	if !current.less(latest) {
		lines = append(lines, "You have the latest version of the crash generator.\n")
		return NewGenericResult(a.Name(), true, false, lines, map[string]any{"current": current.String(), "latest": latest.String()}, nil), nil
	}

	name := "Buffout 4"
	if log.Header != nil && log.Header.CrashgenName != "" {
		name = log.Header.CrashgenName
	}
	url := a.upgradeURLFor(latest)
	lines = append(lines, fmt.Sprintf(">>> AN UPDATE IS AVAILABLE FOR %s: %s <<<\n", name, latest))
	lines = append(lines, fmt.Sprintf("Download: %s\n", url))
	return NewGenericResult(a.Name(), true, true, lines, map[string]any{"current": current.String(), "latest": latest.String()}, nil), nil
}

func (a *VersionAnalyzer) highestLatest() (versionTuple, bool) {
	var best versionTuple
	found := false
	for _, c := range a.Channels {
		v, ok := parseCrashgenVersion("Buffout 4 v" + c.LatestVersion)
		if !ok {
			continue
		}
		if !found || best.less(v) {
			best = v
			found = true
		}
	}
	return best, found
}

func (a *VersionAnalyzer) upgradeURLFor(v versionTuple) string {
	for _, c := range a.Channels {
		if parsed, ok := parseCrashgenVersion("Buffout 4 v" + c.LatestVersion); ok && parsed == v {
			return c.UpgradeURL
		}
	}
	return ""
}

// parseCrashgenVersion parses "Buffout 4 v<maj.min.patch>[ <extra>]",
// rejecting input missing the "v" prefix (spec §4.4).
func parseCrashgenVersion(s string) (versionTuple, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "Buffout 4 v") {
		// Bare "<maj.min.patch>" values (e.g. from Header.CrashgenVersion,
		// which has already had the "Buffout 4 v" prefix stripped by the
		// parser) are also accepted.
		if !strings.Contains(s, ".") {
			return versionTuple{}, false
		}
		s = "Buffout 4 v" + s
	}
	m := crashgenVersionLine.FindStringSubmatch(s)
	if m == nil {
		return versionTuple{}, false
	}
	maj, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return versionTuple{maj, min, patch}, true
}
