// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package crashlog

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/kraklabs/scanner111/internal/contract"
	"github.com/kraklabs/scanner111/internal/errors"
)

const maxHeaderScanLines = 8

var (
	segmentBracket = regexp.MustCompile(`^\[(.+)\]$`)
	segmentColon   = regexp.MustCompile(`^([A-Z][A-Z0-9 ]+):$`)

	gameVersionLine = regexp.MustCompile(`^(\S+)\s+v(\d+\.\d+\.\d+(?:\.\d+)?)$`)
	crashgenLine    = regexp.MustCompile(`^(.+?)\s+v(\S+)`)

	mainErrorQuoted = regexp.MustCompile(`Unhandled exception "[^"]+" at 0x[0-9A-Fa-f]+`)
	mainErrorToken  = regexp.MustCompile(`EXCEPTION_\w*`)

	pluginLine = regexp.MustCompile(`^\s*\[(FE:([0-9A-Fa-f]{3})|[0-9A-Fa-f]{2})\]\s*(.+?(?:\.(?:es[pml]|dll))+)`)
	dllToken   = regexp.MustCompile(`(?i)\.dll\+?`)

	settingLine = regexp.MustCompile(`^([^:]+):\s*(.+)$`)
	intLiteral  = regexp.MustCompile(`^-?\d+$`)
)

// Parse reads a crash log's raw content and produces an immutable
// CrashLog (spec §4.2). path is recorded verbatim on the result; it is
// not read from disk here — callers own file I/O so Parse can be
// exercised on in-memory fixtures.
func Parse(ctx context.Context, path, content string) (*CrashLog, error) {
	log := &CrashLog{
		Path:             path,
		XSEModules:       make(map[string]struct{}),
		CrashgenSettings: make(map[string]Scalar),
		IsValid:          true,
	}

	lines := splitLines(content)

	log.Header = extractHeader(lines)
	if log.Header != nil {
		log.GameType = log.Header.GameName
	}
	log.MainError = extractMainError(lines)

	segments, err := extractSegmentsFromLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	log.Segments = segments

	var sawModules, sawPlugins bool
	for _, seg := range segments {
		switch seg.Name {
		case "PROBABLE CALL STACK":
			log.CallStack = seg.Lines
		case "MODULES":
			log.Modules = seg.Lines
			sawModules = true
		case "XSE MODULES", "F4SE MODULES", "SKSE MODULES":
			for _, l := range seg.Lines {
				name := strings.TrimSpace(l)
				if name != "" {
					log.XSEModules[strings.ToLower(name)] = struct{}{}
				}
			}
		case "PLUGINS":
			log.Plugins = extractPlugins(seg.Lines)
			sawPlugins = true
		case "SETTINGS":
			for k, v := range extractSettings(seg.Lines) {
				log.CrashgenSettings[k] = v
			}
		}
	}

	if !sawModules && !sawPlugins {
		log.ErrorMessage = "incomplete: required segments MODULES and PLUGINS were not found before EOF"
	}

	if r := contract.ValidateCallStackSize(len(log.CallStack), len(log.Modules)); !r.OK {
		margin := contract.MaxStackMargin()
		log.CallStack = log.CallStack[:len(log.Modules)+margin]
	}

	return log, nil
}

// ExtractSegments partitions content into its labeled sections (spec
// §4.2). It is exposed standalone because several analyzers and tests
// only need segmentation, not a full Parse.
func ExtractSegments(ctx context.Context, content string) ([]Segment, error) {
	return extractSegmentsFromLines(ctx, splitLines(content))
}

func extractSegmentsFromLines(ctx context.Context, lines []string) ([]Segment, error) {
	var segments []Segment

	type open struct {
		name       string
		startIndex int
	}
	var current *open
	var body []string

	offset := 0
	lineOffsets := make([]int, len(lines)+1)
	for i, l := range lines {
		lineOffsets[i] = offset
		offset += len(l) + 1
	}
	lineOffsets[len(lines)] = offset

	closeSegment := func(endLineIdx int) {
		if current == nil {
			return
		}
		trimmed := trimTrailingBlank(body)
		segments = append(segments, Segment{
			Name:       current.name,
			StartIndex: current.startIndex,
			EndIndex:   lineOffsets[endLineIdx],
			Lines:      trimmed,
		})
		current = nil
		body = nil
	}

	for i, line := range lines {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelledError("segment extraction cancelled")
		default:
		}

		if name, ok := matchSegmentHeader(line); ok {
			closeSegment(i)
			current = &open{name: name, startIndex: lineOffsets[i]}
			body = nil
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	closeSegment(len(lines))

	return segments, nil
}

func matchSegmentHeader(line string) (string, bool) {
	if m := segmentBracket.FindStringSubmatch(line); m != nil {
		return normalizeSegmentName(m[1]), true
	}
	if m := segmentColon.FindStringSubmatch(line); m != nil {
		return normalizeSegmentName(m[1]), true
	}
	return "", false
}

// trimTrailingBlank drops consecutive trailing blank lines while
// preserving interior blank lines (spec §4.2).
func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	out := make([]string, end)
	copy(out, lines[:end])
	return out
}

func extractHeader(lines []string) *Header {
	nonBlank := make([]string, 0, maxHeaderScanLines)
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		nonBlank = append(nonBlank, l)
		if len(nonBlank) >= maxHeaderScanLines {
			break
		}
	}

	var gameIdx = -1
	var h Header
	for i, l := range nonBlank {
		if m := gameVersionLine.FindStringSubmatch(strings.TrimSpace(l)); m != nil {
			h.GameName = m[1]
			h.GameVersion = m[2]
			gameIdx = i
			break
		}
	}
	if gameIdx == -1 {
		return nil
	}
	for _, l := range nonBlank[gameIdx+1:] {
		if m := crashgenLine.FindStringSubmatch(strings.TrimSpace(l)); m != nil {
			h.CrashgenName = m[1]
			h.CrashgenVersion = m[2]
			break
		}
	}
	return &h
}

func extractMainError(lines []string) string {
	for _, l := range lines {
		if m := mainErrorQuoted.FindString(l); m != "" {
			return m
		}
	}
	for _, l := range lines {
		if mainErrorToken.MatchString(l) {
			return strings.TrimSpace(l)
		}
	}
	return ""
}

func extractPlugins(lines []string) []Plugin {
	seen := make(map[string]struct{}, len(lines))
	var plugins []Plugin
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if m := pluginLine.FindStringSubmatch(l); m != nil {
			token := m[1]
			name := strings.TrimSpace(m[3])
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			plugins = append(plugins, Plugin{FileName: name, LoadOrderToken: token, Origin: OriginCrashLog})
			continue
		}
		if dllToken.MatchString(l) {
			name := strings.TrimSpace(l)
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			plugins = append(plugins, Plugin{FileName: name, LoadOrderToken: "DLL", Origin: OriginCrashLog})
			continue
		}
		name := strings.TrimSpace(l)
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		plugins = append(plugins, Plugin{FileName: name, LoadOrderToken: "???", Origin: OriginCrashLog})
	}
	return plugins
}

func extractSettings(lines []string) map[string]Scalar {
	out := make(map[string]Scalar, len(lines))
	for _, l := range lines {
		m := settingLine.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		key := strings.TrimSpace(m[1])
		val := strings.TrimSpace(m[2])
		out[key] = parseScalar(val)
	}
	return out
}

func parseScalar(val string) Scalar {
	switch strings.ToLower(val) {
	case "true":
		return BoolScalar(true)
	case "false":
		return BoolScalar(false)
	}
	if intLiteral.MatchString(val) {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return IntScalar(n)
		}
	}
	return StringScalar(val)
}
