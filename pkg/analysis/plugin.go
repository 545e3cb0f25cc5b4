// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// PluginPriority runs after Settings and Suspect.
const PluginPriority = 40

var modifiedByLine = regexp.MustCompile(`(?i)modified by:`)
var dllTokenPattern = regexp.MustCompile(`(?i)[\w.\-]+\.dll`)

// PluginAnalyzer counts call-stack mentions of known plugins (spec §4.8).
type PluginAnalyzer struct {
	IgnoreList     map[string]struct{}
	XSEPatterns    []string
	LoadOrderPath  string
}

// NewPluginAnalyzer builds a PluginAnalyzer. loadOrderPath is the
// runtime's working-directory candidate for load_order.txt; pass "" to
// disable the external-file override.
func NewPluginAnalyzer(ignore, xsePatterns []string, loadOrderPath string) *PluginAnalyzer {
	m := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		m[strings.ToLower(name)] = struct{}{}
	}
	return &PluginAnalyzer{IgnoreList: m, XSEPatterns: xsePatterns, LoadOrderPath: loadOrderPath}
}

func (a *PluginAnalyzer) Name() string       { return "Plugin" }
func (a *PluginAnalyzer) Priority() int      { return PluginPriority }
func (a *PluginAnalyzer) ParallelSafe() bool { return true }

func (a *PluginAnalyzer) Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	default:
	}

	plugins := log.Plugins
	var banner []string

	if a.LoadOrderPath != "" {
		if loaded, ok := a.loadFromFile(); ok {
			plugins = loaded
			banner = []string{"* Using external load_order.txt in place of the crash log's plugin list. *\n"}
		}
	}

	plugins = a.filterIgnored(plugins)

	if len(plugins) == 0 {
		lines := append(banner, a.fallbackXSEScan(log)...)
		return NewGenericResult(a.Name(), true, len(lines) > len(banner), lines, nil, nil), nil
	}

	counts := make(map[string]int, len(plugins))
	names := make(map[string]string, len(plugins))
	for _, p := range plugins {
		lower := strings.ToLower(p.FileName)
		names[lower] = lower
	}

	for _, line := range log.CallStack {
		if modifiedByLine.MatchString(line) {
			continue
		}
		lowerLine := strings.ToLower(line)
		for lower := range names {
			if strings.Contains(lowerLine, lower) {
				counts[lower]++
			}
		}
	}

	type countedPlugin struct {
		name  string
		count int
	}
	var matched []countedPlugin
	for lower, count := range counts {
		if count > 0 {
			matched = append(matched, countedPlugin{name: names[lower], count: count})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].count != matched[j].count {
			return matched[i].count > matched[j].count
		}
		return matched[i].name < matched[j].name
	})

	lines := banner
	for _, m := range matched {
		lines = append(lines, fmt.Sprintf("- %s | %d\n", m.name, m.count))
	}

	return AnalysisResult{
		Kind: KindPlugin,
		Plugin: &PluginResult{
			common: common{
				AnalyzerName: a.Name(),
				Success:      true,
				HasFindings:  len(matched) > 0,
				ReportLines:  lines,
			},
			Plugins: plugins,
		},
	}, nil
}

func (a *PluginAnalyzer) filterIgnored(plugins []crashlog.Plugin) []crashlog.Plugin {
	out := make([]crashlog.Plugin, 0, len(plugins))
	for _, p := range plugins {
		if _, ignored := a.IgnoreList[strings.ToLower(p.FileName)]; ignored {
			continue
		}
		out = append(out, p)
	}
	return out
}

// loadFromFile reads load_order.txt, skipping its header line (spec §4.8,
// §6). ok is false if the file does not exist or cannot be read.
func (a *PluginAnalyzer) loadFromFile() ([]crashlog.Plugin, bool) {
	data, err := os.ReadFile(filepath.Clean(a.LoadOrderPath))
	if err != nil {
		return nil, false
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var plugins []crashlog.Plugin
	for i, l := range lines {
		name := strings.TrimSpace(l)
		if name == "" {
			continue
		}
		plugins = append(plugins, crashlog.Plugin{
			FileName:       name,
			LoadOrderToken: fmt.Sprintf("%02X", i),
			Origin:         crashlog.OriginLoadOrderFile,
		})
	}
	return plugins, true
}

// fallbackXSEScan scans the call stack for known XSE plugin filename
// patterns when no plugin list is available at all (spec §4.8).
func (a *PluginAnalyzer) fallbackXSEScan(log *crashlog.CrashLog) []string {
	found := make(map[string]struct{})
	for _, line := range log.CallStack {
		lower := strings.ToLower(line)
		for _, pattern := range a.XSEPatterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				for _, tok := range dllTokenPattern.FindAllString(line, -1) {
					found[strings.TrimSpace(tok)] = struct{}{}
				}
			}
		}
	}
	names := make([]string, 0, len(found))
	for n := range found {
		names = append(names, n)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, n := range names {
		lines = append(lines, fmt.Sprintf("- %s\n", n))
	}
	return lines
}
