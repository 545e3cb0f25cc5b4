// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kraklabs/scanner111/internal/errors"
	"github.com/kraklabs/scanner111/pkg/analysis"
	"github.com/kraklabs/scanner111/pkg/config"
	"github.com/kraklabs/scanner111/pkg/pipeline"
)

// defaultConfigName is the Configuration Store document the CLI looks
// for in the current directory when --config is not given.
const defaultConfigName = "scanner111.yaml"

// Config bundles the loaded Configuration Store with the resolved
// settings the CLI itself needs outside of any one analyzer (spec §6's
// table of recognized options).
type Config struct {
	Store *config.Store

	FcxMode         bool
	GameRoot        string
	ExecutableName  string
	MyGamesRoot     string
	OneDriveWarning string
}

// LoadConfig loads path (or ./scanner111.yaml when path is empty) into
// a Configuration Store. A missing file is not an error: the CLI runs
// with the analyzer defaults baked into each constructor, per spec §7's
// ConfigurationUnavailable kind ("analyzer emits a Warning: line and
// continues with defaults").
func LoadConfig(path string) (*Config, error) {
	store := config.NewStore()

	if path == "" {
		path = defaultConfigName
	}
	if _, err := os.Stat(path); err == nil {
		if loadErr := store.LoadFile(path); loadErr != nil {
			return nil, errors.NewConfigError(
				"Cannot load configuration",
				loadErr.Error(),
				fmt.Sprintf("Check that %s is valid YAML.", path),
				loadErr,
			)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			err.Error(),
			"Check file permissions.",
			err,
		)
	}

	store.PrefetchAll()

	cwd, _ := os.Getwd()
	home, _ := os.UserHomeDir()

	return &Config{
		Store:           store,
		FcxMode:         config.GetOr(store, "FcxMode", false),
		GameRoot:        config.GetOr(store, "Game_Info.GameRoot", cwd),
		ExecutableName:  config.GetOr(store, "Game_Info.CRASHGEN_LogName", "Fallout4.exe"),
		MyGamesRoot:     config.GetOr(store, "Game_Info.MyGamesRoot", filepath.Join(home, "Documents", "My Games")),
		OneDriveWarning: config.GetOr(store, "Game_Info.OneDriveWarning", "OneDrive"),
	}, nil
}

// buildAnalyzers assembles the fixed eight-analyzer roster (spec §2 C5)
// from cfg. The FCX-only pair is always in the roster and receives
// fcxMode (the --fcx flag overrides the configured FcxMode); with it
// off they emit only a "disabled" line.
func buildAnalyzers(cfg *Config, fcxMode bool) []analysis.Analyzer {
	store := cfg.Store

	channels := []analysis.Channel{
		{Name: "original", LatestVersion: config.GetOr(store, "Versions.Original", "1.28.6"), UpgradeURL: "https://www.nexusmods.com/fallout4/mods/64880"},
		{Name: "next-gen", LatestVersion: config.GetOr(store, "Versions.NextGen", "1.37.0"), UpgradeURL: "https://www.nexusmods.com/fallout4/mods/64880"},
	}

	errorTable := loadErrorTable(store, "Crashlog_Error_Check")
	stackTable := loadStackTable(store, "Crashlog_Stack_Check")

	ignoreSettings := config.GetOr(store, "Game_Info.CRASHGEN_Ignore", []string{})
	ignorePlugins := config.GetOr(store, "IgnorePluginsList", []string{})
	ignoreRecords := config.GetOr(store, "IgnoreRecordsList", []string{})
	xsePatterns := config.GetOr(store, "XSEPatterns", []string{"f4se", "skse"})
	coreModFiles := config.GetOr(store, "Game_Info.CoreModFiles", []string{})
	loadOrderPath := config.GetOr(store, "Game_Info.LoadOrderPath", "load_order.txt")

	var xseLoaderNames [2]string
	loaders := config.GetOr(store, "Game_Info.XSELoaderNames", []string{"f4se_loader.exe"})
	for i := 0; i < len(xseLoaderNames) && i < len(loaders); i++ {
		xseLoaderNames[i] = loaders[i]
	}

	knownHashes := loadStringMap(store, "Game_Info.KnownExecutableHashes")

	return []analysis.Analyzer{
		analysis.NewSettingsAnalyzer(ignoreSettings),
		analysis.NewVersionAnalyzer(channels),
		analysis.NewGPUAnalyzer(),
		analysis.NewSuspectAnalyzer(errorTable, stackTable),
		analysis.NewPluginAnalyzer(ignorePlugins, xsePatterns, loadOrderPath),
		analysis.NewRecordAnalyzer(config.GetOr(store, "Game_Records", defaultGameRecords), ignoreRecords),
		analysis.NewDocumentsAnalyzer(fcxMode, cfg.MyGamesRoot, cfg.OneDriveWarning),
		analysis.NewFileIntegrityAnalyzer(fcxMode, cfg.GameRoot, cfg.ExecutableName, knownHashes, coreModFiles, xseLoaderNames, pipeline.SHA256Hasher{}, nil),
	}
}

// defaultGameRecords is the stock set of record-type substrings
// checked when the configuration doesn't override Game_Records,
// covering the record types seen most often in Fallout 4 crash logs.
var defaultGameRecords = []string{"weap:", "gfx:", "doob:", "mgef:"}

func loadErrorTable(store *config.Store, key string) []analysis.ErrorRule {
	raw := config.GetOr(store, key, map[string]any{})
	rules := make([]analysis.ErrorRule, 0, len(raw))
	for k, v := range raw {
		rules = append(rules, analysis.ErrorRule{Key: k, Signal: fmt.Sprint(v)})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Key < rules[j].Key })
	return rules
}

func loadStackTable(store *config.Store, key string) []analysis.StackRule {
	raw := config.GetOr(store, key, map[string]any{})
	rules := make([]analysis.StackRule, 0, len(raw))
	for k, v := range raw {
		var signals []string
		if list, ok := v.([]any); ok {
			for _, s := range list {
				signals = append(signals, fmt.Sprint(s))
			}
		}
		rules = append(rules, analysis.StackRule{Key: k, Signals: signals})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Key < rules[j].Key })
	return rules
}

func loadStringMap(store *config.Store, key string) map[string]string {
	raw := config.GetOr(store, key, map[string]any{})
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out
}
