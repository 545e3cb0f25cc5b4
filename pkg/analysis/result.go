// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import "github.com/kraklabs/scanner111/pkg/crashlog"

// GameStatus is the Fcx variant's overall health verdict (spec §3).
type GameStatus int

const (
	GameStatusGood GameStatus = iota
	GameStatusWarning
	GameStatusCritical
	GameStatusInvalid
)

func (g GameStatus) String() string {
	switch g {
	case GameStatusGood:
		return "Good"
	case GameStatusWarning:
		return "Warning"
	case GameStatusCritical:
		return "Critical"
	default:
		return "Invalid"
	}
}

// common carries the fields every AnalysisResult variant shares
// (spec §3: "All variants carry analyzer_name, success, has_findings,
// report_lines (ordered), and optional errors").
type common struct {
	AnalyzerName string
	Success      bool
	HasFindings  bool
	ReportLines  []string
	Errors       []string
}

// AnalysisResult is the sum type returned by every analyzer (spec §3).
// Exactly one of the Generic/Plugin/Suspect/Documents/Fcx fields is
// populated, selected by Kind.
type AnalysisResult struct {
	Kind ResultKind

	Generic   *GenericResult
	Plugin    *PluginResult
	Suspect   *SuspectResult
	Documents *DocumentsResult
	Fcx       *FcxResult
}

// ResultKind tags which variant of AnalysisResult is populated.
type ResultKind int

const (
	KindGeneric ResultKind = iota
	KindPlugin
	KindSuspect
	KindDocuments
	KindFcx
)

// AnalyzerName returns the shared field regardless of variant.
func (r AnalysisResult) AnalyzerName() string { return r.common().AnalyzerName }

// Success returns the shared field regardless of variant.
func (r AnalysisResult) Success() bool { return r.common().Success }

// HasFindings returns the shared field regardless of variant.
func (r AnalysisResult) HasFindings() bool { return r.common().HasFindings }

// ReportLines returns the shared field regardless of variant.
func (r AnalysisResult) ReportLines() []string { return r.common().ReportLines }

// ErrorList returns the shared field regardless of variant.
func (r AnalysisResult) ErrorList() []string { return r.common().Errors }

func (r AnalysisResult) common() common {
	switch r.Kind {
	case KindGeneric:
		return r.Generic.common
	case KindPlugin:
		return r.Plugin.common
	case KindSuspect:
		return r.Suspect.common
	case KindDocuments:
		return r.Documents.common
	case KindFcx:
		return r.Fcx.common
	default:
		return common{}
	}
}

// GenericResult is the catch-all variant used by Version, GPU, Settings
// and Record, and as the shape a failed analyzer is converted into
// (spec §4.3, §7).
type GenericResult struct {
	common
	Data map[string]any
}

// NewGenericResult builds a GenericResult-wrapped AnalysisResult.
func NewGenericResult(analyzerName string, success, hasFindings bool, reportLines []string, data map[string]any, errs []string) AnalysisResult {
	return AnalysisResult{
		Kind: KindGeneric,
		Generic: &GenericResult{
			common: common{AnalyzerName: analyzerName, Success: success, HasFindings: hasFindings, ReportLines: reportLines, Errors: errs},
			Data:   data,
		},
	}
}

// FailedResult converts any analyzer failure into a Generic result with
// success=false (spec §4.3, §7: "any other exception is converted to a
// Generic result with success=false").
func FailedResult(analyzerName string, err error) AnalysisResult {
	return NewGenericResult(analyzerName, false, false, nil, nil, []string{err.Error()})
}

// PluginResult is the Plugin Analyzer's output (spec §3, §4.8).
type PluginResult struct {
	common
	Plugins []crashlog.Plugin
}

// SuspectResult is the Suspect Analyzer's output (spec §3, §4.6).
type SuspectResult struct {
	common
	ErrorMatches      []string
	StackMatches      []string
	MatchDescriptions []string
}

// IniValidationResult is one Documents-analyzer file check (spec §4.10).
type IniValidationResult struct {
	Path                   string
	Exists                 bool
	IsValid                bool
	IsReadOnly             bool
	HasArchiveInvalidation bool
	Issues                 []string
}

// DocumentsResult is the Documents Validation Analyzer's output
// (spec §3, §4.10).
type DocumentsResult struct {
	common
	OneDriveDetected bool
	IniResults       []IniValidationResult
	DocumentsPath    string
}

// FileCheck is one core-mod-file presence/metadata probe (spec §4.11).
type FileCheck struct {
	Path         string
	Exists       bool
	SizeBytes    int64
	LastModified string
}

// HashValidation is one executable hash comparison (spec §4.11).
type HashValidation struct {
	Label   string
	Matched bool
	Note    string
}

// FcxResult is the File Integrity Analyzer's output (spec §3, §4.11).
type FcxResult struct {
	common
	GameStatus        GameStatus
	FileChecks        []FileCheck
	HashValidations   []HashValidation
	VersionWarnings   []string
	RecommendedFixes  []string
}
