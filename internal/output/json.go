// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output builds the scanner111 CLI's --json envelopes and encodes
// them to stdout/stderr.
//
// It complements the ui package (human-readable reports) and the errors
// package (fatal-error formatting): anywhere runScan would otherwise print
// prose, --json mode routes the same ScanResult/BatchProgress data through
// ScanResultJSON/BatchSummaryJSON instead.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kraklabs/scanner111/pkg/analysis"
	"github.com/kraklabs/scanner111/pkg/pipeline"
)

// JSON writes data as pretty-printed JSON to stdout.
//
// The output is formatted with 2-space indentation for readability.
// This is the standard format for --json output in scanner111 CLI commands.
//
// Returns an error if JSON encoding fails (e.g., for unencodable types
// like channels or functions).
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON to the specified writer.
//
// This is useful for testing or when output needs to go somewhere
// other than stdout.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// JSONCompact writes data as compact JSON to stdout.
//
// The output contains no extra whitespace, making it suitable for
// streaming output or when size matters.
//
// Returns an error if JSON encoding fails.
func JSONCompact(data any) error {
	return JSONCompactTo(os.Stdout, data)
}

// JSONCompactTo writes data as compact JSON to the specified writer.
//
// This is useful for testing or when output needs to go somewhere
// other than stdout.
func JSONCompactTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// ErrorJSON represents an error in JSON format for machine consumption.
type ErrorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSONError writes an error as JSON to stderr.
//
// The error is wrapped in a JSON object with an "error" field.
// This ensures consistent error output format when --json mode is active.
//
// Returns an error only if JSON encoding itself fails (rare).
func JSONError(err error) error {
	return JSONErrorTo(os.Stderr, err)
}

// JSONErrorTo writes an error as JSON to the specified writer.
//
// This is useful for testing.
func JSONErrorTo(w io.Writer, err error) error {
	errObj := ErrorJSON{Error: err.Error()}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(errObj); encErr != nil {
		return fmt.Errorf("JSON error encoding failed: %w", encErr)
	}
	return nil
}

// AnalyzerResultJSON is one analyzer's findings within a --json
// ScanResultJSON envelope. Report is human-facing prose (the analyzer's
// formatted section of the scan report) and is intentionally omitted
// here; JSON consumers get the structured HasFindings/Errors fields
// instead of parsing prose.
type AnalyzerResultJSON struct {
	Name        string   `json:"name"`
	Success     bool     `json:"success"`
	HasFindings bool     `json:"has_findings"`
	Errors      []string `json:"errors,omitempty"`
}

// ScanResultJSON is the --json per-log envelope `scan` emits for each
// pipeline.ScanResult (spec §3/§6). Report itself is left out for the
// same reason as AnalyzerResultJSON.Report: it's prose, not data.
type ScanResultJSON struct {
	LogPath        string               `json:"log_path"`
	Status         string               `json:"status"`
	HasErrors      bool                 `json:"has_errors"`
	ProcessingTime string               `json:"processing_time"`
	Error          string               `json:"error,omitempty"`
	Analyzers      []AnalyzerResultJSON `json:"analyzers,omitempty"`
}

// NewScanResultJSON builds a ScanResultJSON envelope from a completed
// pipeline.ScanResult, flattening each analysis.AnalysisResult into its
// JSON-safe shape.
func NewScanResultJSON(r pipeline.ScanResult) ScanResultJSON {
	analyzers := make([]AnalyzerResultJSON, 0, len(r.AnalysisResults))
	for _, a := range r.AnalysisResults {
		analyzers = append(analyzers, AnalyzerResultJSON{
			Name:        a.AnalyzerName(),
			Success:     a.Success(),
			HasFindings: a.HasFindings(),
			Errors:      a.ErrorList(),
		})
	}
	return ScanResultJSON{
		LogPath:        r.LogPath,
		Status:         r.Status.String(),
		HasErrors:      r.HasErrors,
		ProcessingTime: r.ProcessingTime.String(),
		Error:          r.Error,
		Analyzers:      analyzers,
	}
}

// BatchSummaryJSON is the --json final-tally envelope `scan` writes to
// stdout once a batch finishes, mirroring ui.BatchSummaryLine's
// human-readable counterpart (spec §3's BatchProgress data model).
type BatchSummaryJSON struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Incomplete int `json:"incomplete"`
}

// NewBatchSummaryJSON builds a BatchSummaryJSON from the Batch Driver's
// final BatchProgress snapshot.
func NewBatchSummaryJSON(p pipeline.BatchProgress) BatchSummaryJSON {
	return BatchSummaryJSON{
		Processed:  p.Processed,
		Successful: p.Successful,
		Failed:     p.Failed,
		Incomplete: p.Incomplete,
	}
}
