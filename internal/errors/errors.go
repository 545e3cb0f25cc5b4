// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the scanner111 CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// the exit codes the CLI surface commits to (see spec §6): 0 for a batch that
// completed in full, 1 for a batch with at least one Failed log, 2 for a
// cancelled batch, 3 for invalid arguments. A handful of ambient codes cover
// failures that happen before a batch ever starts (bad config, I/O).
//
// # Usage Example
//
//	err := errors.NewConfigError(
//	    "Cannot load configuration",
//	    "scanner111.yaml is missing required key Game_Info.CRASHGEN_LogName",
//	    "Add Game_Info.CRASHGEN_LogName to scanner111.yaml",
//	    underlyingErr,
//	)
//	if err != nil {
//	    errors.FatalError(err, false)
//	}
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes. ExitSuccess through ExitInput are the CLI surface contract
// from spec §6; the rest are ambient additions for failures that occur
// before any log is scanned.
const (
	// ExitSuccess indicates every log in the batch completed.
	ExitSuccess = 0

	// ExitFailed indicates at least one log's ScanResult.Status was Failed.
	ExitFailed = 1

	// ExitCancelled indicates the batch was cancelled before completion.
	ExitCancelled = 2

	// ExitInput indicates invalid command-line arguments.
	ExitInput = 3

	// ExitConfig indicates the Configuration Store could not be loaded.
	ExitConfig = 4

	// ExitIO indicates an unrecoverable filesystem error unrelated to any
	// single log (e.g. the output directory cannot be created).
	ExitIO = 5

	// ExitInternal indicates a bug: an invariant the scanner itself should
	// have enforced was violated.
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: what went wrong (user-facing error description)
//   - Cause: why it happened (diagnostic information)
//   - Fix: how to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Use this for a Configuration Store that cannot be loaded at all — the
// "ConfigurationUnavailable" kind is handled per-read by callers instead
// (they fall back to defaults and log a warning, per spec §7); this
// constructor is for the CLI bootstrap path only.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitConfig, Err: err}
}

// NewParseError creates a ParseError (spec §7): the log file could not be
// segmented at all. Surfaces as ScanResult.Status == Failed.
func NewParseError(msg, cause string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: "Verify the file is a text crash log and not truncated mid-header.", ExitCode: ExitFailed, Err: err}
}

// NewAnalyzerError creates an AnalyzerFailed error (spec §7). It never
// propagates to the batch driver — the pipeline converts it into a
// Generic AnalysisResult with Success=false — but the same constructor is
// reused when formatting that failure for --json/log output.
func NewAnalyzerError(analyzerName, message string, err error) *UserError {
	return &UserError{
		Message:  fmt.Sprintf("Analyzer %q failed", analyzerName),
		Cause:    message,
		Fix:      "This analyzer's findings were skipped; other analyzers still ran.",
		ExitCode: ExitFailed,
		Err:      err,
	}
}

// NewCancelledError creates a Cancelled error (spec §7).
func NewCancelledError(msg string) *UserError {
	return &UserError{Message: msg, Fix: "Re-run without interrupting the scan.", ExitCode: ExitCancelled}
}

// NewIOError creates an IOError (spec §7) for unrecoverable filesystem
// failures outside of log reads (e.g. report output path unwritable).
func NewIOError(msg, cause string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: "Check file permissions and available disk space.", ExitCode: ExitIO, Err: err}
}

// NewInputError creates an input validation error with exit code ExitInput.
func NewInputError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitInput}
}

// NewInternalError creates an internal error with exit code ExitInternal.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitInternal, Err: err}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// Empty Cause or Fix fields are omitted from the output. Color output
// respects NO_COLOR and the noColor parameter.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{Error: e.Message, Cause: e.Cause, Fix: e.Fix, ExitCode: e.ExitCode}
}

// FatalError prints the error and exits with the appropriate code.
//
// A nil err is a no-op and returns; for any other err this function
// never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
