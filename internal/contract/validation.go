// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package contract

import (
	"os"
	"strconv"
)

const (
	// DefaultMaxStackMargin is the default allowance added to len(modules)
	// when bounding an acceptable call-stack length (spec §3).
	DefaultMaxStackMargin = 10000
)

// MaxStackMargin returns the effective margin for the call-stack size
// guard. Controlled via env SCANNER111_MAX_STACK_MARGIN; falls back to
// DefaultMaxStackMargin.
func MaxStackMargin() int {
	if v := os.Getenv("SCANNER111_MAX_STACK_MARGIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return DefaultMaxStackMargin
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateCallStackSize checks the spec §3 invariant
// call_stack.len ≤ modules.len + margin.
func ValidateCallStackSize(callStackLines, moduleLines int) *ValidationResult {
	if callStackLines > moduleLines+MaxStackMargin() {
		return &ValidationResult{
			OK:      false,
			Message: "call stack exceeds the pathological-log size guard",
		}
	}
	return &ValidationResult{OK: true}
}
