// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package crashlog

import (
	"regexp"
	"strings"
)

// loadOrderLine matches a load-order row such as
// "  253   253    FD Unmanaged.esp" or "  12   0A    [FE:003] Patch.esp":
// leading whitespace, one or more whitespace-separated hex/decimal
// index groups, a hex token (either bare or FE:XXX), then a filename
// that may itself contain spaces.
var loadOrderLine = regexp.MustCompile(`^\s*(?:[0-9A-Fa-f]+\s+)+(?:FE:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{2})\s+\S.*$`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ReformatLoadOrder normalizes a load-order dump ahead of parsing
// (spec §4.1): lines that look like load-order rows have their leading
// whitespace stripped and internal whitespace runs collapsed to a
// single space; every other line is passed through unchanged.
//
// Idempotent: ReformatLoadOrder(ReformatLoadOrder(x)) == ReformatLoadOrder(x).
func ReformatLoadOrder(text string) string {
	if text == "" {
		return text
	}

	lines := splitLines(text)
	for i, line := range lines {
		if loadOrderLine.MatchString(line) {
			lines[i] = whitespaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
		}
	}
	return strings.Join(lines, "\n")
}

// splitLines splits on both "\r\n" and "\n" without losing the line
// count, matching Parse's own line handling (spec §4.2: "accepts Unix
// or Windows line endings").
func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}
