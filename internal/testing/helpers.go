// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/scanner111/pkg/config"
	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// WriteCrashLog writes content to a temp file named like a real crash
// log and returns its path. The file and its parent directory are
// removed automatically when the test finishes.
func WriteCrashLog(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "crash-2026-07-31-12-00-00.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test crash log: %v", err)
	}
	return path
}

// SampleLogText returns a minimal but complete crash log exercising the
// header, main error, plugins, modules and settings segments.
func SampleLogText() string {
	return "Fallout4 v1.10.163\n" +
		"Buffout 4 v1.28.6 Oct 18 2022 00:00:00\n" +
		"Unhandled exception \"EXCEPTION_ACCESS_VIOLATION\" at 0x7FF6\n" +
		"\n" +
		"SYSTEM SPECS:\n" +
		"\tGPU #1: Nvidia GeForce RTX 3080\n" +
		"\n" +
		"PLUGINS:\n" +
		"[01] Fallout4.esm\n" +
		"[FE:000] SomeLightPlugin.esl\n" +
		"\n" +
		"MODULES:\n" +
		"F4SE.dll\n" +
		"\n" +
		"SETTINGS:\n" +
		"Achievements: true\n" +
		"MemoryManager: true\n" +
		"ArchiveLimit: false\n"
}

// InsertCrashLog parses a crash log fixture into a *crashlog.CrashLog,
// failing the test immediately if parsing errors.
func InsertCrashLog(t *testing.T, content string) *crashlog.CrashLog {
	t.Helper()

	path := WriteCrashLog(t, content)
	log, err := crashlog.Parse(t.Context(), path, content)
	if err != nil {
		t.Fatalf("failed to parse test crash log: %v", err)
	}
	return log
}

// NewTestStore writes each YAML fragment to its own temp file, loads
// them into a fresh *config.Store in order (later fragments win on key
// conflicts), and returns the store.
func NewTestStore(t *testing.T, yamlFragments ...string) *config.Store {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(yamlFragments))
	for i, fragment := range yamlFragments {
		path := filepath.Join(dir, "fragment-"+itoaSmall(i)+".yaml")
		if err := os.WriteFile(path, []byte(fragment), 0o644); err != nil {
			t.Fatalf("failed to write test config fragment: %v", err)
		}
		paths = append(paths, path)
	}

	store := config.NewStore()
	if len(paths) > 0 {
		if err := store.LoadMultiple(paths); err != nil {
			t.Fatalf("failed to load test config fragments: %v", err)
		}
	}
	return store
}

func itoaSmall(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
