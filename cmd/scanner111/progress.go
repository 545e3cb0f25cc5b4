// Copyright 2025 KrakLabs
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

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/scanner111/pkg/pipeline"
)

// ProgressConfig determines if and how progress should be displayed.
type ProgressConfig struct {
	// Enabled indicates whether progress bars should be shown.
	// Disabled when --json, -q flags are used, or when stderr is not a TTY.
	Enabled bool

	// Writer is where progress output goes (always os.Stderr).
	Writer io.Writer

	// NoColor disables colored output in progress bars.
	NoColor bool
}

// NewProgressConfig creates a progress configuration based on global flags and TTY detection.
//
// Progress is disabled when:
//   - --json flag is set (quiet is auto-set)
//   - -q/--quiet flag is set
//   - stderr is not a TTY (piped output, CI environments, etc.)
func NewProgressConfig(globals GlobalFlags) ProgressConfig {
	enabled := !globals.Quiet && isatty.IsTerminal(os.Stderr.Fd())

	return ProgressConfig{
		Enabled: enabled,
		Writer:  os.Stderr,
		NoColor: globals.NoColor,
	}
}

// progressTracker drives a *progressbar.ProgressBar from
// pipeline.BatchProgress snapshots emitted by the Batch Driver, so
// scan.go never touches the progress bar library's API directly. A
// disabled/nil bar makes every method a no-op, so callers never need a
// nil check around it.
type progressTracker struct {
	bar *progressbar.ProgressBar
}

// newProgressTracker builds a progressTracker for scanning total log
// paths. The bar's styling is fixed to this command's "Scanning" banner
// (no caller-supplied description or indeterminate-spinner mode — the
// Batch Driver always knows its total path count up front).
func newProgressTracker(cfg ProgressConfig, total int) *progressTracker {
	if !cfg.Enabled {
		return &progressTracker{}
	}

	bar := progressbar.NewOptions64(int64(total),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &progressTracker{bar: bar}
}

// update advances the bar to p.Processed and refreshes its description
// with the current completion rate and running failure/incomplete
// tally, so a scan that is quietly accumulating failures doesn't look
// identical to a clean run until the final summary line.
func (t *progressTracker) update(p pipeline.BatchProgress) {
	if t.bar == nil {
		return
	}
	_ = t.bar.Set64(int64(p.Processed))
	t.bar.Describe(scanDescription(p))
}

func (t *progressTracker) finish() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
}

// scanDescription formats the bar's description from a BatchProgress
// snapshot, e.g. "Scanning (3.2 logs/s)" or, once a log has come back
// Failed or incomplete, "Scanning (3.2 logs/s, 1 failed, 2 incomplete)".
func scanDescription(p pipeline.BatchProgress) string {
	if p.FilesPerSecond <= 0 {
		return "Scanning"
	}
	desc := fmt.Sprintf("Scanning (%.1f logs/s", p.FilesPerSecond)
	if p.Failed > 0 {
		desc += fmt.Sprintf(", %d failed", p.Failed)
	}
	if p.Incomplete > 0 {
		desc += fmt.Sprintf(", %d incomplete", p.Incomplete)
	}
	return desc + ")"
}
