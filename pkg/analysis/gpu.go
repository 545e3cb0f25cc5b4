// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

// GPUPriority runs alongside Version, early in the report.
const GPUPriority = 20

var gpuLine = regexp.MustCompile(`(?i)^\s*GPU\s*#([12]):\s*(.+)$`)

// Manufacturer is the classified GPU vendor (spec §4.5).
type Manufacturer int

const (
	ManufacturerUnknown Manufacturer = iota
	ManufacturerNvidia
	ManufacturerAMD
	ManufacturerIntel
)

func (m Manufacturer) String() string {
	switch m {
	case ManufacturerNvidia:
		return "Nvidia"
	case ManufacturerAMD:
		return "AMD"
	case ManufacturerIntel:
		return "Intel"
	default:
		return "Unknown"
	}
}

// Rival returns the manufacturer whose driver/optimization conflicts
// with m, or ManufacturerUnknown if none (spec §4.5).
func (m Manufacturer) Rival() Manufacturer {
	switch m {
	case ManufacturerNvidia:
		return ManufacturerAMD
	case ManufacturerAMD:
		return ManufacturerNvidia
	default:
		return ManufacturerUnknown
	}
}

func classifyManufacturer(desc string) Manufacturer {
	d := strings.ToLower(desc)
	switch {
	case containsAny(d, "nvidia", "geforce", "quadro", "tesla"):
		return ManufacturerNvidia
	case containsAny(d, "amd", "radeon", "ati", "ryzen"):
		return ManufacturerAMD
	case containsAny(d, "intel", "iris", "uhd", "hd graphics"):
		return ManufacturerIntel
	default:
		return ManufacturerUnknown
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// GPUAnalyzer reports the detected GPU(s) and their manufacturers
// (spec §4.5). Analyze does not evaluate rival-vendor compatibility;
// that check is Manufacturer.IsCompatible.
type GPUAnalyzer struct{}

// NewGPUAnalyzer constructs a GPUAnalyzer.
func NewGPUAnalyzer() *GPUAnalyzer { return &GPUAnalyzer{} }

func (a *GPUAnalyzer) Name() string       { return "GPU" }
func (a *GPUAnalyzer) Priority() int      { return GPUPriority }
func (a *GPUAnalyzer) ParallelSafe() bool { return true }

func (a *GPUAnalyzer) Analyze(ctx context.Context, log *crashlog.CrashLog) (AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	default:
	}

	seg, _ := log.Segment("SYSTEM SPECS")

	var gpu1, gpu2 string
	for _, line := range seg.Lines {
		m := gpuLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch m[1] {
		case "1":
			if gpu1 == "" {
				gpu1 = strings.TrimSpace(m[2])
			}
		case "2":
			if gpu2 == "" {
				gpu2 = strings.TrimSpace(m[2])
			}
		}
	}

	if gpu1 == "" {
		return NewGenericResult(a.Name(), true, false, []string{"GPU information not found in the log.\n"}, nil, nil), nil
	}

	primary := classifyManufacturer(gpu1)
	lines := []string{fmt.Sprintf("GPU #1: %s (%s)\n", gpu1, primary)}
	data := map[string]any{"gpu1": gpu1, "manufacturer1": primary.String()}

	if gpu2 != "" {
		secondary := classifyManufacturer(gpu2)
		lines = append(lines, fmt.Sprintf("GPU #2: %s (%s)\n", gpu2, secondary))
		data["gpu2"] = gpu2
		data["manufacturer2"] = secondary.String()
	}

	return NewGenericResult(a.Name(), true, false, lines, data, nil), nil
}

// IsCompatible reports whether warningText (case-insensitive) avoids
// mentioning this manufacturer's rival (spec §4.5).
func (m Manufacturer) IsCompatible(warningText string) bool {
	rival := m.Rival()
	if rival == ManufacturerUnknown {
		return true
	}
	return !strings.Contains(strings.ToLower(warningText), strings.ToLower(rival.String()))
}
