// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package pipeline wires the Log Parser and Analyzers into the Scan
// Pipeline (C8), fans a multi-log run out through the Batch Driver
// (C9), and renders each scan's findings with the Report Writer (C10).
//
// Data flow (spec §1): paths → Batch Driver → (per path) Scan Pipeline
// → Log Parser → CrashLog → Analyzers (parallel + serial) →
// AnalysisResult[] → ScanResult → report text → consumer.
package pipeline
