// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package cache implements the Result Cache (spec §4.12, §5): a bounded
// fingerprint→AnalysisResult LRU with at-most-once concurrent computation
// per fingerprint, so two scans of byte-identical log content never race
// to analyze it twice.
package cache
