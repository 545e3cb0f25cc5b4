// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import "time"

// BatchProgress is reported once per completed path (spec §3:
// "{ total, processed, successful, failed, incomplete, current,
// elapsed, estimated_remaining }").
type BatchProgress struct {
	Processed      int
	Total          int
	Successful     int
	Failed         int
	Incomplete     int
	Current        string
	Elapsed        time.Duration
	FilesPerSecond float64
	ETASeconds     float64
}

// batchTally accumulates the per-status counts newBatchProgress needs.
// Successful counts StatusCompleted; Failed counts StatusFailed;
// Incomplete counts everything that finished without either a clean
// pass or an outright failure (StatusCompletedWithErrors and
// StatusCancelled) — a log that yielded partial results rather than a
// definitive pass/fail.
type batchTally struct {
	Successful int
	Failed     int
	Incomplete int
}

func (t *batchTally) record(status Status) {
	switch status {
	case StatusCompleted:
		t.Successful++
	case StatusFailed:
		t.Failed++
	default:
		t.Incomplete++
	}
}

// newBatchProgress computes the derived rate/ETA fields for a snapshot
// of processed/total/elapsed (spec §4.15: "filesPerSecond =
// processed/elapsed; etaSeconds = remaining/filesPerSecond").
func newBatchProgress(processed, total int, tally batchTally, current string, elapsed time.Duration) BatchProgress {
	p := BatchProgress{
		Processed:  processed,
		Total:      total,
		Successful: tally.Successful,
		Failed:     tally.Failed,
		Incomplete: tally.Incomplete,
		Current:    current,
		Elapsed:    elapsed,
	}

	seconds := elapsed.Seconds()
	if seconds <= 0 || processed == 0 {
		return p
	}
	p.FilesPerSecond = float64(processed) / seconds

	remaining := total - processed
	if remaining > 0 && p.FilesPerSecond > 0 {
		p.ETASeconds = float64(remaining) / p.FilesPerSecond
	}
	return p
}
