// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"
)

// DefaultQueueCapacity is the bounded producer→consumer queue size
// between the Batch Driver's dedup stage and its worker pool (spec
// §4.15, §5).
const DefaultQueueCapacity = 100

// BatchOptions configures the Batch Driver (C9, spec §4.15).
type BatchOptions struct {
	// MaxConcurrency bounds simultaneous ProcessOne calls. Defaults to
	// the logical CPU count.
	MaxConcurrency int

	// QueueCapacity bounds the producer→consumer channel. Defaults to
	// DefaultQueueCapacity.
	QueueCapacity int
}

func (o BatchOptions) maxConcurrency() int {
	if o.MaxConcurrency > 0 {
		return o.MaxConcurrency
	}
	return runtime.NumCPU()
}

func (o BatchOptions) queueCapacity() int {
	if o.QueueCapacity > 0 {
		return o.QueueCapacity
	}
	return DefaultQueueCapacity
}

// ProgressFunc is invoked once per completed path (spec §4.15).
type ProgressFunc func(BatchProgress)

// dedupePaths drops case-insensitive duplicates, keeping first-seen
// order (spec §4.15: "Deduplicate paths case-insensitively").
func dedupePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ProcessBatch is the Batch Driver (C9, spec §4.15): it streams
// ScanResults for every deduplicated path as they complete, with
// bounded concurrency and a progress callback invoked once per
// completion. The returned channel is closed once every path has been
// processed or ctx is cancelled and all in-flight work has drained.
func (p *ScanPipeline) ProcessBatch(ctx context.Context, paths []string, opts BatchOptions, progress ProgressFunc) <-chan ScanResult {
	unique := dedupePaths(paths)
	total := len(unique)

	jobs := make(chan string, opts.queueCapacity())
	results := make(chan ScanResult, opts.queueCapacity())

	scanMetrics.init()

	go func() {
		defer close(jobs)
		for _, path := range unique {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
				scanMetrics.batchQueueDepth.Set(float64(len(jobs)))
			}
		}
	}()

	var processed int
	var tally batchTally
	var mu sync.Mutex
	start := time.Now()

	recordProgress := func(result ScanResult) {
		mu.Lock()
		processed++
		tally.record(result.Status)
		n, snapshot := processed, tally
		mu.Unlock()
		if progress != nil {
			progress(newBatchProgress(n, total, snapshot, result.LogPath, time.Since(start)))
		}
	}

	var wg sync.WaitGroup
	workers := opts.maxConcurrency()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				scanMetrics.batchQueueDepth.Set(float64(len(jobs)))
				var result ScanResult
				select {
				case <-ctx.Done():
					result = ScanResult{LogPath: path, Status: StatusCancelled, HasErrors: true, Error: ctx.Err().Error()}
				default:
					result = p.ProcessOne(ctx, path)
				}
				results <- result
				recordProgress(result)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
