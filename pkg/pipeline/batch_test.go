// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestLog(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func TestDedupePaths_CaseInsensitive(t *testing.T) {
	out := dedupePaths([]string{"A.log", "a.log", "B.log"})
	assert.Equal(t, []string{"A.log", "B.log"}, out)
}

func TestProcessBatch_StreamsAllResults(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTestLog(t, dir, "one.log"),
		writeTestLog(t, dir, "two.log"),
		writeTestLog(t, dir, "three.log"),
	}

	p := NewScanPipeline(testAnalyzers(), nil, nil, nil)
	var progressCalls int
	var mu sync.Mutex
	results := p.ProcessBatch(context.Background(), paths, BatchOptions{MaxConcurrency: 2}, func(BatchProgress) {
		mu.Lock()
		progressCalls++
		mu.Unlock()
	})

	seen := make(map[string]bool)
	for r := range results {
		seen[r.LogPath] = true
	}

	assert.Len(t, seen, 3)
	assert.Equal(t, 3, progressCalls)
}

func TestProcessBatch_ProgressReportsTallyAndCurrent(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTestLog(t, dir, "one.log"),
		writeTestLog(t, dir, "two.log"),
	}

	p := NewScanPipeline(testAnalyzers(), nil, nil, nil)
	var mu sync.Mutex
	var last BatchProgress
	results := p.ProcessBatch(context.Background(), paths, BatchOptions{MaxConcurrency: 1}, func(bp BatchProgress) {
		mu.Lock()
		last = bp
		mu.Unlock()
	})
	for range results {
	}

	assert.Equal(t, 2, last.Processed)
	assert.Equal(t, 2, last.Successful)
	assert.Zero(t, last.Failed)
	assert.Zero(t, last.Incomplete)
	assert.NotEmpty(t, last.Current)
}

func TestProcessBatch_DeduplicatesBeforeProcessing(t *testing.T) {
	dir := t.TempDir()
	path := writeTestLog(t, dir, "one.log")
	upper := filepath.Join(filepath.Dir(path), "ONE.LOG")
	require.NoError(t, os.WriteFile(upper, []byte(sampleLog), 0o644))

	p := NewScanPipeline(testAnalyzers(), nil, nil, nil)
	results := p.ProcessBatch(context.Background(), []string{path, upper}, BatchOptions{}, nil)

	count := 0
	for range results {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestProcessBatch_CancellationStopsEarly(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, writeTestLog(t, dir, "log"+string(rune('a'+i))+".log"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	p := NewScanPipeline(testAnalyzers(), nil, nil, nil)
	results := p.ProcessBatch(ctx, paths, BatchOptions{MaxConcurrency: 1}, nil)

	count := 0
	for range results {
		count++
	}
	assert.LessOrEqual(t, count, len(paths))
}
