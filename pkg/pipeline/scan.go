// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	scannererrors "github.com/kraklabs/scanner111/internal/errors"
	"github.com/kraklabs/scanner111/pkg/analysis"
	"github.com/kraklabs/scanner111/pkg/cache"
	"github.com/kraklabs/scanner111/pkg/crashlog"
	"github.com/kraklabs/scanner111/pkg/resilience"
)

// analyzerInputVersion is the Result Cache key's third component (spec
// §4.12). Every analyzer in this build shares one version; bump it if
// an analyzer's output shape changes in a way that should invalidate
// previously cached results.
const analyzerInputVersion = 1

// Status is a ScanResult's terminal state (spec §3).
type Status int

const (
	StatusCompleted Status = iota
	StatusCompletedWithErrors
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "Completed"
	case StatusCompletedWithErrors:
		return "CompletedWithErrors"
	case StatusFailed:
		return "Failed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ScanResult is one log's complete scan outcome (spec §3).
type ScanResult struct {
	LogPath         string
	Status          Status
	CrashLog        *crashlog.CrashLog
	AnalysisResults []analysis.AnalysisResult
	Report          string
	ProcessingTime  time.Duration
	HasErrors       bool
	Error           string
}

// ScanPipeline runs the Log Parser and a fixed analyzer roster over one
// crash log (spec §4.14, C8).
type ScanPipeline struct {
	Analyzers []analysis.Analyzer
	Cache     *cache.Cache
	Executor  *resilience.Executor
	Logger    *slog.Logger

	// DisableCache bypasses the Result Cache entirely (the CLI's
	// --no-cache flag).
	DisableCache bool
}

// NewScanPipeline builds a ScanPipeline. A nil cache/executor/logger
// falls back to sensible defaults (no cache wrapping, no-retry
// executor, slog.Default()).
func NewScanPipeline(analyzers []analysis.Analyzer, resultCache *cache.Cache, executor *resilience.Executor, logger *slog.Logger) *ScanPipeline {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.Policy{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanPipeline{Analyzers: analyzers, Cache: resultCache, Executor: executor, Logger: logger}
}

// ProcessOne parses path's content and runs every configured analyzer
// over it, producing an ordered ScanResult (spec §4.14).
func (p *ScanPipeline) ProcessOne(ctx context.Context, path string) ScanResult {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		return ScanResult{
			LogPath:        path,
			Status:         StatusFailed,
			ProcessingTime: time.Since(start),
			HasErrors:      true,
			Error:          err.Error(),
		}
	}

	return p.ProcessContent(ctx, path, string(content))
}

// ProcessContent is ProcessOne's testable core: it takes already-read
// log content instead of reading path itself.
func (p *ScanPipeline) ProcessContent(ctx context.Context, path, content string) ScanResult {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return ScanResult{LogPath: path, Status: StatusCancelled, ProcessingTime: time.Since(start), HasErrors: true, Error: err.Error()}
	}

	log, err := crashlog.Parse(ctx, path, content)
	if err != nil {
		ue := scannererrors.NewParseError("could not parse crash log", err.Error(), err)
		return ScanResult{
			LogPath:        path,
			Status:         StatusFailed,
			ProcessingTime: time.Since(start),
			HasErrors:      true,
			Error:          ue.Error(),
		}
	}

	ordered := make([]analysis.Analyzer, len(p.Analyzers))
	copy(ordered, p.Analyzers)
	sort.Sort(analysis.ByPriority(ordered))

	results := make([]analysis.AnalysisResult, len(ordered))

	var fingerprint string
	if !p.DisableCache && p.Cache != nil {
		fingerprint = cache.Fingerprint(content)
	}

	g, gCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))

	cancelled := false
	for i, an := range ordered {
		i, an := i, an

		runOne := func(ctx context.Context) (analysis.AnalysisResult, error) {
			if !p.DisableCache && p.Cache != nil {
				return p.Cache.GetOrCompute(fingerprint, an.Name(), analyzerInputVersion, func() (analysis.AnalysisResult, error) {
					return an.Analyze(ctx, log)
				})
			}
			return an.Analyze(ctx, log)
		}

		if !an.ParallelSafe() {
			if err := gCtx.Err(); err != nil {
				cancelled = true
				results[i] = analysis.FailedResult(an.Name(), scannererrors.NewCancelledError("scan cancelled"))
				continue
			}
			results[i] = p.Executor.Run(gCtx, an.Name(), runOne)
			continue
		}

		if err := sem.Acquire(gCtx, 1); err != nil {
			cancelled = true
			results[i] = analysis.FailedResult(an.Name(), scannererrors.NewCancelledError("scan cancelled"))
			continue
		}
		g.Go(func() error {
			defer sem.Release(1)
			results[i] = p.Executor.Run(gCtx, an.Name(), runOne)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		cancelled = true
	}

	log.CallStack = nil
	log.Modules = nil
	log.Segments = nil

	hasErrors := false
	for _, r := range results {
		if !r.Success() {
			hasErrors = true
			break
		}
	}
	if log.ErrorMessage != "" {
		// Incomplete log: parsed, but required segments are missing.
		hasErrors = true
	}

	status := StatusCompleted
	switch {
	case cancelled:
		status = StatusCancelled
	case hasErrors:
		status = StatusCompletedWithErrors
	}

	result := ScanResult{
		LogPath:         path,
		Status:          status,
		CrashLog:        log,
		AnalysisResults: results,
		Report:          WriteReport(results),
		ProcessingTime:  time.Since(start),
		HasErrors:       hasErrors,
	}
	recordScanResult(result)
	return result
}
