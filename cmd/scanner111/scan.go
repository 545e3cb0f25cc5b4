// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scanner111/internal/errors"
	"github.com/kraklabs/scanner111/internal/output"
	"github.com/kraklabs/scanner111/internal/ui"
	"github.com/kraklabs/scanner111/pkg/cache"
	"github.com/kraklabs/scanner111/pkg/pipeline"
	"github.com/kraklabs/scanner111/pkg/resilience"
)

// runScan executes the 'scan' CLI command: it loads the Configuration
// Store, builds the fixed analyzer roster, and drives the Batch Driver
// over the given log paths (spec §6).
//
// Flags:
//   - --max-concurrency N: bound simultaneous log scans (default: logical CPU count)
//   - --no-cache: bypass the Result Cache entirely
//   - --fcx: force-enable FCX mode (Documents + File Integrity analyzers)
//   - --progress: show a progress bar on stderr
func runScan(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	maxConcurrency := fs.Int("max-concurrency", 0, "Maximum logs processed concurrently (default: logical CPU count)")
	noCache := fs.Bool("no-cache", false, "Disable the Result Cache")
	fcx := fs.Bool("fcx", false, "Enable FCX mode (Documents + File Integrity analyzers)")
	showProgress := fs.Bool("progress", false, "Show a progress bar while scanning")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scanner111 scan <paths...> [options]

Scans one or more crash log files and prints a per-log report.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Exit codes:
  0  every log completed
  1  at least one log's status was Failed
  2  the scan was cancelled (Ctrl-C)
  3  invalid arguments

Examples:
  scanner111 scan crash-2026-07-31-12-00-00.log
  scanner111 scan logs/*.log --max-concurrency 4 --progress
  scanner111 scan crash.log --fcx
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitInput)
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: scan requires at least one log path")
		fs.Usage()
		os.Exit(errors.ExitInput)
	}

	ui.InitColors(globals.NoColor)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	logLevel := slog.LevelInfo
	if globals.Verbose > 0 {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	analyzers := buildAnalyzers(cfg, cfg.FcxMode || *fcx)

	var resultCache *cache.Cache
	if !*noCache {
		resultCache = cache.New(cache.DefaultMaxEntries)
	}

	sp := pipeline.NewScanPipeline(analyzers, resultCache, resilience.NewExecutor(resilience.DefaultRetryPolicy()), logger)
	sp.DisableCache = *noCache

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("scan.shutdown.signal", "signal", sig.String())
		cancel()
	}()

	opts := pipeline.BatchOptions{}
	if *maxConcurrency > 0 {
		opts.MaxConcurrency = *maxConcurrency
	}

	var bar *progressTracker
	if *showProgress {
		bar = newProgressTracker(NewProgressConfig(globals), len(paths))
	}

	var progressMu sync.Mutex
	var lastProgress pipeline.BatchProgress
	results := sp.ProcessBatch(ctx, paths, opts, func(p pipeline.BatchProgress) {
		progressMu.Lock()
		lastProgress = p
		progressMu.Unlock()
		if bar != nil {
			bar.update(p)
		}
	})

	for r := range results {
		printScanResult(r, globals)
	}

	if bar != nil {
		bar.finish()
	}

	if globals.JSON {
		_ = output.JSONCompact(output.NewBatchSummaryJSON(lastProgress))
	} else {
		fmt.Fprintf(os.Stderr, "\n%s\n", ui.BatchSummaryLine(lastProgress))
	}

	if ctx.Err() != nil {
		os.Exit(errors.ExitCancelled)
	}
	if lastProgress.Failed > 0 {
		os.Exit(errors.ExitFailed)
	}
	os.Exit(errors.ExitSuccess)
}

func printScanResult(r pipeline.ScanResult, globals GlobalFlags) {
	if globals.JSON {
		_ = output.JSONCompact(output.NewScanResultJSON(r))
		return
	}

	fmt.Printf("%s [%s]\n", ui.Label(r.LogPath), ui.ScanStatusLine(r.Status))
	fmt.Print(r.Report)
	if r.Error != "" {
		ui.Error(r.Error)
	} else if r.HasErrors {
		ui.Warning("completed with errors")
	}
	fmt.Println()
}
