// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsScanner holds Prometheus metrics for the scan pipeline and
// batch driver. Metrics are an ambient concern (not excluded by any
// spec.md Non-goal), so they're wired the same way the teacher wires
// its own ingestion metrics: package-level singleton, lazily
// registered.
type metricsScanner struct {
	once sync.Once

	logsCompleted           prometheus.Counter
	logsCompletedWithErrors prometheus.Counter
	logsFailed              prometheus.Counter
	logsCancelled           prometheus.Counter
	analyzerFailures        prometheus.Counter
	scanDuration            prometheus.Histogram
	batchQueueDepth         prometheus.Gauge
}

var scanMetrics metricsScanner

func (m *metricsScanner) init() {
	m.once.Do(func() {
		m.logsCompleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "scanner111_logs_completed_total", Help: "Crash logs scanned with no analyzer failures"})
		m.logsCompletedWithErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "scanner111_logs_completed_with_errors_total", Help: "Crash logs scanned with at least one analyzer failure or missing required segments"})
		m.logsFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "scanner111_logs_failed_total", Help: "Crash logs that could not be parsed at all"})
		m.logsCancelled = prometheus.NewCounter(prometheus.CounterOpts{Name: "scanner111_logs_cancelled_total", Help: "Crash logs whose scan was cancelled mid-run"})
		m.analyzerFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "scanner111_analyzer_failures_total", Help: "Individual analyzer invocations that returned success=false"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
		m.scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "scanner111_scan_duration_seconds", Help: "Wall-clock time to fully process one crash log", Buckets: buckets})
		m.batchQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{Name: "scanner111_batch_queue_depth", Help: "Paths currently queued between the Batch Driver's producer and its workers"})

		prometheus.MustRegister(
			m.logsCompleted, m.logsCompletedWithErrors, m.logsFailed, m.logsCancelled,
			m.analyzerFailures,
			m.scanDuration, m.batchQueueDepth,
		)
	})
}

func recordScanResult(r ScanResult) {
	scanMetrics.init()
	switch r.Status {
	case StatusCompleted:
		scanMetrics.logsCompleted.Inc()
	case StatusCompletedWithErrors:
		scanMetrics.logsCompletedWithErrors.Inc()
	case StatusFailed:
		scanMetrics.logsFailed.Inc()
	case StatusCancelled:
		scanMetrics.logsCancelled.Inc()
	}
	for _, ar := range r.AnalysisResults {
		if !ar.Success() {
			scanMetrics.analyzerFailures.Inc()
		}
	}
	scanMetrics.scanDuration.Observe(r.ProcessingTime.Seconds())
}
