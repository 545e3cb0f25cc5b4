// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	scannererrors "github.com/kraklabs/scanner111/internal/errors"
	"github.com/kraklabs/scanner111/pkg/analysis"
)

// Classification distinguishes failures worth retrying from ones that
// won't improve on a second attempt (spec §4.13).
type Classification int

const (
	// Permanent failures (parse errors, malformed input) are never
	// retried.
	Permanent Classification = iota
	// Transient failures (I/O, timeouts) may succeed on retry.
	Transient
)

// Classify inspects err and reports whether it looks worth retrying.
// *errors.UserError values carrying ExitIO or ExitCancelled are treated
// as Transient; everything else, including parse failures (ExitFailed),
// is Permanent. Unrecognized error types default to Permanent, matching
// the "default: no retries" policy in spec §4.13.
func Classify(err error) Classification {
	var ue *scannererrors.UserError
	if errors.As(err, &ue) {
		switch ue.ExitCode {
		case scannererrors.ExitIO, scannererrors.ExitCancelled:
			return Transient
		default:
			return Permanent
		}
	}
	return Permanent
}

// Policy configures the Resilient Executor. The zero value is the
// spec's default: no retries.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// 1 (or 0) means no retries.
	MaxAttempts int

	// BaseDelay is the first retry's backoff delay. Defaults to 100ms.
	BaseDelay time.Duration

	// Multiplier is the backoff growth factor between attempts. Defaults
	// to 2.
	Multiplier float64

	// RandomizationFactor is the jitter applied to each delay, e.g. 0.2
	// for ±20%. Defaults to 0.2.
	RandomizationFactor float64
}

// DefaultRetryPolicy is the spec's "optional policy": up to 3 attempts
// for Transient failures, base 100ms, factor 2, jitter ±20% (spec
// §4.13).
func DefaultRetryPolicy() Policy {
	return Policy{
		MaxAttempts:         3,
		BaseDelay:           100 * time.Millisecond,
		Multiplier:          2,
		RandomizationFactor: 0.2,
	}
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) backOff() backoff.BackOff {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	jitter := p.RandomizationFactor
	if jitter <= 0 {
		jitter = 0.2
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = mult
	b.RandomizationFactor = jitter
	b.MaxElapsedTime = 0
	return b
}

// Executor wraps a single analyzer invocation with the configured retry
// policy (spec §4.13). The zero value runs with no retries.
type Executor struct {
	Policy Policy
}

// NewExecutor builds an Executor with the given policy.
func NewExecutor(policy Policy) *Executor {
	return &Executor{Policy: policy}
}

// Run invokes fn, retrying Transient failures per the configured policy
// and aborting immediately on Permanent failures or context
// cancellation. A final failure — whether permanent, retries exhausted,
// or cancelled — is converted to a Generic result with success=false
// (spec §4.13).
func (e *Executor) Run(ctx context.Context, analyzerName string, fn func(context.Context) (analysis.AnalysisResult, error)) analysis.AnalysisResult {
	attempts := e.Policy.maxAttempts()
	bo := backoff.WithContext(e.Policy.backOff(), ctx)

	var lastErr error
	var lastResult analysis.AnalysisResult

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return analysis.FailedResult(analyzerName, scannererrors.NewCancelledError("scan cancelled"))
		}

		result, err := fn(ctx)
		if err == nil {
			return result
		}
		lastErr = err
		lastResult = result

		if attempt == attempts || Classify(err) != Transient {
			break
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return analysis.FailedResult(analyzerName, scannererrors.NewCancelledError("scan cancelled"))
		case <-timer.C:
		}
	}

	if lastErr == nil {
		return lastResult
	}
	return analysis.FailedResult(analyzerName, scannererrors.NewAnalyzerError(analyzerName, lastErr.Error(), lastErr))
}
