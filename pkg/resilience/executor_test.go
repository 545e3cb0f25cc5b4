// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scannererrors "github.com/kraklabs/scanner111/internal/errors"
	"github.com/kraklabs/scanner111/pkg/analysis"
)

func TestClassify_IOIsTransient(t *testing.T) {
	err := scannererrors.NewIOError("disk full", "", nil)
	assert.Equal(t, Transient, Classify(err))
}

func TestClassify_ParseIsPermanent(t *testing.T) {
	err := scannererrors.NewParseError("bad header", "", nil)
	assert.Equal(t, Permanent, Classify(err))
}

func TestClassify_UnknownErrorIsPermanent(t *testing.T) {
	assert.Equal(t, Permanent, Classify(errors.New("boom")))
}

func TestExecutor_DefaultPolicyDoesNotRetry(t *testing.T) {
	exec := NewExecutor(Policy{})

	var calls int32
	res := exec.Run(context.Background(), "X", func(context.Context) (analysis.AnalysisResult, error) {
		atomic.AddInt32(&calls, 1)
		return analysis.AnalysisResult{}, scannererrors.NewIOError("transient", "", nil)
	})

	assert.Equal(t, int32(1), calls)
	assert.False(t, res.Success())
}

func TestExecutor_RetriesTransientUpToMaxAttempts(t *testing.T) {
	exec := NewExecutor(Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, RandomizationFactor: 0.2})

	var calls int32
	res := exec.Run(context.Background(), "X", func(context.Context) (analysis.AnalysisResult, error) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return analysis.AnalysisResult{}, scannererrors.NewIOError("transient", "", nil)
		}
		return analysis.NewGenericResult("X", true, false, nil, nil, nil), nil
	})

	assert.Equal(t, int32(3), calls)
	require.True(t, res.Success())
}

func TestExecutor_DoesNotRetryPermanentFailures(t *testing.T) {
	exec := NewExecutor(Policy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	var calls int32
	res := exec.Run(context.Background(), "X", func(context.Context) (analysis.AnalysisResult, error) {
		atomic.AddInt32(&calls, 1)
		return analysis.AnalysisResult{}, scannererrors.NewParseError("bad header", "", nil)
	})

	assert.Equal(t, int32(1), calls)
	assert.False(t, res.Success())
}

func TestExecutor_CancellationAbortsBetweenAttempts(t *testing.T) {
	exec := NewExecutor(Policy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	var calls int32
	res := exec.Run(ctx, "X", func(context.Context) (analysis.AnalysisResult, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			cancel()
		}
		return analysis.AnalysisResult{}, scannererrors.NewIOError("transient", "", nil)
	})

	assert.False(t, res.Success())
	assert.LessOrEqual(t, calls, int32(2))
}
