// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/scanner111/pkg/analysis"
)

func TestFingerprint_NormalizesCaseAndTrim(t *testing.T) {
	a := Fingerprint("  Hello World\n")
	b := Fingerprint("hello world")
	assert.Equal(t, a, b)
}

func TestFingerprint_DifferentContentDiffers(t *testing.T) {
	assert.NotEqual(t, Fingerprint("one"), Fingerprint("two"))
}

func TestCache_CachesSuccessOnly(t *testing.T) {
	c := New(10)

	var calls int32
	compute := func() (analysis.AnalysisResult, error) {
		atomic.AddInt32(&calls, 1)
		return analysis.NewGenericResult("X", false, false, nil, nil, nil), nil
	}

	for i := 0; i < 3; i++ {
		_, err := c.GetOrCompute("fp", "X", 1, compute)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls, "a failed result must never be cached")
}

func TestCache_HitAvoidsRecompute(t *testing.T) {
	c := New(10)

	var calls int32
	compute := func() (analysis.AnalysisResult, error) {
		atomic.AddInt32(&calls, 1)
		return analysis.NewGenericResult("X", true, false, nil, nil, nil), nil
	}

	for i := 0; i < 5; i++ {
		_, err := c.GetOrCompute("fp", "X", 1, compute)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ConcurrentCallsCollapseToOneCompute(t *testing.T) {
	c := New(10)

	var calls int32
	var wg sync.WaitGroup
	compute := func() (analysis.AnalysisResult, error) {
		atomic.AddInt32(&calls, 1)
		return analysis.NewGenericResult("X", true, false, nil, nil, nil), nil
	}

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCompute("same-fp", "X", 1, compute)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, calls, int32(2), "singleflight should collapse nearly all concurrent callers")
}

func TestCache_DistinctAnalyzerVersionsAreDistinctKeys(t *testing.T) {
	c := New(10)
	compute := func(tag string) func() (analysis.AnalysisResult, error) {
		return func() (analysis.AnalysisResult, error) {
			return analysis.NewGenericResult(tag, true, false, nil, nil, nil), nil
		}
	}

	_, err := c.GetOrCompute("fp", "X", 1, compute("v1"))
	require.NoError(t, err)
	_, err = c.GetOrCompute("fp", "X", 2, compute("v2"))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
}

func TestCache_Purge(t *testing.T) {
	c := New(10)
	_, err := c.GetOrCompute("fp", "X", 1, func() (analysis.AnalysisResult, error) {
		return analysis.NewGenericResult("X", true, false, nil, nil, nil), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
