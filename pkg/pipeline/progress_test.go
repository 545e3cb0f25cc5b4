// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBatchProgress_ComputesRateAndETA(t *testing.T) {
	p := newBatchProgress(5, 20, batchTally{Successful: 5}, "crash5.log", 10*time.Second)
	assert.InDelta(t, 0.5, p.FilesPerSecond, 0.001)
	assert.InDelta(t, 30, p.ETASeconds, 0.001)
	assert.Equal(t, "crash5.log", p.Current)
	assert.Equal(t, 5, p.Successful)
}

func TestNewBatchProgress_ZeroElapsedIsZeroRate(t *testing.T) {
	p := newBatchProgress(0, 20, batchTally{}, "", 0)
	assert.Zero(t, p.FilesPerSecond)
	assert.Zero(t, p.ETASeconds)
}

func TestNewBatchProgress_CompleteHasNoETA(t *testing.T) {
	p := newBatchProgress(20, 20, batchTally{Successful: 18, Failed: 1, Incomplete: 1}, "last.log", 10*time.Second)
	assert.Zero(t, p.ETASeconds)
	assert.Equal(t, 18, p.Successful)
	assert.Equal(t, 1, p.Failed)
	assert.Equal(t, 1, p.Incomplete)
}

func TestBatchTally_Record(t *testing.T) {
	var tally batchTally
	tally.record(StatusCompleted)
	tally.record(StatusFailed)
	tally.record(StatusCompletedWithErrors)
	tally.record(StatusCancelled)
	assert.Equal(t, batchTally{Successful: 1, Failed: 1, Incomplete: 2}, tally)
}
