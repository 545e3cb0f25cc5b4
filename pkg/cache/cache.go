// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kraklabs/scanner111/pkg/analysis"
)

// DefaultMaxEntries is the Result Cache's default bounded LRU size
// (spec §4.12).
const DefaultMaxEntries = 1024

// Fingerprint returns the stable cache key for a crash log's raw
// content: SHA-256 of the lowercased, trimmed text (spec §4.12,
// glossary "Fingerprint").
func Fingerprint(content string) string {
	normalized := strings.ToLower(strings.TrimSpace(content))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Cache memoizes AnalysisResult by (log_fingerprint, analyzer_name,
// analyzer_input_version), guaranteeing at most one concurrent
// computation per key (spec §4.12, §5). Only success=true results are
// retained; a failed compute is never cached, so the next requester for
// that key retries it.
type Cache struct {
	lru   *lru.Cache[string, analysis.AnalysisResult]
	group singleflight.Group
}

// New builds a Cache bounded to maxEntries (DefaultMaxEntries if <= 0).
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	backing, err := lru.New[string, analysis.AnalysisResult](maxEntries)
	if err != nil {
		// Only returns an error for a non-positive size, excluded above.
		panic(err)
	}
	return &Cache{lru: backing}
}

func key(fingerprint, analyzerName string, inputVersion int) string {
	var b strings.Builder
	b.WriteString(fingerprint)
	b.WriteByte('|')
	b.WriteString(analyzerName)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(inputVersion))
	return b.String()
}

// GetOrCompute returns the cached result for (fingerprint, analyzerName,
// inputVersion) if present, otherwise calls compute exactly once even
// under concurrent callers for the same key (singleflight), caching the
// result only when it reports success.
func (c *Cache) GetOrCompute(fingerprint, analyzerName string, inputVersion int, compute func() (analysis.AnalysisResult, error)) (analysis.AnalysisResult, error) {
	k := key(fingerprint, analyzerName, inputVersion)

	if cached, ok := c.lru.Get(k); ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(k, func() (any, error) {
		if cached, ok := c.lru.Get(k); ok {
			return cached, nil
		}
		res, computeErr := compute()
		if computeErr != nil {
			return analysis.AnalysisResult{}, computeErr
		}
		if res.Success() {
			c.lru.Add(k, res)
		}
		return res, nil
	})
	if err != nil {
		return analysis.AnalysisResult{}, err
	}
	return result.(analysis.AnalysisResult), nil
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge clears the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}
