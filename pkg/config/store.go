// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/hashicorp/go-multierror"
)

const defaultSettingsCacheSize = 512

// Store is the process-wide Configuration Store (spec §2 C1, §5). Reads
// are lock-free against the settings cache; LoadFile/LoadMultiple take the single
// exclusive write lock the spec calls for.
type Store struct {
	mu   sync.RWMutex
	tree map[string]any

	settingsCache *lru.Cache[string, any]
	group         singleflight.Group
}

// NewStore returns an empty Store ready for LoadFile/LoadMultiple.
func NewStore() *Store {
	cache, err := lru.New[string, any](defaultSettingsCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultSettingsCacheSize never is.
		panic(err)
	}
	return &Store{
		tree:          make(map[string]any),
		settingsCache: cache,
	}
}

// LoadFile parses a YAML document and merges it into the tree. Scalar
// leaves from the new file override any leaf already present at the
// same dotted path; nested maps merge recursively.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	mergeInto(s.tree, parsed)
	s.settingsCache.Purge()
	return nil
}

// LoadMultiple loads each path in order. A later file's leaves override
// an earlier file's leaves at the same path.
func (s *Store) LoadMultiple(paths []string) error {
	for _, p := range paths {
		if err := s.LoadFile(p); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			existing, _ := dst[k].(map[string]any)
			if existing == nil {
				existing = make(map[string]any)
			}
			mergeInto(existing, sub)
			dst[k] = existing
			continue
		}
		dst[k] = v
	}
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cur any = s.tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get reads a typed value at a dotted key, coercing from the
// underlying YAML scalar when the stored and requested types differ
// (spec §2 C1 "value coercion"). Successful reads are memoized in the
// settings cache (spec §4.12).
//
// Get is a function, not a method, because Go methods cannot carry
// their own type parameters.
func Get[T any](s *Store, key string) (T, error) {
	var zero T

	if cached, ok := s.settingsCache.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}

	raw, ok := s.lookup(key)
	if !ok {
		return zero, fmt.Errorf("config: key %q not found", key)
	}

	v, err := coerce[T](raw)
	if err != nil {
		return zero, fmt.Errorf("config: key %q: %w", key, err)
	}
	s.settingsCache.Add(key, v)
	return v, nil
}

// GetOr is Get with a fallback default instead of an error.
func GetOr[T any](s *Store, key string, fallback T) T {
	v, err := Get[T](s, key)
	if err != nil {
		return fallback
	}
	return v
}

func coerce[T any](raw any) (T, error) {
	var zero T

	switch any(zero).(type) {
	case string:
		switch v := raw.(type) {
		case string:
			return any(v).(T), nil
		case bool, int, int64, float64:
			return any(fmt.Sprint(v)).(T), nil
		}
	case bool:
		switch v := raw.(type) {
		case bool:
			return any(v).(T), nil
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return any(b).(T), nil
			}
		}
	case int:
		switch v := raw.(type) {
		case int:
			return any(v).(T), nil
		case int64:
			return any(int(v)).(T), nil
		case float64:
			return any(int(v)).(T), nil
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return any(n).(T), nil
			}
		}
	case []string:
		switch v := raw.(type) {
		case []string:
			return any(v).(T), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				out = append(out, fmt.Sprint(e))
			}
			return any(out).(T), nil
		}
	case map[string]any:
		if m, ok := raw.(map[string]any); ok {
			return any(m).(T), nil
		}
	}

	return zero, fmt.Errorf("cannot coerce %T to target type", raw)
}

// BatchGet looks up every key and returns whatever raw values were
// found, along with an aggregated error listing every miss (spec §2 C1
// "batch/prefetch").
func (s *Store) BatchGet(keys []string) (map[string]any, error) {
	result := make(map[string]any, len(keys))
	var merr *multierror.Error

	for _, k := range keys {
		v, ok := s.lookup(k)
		if !ok {
			merr = multierror.Append(merr, fmt.Errorf("config: key %q not found", k))
			continue
		}
		result[k] = v
	}
	return result, merr.ErrorOrNil()
}

// PrefetchAll walks the entire tree and warms the settings cache with
// every leaf's raw value, so later Get calls for known keys are served
// from the cache when T matches the leaf's decoded YAML type; other
// types still fall through to the tree.
// Concurrent PrefetchAll calls are collapsed into one walk via
// singleflight, matching the Result Cache's single-writer-per-key
// coordination (spec §4.12, §5).
func (s *Store) PrefetchAll() {
	_, _, _ = s.group.Do("prefetch-all", func() (any, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		walkTree("", s.tree, func(path string, v any) {
			s.settingsCache.Add(path, v)
		})
		return nil, nil
	})
}

func walkTree(prefix string, m map[string]any, visit func(string, any)) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			walkTree(path, sub, visit)
			continue
		}
		visit(path, v)
	}
}

// ClearCache discards every memoized settings read.
func (s *Store) ClearCache() {
	s.settingsCache.Purge()
}
