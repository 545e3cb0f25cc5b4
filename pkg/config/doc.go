// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package config implements the Configuration Store (spec §2 C1): typed,
// read-through access to a hierarchical key/value tree loaded from one
// or more structured text files.
//
// Keys are dotted paths into the loaded tree, e.g. "Game_Info.CRASHGEN_Ignore".
// Store is a process-wide read-through cache: readers never block each
// other, writers (LoadFile/LoadMultiple) take a single exclusive lock (spec §5
// "Configuration Store is a process-wide read-through cache; writers
// (rare) take a single exclusive lock; readers are lock-free").
package config
