// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package resilience implements the Resilient Executor (spec §4.13): a
// retry wrapper around a single analyzer invocation that classifies
// failures as Transient or Permanent and only retries the former.
package resilience
