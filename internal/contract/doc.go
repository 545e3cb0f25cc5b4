// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package contract provides validation constants shared across scanner111.
//
// # Call Stack Size Guard
//
// The CrashLog invariant in spec §3 requires:
//
//	call_stack.len ≤ modules.len + 10000
//
// as a guard against pathological logs (a corrupted or adversarial log
// could otherwise force an analyzer into unbounded work). This package
// exposes that check so both the Log Parser and the Analyzer Framework
// can enforce it without duplicating the constant:
//
//	if r := contract.ValidateCallStackSize(len(callStack), len(modules)); !r.OK {
//	    // reject or truncate before running analyzers
//	}
//
// The guard margin is adjustable via the SCANNER111_MAX_STACK_MARGIN
// environment variable for operators scanning unusually large logs.
package contract
