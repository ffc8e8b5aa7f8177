// SPDX-License-Identifier: MPL-2.0

// Package gate implements the readiness state machine guarding all backend
// operations: three memoized facts (installed, up, initialized) that only
// ever transition false to true, established in strict order by VerifyReady.
//
// Provider checks are expensive (they shell out, possibly to VM control
// commands), so each fact is queried at most once per process lifetime and
// concurrent first calls are collapsed into a single provider query. Failed
// checks are never cached: a later call re-queries fresh, so retrying is
// always safe.
package gate
