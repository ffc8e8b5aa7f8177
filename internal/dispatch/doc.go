// SPDX-License-Identifier: MPL-2.0

// Package dispatch exposes the public container-operation surface. Every
// operation runs the readiness gate (fully or partially, depending on the
// operation) before delegating to the selected backend engine, and returns
// backend errors to the caller verbatim.
//
// The Dispatcher owns two process-lifetime singletons: the gate's memoized
// readiness state and the backend engine handle, which is resolved once by
// SelectBackend and never replaced.
package dispatch
