// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context for the CLI layer.
//
// Gate and backend failures reach the user wrapped in an ActionableError
// that names the failed operation and suggests next steps ("run kbox up",
// "install docker-machine"). Wrapping happens only at the CLI boundary:
// the dispatcher's pass-through contract forbids altering backend errors
// below it, and Unwrap keeps the original error reachable for errors.Is.
package issue
