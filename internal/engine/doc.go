// SPDX-License-Identifier: MPL-2.0

// Package engine defines the backend container engine capability.
//
// An Engine performs the actual container operations (list, inspect, create,
// start, stop, remove, build, pull) once it has been handed a resolved Config
// through its one-time Init entry point. Engines are selected by name through
// the package registry; the docker engine shells out to the docker CLI and is
// registered under the name "docker".
//
// The engine never checks whether the underlying daemon is installed or
// running; that is the provider's job, enforced by the gate package before
// any engine call is dispatched.
package engine
