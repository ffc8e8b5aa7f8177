// SPDX-License-Identifier: MPL-2.0

// Package provider defines the provider capability: the component that knows
// whether the container backend is installed and running on this host, and
// that can produce the engine configuration once it is.
//
// Two providers are included: "machine" drives a docker-machine VM, "daemon"
// talks to a host-local Docker daemon. Both are resolved by name through the
// package registry.
//
// Providers report facts; they never cache them. Memoization of installed/up
// checks belongs to the gate package.
package provider
