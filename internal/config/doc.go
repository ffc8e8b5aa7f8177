// SPDX-License-Identifier: MPL-2.0

// Package config loads kbox configuration: which provider to gate on, which
// backend engine to dispatch to, and the machine name for VM-backed setups.
//
// Values come from defaults, an optional TOML config file in the per-OS
// config directory, and KBOX_* environment variables, in ascending
// precedence. Loaded values are validated against an embedded CUE schema
// before use so a typoed provider name fails at startup, not mid-operation.
package config
