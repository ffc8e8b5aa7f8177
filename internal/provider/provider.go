// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/pirog/kalabox-cli/internal/engine"
)

var (
	// ErrNotInstalled is the sentinel error wrapped by NotInstalledError.
	ErrNotInstalled = errors.New("provider not installed")

	// ErrNotRunning is the sentinel error wrapped by NotRunningError.
	ErrNotRunning = errors.New("provider not running")

	// ErrUnknownProvider is the sentinel error wrapped by UnknownProviderError.
	ErrUnknownProvider = errors.New("unknown provider")
)

type (
	// Provider is the capability that checks and configures the backend
	// host. Implementations perform live queries on every call; results
	// are memoized upstream by the gate.
	Provider interface {
		// Name returns the human-readable provider name used in error
		// messages.
		Name() string
		// IsInstalled reports whether the provider is installed. A
		// (false, nil) result is a successful negative check, distinct
		// from a query error.
		IsInstalled(ctx context.Context) (bool, error)
		// IsUp reports whether the provider is running. Same (false, nil)
		// vs error distinction as IsInstalled.
		IsUp(ctx context.Context) (bool, error)
		// EngineConfig produces the resolved engine configuration. Only
		// meaningful once IsInstalled and IsUp have reported true.
		EngineConfig(ctx context.Context) (engine.Config, error)
	}

	// NotInstalledError reports a successful negative installation check.
	NotInstalledError struct {
		Provider string
	}

	// NotRunningError reports that the provider is installed but its
	// backend is not running.
	NotRunningError struct {
		Provider string
	}

	// UnknownProviderError is returned when New is asked for an
	// unregistered provider name.
	UnknownProviderError struct {
		Name string
	}
)

// Error implements the error interface. The message format is load-bearing:
// callers and scripts match on it to distinguish "absent" from "down".
func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("Provider %q is NOT installed!", e.Provider)
}

// Unwrap returns ErrNotInstalled so callers can use errors.Is.
func (e *NotInstalledError) Unwrap() error { return ErrNotInstalled }

// Error implements the error interface. See NotInstalledError on format.
func (e *NotRunningError) Error() string {
	return fmt.Sprintf("Provider %q is NOT up!", e.Provider)
}

// Unwrap returns ErrNotRunning so callers can use errors.Is.
func (e *NotRunningError) Unwrap() error { return ErrNotRunning }

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q (registered: %s)", e.Name, registeredNames())
}

// Unwrap returns ErrUnknownProvider so callers can use errors.Is.
func (e *UnknownProviderError) Unwrap() error { return ErrUnknownProvider }
