// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInitialized is the sentinel error wrapped by AlreadyInitializedError.
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrNotInitialized is returned by operations invoked before Init has run.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrUnknownEngine is the sentinel error wrapped by UnknownEngineError.
	ErrUnknownEngine = errors.New("unknown container engine")

	// ErrContainerNotFound is the sentinel error wrapped by ContainerNotFoundError.
	ErrContainerNotFound = errors.New("container not found")
)

type (
	// Config is the resolved engine configuration produced by a provider.
	// It carries everything an engine needs to reach its daemon.
	Config struct {
		// Host is the daemon endpoint (e.g., "tcp://192.168.99.100:2376"
		// or "unix:///var/run/docker.sock").
		Host string
		// CertDir is the directory holding TLS material, empty when the
		// endpoint is not TLS-protected.
		CertDir string
		// TLSVerify enables TLS verification against CertDir.
		TLSVerify bool
		// Machine is the VM name the endpoint belongs to, empty for a
		// host-local daemon.
		Machine string
		// Env holds additional provider-specific environment variables to
		// set on every engine subprocess.
		Env map[string]string
	}

	// Image describes an image the dispatcher wants available. The Build
	// marker is the only field the dispatcher inspects: true routes the
	// request to Engine.Build, false to Engine.Pull.
	Image struct {
		// Name is the image name or tag (e.g., "kalabox/hipache:stable").
		Name string
		// Build marks the image as locally built from ContextDir rather
		// than pulled from a registry.
		Build bool
		// ContextDir is the build context directory; only meaningful when
		// Build is true.
		ContextDir string
		// Dockerfile is the Dockerfile path relative to ContextDir; empty
		// means the engine default.
		Dockerfile string
	}

	// Container is a handle to a resolved container, returned by Get and
	// consumed by Inspect.
	Container struct {
		ID   string
		Name string
	}

	// ContainerInfo is one row of a List result.
	ContainerInfo struct {
		ID      string
		Name    string
		App     string
		Running bool
	}

	// InspectResult is the decoded engine-level inspection payload. Keys and
	// nesting are engine-specific; the dispatcher passes it through untouched.
	InspectResult map[string]any

	// CreateOptions describes a container to create. The dispatcher treats
	// it as opaque and hands it straight to the engine.
	CreateOptions struct {
		// Name is the container name.
		Name string
		// App is the application the container belongs to; stored as a
		// label so List can filter on it.
		App string
		// Image is the image to create the container from.
		Image string
		// Cmd overrides the image command when non-empty.
		Cmd []string
		// Env are KEY=VALUE environment entries for the container.
		Env []string
		// Volumes are host:container bind mounts.
		Volumes []string
		// Ports are host:container port mappings.
		Ports []string
	}

	// StartOptions tunes a Start call. The zero value means a plain start.
	StartOptions struct {
		// Attach streams the container output to the caller instead of
		// starting detached.
		Attach bool
	}

	// Engine is the backend container engine capability. Implementations
	// must accept exactly one Init call; any later call is a no-op error
	// wrapping ErrAlreadyInitialized.
	Engine interface {
		// Name returns the engine name (e.g., "docker").
		Name() string
		// Init hands the engine its resolved configuration. First call
		// wins; subsequent calls return AlreadyInitializedError.
		Init(cfg Config) error

		// Up brings the engine's daemon up, Down brings it down.
		Up(ctx context.Context) error
		Down(ctx context.Context) error

		// List returns containers, optionally filtered to one app. An
		// empty filter means all containers.
		List(ctx context.Context, appFilter string) ([]ContainerInfo, error)
		// Get resolves a container reference (name or ID) to a handle.
		Get(ctx context.Context, ref string) (Container, error)
		// Inspect returns the engine-level details of a resolved container.
		Inspect(ctx context.Context, c Container) (InspectResult, error)

		Create(ctx context.Context, opts CreateOptions) (Container, error)
		Start(ctx context.Context, ref string, opts StartOptions) error
		Stop(ctx context.Context, ref string) error
		Remove(ctx context.Context, ref string) error

		Build(ctx context.Context, img Image) error
		Pull(ctx context.Context, img Image) error
	}

	// AlreadyInitializedError is returned when Init is called more than once.
	AlreadyInitializedError struct {
		Engine string
	}

	// UnknownEngineError is returned when New is asked for an unregistered
	// engine name.
	UnknownEngineError struct {
		Name string
	}

	// ContainerNotFoundError is returned by Get when no container matches
	// the given reference.
	ContainerNotFoundError struct {
		Ref string
	}
)

// Error implements the error interface.
func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("engine %q is already initialized", e.Engine)
}

// Unwrap returns ErrAlreadyInitialized so callers can use errors.Is.
func (e *AlreadyInitializedError) Unwrap() error { return ErrAlreadyInitialized }

// Error implements the error interface.
func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown container engine %q (registered: %s)", e.Name, registeredNames())
}

// Unwrap returns ErrUnknownEngine so callers can use errors.Is.
func (e *UnknownEngineError) Unwrap() error { return ErrUnknownEngine }

// Error implements the error interface.
func (e *ContainerNotFoundError) Error() string {
	return fmt.Sprintf("container %q not found", e.Ref)
}

// Unwrap returns ErrContainerNotFound so callers can use errors.Is.
func (e *ContainerNotFoundError) Unwrap() error { return ErrContainerNotFound }
