// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pirog/kalabox-cli/internal/engine"
	"github.com/pirog/kalabox-cli/internal/gate"
	"github.com/pirog/kalabox-cli/internal/provider"
)

// ErrNoBackend is returned by operations invoked before SelectBackend.
var ErrNoBackend = errors.New("no backend engine selected")

type (
	// Dispatcher gates and forwards container operations. Construct one per
	// process with New, select a backend once, then call operations freely;
	// expensive provider checks run at most once each for the life of the
	// Dispatcher.
	Dispatcher struct {
		provider provider.Provider
		gate     *gate.Gate

		mu     sync.Mutex
		engine engine.Engine
	}

	// Options configures a Dispatcher.
	Options struct {
		// Provider is the provider capability to gate on. Required.
		Provider provider.Provider
	}
)

// New creates a Dispatcher over the given provider with no backend selected.
func New(opts Options) *Dispatcher {
	return &Dispatcher{
		provider: opts.Provider,
		gate:     gate.New(opts.Provider),
	}
}

// Gate exposes the readiness gate, primarily for status reporting and tests.
func (d *Dispatcher) Gate() *gate.Gate { return d.gate }

// SelectBackend resolves the named engine and registers it as the active
// backend. The first successful call wins: once a backend handle exists,
// later calls are no-ops regardless of the name they carry.
func (d *Dispatcher) SelectBackend(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.engine != nil {
		if d.engine.Name() != name {
			log.Debug("backend already selected, ignoring", "active", d.engine.Name(), "requested", name)
		}
		return nil
	}
	eng, err := engine.New(name)
	if err != nil {
		return err
	}
	d.engine = eng
	return nil
}

// backend returns the active engine handle.
func (d *Dispatcher) backend() (engine.Engine, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.engine == nil {
		return nil, ErrNoBackend
	}
	return d.engine, nil
}

// IsUp live-queries the provider's running state. It deliberately bypasses
// the gate's cache so status checks always reflect reality.
func (d *Dispatcher) IsUp(ctx context.Context) (bool, error) {
	return d.provider.IsUp(ctx)
}

// Up brings the backend up. It requires only the installed fact: asking an
// engine that is not yet running to start is the whole point of the call.
func (d *Dispatcher) Up(ctx context.Context) error {
	eng, err := d.backend()
	if err != nil {
		return err
	}
	if err := d.gate.VerifyInstalled(ctx); err != nil {
		return err
	}
	return eng.Up(ctx)
}

// Down brings the backend down. Same precondition rationale as Up.
func (d *Dispatcher) Down(ctx context.Context) error {
	eng, err := d.backend()
	if err != nil {
		return err
	}
	if err := d.gate.VerifyInstalled(ctx); err != nil {
		return err
	}
	return eng.Down(ctx)
}

// List returns containers, optionally filtered to one app. An empty filter
// means all containers.
func (d *Dispatcher) List(ctx context.Context, appFilter string) ([]engine.ContainerInfo, error) {
	eng, err := d.ready(ctx)
	if err != nil {
		return nil, err
	}
	return eng.List(ctx, appFilter)
}

// Inspect resolves a container reference and returns its engine-level
// details: a two-step Get-then-Inspect against the backend.
func (d *Dispatcher) Inspect(ctx context.Context, ref string) (engine.InspectResult, error) {
	eng, err := d.ready(ctx)
	if err != nil {
		return nil, err
	}
	c, err := eng.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return eng.Inspect(ctx, c)
}

// Create creates a container from backend-specific options.
func (d *Dispatcher) Create(ctx context.Context, opts engine.CreateOptions) (engine.Container, error) {
	eng, err := d.ready(ctx)
	if err != nil {
		return engine.Container{}, err
	}
	return eng.Create(ctx, opts)
}

// Start starts a container. A zero StartOptions means a plain start.
func (d *Dispatcher) Start(ctx context.Context, ref string, opts engine.StartOptions) error {
	eng, err := d.ready(ctx)
	if err != nil {
		return err
	}
	return eng.Start(ctx, ref, opts)
}

// Stop stops a container.
func (d *Dispatcher) Stop(ctx context.Context, ref string) error {
	eng, err := d.ready(ctx)
	if err != nil {
		return err
	}
	return eng.Stop(ctx, ref)
}

// Remove removes a container.
func (d *Dispatcher) Remove(ctx context.Context, ref string) error {
	eng, err := d.ready(ctx)
	if err != nil {
		return err
	}
	return eng.Remove(ctx, ref)
}

// Build makes an image available, branching purely on the descriptor's
// Build marker: build locally when set, pull from a registry when not.
func (d *Dispatcher) Build(ctx context.Context, img engine.Image) error {
	eng, err := d.ready(ctx)
	if err != nil {
		return err
	}
	if img.Build {
		return eng.Build(ctx, img)
	}
	return eng.Pull(ctx, img)
}

// ready runs the full readiness gate and returns the backend handle.
func (d *Dispatcher) ready(ctx context.Context) (engine.Engine, error) {
	eng, err := d.backend()
	if err != nil {
		return nil, err
	}
	if err := d.gate.VerifyReady(ctx, eng); err != nil {
		return nil, err
	}
	return eng, nil
}
