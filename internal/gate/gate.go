// SPDX-License-Identifier: MPL-2.0

package gate

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/pirog/kalabox-cli/internal/engine"
	"github.com/pirog/kalabox-cli/internal/provider"
)

// singleflight keys, one per cache-fill path.
const (
	flightInstalled = "installed"
	flightUp        = "up"
	flightInit      = "init"
)

type (
	// Initializer receives the resolved engine configuration exactly once.
	// engine.Engine satisfies it; the narrow interface keeps the gate from
	// depending on the full operation surface.
	Initializer interface {
		Init(cfg engine.Config) error
	}

	// Gate runs the ordered verification sequence over a provider and
	// memoizes the outcome in a State. A Gate is safe for concurrent use:
	// concurrent first calls for the same fact collapse into one provider
	// query, and everyone receives that query's result.
	Gate struct {
		provider provider.Provider
		state    *State
		flight   singleflight.Group
	}
)

// New creates a Gate over the given provider with all facts unset.
func New(p provider.Provider) *Gate {
	return &Gate{provider: p, state: NewState()}
}

// State exposes the memoized facts, primarily for status reporting and tests.
func (g *Gate) State() *State {
	return g.state
}

// VerifyInstalled succeeds immediately when the installed fact is cached.
// Otherwise it queries the provider once: a (false, nil) answer becomes
// provider.NotInstalledError, a query error propagates unmodified, and
// neither failure is cached.
func (g *Gate) VerifyInstalled(ctx context.Context) error {
	if g.state.Installed() {
		return nil
	}
	_, err, _ := g.flight.Do(flightInstalled, func() (any, error) {
		if g.state.Installed() {
			return nil, nil
		}
		ok, err := g.provider.IsInstalled(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &provider.NotInstalledError{Provider: g.provider.Name()}
		}
		log.Debug("provider verified", "provider", g.provider.Name(), "fact", "installed")
		g.state.markInstalled()
		return nil, nil
	})
	return err
}

// VerifyUp is the same pattern over the running check. It deliberately does
// not call VerifyInstalled: ordering across facts is owned by VerifyReady.
func (g *Gate) VerifyUp(ctx context.Context) error {
	if g.state.Up() {
		return nil
	}
	_, err, _ := g.flight.Do(flightUp, func() (any, error) {
		if g.state.Up() {
			return nil, nil
		}
		ok, err := g.provider.IsUp(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &provider.NotRunningError{Provider: g.provider.Name()}
		}
		log.Debug("provider verified", "provider", g.provider.Name(), "fact", "up")
		g.state.markUp()
		return nil, nil
	})
	return err
}

// VerifyReady runs the full gate: installed, then up, then one-time engine
// initialization from the provider's configuration. Each step fails fast;
// a config fetch or Init failure leaves the initialized fact unset so the
// next call retries the whole initialization step.
func (g *Gate) VerifyReady(ctx context.Context, init Initializer) error {
	if err := g.VerifyInstalled(ctx); err != nil {
		return err
	}
	if err := g.VerifyUp(ctx); err != nil {
		return err
	}
	if g.state.Initialized() {
		return nil
	}
	_, err, _ := g.flight.Do(flightInit, func() (any, error) {
		if g.state.Initialized() {
			return nil, nil
		}
		cfg, err := g.provider.EngineConfig(ctx)
		if err != nil {
			return nil, err
		}
		if err := init.Init(cfg); err != nil {
			return nil, err
		}
		log.Debug("engine initialized", "provider", g.provider.Name(), "host", cfg.Host)
		g.state.markInitialized()
		return nil, nil
	})
	return err
}
