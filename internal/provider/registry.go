// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

type (
	// Options carries provider construction inputs shared by all factories.
	Options struct {
		// Machine is the VM name for machine-backed providers; ignored by
		// providers that talk to a host-local daemon.
		Machine string
	}

	// Factory constructs a provider instance from Options.
	Factory func(opts Options) Provider
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a provider available under the given name. Like the engine
// registry, it panics on misuse since registration happens from package init.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" {
		panic("provider: Register called with empty name")
	}
	if factory == nil {
		panic(fmt.Sprintf("provider: Register called with nil factory for %q", name))
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("provider: Register called twice for %q", name))
	}
	registry[name] = factory
}

// New resolves a registered provider by name.
func New(name string, opts Options) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}
	return factory(opts), nil
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func registeredNames() string {
	names := Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
