// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Factory constructs an engine instance. Factories must return a fresh,
// uninitialized engine on every call.
type Factory func() Engine

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine available under the given name. It panics on an
// empty name, a nil factory, or a duplicate registration, mirroring the
// database/sql driver convention: registration happens from package init
// and a failure there is a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" {
		panic("engine: Register called with empty name")
	}
	if factory == nil {
		panic(fmt.Sprintf("engine: Register called with nil factory for %q", name))
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("engine: Register called twice for %q", name))
	}
	registry[name] = factory
}

// New resolves a registered engine by name.
func New(name string) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownEngineError{Name: name}
	}
	return factory(), nil
}

// Names returns the registered engine names in sorted order.
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
