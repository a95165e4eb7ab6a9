package backend

import (
	"sync"
)

// Factory creates a new provider instance.
type Factory func() Provider

// registry holds registered providers.
var (
	registryMu sync.RWMutex
	providers  = make(map[string]Factory)
	// Priority order for provider selection (first available wins).
	// WGPU > Software (hardware first, software is the fallback).
	priority = []string{NameWGPU, NameSoftware}
)

// Register registers a provider factory with the given name.
// This is typically called from init() functions in provider packages.
// If a provider with the same name is already registered, it will be
// replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providers[name] = factory
}

// Unregister removes a provider from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(providers, name)
}

// Available returns a list of registered provider names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a provider with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := providers[name]
	return ok
}

// Get returns a provider instance by name.
// Returns nil if the provider is not registered.
func Get(name string) Provider {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := providers[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available provider based on priority.
// Returns nil if no providers are registered.
func Default() Provider {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range priority {
		if factory, ok := providers[name]; ok {
			if p := factory(); p != nil {
				return p
			}
		}
	}

	// Fallback: return first available
	for _, factory := range providers {
		if p := factory(); p != nil {
			return p
		}
	}

	return nil
}

// MustDefault returns the default provider or panics.
func MustDefault() Provider {
	p := Default()
	if p == nil {
		panic("backend: no provider available")
	}
	return p
}

// InitDefault initializes the default provider based on availability.
func InitDefault() (Provider, error) {
	p := Default()
	if p == nil {
		return nil, ErrBackendNotAvailable
	}
	if err := p.Init(); err != nil {
		return nil, err
	}
	return p, nil
}
