// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gpucontext"
)

// Options holds the parameters for creating an output surface.
type Options struct {
	// Width and Height are the surface dimensions in pixels.
	Width  int
	Height int

	// Provider supplies the GPU device for GPU-backed surfaces.
	// Software backends ignore it; GPU backends require it.
	Provider gpucontext.DeviceProvider
}

// Factory creates a new OutputSurface with the given options.
// Implementations should validate options and return descriptive errors.
type Factory func(opts Options) (OutputSurface, error)

// RegistryEntry represents a registered output-surface backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: GPU backends (Vulkan, Metal, D3D12)
	//   - 50: hardware-accelerated software (WARP)
	//   - 10: pure software backends
	Priority int

	// Factory creates surface instances.
	Factory Factory

	// Available reports if the backend is available on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = NewRegistry()

// Registry manages registered output-surface backends.
//
// The registry enables third-party backends to register themselves without
// requiring changes to this package.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and
// NewBestAvailable.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a backend to the global registry.
//
// If available is nil, the backend is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority
// (highest first).
func List() []string {
	return globalRegistry.List()
}

// NewByName creates a surface using the named backend from the global
// registry.
func NewByName(name string, opts Options) (OutputSurface, error) {
	return globalRegistry.NewByName(name, opts)
}

// NewBestAvailable creates a surface using the highest-priority available
// backend from the global registry.
func NewBestAvailable(opts Options) (OutputSurface, error) {
	return globalRegistry.NewBestAvailable(opts)
}

// Register adds a backend to the registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority
// (highest first), with ties broken by name.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// NewByName creates a surface using the named backend.
func (r *Registry) NewByName(name string, opts Options) (OutputSurface, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("surface: no backend registered as %q", name)
	}
	if entry.Available != nil && !entry.Available() {
		return nil, fmt.Errorf("surface: backend %q is not available", name)
	}
	return entry.Factory(opts)
}

// NewBestAvailable creates a surface using the highest-priority available
// backend.
func (r *Registry) NewBestAvailable(opts Options) (OutputSurface, error) {
	for _, name := range r.List() {
		r.mu.RLock()
		entry := r.entries[name]
		r.mu.RUnlock()
		if entry == nil {
			continue
		}
		if entry.Available != nil && !entry.Available() {
			continue
		}
		return entry.Factory(opts)
	}
	return nil, errors.New("surface: no available backend")
}
