package analyzer

import (
	"fmt"
	"slices"
	"sync"
)

// Factory is a function that creates an Analyzer instance.
type Factory func(opts Options) (Analyzer, error)

// registry is the global analyzer registry instance.
var registry = &Registry{
	factories: make(map[string]Factory),
}

// Registry manages analyzer factories by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Register adds an analyzer factory to the registry.
// Panics if the name is already registered.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("analyzer: %q already registered", name))
	}

	r.factories[name] = factory
}

// New creates an Analyzer by name.
// Returns an error if the name is not registered.
func (r *Registry) New(name string, opts Options) (Analyzer, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown analyzer: %s", name)
	}

	return factory(opts)
}

// List returns all registered analyzer names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// IsRegistered reports whether an analyzer name is registered.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Register allows external packages to register custom analyzers.
func Register(name string, factory Factory) {
	registry.Register(name, factory)
}

// New creates a registered Analyzer by name.
func New(name string, opts Options) (Analyzer, error) {
	return registry.New(name, opts)
}

// ListRegistered returns all registered analyzer names.
func ListRegistered() []string {
	return registry.List()
}

// IsRegistered reports whether an analyzer name is registered.
func IsRegistered(name string) bool {
	return registry.IsRegistered(name)
}
