package unit

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Capability is the signature of a callable tool a unit may invoke.
type Capability func(ctx context.Context, args map[string]any) (any, error)

// Registry manages the available capabilities. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register adds a capability. An existing name is overwritten.
func (r *Registry) Register(name string, fn Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[name] = fn
}

// Execute looks up a capability by name and invokes it.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.caps[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("capability not found: %s", name)
	}
	return fn(ctx, args)
}

// Names returns the registered capability names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
