package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler is the function signature for an operation handler
// It takes context and arguments, and returns a result map and error
type Handler func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// Registry stores the mapping of operation names to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler for an operation name
func (r *Registry) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Get retrieves a handler for an operation name
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}

// Names lists the registered operations in order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named operation
func (r *Registry) Run(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	handler, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown operation %q (available: %v)", name, r.Names())
	}
	return handler(ctx, args)
}
