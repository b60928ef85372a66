// Package registry keeps named handlers in registration order.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Get for names that were never registered.
var ErrNotFound = errors.New("handler not found")

// Registry maps names to handlers of type H.
// Safe for concurrent use.
type Registry[H any] struct {
	mu       sync.RWMutex
	handlers map[string]H
	order    []string
}

// New creates an empty registry.
func New[H any]() *Registry[H] {
	return &Registry[H]{
		handlers: make(map[string]H),
	}
}

// Register adds a handler. Re-registering a name replaces the handler but keeps its position.
func (r *Registry[H]) Register(name string, h H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
}

// Lookup returns the handler for name.
func (r *Registry[H]) Lookup(name string) (H, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Get is Lookup with an error that wraps ErrNotFound.
func (r *Registry[H]) Get(name string) (H, error) {
	h, ok := r.Lookup(name)
	if !ok {
		return h, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return h, nil
}

// Names returns the registered names in registration order.
func (r *Registry[H]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
