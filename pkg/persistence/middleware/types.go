// Package middleware wraps a ports.ContextStore with at-rest protections.
package middleware

import "github.com/ikenthis/bmsagent/pkg/ports"

// Middleware allows wrapping a ContextStore to add behavior.
type Middleware func(ports.ContextStore) ports.ContextStore

// Chain applies middlewares so the first one listed is the outermost.
func Chain(store ports.ContextStore, mws ...Middleware) ports.ContextStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
