// Package middleware provides composable RunStore wrappers: at-rest
// encryption and PII masking for persisted run results.
package middleware

import "github.com/avells/cadre/pkg/ports"

// Middleware allows wrapping a RunStore to add behavior.
type Middleware func(ports.RunStore) ports.RunStore

// Chain applies middlewares right to left, so the first one listed is the
// outermost wrapper.
func Chain(store ports.RunStore, mws ...Middleware) ports.RunStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
