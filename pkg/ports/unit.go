package ports

import "context"

// Unit is the smallest runnable task performer. It receives the materialized
// textual input plus the run-scoped shared context and returns either text or
// a structured object (map[string]any).
//
// Normal failure modes must surface as returned errors, not panics: the
// workflow executor records them in the results store and the run continues.
type Unit interface {
	Name() string
	Run(ctx context.Context, input string, shared map[string]any) (any, error)
}
