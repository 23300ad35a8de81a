package ports

import (
	"context"

	"github.com/avells/cadre/pkg/bus"
)

// GroupRunner is the group-shaped dispatch target consumed by an
// Organization.
//
// Dispatch with an empty jobName executes the group's entire declared
// workflow and returns the full keyed results mapping; with a jobName it
// executes only that job and returns its processed result directly.
type GroupRunner interface {
	Name() string
	Dispatch(ctx context.Context, inputs map[string]any, shared map[string]any, jobName string) (any, error)

	// Bus exposes the group's event bus so a containing organization can
	// forward its activity stream under a namespaced prefix.
	Bus() *bus.Bus
}
