// Package unit provides basic Unit implementations and the capability
// registry units draw their callable tools from. The generative-model
// clients and per-tool logic of a full deployment are collaborators outside
// this module; Func is the seam they plug into.
package unit

import (
	"context"
)

// RunFunc is the executable body of a Func unit.
type RunFunc func(ctx context.Context, input string, shared map[string]any) (any, error)

// Unit is a function-backed task performer with identity metadata.
type Unit struct {
	name         string
	role         string
	capabilities []string
	run          RunFunc
}

// Func wraps fn as a named unit. role describes its purpose; capabilities
// lists the registry tools it may invoke.
func Func(name, role string, capabilities []string, fn RunFunc) *Unit {
	return &Unit{
		name:         name,
		role:         role,
		capabilities: append([]string(nil), capabilities...),
		run:          fn,
	}
}

// Name returns the unit name.
func (u *Unit) Name() string { return u.name }

// Role returns the unit's purpose description.
func (u *Unit) Role() string { return u.role }

// Capabilities returns the names of the tools the unit may invoke.
func (u *Unit) Capabilities() []string {
	return append([]string(nil), u.capabilities...)
}

// Run executes the unit body.
func (u *Unit) Run(ctx context.Context, input string, shared map[string]any) (any, error) {
	return u.run(ctx, input, shared)
}
