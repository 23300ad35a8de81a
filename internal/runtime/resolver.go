package runtime

import (
	"fmt"
	"strings"

	"github.com/avells/cadre/pkg/domain"
)

// Scope selects the named source a path reads from.
type Scope int

const (
	ScopeInitial Scope = iota
	ScopeResults
	ScopeContext
)

func (s Scope) String() string {
	switch s {
	case ScopeInitial:
		return "initialInputs"
	case ScopeResults:
		return "results"
	case ScopeContext:
		return "context"
	}
	return "unknown"
}

// Ref is a pre-parsed dot-path: a scope plus the key sequence walked inside
// it. Parsing happens when a mapping is registered, so an unknown scope fails
// fast instead of silently resolving to nothing on every run.
type Ref struct {
	Scope Scope
	Keys  []string
	Raw   string
}

// ParseRef validates and splits a dot-path such as "results.fetch.text".
func ParseRef(path string) (Ref, error) {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || segments[0] == "" {
		return Ref{}, fmt.Errorf("empty input path")
	}

	ref := Ref{Keys: segments[1:], Raw: path}
	switch segments[0] {
	case "initialInputs", "inputs":
		ref.Scope = ScopeInitial
	case "results":
		ref.Scope = ScopeResults
	case "context":
		ref.Scope = ScopeContext
	default:
		return Ref{}, fmt.Errorf("unknown scope %q in path %q (want initialInputs, results or context)", segments[0], path)
	}

	for _, k := range ref.Keys {
		if k == "" {
			return Ref{}, fmt.Errorf("empty segment in path %q", path)
		}
	}
	return ref, nil
}

// Sources exposes the three read scopes of one run to path resolution.
type Sources struct {
	Initial map[string]any
	Results domain.Results
	Context map[string]any
}

// Resolve walks the ref through nested mapping lookups. It is total: a
// missing segment or a non-indexable intermediate value yields
// (domain.Unresolved, false), never an error.
func (r Ref) Resolve(src Sources) (any, bool) {
	var current any
	switch r.Scope {
	case ScopeInitial:
		current = mapOrNil(src.Initial)
	case ScopeResults:
		current = map[string]any(src.Results)
	case ScopeContext:
		current = mapOrNil(src.Context)
	}

	for _, key := range r.Keys {
		m, ok := asMap(current)
		if !ok {
			return domain.Unresolved, false
		}
		current, ok = m[key]
		if !ok {
			return domain.Unresolved, false
		}
	}
	if current == nil && len(r.Keys) == 0 {
		// Bare scope reference against an absent source.
		return domain.Unresolved, false
	}
	return current, true
}

func mapOrNil(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case domain.Results:
		return map[string]any(m), true
	default:
		return nil, false
	}
}
