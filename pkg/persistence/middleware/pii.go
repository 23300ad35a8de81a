package middleware

import (
	"context"
	"regexp"

	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/ports"
)

type piiMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks result values whose keys
// match the patterns, recursing into nested structured results.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, rec domain.RunRecord) error {
	// Clone before masking so the in-memory results used by the caller are
	// untouched.
	cloned := make(domain.Results, len(rec.Results))
	for k, v := range rec.Results {
		if subMap, ok := v.(map[string]any); ok {
			cloned[k] = deepCopyMap(subMap)
		} else {
			cloned[k] = v
		}
	}
	maskMap(cloned, m.patterns)
	rec.Results = cloned

	return m.next.Save(ctx, rec)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (domain.RunRecord, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
