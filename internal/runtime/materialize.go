package runtime

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/avells/cadre/pkg/domain"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Materialize produces the single textual payload handed to a dispatch
// target from the resolved parameter map and an optional template.
//
// With a template, every {{name}} occurrence is substituted; parameters that
// are missing or bound to the unresolved sentinel leave the placeholder as
// literal text so the failure is visible in the payload itself. Without a
// template: one parameter passes through directly (coerced to text), several
// serialize to pretty JSON, none yields the empty string.
func Materialize(params map[string]any, template string) string {
	if template != "" {
		return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
			name := placeholderRe.FindStringSubmatch(match)[1]
			val, ok := params[name]
			if !ok || domain.IsUnresolved(val) {
				return match
			}
			return Stringify(val)
		})
	}

	switch len(params) {
	case 0:
		return ""
	case 1:
		for _, v := range params {
			return Stringify(v)
		}
	}

	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	return string(data)
}

// Stringify coerces a resolved value to text. Structured values render as
// JSON so downstream units receive something parseable.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any, domain.Results:
		data, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}
