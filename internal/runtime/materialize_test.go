package runtime

import (
	"encoding/json"
	"testing"

	"github.com/avells/cadre/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMaterialize_Template(t *testing.T) {
	params := map[string]any{
		"topic": "go concurrency",
		"count": 3,
	}
	out := Materialize(params, "Summarize {{topic}} in {{ count }} points.")
	assert.Equal(t, "Summarize go concurrency in 3 points.", out)
}

func TestMaterialize_TemplateKeepsUnresolvedPlaceholders(t *testing.T) {
	params := map[string]any{
		"topic":   "go",
		"missing": domain.Unresolved,
	}
	out := Materialize(params, "{{topic}} / {{missing}} / {{never_bound}}")
	// Unresolved and unbound placeholders stay literal so the failure is
	// visible in the payload.
	assert.Equal(t, "go / {{missing}} / {{never_bound}}", out)
}

func TestMaterialize_SingleParamPassthrough(t *testing.T) {
	assert.Equal(t, "hello", Materialize(map[string]any{"x": "hello"}, ""))
	assert.Equal(t, "42", Materialize(map[string]any{"x": 42}, ""))
}

func TestMaterialize_SingleStructuredParam(t *testing.T) {
	out := Materialize(map[string]any{"x": map[string]any{"a": 1}}, "")
	var decoded map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(1), decoded["a"])
}

func TestMaterialize_MultiParamSerializes(t *testing.T) {
	out := Materialize(map[string]any{"a": "x", "b": 2}, "")
	var decoded map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "x", decoded["a"])
	assert.Equal(t, float64(2), decoded["b"])
}

func TestMaterialize_MultiParamRendersSentinelVisibly(t *testing.T) {
	out := Materialize(map[string]any{"a": "x", "b": domain.Unresolved}, "")
	var decoded map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "<unresolved>", decoded["b"])
}

func TestMaterialize_Empty(t *testing.T) {
	assert.Equal(t, "", Materialize(nil, ""))
	assert.Equal(t, "", Materialize(map[string]any{}, ""))
}
