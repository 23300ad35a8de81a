package unit_test

import (
	"context"
	"testing"

	"github.com/avells/cadre/pkg/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncUnit(t *testing.T) {
	u := unit.Func("writer", "summarizes text", []string{"search"}, func(ctx context.Context, input string, shared map[string]any) (any, error) {
		return "summary of " + input, nil
	})

	assert.Equal(t, "writer", u.Name())
	assert.Equal(t, "summarizes text", u.Role())
	assert.Equal(t, []string{"search"}, u.Capabilities())

	out, err := u.Run(context.Background(), "a long text", nil)
	require.NoError(t, err)
	assert.Equal(t, "summary of a long text", out)
}

func TestRegistry(t *testing.T) {
	reg := unit.NewRegistry()
	reg.Register("add", func(ctx context.Context, args map[string]any) (any, error) {
		return args["a"].(int) + args["b"].(int), nil
	})

	out, err := reg.Execute(context.Background(), "add", map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, 5, out)

	_, err = reg.Execute(context.Background(), "missing", nil)
	assert.ErrorContains(t, err, "capability not found")

	assert.Equal(t, []string{"add"}, reg.Names())
}
