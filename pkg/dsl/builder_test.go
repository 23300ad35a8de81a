package dsl_test

import (
	"context"
	"testing"

	"github.com/avells/cadre/pkg/dsl"
	"github.com/avells/cadre/pkg/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(name string) *unit.Unit {
	return unit.Func(name, "", nil, func(ctx context.Context, input string, shared map[string]any) (any, error) {
		return name + ":" + input, nil
	})
}

func TestGroupBuilder(t *testing.T) {
	g, err := dsl.NewGroup("research").
		Unit(echo("fetcher")).
		Unit(echo("writer")).
		Job("gather").Uses("fetcher").Done().
		Job("summarize").Uses("writer").MapInput("sources", "results.gather").Done().
		Workflow("gather", "summarize").
		Build()
	require.NoError(t, err)

	results, err := g.Run(context.Background(), map[string]any{"topic": "go"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fetcher:go", results["gather"])
	assert.Equal(t, "writer:fetcher:go", results["summarize"])
}

func TestGroupBuilder_JobWithoutUnit(t *testing.T) {
	_, err := dsl.NewGroup("g").
		Job("broken").Done().
		Build()
	assert.ErrorContains(t, err, "call Uses")
}

func TestGroupBuilder_BadMappingPath(t *testing.T) {
	_, err := dsl.NewGroup("g").
		Unit(echo("u")).
		Job("j").Uses("u").MapInput("x", "nowhere.key").Done().
		Build()
	assert.Error(t, err)
}

func TestOrganizationBuilder(t *testing.T) {
	g, err := dsl.NewGroup("research").
		Unit(echo("fetcher")).
		Job("gather").Uses("fetcher").Done().
		Workflow("gather").
		Build()
	require.NoError(t, err)

	org, err := dsl.NewOrganization("acme").
		Group(g).
		Step("investigate").In("research").Runs("gather").Done().
		Workflow("daily", "investigate").
		Build()
	require.NoError(t, err)

	results, err := org.Run(context.Background(), "daily", map[string]any{"q": "news"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fetcher:news", results["investigate"])
}

func TestOrganizationBuilder_StepWithoutGroup(t *testing.T) {
	_, err := dsl.NewOrganization("acme").
		Step("lost").Done().
		Build()
	assert.ErrorContains(t, err, "call In")
}

func TestOrganizationBuilder_ParallelSteps(t *testing.T) {
	g, err := dsl.NewGroup("work").
		Unit(echo("a")).
		Unit(echo("b")).
		Job("left").Uses("a").Done().
		Job("right").Uses("b").Done().
		Workflow("left", "right").
		Build()
	require.NoError(t, err)

	org, err := dsl.NewOrganization("acme").
		Group(g).
		Step("x").In("work").Runs("left").Parallel().Done().
		Step("y").In("work").Runs("right").Parallel().Done().
		Workflow("fan", "x", "y").
		Build()
	require.NoError(t, err)

	steps, err := org.WorkflowSteps("fan")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.True(t, steps[0].Parallel)

	results, err := org.Run(context.Background(), "fan", map[string]any{"seed": "s"}, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for name := range results {
		assert.False(t, results.Failed(name), "step %s failed: %v", name, results[name])
	}
}
