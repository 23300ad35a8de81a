package metrics_test

import (
	"context"
	"strings"
	"testing"

	cadre "github.com/avells/cadre"
	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/metrics"
	"github.com/avells/cadre/pkg/unit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opsGroup(t *testing.T, withBroken bool) *cadre.Group {
	t.Helper()

	g := cadre.NewGroup("ops")
	require.NoError(t, g.AddUnit(unit.Func("ok", "", nil, func(ctx context.Context, input string, shared map[string]any) (any, error) {
		return "done", nil
	})))
	require.NoError(t, g.AddJob(domain.Job{Name: "work", UnitName: "ok"}))
	workflow := []string{"work"}
	if withBroken {
		require.NoError(t, g.AddJob(domain.Job{Name: "broken", UnitName: "ghost"}))
		workflow = append(workflow, "broken")
	}
	require.NoError(t, g.SetWorkflow(workflow))
	return g
}

func TestCollector_CountsRunsAndEntries(t *testing.T) {
	g := opsGroup(t, true)

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	detach := c.Attach(g.Bus())
	defer detach()

	_, err := g.Run(context.Background(), nil, nil)
	require.NoError(t, err)

	expectedEntries := `
		# HELP cadre_entries_total Total number of executed workflow entries
		# TYPE cadre_entries_total counter
		cadre_entries_total{outcome="error",source="ops"} 1
		cadre_entries_total{outcome="success",source="ops"} 1
	`
	assert.NoError(t, testutil.CollectAndCompare(reg, strings.NewReader(expectedEntries), "cadre_entries_total"))

	expectedRuns := `
		# HELP cadre_runs_total Total number of workflow runs
		# TYPE cadre_runs_total counter
		cadre_runs_total{source="ops",workflow="ops"} 1
	`
	assert.NoError(t, testutil.CollectAndCompare(reg, strings.NewReader(expectedRuns), "cadre_runs_total"))
}

func TestCollector_DetachStopsCounting(t *testing.T) {
	g := opsGroup(t, false)

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	detach := c.Attach(g.Bus())

	_, err := g.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	detach()
	_, err = g.Run(context.Background(), nil, nil)
	require.NoError(t, err)

	expectedRuns := `
		# HELP cadre_runs_total Total number of workflow runs
		# TYPE cadre_runs_total counter
		cadre_runs_total{source="ops",workflow="ops"} 1
	`
	assert.NoError(t, testutil.CollectAndCompare(reg, strings.NewReader(expectedRuns), "cadre_runs_total"),
		"detached collector must not record the second run")
}
