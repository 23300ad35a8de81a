package validator_test

import (
	"context"
	"testing"

	cadre "github.com/avells/cadre"
	"github.com/avells/cadre/internal/validator"
	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopUnit(name string) *unit.Unit {
	return unit.Func(name, "", nil, func(ctx context.Context, input string, shared map[string]any) (any, error) {
		return input, nil
	})
}

func TestCheckGroup_Clean(t *testing.T) {
	g := cadre.NewGroup("ops")
	require.NoError(t, g.AddUnit(noopUnit("worker")))
	require.NoError(t, g.AddJob(domain.Job{Name: "work", UnitName: "worker"}))
	require.NoError(t, g.SetWorkflow([]string{"work"}))

	assert.Empty(t, validator.CheckGroup(g))
}

func TestCheckGroup_UnknownUnitIsError(t *testing.T) {
	g := cadre.NewGroup("ops")
	require.NoError(t, g.AddUnit(noopUnit("worker")))
	require.NoError(t, g.AddJob(domain.Job{Name: "work", UnitName: "ghost"}))
	require.NoError(t, g.SetWorkflow([]string{"work"}))

	issues := validator.CheckGroup(g)
	require.True(t, validator.HasErrors(issues))
	assert.Contains(t, issues[0].Message, "unknown unit: ghost")
}

func TestCheckGroup_UnusedUnitAndMissingWorkflowAreWarnings(t *testing.T) {
	g := cadre.NewGroup("ops")
	require.NoError(t, g.AddUnit(noopUnit("idle")))

	issues := validator.CheckGroup(g)
	assert.False(t, validator.HasErrors(issues))
	assert.Len(t, issues, 2)
}

func TestCheckOrganization_StepIntegrity(t *testing.T) {
	g := cadre.NewGroup("research")
	require.NoError(t, g.AddUnit(noopUnit("fetcher")))
	require.NoError(t, g.AddJob(domain.Job{Name: "gather", UnitName: "fetcher"}))
	require.NoError(t, g.SetWorkflow([]string{"gather"}))

	org := cadre.NewOrganization("acme")
	require.NoError(t, org.AddGroup(g))
	require.NoError(t, org.AddStep(domain.Step{Name: "ok", GroupName: "research", JobName: "gather"}))
	require.NoError(t, org.AddStep(domain.Step{Name: "badGroup", GroupName: "missing"}))
	require.NoError(t, org.AddStep(domain.Step{Name: "badJob", GroupName: "research", JobName: "ghost"}))
	require.NoError(t, org.AddWorkflow("wf", []string{"ok", "badGroup", "badJob"}))

	issues := validator.CheckOrganization(org)
	require.True(t, validator.HasErrors(issues))

	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	assert.Contains(t, messages, "step badGroup references unknown group: missing")
	assert.Contains(t, messages, "step badJob references unknown job ghost in group research")
}

func TestCheckOrganization_OrphanStepIsWarning(t *testing.T) {
	g := cadre.NewGroup("research")
	require.NoError(t, g.AddUnit(noopUnit("fetcher")))
	require.NoError(t, g.AddJob(domain.Job{Name: "gather", UnitName: "fetcher"}))
	require.NoError(t, g.SetWorkflow([]string{"gather"}))

	org := cadre.NewOrganization("acme")
	require.NoError(t, org.AddGroup(g))
	require.NoError(t, org.AddStep(domain.Step{Name: "orphan", GroupName: "research", JobName: "gather"}))

	issues := validator.CheckOrganization(org)
	assert.False(t, validator.HasErrors(issues))

	var found bool
	for _, issue := range issues {
		if issue.Message == "step orphan is not part of any workflow" {
			found = true
		}
	}
	assert.True(t, found)
}
