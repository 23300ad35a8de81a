package dsl

import (
	"fmt"

	cadre "github.com/avells/cadre"
	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/ports"
)

// GroupBuilder accumulates a group's composition. Registration errors are
// deferred to Build so chains stay fluent.
type GroupBuilder struct {
	name     string
	opts     []cadre.Option
	units    []ports.Unit
	jobs     []domain.Job
	workflow []string
	errs     []error
}

// NewGroup starts a group definition.
func NewGroup(name string, opts ...cadre.Option) *GroupBuilder {
	return &GroupBuilder{name: name, opts: opts}
}

// Unit registers a unit.
func (b *GroupBuilder) Unit(u ports.Unit) *GroupBuilder {
	b.units = append(b.units, u)
	return b
}

// Job starts a job definition. Finish it with Done to return to the group
// chain.
func (b *GroupBuilder) Job(name string) *JobBuilder {
	return &JobBuilder{group: b, job: domain.Job{Name: name}}
}

// Workflow declares the execution order.
func (b *GroupBuilder) Workflow(jobNames ...string) *GroupBuilder {
	b.workflow = jobNames
	return b
}

// Build composes the group, reporting the first deferred error.
func (b *GroupBuilder) Build() (*cadre.Group, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	g := cadre.NewGroup(b.name, b.opts...)
	for _, u := range b.units {
		if err := g.AddUnit(u); err != nil {
			return nil, err
		}
	}
	for _, job := range b.jobs {
		if err := g.AddJob(job); err != nil {
			return nil, err
		}
	}
	if len(b.workflow) > 0 {
		if err := g.SetWorkflow(b.workflow); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// JobBuilder provides a fluent API for configuring one job.
type JobBuilder struct {
	group *GroupBuilder
	job   domain.Job
}

// Uses binds the job to a unit by name.
func (j *JobBuilder) Uses(unitName string) *JobBuilder {
	j.job.UnitName = unitName
	return j
}

// MapInput binds a parameter to a dot-path over the run sources.
func (j *JobBuilder) MapInput(param, path string) *JobBuilder {
	if j.job.InputMapping == nil {
		j.job.InputMapping = make(map[string]string)
	}
	j.job.InputMapping[param] = path
	return j
}

// Template sets the textual input template with {{param}} placeholders.
func (j *JobBuilder) Template(template string) *JobBuilder {
	j.job.InputTemplate = template
	return j
}

// Output names the field to extract from a structured result.
func (j *JobBuilder) Output(key string) *JobBuilder {
	j.job.OutputKey = key
	return j
}

// Parallel marks the job for concurrent dispatch.
func (j *JobBuilder) Parallel() *JobBuilder {
	j.job.Parallel = true
	return j
}

// Done finishes the job and returns to the group chain.
func (j *JobBuilder) Done() *GroupBuilder {
	if j.job.UnitName == "" {
		j.group.errs = append(j.group.errs, fmt.Errorf("job %s: no unit bound, call Uses", j.job.Name))
	}
	j.group.jobs = append(j.group.jobs, j.job)
	return j.group
}

// OrganizationBuilder accumulates an organization's composition.
type OrganizationBuilder struct {
	name      string
	opts      []cadre.Option
	groups    []ports.GroupRunner
	steps     []domain.Step
	workflows map[string][]string
	order     []string
	errs      []error
}

// NewOrganization starts an organization definition.
func NewOrganization(name string, opts ...cadre.Option) *OrganizationBuilder {
	return &OrganizationBuilder{
		name:      name,
		opts:      opts,
		workflows: make(map[string][]string),
	}
}

// Group registers a contained group.
func (b *OrganizationBuilder) Group(gr ports.GroupRunner) *OrganizationBuilder {
	b.groups = append(b.groups, gr)
	return b
}

// Step starts a step definition. Finish it with Done to return to the
// organization chain.
func (b *OrganizationBuilder) Step(name string) *StepBuilder {
	return &StepBuilder{org: b, step: domain.Step{Name: name}}
}

// Workflow declares a named step order.
func (b *OrganizationBuilder) Workflow(name string, stepNames ...string) *OrganizationBuilder {
	if _, ok := b.workflows[name]; !ok {
		b.order = append(b.order, name)
	}
	b.workflows[name] = stepNames
	return b
}

// Build composes the organization, reporting the first deferred error.
func (b *OrganizationBuilder) Build() (*cadre.Organization, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	org := cadre.NewOrganization(b.name, b.opts...)
	for _, gr := range b.groups {
		if err := org.AddGroup(gr); err != nil {
			return nil, err
		}
	}
	for _, step := range b.steps {
		if err := org.AddStep(step); err != nil {
			return nil, err
		}
	}
	for _, name := range b.order {
		if err := org.AddWorkflow(name, b.workflows[name]); err != nil {
			return nil, err
		}
	}
	return org, nil
}

// StepBuilder provides a fluent API for configuring one step.
type StepBuilder struct {
	org  *OrganizationBuilder
	step domain.Step
}

// In binds the step to a group by name.
func (s *StepBuilder) In(groupName string) *StepBuilder {
	s.step.GroupName = groupName
	return s
}

// Runs makes the step run a single job of the target group instead of the
// group's whole workflow.
func (s *StepBuilder) Runs(jobName string) *StepBuilder {
	s.step.JobName = jobName
	return s
}

// MapInput binds a parameter to a dot-path over the run sources.
func (s *StepBuilder) MapInput(param, path string) *StepBuilder {
	if s.step.InputMapping == nil {
		s.step.InputMapping = make(map[string]string)
	}
	s.step.InputMapping[param] = path
	return s
}

// Template sets the textual input template with {{param}} placeholders.
func (s *StepBuilder) Template(template string) *StepBuilder {
	s.step.InputTemplate = template
	return s
}

// Output names the field to extract from a structured result.
func (s *StepBuilder) Output(key string) *StepBuilder {
	s.step.OutputKey = key
	return s
}

// Parallel marks the step for concurrent dispatch.
func (s *StepBuilder) Parallel() *StepBuilder {
	s.step.Parallel = true
	return s
}

// Done finishes the step and returns to the organization chain.
func (s *StepBuilder) Done() *OrganizationBuilder {
	if s.step.GroupName == "" {
		s.org.errs = append(s.org.errs, fmt.Errorf("step %s: no group bound, call In", s.step.Name))
	}
	s.org.steps = append(s.org.steps, s.step)
	return s.org
}
