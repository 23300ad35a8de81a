package cadre

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avells/cadre/internal/logging"
	"github.com/avells/cadre/internal/runtime"
	"github.com/avells/cadre/pkg/bus"
	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/ports"
)

// Organization owns a set of named Groups and Steps and executes named
// workflows over them. Structurally it is a Group one level up: the same
// executor walks its steps, dispatching each to a contained group instead of
// a unit.
type Organization struct {
	name   string
	config container
	exec   *runtime.Executor

	mu        sync.RWMutex
	groups    map[string]ports.GroupRunner
	forwards  map[string]func()
	steps     map[string]domain.Step
	mappings  map[string]map[string]runtime.Ref
	workflows map[string][]string
}

// NewOrganization creates an empty organization.
func NewOrganization(name string, opts ...Option) *Organization {
	o := &Organization{
		name:      name,
		groups:    make(map[string]ports.GroupRunner),
		forwards:  make(map[string]func()),
		steps:     make(map[string]domain.Step),
		mappings:  make(map[string]map[string]runtime.Ref),
		workflows: make(map[string][]string),
	}
	o.config.logger = logging.NewNop()
	for _, opt := range opts {
		opt(&o.config)
	}
	if o.config.bus == nil {
		o.config.bus = bus.New(name)
	}
	o.config.bus.SetLogger(o.config.logger)
	o.config.logger = o.config.logger.With("organization", name)
	o.exec = runtime.New(name, o.config.bus, o.config.logger)
	return o
}

// Name returns the organization name.
func (o *Organization) Name() string { return o.name }

// Bus returns the organization's event bus. It carries the organization's
// own events plus every contained group's events under "<group>.".
func (o *Organization) Bus() *bus.Bus { return o.config.bus }

// AddGroup registers a group and starts forwarding its event stream onto the
// organization bus under the group's name. Re-registering a name detaches
// the previous group's forwarding first.
func (o *Organization) AddGroup(gr ports.GroupRunner) error {
	if gr == nil {
		return fmt.Errorf("organization %s: group is nil", o.name)
	}
	if gr.Name() == "" {
		return fmt.Errorf("organization %s: group has no name", o.name)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if off, ok := o.forwards[gr.Name()]; ok {
		off()
	}
	o.groups[gr.Name()] = gr
	o.forwards[gr.Name()] = bus.Forward(gr.Bus(), o.config.bus, gr.Name())
	return nil
}

// AddStep registers a step definition. Input mappings are compiled here to
// fail fast on malformed paths; the group reference is resolved at run time,
// where a miss records an in-band error for that step.
func (o *Organization) AddStep(step domain.Step) error {
	if step.Name == "" {
		return fmt.Errorf("organization %s: step has no name", o.name)
	}
	if step.GroupName == "" {
		return fmt.Errorf("organization %s: step %s names no group", o.name, step.Name)
	}

	compiled, err := compileMapping(step.InputMapping)
	if err != nil {
		return fmt.Errorf("organization %s: step %s: %w", o.name, step.Name, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps[step.Name] = step
	o.mappings[step.Name] = compiled
	return nil
}

// AddWorkflow declares a named execution order. Every entry must be a
// registered step name.
func (o *Organization) AddWorkflow(name string, stepNames []string) error {
	if name == "" {
		return fmt.Errorf("organization %s: workflow has no name", o.name)
	}
	if len(stepNames) == 0 {
		return fmt.Errorf("organization %s: workflow %s is empty", o.name, name)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, step := range stepNames {
		if _, ok := o.steps[step]; !ok {
			return fmt.Errorf("organization %s: workflow %s references unknown step: %s", o.name, name, step)
		}
	}
	o.workflows[name] = append([]string(nil), stepNames...)
	return nil
}

// GroupNames returns the registered group names, sorted.
func (o *Organization) GroupNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.groups))
	for name := range o.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group returns a registered group by name.
func (o *Organization) Group(name string) (ports.GroupRunner, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	gr, ok := o.groups[name]
	return gr, ok
}

// Steps returns the registered step definitions, sorted by name.
func (o *Organization) Steps() []domain.Step {
	o.mu.RLock()
	defer o.mu.RUnlock()
	steps := make([]domain.Step, 0, len(o.steps))
	for _, step := range o.steps {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Name < steps[j].Name })
	return steps
}

// Workflows returns the declared workflow names, sorted.
func (o *Organization) Workflows() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.workflows))
	for name := range o.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorkflowSteps returns the step definitions of a declared workflow in
// order, for introspection and rendering.
func (o *Organization) WorkflowSteps(name string) ([]domain.Step, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	wf, ok := o.workflows[name]
	if !ok {
		return nil, fmt.Errorf("organization %s: %w: %s", o.name, domain.ErrUnknownWorkflow, name)
	}
	steps := make([]domain.Step, 0, len(wf))
	for _, stepName := range wf {
		steps = append(steps, o.steps[stepName])
	}
	return steps, nil
}

// Run executes the named workflow and returns the full results mapping.
// An unknown workflow name is the one fatal configuration error: the call
// fails outright with no results. Everything else is contained in-band.
func (o *Organization) Run(ctx context.Context, workflowName string, inputs, shared map[string]any) (domain.Results, error) {
	o.mu.RLock()
	wf, ok := o.workflows[workflowName]
	if !ok {
		o.mu.RUnlock()
		return nil, fmt.Errorf("organization %s: %w: %s", o.name, domain.ErrUnknownWorkflow, workflowName)
	}
	entries := make([]runtime.Entry, 0, len(wf))
	for _, stepName := range wf {
		entries = append(entries, o.entry(o.steps[stepName]))
	}
	o.mu.RUnlock()

	return o.exec.Run(ctx, workflowName, entries, inputs, cloneContext(shared)), nil
}

// RunStep executes a single named step and returns its processed result.
func (o *Organization) RunStep(ctx context.Context, stepName string, inputs, shared map[string]any) (any, error) {
	o.mu.RLock()
	step, ok := o.steps[stepName]
	if !ok {
		o.mu.RUnlock()
		return nil, fmt.Errorf("organization %s: unknown step: %s", o.name, stepName)
	}
	entry := o.entry(step)
	o.mu.RUnlock()

	return o.exec.RunSingle(ctx, entry, inputs, cloneContext(shared))
}

// entry binds a step definition to its group. Callers hold at least a read
// lock.
func (o *Organization) entry(step domain.Step) runtime.Entry {
	e := runtime.Entry{
		Name:      step.Name,
		Parallel:  step.Parallel,
		Mapping:   o.mappings[step.Name],
		Template:  step.InputTemplate,
		OutputKey: step.OutputKey,
	}

	gr, ok := o.groups[step.GroupName]
	if !ok {
		e.ConfigErr = fmt.Errorf("%w: %s (step %s)", domain.ErrUnknownGroup, step.GroupName, step.Name)
		return e
	}

	jobName := step.JobName
	e.Target = func(ctx context.Context, input string, shared map[string]any) (any, error) {
		// The step's materialized text becomes the group's initial inputs;
		// a mapping-less first job of that group receives it verbatim.
		in := map[string]any{}
		if input != "" {
			in["input"] = input
		}
		return gr.Dispatch(ctx, in, shared, jobName)
	}
	return e
}
