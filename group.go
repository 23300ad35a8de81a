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

// Group owns a set of named Units and Jobs and executes them as one declared
// workflow. It is constructed once and run many times; every run threads its
// own results value, so concurrent runs on one Group are safe.
type Group struct {
	name   string
	config container
	exec   *runtime.Executor

	mu       sync.RWMutex
	units    map[string]ports.Unit
	jobs     map[string]domain.Job
	mappings map[string]map[string]runtime.Ref
	workflow []string
}

var _ ports.GroupRunner = (*Group)(nil)

// NewGroup creates an empty group.
func NewGroup(name string, opts ...Option) *Group {
	g := &Group{
		name:     name,
		units:    make(map[string]ports.Unit),
		jobs:     make(map[string]domain.Job),
		mappings: make(map[string]map[string]runtime.Ref),
	}
	g.config.logger = logging.NewNop()
	for _, opt := range opts {
		opt(&g.config)
	}
	if g.config.bus == nil {
		g.config.bus = bus.New(name)
	}
	g.config.bus.SetLogger(g.config.logger)
	g.config.logger = g.config.logger.With("group", name)
	g.exec = runtime.New(name, g.config.bus, g.config.logger)
	return g
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Bus returns the group's event bus.
func (g *Group) Bus() *bus.Bus { return g.config.bus }

// AddUnit registers a unit. Registering the same name again replaces the
// previous unit.
func (g *Group) AddUnit(u ports.Unit) error {
	if u == nil {
		return fmt.Errorf("group %s: unit is nil", g.name)
	}
	if u.Name() == "" {
		return fmt.Errorf("group %s: unit has no name", g.name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.units[u.Name()] = u
	return nil
}

// AddJob registers a job definition. The job's input mapping is compiled
// here, so a malformed path (unknown scope, empty segment) fails fast at
// registration. Whether the referenced unit exists is checked at run time,
// where a miss records an in-band error instead of failing the run.
func (g *Group) AddJob(job domain.Job) error {
	if job.Name == "" {
		return fmt.Errorf("group %s: job has no name", g.name)
	}
	if job.UnitName == "" {
		return fmt.Errorf("group %s: job %s names no unit", g.name, job.Name)
	}

	compiled, err := compileMapping(job.InputMapping)
	if err != nil {
		return fmt.Errorf("group %s: job %s: %w", g.name, job.Name, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.jobs[job.Name] = job
	g.mappings[job.Name] = compiled
	return nil
}

// SetWorkflow declares the execution order. Every entry must be a registered
// job name.
func (g *Group) SetWorkflow(jobNames []string) error {
	if len(jobNames) == 0 {
		return fmt.Errorf("group %s: workflow is empty", g.name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, name := range jobNames {
		if _, ok := g.jobs[name]; !ok {
			return fmt.Errorf("group %s: workflow references %w: %s", g.name, domain.ErrUnknownJob, name)
		}
	}
	g.workflow = append([]string(nil), jobNames...)
	return nil
}

// Workflow returns the declared job order.
func (g *Group) Workflow() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.workflow...)
}

// Jobs returns the registered job definitions keyed by name.
func (g *Group) Jobs() map[string]domain.Job {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]domain.Job, len(g.jobs))
	for k, v := range g.jobs {
		out[k] = v
	}
	return out
}

// UnitNames returns the registered unit names, sorted.
func (g *Group) UnitNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.units))
	for name := range g.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the declared workflow and returns the full results mapping.
// Per-job failures are recorded in-band; Run fails only when no workflow was
// declared.
func (g *Group) Run(ctx context.Context, inputs, shared map[string]any) (domain.Results, error) {
	g.mu.RLock()
	if len(g.workflow) == 0 {
		g.mu.RUnlock()
		return nil, fmt.Errorf("group %s has no declared workflow", g.name)
	}
	entries := make([]runtime.Entry, 0, len(g.workflow))
	for _, name := range g.workflow {
		entries = append(entries, g.entry(g.jobs[name]))
	}
	g.mu.RUnlock()

	return g.exec.Run(ctx, g.name, entries, inputs, cloneContext(shared)), nil
}

// RunJob executes a single named job, bypassing the declared workflow, and
// returns its processed result directly.
func (g *Group) RunJob(ctx context.Context, jobName string, inputs, shared map[string]any) (any, error) {
	g.mu.RLock()
	job, ok := g.jobs[jobName]
	if !ok {
		g.mu.RUnlock()
		return nil, fmt.Errorf("group %s: %w: %s", g.name, domain.ErrUnknownJob, jobName)
	}
	entry := g.entry(job)
	g.mu.RUnlock()

	return g.exec.RunSingle(ctx, entry, inputs, cloneContext(shared))
}

// Dispatch implements ports.GroupRunner for containment in an Organization.
func (g *Group) Dispatch(ctx context.Context, inputs, shared map[string]any, jobName string) (any, error) {
	if jobName != "" {
		return g.RunJob(ctx, jobName, inputs, shared)
	}
	return g.Run(ctx, inputs, shared)
}

// entry binds a job definition to its unit. Callers hold at least a read
// lock.
func (g *Group) entry(job domain.Job) runtime.Entry {
	e := runtime.Entry{
		Name:      job.Name,
		Parallel:  job.Parallel,
		Mapping:   g.mappings[job.Name],
		Template:  job.InputTemplate,
		OutputKey: job.OutputKey,
	}

	unit, ok := g.units[job.UnitName]
	if !ok {
		e.ConfigErr = fmt.Errorf("%w: %s (job %s)", domain.ErrUnknownUnit, job.UnitName, job.Name)
		return e
	}
	e.Target = unit.Run
	return e
}

func compileMapping(mapping map[string]string) (map[string]runtime.Ref, error) {
	if len(mapping) == 0 {
		return nil, nil
	}
	compiled := make(map[string]runtime.Ref, len(mapping))
	for param, path := range mapping {
		ref, err := runtime.ParseRef(path)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", param, err)
		}
		compiled[param] = ref
	}
	return compiled, nil
}

// cloneContext merges the caller-seeded context into a fresh run-scoped map.
// The copy is what all units of this run observe; the caller's map stays
// untouched.
func cloneContext(shared map[string]any) map[string]any {
	out := make(map[string]any, len(shared))
	for k, v := range shared {
		out[k] = v
	}
	return out
}
