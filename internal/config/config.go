// Package config loads a project file (YAML or JSON) and builds a ready
// Organization from it. Loading is fail-fast: a project that references an
// unknown unit type, job, or step is rejected before anything runs.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cadre "github.com/avells/cadre"
	"github.com/avells/cadre/pkg/adapters/process"
	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Project is the root of a project file.
type Project struct {
	Organization string         `yaml:"organization" json:"organization"`
	Context      map[string]any `yaml:"context,omitempty" json:"context,omitempty"`
	Groups       []GroupConfig  `yaml:"groups" json:"groups"`
	Steps        []domain.Step  `yaml:"steps,omitempty" json:"steps,omitempty"`

	// Workflows maps workflow names to ordered step lists.
	Workflows map[string][]string `yaml:"workflows,omitempty" json:"workflows,omitempty"`
}

// GroupConfig declares one group: its units, jobs, and workflow order.
type GroupConfig struct {
	Name     string       `yaml:"name" json:"name"`
	Units    []UnitConfig `yaml:"units" json:"units"`
	Jobs     []domain.Job `yaml:"jobs" json:"jobs"`
	Workflow []string     `yaml:"workflow" json:"workflow"`
}

// UnitConfig declares one unit. Type selects the factory; With carries the
// factory-specific settings.
type UnitConfig struct {
	Name string         `yaml:"name" json:"name"`
	Role string         `yaml:"role,omitempty" json:"role,omitempty"`
	Type string         `yaml:"type" json:"type"`
	With map[string]any `yaml:"with,omitempty" json:"with,omitempty"`
}

// UnitFactory builds a unit from its declared settings.
type UnitFactory func(name, role string, with map[string]any) (ports.Unit, error)

// Builder turns a Project into an Organization. Callers register extra unit
// types before building; "exec" is always available.
type Builder struct {
	factories map[string]UnitFactory
	logger    *slog.Logger
}

// NewBuilder creates a builder with the built-in unit types.
func NewBuilder(logger *slog.Logger) *Builder {
	b := &Builder{
		factories: make(map[string]UnitFactory),
		logger:    logger,
	}
	b.RegisterUnitType("exec", execUnitFactory)
	return b
}

// RegisterUnitType adds a factory for a unit type name.
func (b *Builder) RegisterUnitType(typeName string, factory UnitFactory) {
	b.factories[typeName] = factory
}

// Load reads and parses a project file. JSON is detected by extension;
// everything else parses as YAML.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var project Project
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &project); err != nil {
			return nil, fmt.Errorf("failed to parse project file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &project); err != nil {
			return nil, fmt.Errorf("failed to parse project file: %w", err)
		}
	}

	if project.Organization == "" {
		return nil, fmt.Errorf("project names no organization")
	}
	if len(project.Groups) == 0 {
		return nil, fmt.Errorf("project declares no groups")
	}
	return &project, nil
}

// Build composes the organization declared by the project.
func (b *Builder) Build(project *Project, opts ...cadre.Option) (*cadre.Organization, error) {
	org := cadre.NewOrganization(project.Organization, opts...)

	for _, gc := range project.Groups {
		group, err := b.buildGroup(gc, opts...)
		if err != nil {
			return nil, err
		}
		if err := org.AddGroup(group); err != nil {
			return nil, err
		}
	}

	for _, step := range project.Steps {
		if err := org.AddStep(step); err != nil {
			return nil, err
		}
	}
	for name, steps := range project.Workflows {
		if err := org.AddWorkflow(name, steps); err != nil {
			return nil, err
		}
	}
	return org, nil
}

func (b *Builder) buildGroup(gc GroupConfig, opts ...cadre.Option) (*cadre.Group, error) {
	if gc.Name == "" {
		return nil, fmt.Errorf("group has no name")
	}
	group := cadre.NewGroup(gc.Name, opts...)

	for _, uc := range gc.Units {
		factory, ok := b.factories[uc.Type]
		if !ok {
			return nil, fmt.Errorf("group %s: unit %s has unknown type: %s", gc.Name, uc.Name, uc.Type)
		}
		u, err := factory(uc.Name, uc.Role, uc.With)
		if err != nil {
			return nil, fmt.Errorf("group %s: unit %s: %w", gc.Name, uc.Name, err)
		}
		if err := group.AddUnit(u); err != nil {
			return nil, err
		}
	}

	for _, job := range gc.Jobs {
		if err := group.AddJob(job); err != nil {
			return nil, err
		}
	}
	if len(gc.Workflow) > 0 {
		if err := group.SetWorkflow(gc.Workflow); err != nil {
			return nil, err
		}
	}
	return group, nil
}

type execSpec struct {
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
	Dir     string            `mapstructure:"dir"`
}

func execUnitFactory(name, role string, with map[string]any) (ports.Unit, error) {
	var spec execSpec
	if err := mapstructure.Decode(with, &spec); err != nil {
		return nil, fmt.Errorf("invalid exec settings: %w", err)
	}
	if spec.Command == "" {
		return nil, fmt.Errorf("exec unit needs a command")
	}

	var opts []process.Option
	if len(spec.Env) > 0 {
		opts = append(opts, process.WithEnv(spec.Env))
	}
	if spec.Dir != "" {
		opts = append(opts, process.WithDir(spec.Dir))
	}
	return process.New(name, role, spec.Command, spec.Args, opts...), nil
}
